package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"church-library/pkg/models"
	"church-library/pkg/qrpass"
	"church-library/pkg/session"
)

// readPassword reads a password with terminal echo disabled.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

func currentUserOrFail() (models.User, error) {
	user, ok, err := sessions.CurrentUser()
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, fmt.Errorf("not logged in, run: churchlib login")
	}
	return user, nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Email: ")
		email, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		var user models.User
		err = apiRequest("POST", "/api/v1/auth/login",
			map[string]string{"email": strings.TrimSpace(email), "password": password}, 0, &user)
		if err != nil {
			return err
		}

		if err := sessions.SaveCurrentUser(user); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sessions.ClearCurrentUser(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in member",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUserOrFail()
		if err != nil {
			return err
		}

		// Refresh the cached record so profile edits made elsewhere show up.
		var fresh models.User
		if err := apiRequest("GET", fmt.Sprintf("/api/v1/users/%d", user.ID), nil, user.ID, &fresh); err == nil {
			user = fresh
			if err := sessions.SaveCurrentUser(user); err != nil {
				return err
			}
		}

		fmt.Printf("%s <%s>, role %s\n", user.Name, user.Email, user.Role)
		if user.MainChurch != "" {
			fmt.Printf("Church: %s\n", user.MainChurch)
		}
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light]",
	Short:     "Show or set the theme preference",
	ValidArgs: []string{"dark", "light"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			theme, err := sessions.ThemePreference()
			if err != nil {
				return err
			}
			if theme.IsDarkMode {
				fmt.Println("dark")
			} else {
				fmt.Println("light")
			}
			return nil
		}

		if err := sessions.SaveThemePreference(session.ThemePreference{IsDarkMode: args[0] == "dark"}); err != nil {
			return err
		}
		fmt.Printf("Theme set to %s\n", args[0])
		return nil
	},
}

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List books in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUserOrFail()
		if err != nil {
			return err
		}

		path := "/api/v1/books"
		if available, _ := cmd.Flags().GetBool("available"); available {
			path += "?available=true"
		}

		var response struct {
			Items []models.Book `json:"items"`
		}
		if err := apiRequest("GET", path, nil, user.ID, &response); err != nil {
			return err
		}

		for _, book := range response.Items {
			marker := " "
			if !book.Available {
				marker = "*"
			}
			fmt.Printf("%s %4d  %-40s %s\n", marker, book.ID, book.Name, book.Author)
		}
		fmt.Println("\n* currently on loan")
		return nil
	},
}

var qrCmd = &cobra.Command{
	Use:   "qr",
	Short: "Print the identity payload to encode as a QR code",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUserOrFail()
		if err != nil {
			return err
		}

		payload, err := qrpass.Encode(user, time.Now())
		if err != nil {
			return err
		}
		fmt.Println(string(payload))
		return nil
	},
}

func init() {
	booksCmd.Flags().Bool("available", false, "only list books that can be borrowed")
}
