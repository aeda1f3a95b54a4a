// churchlib is the terminal client for the church library service. It keeps
// the logged-in member and the theme preference in a local session file and
// talks to the server over its REST API.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"church-library/pkg/session"
)

var (
	serverURL string
	sessions  *session.Store
)

var rootCmd = &cobra.Command{
	Use:   "churchlib",
	Short: "Client for the church library service",
}

func main() {
	path, err := session.DefaultPath()
	if err != nil {
		log.Fatalf("Failed to locate session file: %v", err)
	}
	sessions = session.NewStore(path)

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the library service")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, themeCmd, booksCmd, qrCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
