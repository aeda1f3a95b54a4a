// Package session is the client-side persisted state: a small file-backed
// key/value store with exactly two keys, the logged-in user and the theme
// preference.
package session

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"church-library/pkg/models"
)

const (
	keyCurrentUser = "currentUser"
	keyTheme       = "themePreference"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ThemePreference struct {
	IsDarkMode bool `json:"isDarkMode"`
}

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath puts the session file under the user's home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".church-library", "session.json"), nil
}

func (s *Store) load() (map[string]jsoniter.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]jsoniter.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	kv := map[string]jsoniter.RawMessage{}
	if err := json.Unmarshal(data, &kv); err != nil {
		return nil, fmt.Errorf("session file is corrupt: %w", err)
	}
	return kv, nil
}

func (s *Store) save(kv map[string]jsoniter.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(kv)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// SaveCurrentUser persists the authenticated user. The password hash is
// stripped before the write.
func (s *Store) SaveCurrentUser(u models.User) error {
	u.PasswordHash = ""

	kv, err := s.load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	kv[keyCurrentUser] = raw
	return s.save(kv)
}

// CurrentUser returns the persisted user. The second result is false when
// no one is logged in.
func (s *Store) CurrentUser() (models.User, bool, error) {
	kv, err := s.load()
	if err != nil {
		return models.User{}, false, err
	}
	raw, ok := kv[keyCurrentUser]
	if !ok {
		return models.User{}, false, nil
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return models.User{}, false, fmt.Errorf("stored user is corrupt: %w", err)
	}
	return u, true, nil
}

// ClearCurrentUser logs out: absence of the key means logged out.
func (s *Store) ClearCurrentUser() error {
	kv, err := s.load()
	if err != nil {
		return err
	}
	delete(kv, keyCurrentUser)
	return s.save(kv)
}

func (s *Store) SaveThemePreference(p ThemePreference) error {
	kv, err := s.load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	kv[keyTheme] = raw
	return s.save(kv)
}

// ThemePreference returns the stored preference, defaulting to light mode.
func (s *Store) ThemePreference() (ThemePreference, error) {
	kv, err := s.load()
	if err != nil {
		return ThemePreference{}, err
	}
	raw, ok := kv[keyTheme]
	if !ok {
		return ThemePreference{}, nil
	}

	var p ThemePreference
	if err := json.Unmarshal(raw, &p); err != nil {
		return ThemePreference{}, fmt.Errorf("stored theme preference is corrupt: %w", err)
	}
	return p, nil
}
