// Package session persists the logged-in username across client runs.
// The username is the only durable client-side state; completion
// records live on the server and are re-synced at login.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store reads and writes the cached username file.
type Store struct {
	path string
}

// DefaultPath returns the username file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "golangstudy", "username"), nil
}

// NewStore creates a session store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save writes the username, creating parent directories as needed.
func (s *Store) Save(username string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(username+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Load returns the cached username, or false when none is stored.
func (s *Store) Load() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	username := strings.TrimSpace(string(data))
	return username, username != ""
}

// Clear removes the cached username.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
