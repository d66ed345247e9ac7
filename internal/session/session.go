// Package session keeps the bearer token the Briefing Service expects. The
// token lives in a private file under the project's .briefing directory and
// can be overridden from the environment.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// EnvToken overrides the persisted token when set.
const EnvToken = "BRIEFING_TOKEN"

// Store reads and writes the persisted session token.
type Store struct {
	path string
}

// NewStore returns a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Load returns the persisted token, or "" when none has been saved.
func (s *Store) Load() (string, error) {
	if s == nil || s.path == "" {
		return "", nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("session: read %s: %w", s.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save persists a token with owner-only permissions.
func (s *Store) Save(token string) error {
	if s == nil || s.path == "" {
		return fmt.Errorf("session: store has no path")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("session: token is required")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: ensure dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("session: write token: %w", err)
	}
	return nil
}

// Clear removes the persisted token.
func (s *Store) Clear() error {
	if s == nil || s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: remove token: %w", err)
	}
	return nil
}

// Resolve returns the token to send: the environment override first, then the
// persisted value.
func (s *Store) Resolve() (string, error) {
	if value := strings.TrimSpace(os.Getenv(EnvToken)); value != "" {
		return value, nil
	}
	return s.Load()
}

// Token is Resolve with read errors mapped to an empty token, which still
// lets the request go out and the service reject it.
func (s *Store) Token() string {
	token, _ := s.Resolve()
	return token
}
