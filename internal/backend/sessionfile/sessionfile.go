// Package sessionfile persists the signed-in session handle in the config
// directory.
package sessionfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"todowork/internal/service"
)

// File persists a service.SessionHandle as JSON with mode 0600.
type File struct {
	path string
}

type sessionRecord struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`

	RefreshToken string `json:"refresh_token,omitempty"`
}

// New returns a File at path.
func New(path string) *File {
	return &File{path: path}
}

// Load reads the session. ok is false if no session file exists.
func (f *File) Load() (service.SessionHandle, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return service.SessionHandle{}, false, nil
	}
	if err != nil {
		return service.SessionHandle{}, false, err
	}
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return service.SessionHandle{}, false, fmt.Errorf("invalid %s: %w", filepath.Base(f.path), err)
	}
	if rec.Token == "" || rec.UserID == "" {
		return service.SessionHandle{}, false, nil
	}
	return service.SessionHandle{
		UserID:       rec.UserID,
		Email:        rec.Email,
		Token:        rec.Token,
		RefreshToken: rec.RefreshToken,
	}, true, nil
}

// Save writes the session atomically: a temp file in the same directory is
// renamed over the target.
func (f *File) Save(h service.SessionHandle) error {
	rec := sessionRecord{UserID: h.UserID, Email: h.Email, Token: h.Token, RefreshToken: h.RefreshToken}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Remove deletes the session file. A missing file is not an error.
func (f *File) Remove() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
