package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/gosuda/taskflow/internal/domain"
)

// credentials is the signed-in session kept between runs.
type credentials struct {
	APIURL       string    `yaml:"api_url"`
	UserID       uuid.UUID `yaml:"user_id"`
	Name         string    `yaml:"name"`
	Email        string    `yaml:"email"`
	AccessToken  string    `yaml:"access_token"`  //nolint:gosec // G117: stored session token
	RefreshToken string    `yaml:"refresh_token"` //nolint:gosec // G117: stored session token
}

func (c *credentials) user() *domain.UserRef {
	return &domain.UserRef{ID: c.UserID, Name: c.Name}
}

// loadCredentials returns nil without error when path does not exist.
func loadCredentials(path string) (*credentials, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var c credentials
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	return &c, nil
}

func saveCredentials(path string, c *credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// removeCredentials deletes the stored session. A missing file is not an error.
func removeCredentials(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
