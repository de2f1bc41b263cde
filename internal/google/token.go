package google

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// HasToken checks if a stored OAuth token exists.
func (m *Manager) HasToken() bool {
	_, err := os.Stat(m.paths.TokenPath())
	return err == nil
}

// SaveToken persists a token as JSON under the credentials directory.
// The directory and file are created with owner-only permissions.
func (m *Manager) SaveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(m.paths.CredentialsDir(), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(m.paths.TokenPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// ClearToken removes the stored token. Removing an absent token is not an
// error.
func (m *Manager) ClearToken() error {
	if err := os.Remove(m.paths.TokenPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

func (m *Manager) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(m.paths.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("no stored Google OAuth token: %w", err)
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", m.paths.TokenPath(), err)
	}
	return tok, nil
}
