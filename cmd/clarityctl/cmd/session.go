package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	claritycash "github.com/clarity-cash/claritycash"
	"github.com/clarity-cash/claritycash/cmd/clarityctl/client"
	"github.com/clarity-cash/claritycash/domain"
)

// storedSession is the on-disk session at ~/.claritycash/session.json.
// The ID token is a bearer credential, so the file is written 0600.
type storedSession struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email,omitempty"`
	IDToken   string    `json:"id_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return filepath.Join(home, ".claritycash", "session.json"), nil
}

func saveSession(session *domain.Session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&storedSession{
		UID:       session.Identity.UID,
		Email:     session.Identity.Email,
		IDToken:   session.IDToken,
		ExpiresAt: session.ExpiresAt,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func loadSession() (*storedSession, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, claritycash.ErrNoSession
		}
		return nil, err
	}

	var session storedSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", path, err)
	}
	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return nil, claritycash.ErrNoSession
	}
	return &session, nil
}

func clearSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// apiClient builds an authenticated client from the stored session.
func apiClient() (*client.Client, *storedSession, error) {
	session, err := loadSession()
	if err != nil {
		if err == claritycash.ErrNoSession {
			return nil, nil, fmt.Errorf("not signed in, run \"clarityctl login\" first")
		}
		return nil, nil, err
	}
	return client.New(serverURL, session.IDToken), session, nil
}
