package auth

import (
	"os"
	"time"
)

// Environment variables read by EnvironmentStore
const (
	EnvUsername  = "UNLIKER_USERNAME"
	EnvAuthToken = "UNLIKER_AUTH_TOKEN"
	EnvCSRFToken = "UNLIKER_CSRF_TOKEN"
	EnvUserAgent = "UNLIKER_USER_AGENT"
)

// EnvironmentStore is a read-only store backed by UNLIKER_* variables
type EnvironmentStore struct {
	getenv func(string) string
}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{getenv: os.Getenv}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment session. The username must match
// UNLIKER_USERNAME when that variable is set.
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	token := e.getenv(EnvAuthToken)
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	envUser := e.getenv(EnvUsername)
	switch {
	case username == "" && envUser == "":
		username = "default"
	case username == "":
		username = envUser
	case envUser != "" && envUser != username:
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Username:     username,
		AuthToken:    token,
		CSRFToken:    e.getenv(EnvCSRFToken),
		UserAgent:    e.getenv(EnvUserAgent),
		LastModified: time.Time{},
	}, nil
}

// List returns a single account if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}
