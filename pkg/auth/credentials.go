package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"unliker/pkg/browser"
)

// Account holds the x.com session cookies for one signed-in user
type Account struct {
	Username     string    `json:"username"`
	AuthToken    string    `json:"auth_token"`
	CSRFToken    string    `json:"csrf_token"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Cookies returns the browser cookies that restore this session
func (a *Account) Cookies() []browser.Cookie {
	return browser.SessionCookies(a.AuthToken, a.CSRFToken)
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	Store(account *Account) error
	Retrieve(username string) (*Account, error)
	List() ([]*Account, error)
	Delete(username string) error
	Exists(username string) bool
}

// Manager tries each store in order: keyring, encrypted file, environment
type Manager struct {
	stores []CredentialStore
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

// NewManager creates a credential manager with the stores available on this machine
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if ks, err := NewKeyringStore(); err == nil {
		stores = append(stores, ks)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	if fs, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc")); err == nil {
		stores = append(stores, fs)
	}

	// Read-only fallback
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over an explicit store list
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Validate checks that an account can be stored
func (a *Account) Validate() error {
	if a == nil {
		return ErrInvalidCredentials
	}
	if strings.TrimSpace(a.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidCredentials)
	}
	if strings.TrimSpace(a.AuthToken) == "" {
		return fmt.Errorf("%w: auth token is required", ErrInvalidCredentials)
	}
	return nil
}

// Store saves credentials to the first writable store
func (m *Manager) Store(account *Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	account.Username = strings.TrimPrefix(strings.TrimSpace(account.Username), "@")
	account.LastModified = time.Now()

	var errs []error
	for _, store := range m.stores {
		err := store.Store(account)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrStoreUnavailable) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to store credentials: %w", errors.Join(errs...))
	}
	return ErrStoreUnavailable
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(username string) (*Account, error) {
	username = strings.TrimPrefix(username, "@")
	for _, store := range m.stores {
		if account, err := store.Retrieve(username); err == nil {
			return account, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// RetrieveDefault returns the most recently saved account
func (m *Manager) RetrieveDefault() (*Account, error) {
	accounts, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrCredentialsNotFound
	}
	return accounts[0], nil
}

// Resolve returns the named account, or the default one when username is empty
func (m *Manager) Resolve(username string) (*Account, error) {
	if username == "" {
		return m.RetrieveDefault()
	}
	return m.Retrieve(username)
}

// List returns the accounts across all stores, newest first.
// A username present in several stores is reported once.
func (m *Manager) List() ([]*Account, error) {
	seen := make(map[string]bool)
	var accounts []*Account

	for _, store := range m.stores {
		list, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range list {
			if seen[account.Username] {
				continue
			}
			seen[account.Username] = true
			accounts = append(accounts, account)
		}
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].LastModified.After(accounts[j].LastModified)
	})
	return accounts, nil
}

// Delete removes credentials from every store that holds them
func (m *Manager) Delete(username string) error {
	username = strings.TrimPrefix(username, "@")
	deleted := false
	for _, store := range m.stores {
		if !store.Exists(username) {
			continue
		}
		if err := store.Delete(username); err == nil {
			deleted = true
		}
	}
	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}

// DeleteAll removes every stored account
func (m *Manager) DeleteAll() error {
	accounts, err := m.List()
	if err != nil {
		return err
	}
	for _, account := range accounts {
		if err := m.Delete(account.Username); err != nil && !errors.Is(err, ErrCredentialsNotFound) {
			return fmt.Errorf("failed to delete %s: %w", account.Username, err)
		}
	}
	return nil
}

func getConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config directory available")
	}

	dir := filepath.Join(base, "unliker")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// SanitizeAccount returns a copy of the account safe to print
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}
	clean := *account
	clean.AuthToken = maskString(account.AuthToken)
	clean.CSRFToken = maskString(account.CSRFToken)
	return &clean
}

func maskString(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
