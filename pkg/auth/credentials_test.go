package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func testAccount(name string) *Account {
	return &Account{
		Username:  name,
		AuthToken: "0123456789abcdef0123456789abcdef01234567",
		CSRFToken: "csrf_" + name,
		UserAgent: "TestAgent/1.0",
	}
}

func TestManagerStoreAndRetrieve(t *testing.T) {
	store := NewMemoryStore()
	manager := NewManagerWithStores(store)

	require.NoError(t, manager.Store(testAccount("@alice")))
	assert.Equal(t, 1, store.Len())

	got, err := manager.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.False(t, got.LastModified.IsZero())

	got, err = manager.Retrieve("@alice")
	require.NoError(t, err)
	assert.Equal(t, "csrf_@alice", got.CSRFToken)

	_, err = manager.Retrieve("bob")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerRejectsIncompleteAccounts(t *testing.T) {
	manager := NewManagerWithStores(NewMemoryStore())

	tests := []struct {
		name    string
		account *Account
		want    string
	}{
		{"nil", nil, "invalid credentials"},
		{"no username", &Account{AuthToken: "t"}, "username is required"},
		{"no token", &Account{Username: "alice"}, "auth token is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := manager.Store(tt.account)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestManagerFallsThroughStores(t *testing.T) {
	broken := NewMemoryStore()
	broken.StoreErr = ErrStoreUnavailable
	working := NewMemoryStore()
	manager := NewManagerWithStores(broken, working)

	require.NoError(t, manager.Store(testAccount("alice")))
	assert.Equal(t, 0, broken.Len())
	assert.Equal(t, 1, working.Len())

	broken.StoreErr = errors.New("disk full")
	working.StoreErr = ErrStoreUnavailable
	err := manager.Store(testAccount("bob"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	manager = NewManagerWithStores(NewEnvironmentStore())
	assert.ErrorIs(t, manager.Store(testAccount("carol")), ErrStoreUnavailable)
}

func TestManagerListDeduplicatesAndSortsNewestFirst(t *testing.T) {
	first := NewMemoryStore()
	second := NewMemoryStore()
	now := time.Now()

	older := testAccount("alice")
	older.LastModified = now.Add(-time.Hour)
	newer := testAccount("bob")
	newer.LastModified = now
	require.NoError(t, first.Store(older))
	require.NoError(t, first.Store(newer))

	stale := testAccount("alice")
	stale.AuthToken = "stale"
	require.NoError(t, second.Store(stale))

	manager := NewManagerWithStores(first, second)
	accounts, err := manager.List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "bob", accounts[0].Username)
	assert.Equal(t, "alice", accounts[1].Username)
	assert.NotEqual(t, "stale", accounts[1].AuthToken)

	def, err := manager.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "bob", def.Username)

	resolved, err := manager.Resolve("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", resolved.Username)

	second.ListErr = errors.New("locked")
	accounts, err = manager.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestManagerDelete(t *testing.T) {
	a := NewMemoryStore()
	b := NewMemoryStore()
	require.NoError(t, a.Store(testAccount("alice")))
	require.NoError(t, b.Store(testAccount("alice")))
	require.NoError(t, b.Store(testAccount("bob")))

	manager := NewManagerWithStores(a, b)
	require.NoError(t, manager.Delete("@alice"))
	assert.False(t, a.Exists("alice"))
	assert.False(t, b.Exists("alice"))
	assert.ErrorIs(t, manager.Delete("alice"), ErrCredentialsNotFound)

	require.NoError(t, manager.DeleteAll())
	assert.Equal(t, 0, b.Len())

	_, err := manager.RetrieveDefault()
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedFileStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPassphrase, "")
	path := filepath.Join(dir, "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	assert.FileExists(t, filepath.Join(dir, ".passphrase"))

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	account := testAccount("alice")
	require.NoError(t, store.Store(account))
	require.NoError(t, store.Store(testAccount("bob")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	if bytes.Contains(raw, []byte(account.AuthToken)) {
		t.Error("auth token stored in plain text")
	}

	// A second store over the same file reuses the saved passphrase
	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	got, err := reopened.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, account.AuthToken, got.AuthToken)
	assert.True(t, reopened.Exists("bob"))

	require.NoError(t, reopened.Delete("alice"))
	assert.ErrorIs(t, reopened.Delete("alice"), ErrCredentialsNotFound)
	require.NoError(t, reopened.Delete("bob"))
	assert.NoFileExists(t, path)
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.enc")

	t.Setenv(EnvPassphrase, "first")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(testAccount("alice")))

	t.Setenv(EnvPassphrase, "second")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = other.Retrieve("alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrypt")
}

func TestEnvironmentStore(t *testing.T) {
	env := map[string]string{}
	store := &EnvironmentStore{getenv: func(k string) string { return env[k] }}

	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.False(t, store.Exists(""))

	env[EnvAuthToken] = "token"
	env[EnvCSRFToken] = "csrf"
	got, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "default", got.Username)
	assert.Equal(t, "token", got.AuthToken)

	env[EnvUsername] = "alice"
	got, err = store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = store.Retrieve("bob")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, store.Store(testAccount("x")), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("alice"), ErrStoreUnavailable)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	require.NoError(t, store.Store(testAccount("alice")))
	require.NoError(t, store.Store(testAccount("bob")))
	require.NoError(t, store.Store(testAccount("alice")))

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	got, err := store.Retrieve("bob")
	require.NoError(t, err)
	assert.Equal(t, "csrf_bob", got.CSRFToken)

	require.NoError(t, store.Delete("bob"))
	assert.False(t, store.Exists("bob"))
	assert.ErrorIs(t, store.Delete("bob"), ErrCredentialsNotFound)

	accounts, err = store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "alice", accounts[0].Username)
}

func TestAccountCookies(t *testing.T) {
	cookies := testAccount("alice").Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.Equal(t, "ct0", cookies[1].Name)

	cookies = (&Account{AuthToken: "t"}).Cookies()
	assert.Len(t, cookies, 1)
}

func TestSanitizeAccount(t *testing.T) {
	account := testAccount("alice")
	clean := SanitizeAccount(account)

	assert.Equal(t, "0123", clean.AuthToken[:4])
	assert.Contains(t, clean.AuthToken, "****")
	assert.Equal(t, "csrf**lice", clean.CSRFToken)
	assert.NotEqual(t, account.AuthToken, clean.AuthToken)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", account.AuthToken)
	assert.Nil(t, SanitizeAccount(nil))
}

func TestMaskString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "*****"},
		{"12345678", "********"},
		{"1234567890", "1234**7890"},
	}
	for _, tt := range tests {
		if got := maskString(tt.in); got != tt.want {
			t.Errorf("maskString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCookieGuide(t *testing.T) {
	var buf bytes.Buffer
	WriteCookieGuide(&buf)
	assert.Contains(t, buf.String(), "auth_token")
	assert.Contains(t, buf.String(), EnvAuthToken)

	buf.Reset()
	WriteQuickGuide(&buf)
	assert.Contains(t, buf.String(), "ct0")
}
