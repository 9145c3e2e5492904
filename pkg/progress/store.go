package progress

import (
	"context"
	"fmt"
	"strings"

	"unliker/pkg/config"
)

// Store is a durable string key-value store. Only one key is ever used by
// the unlike loop, but backends treat keys generically.
type Store interface {
	// Get returns the stored value and whether the key was present
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LocalStorage is the slice of a browser page the page-backed store needs
type LocalStorage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Open builds the store selected by cfg.Backend. page is only consulted for
// the "browser" backend and may be nil otherwise.
func Open(ctx context.Context, cfg config.ProgressConfig, page LocalStorage) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "file":
		return NewFileStore(cfg.File)
	case "memory":
		return NewMemoryStore(), nil
	case "browser":
		if page == nil {
			return nil, fmt.Errorf("browser progress backend requires an open page")
		}
		return NewPageStore(page), nil
	case "postgres":
		return NewPostgresStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown progress backend %q", cfg.Backend)
	}
}
