package progress

import (
	"context"
	"strconv"
	"strings"

	errs "unliker/pkg/errors"
	"unliker/pkg/logger"
)

// Tracker reads and writes the unlike counter under one fixed key
type Tracker struct {
	store  Store
	key    string
	logger logger.Logger
}

// NewTracker binds a store to key
func NewTracker(store Store, key string, log logger.Logger) *Tracker {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Tracker{store: store, key: key, logger: log}
}

// Key returns the storage key
func (t *Tracker) Key() string {
	return t.key
}

// Load returns the persisted counter. An absent key is zero; a value that
// is not a non-negative integer is logged and also read as zero.
func (t *Tracker) Load(ctx context.Context) (int, error) {
	raw, ok, err := t.store.Get(ctx, t.key)
	if err != nil {
		return 0, errs.Wrap(errs.ErrorTypeStorage, err, "load progress")
	}
	if !ok {
		return 0, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		t.logger.WithFields(map[string]interface{}{
			"key":   t.key,
			"value": raw,
		}).Warn("Ignoring unreadable progress value")
		return 0, nil
	}
	return n, nil
}

// Save persists the counter
func (t *Tracker) Save(ctx context.Context, n int) error {
	if err := t.store.Set(ctx, t.key, strconv.Itoa(n)); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "save progress")
	}
	return nil
}

// Reset removes the persisted counter
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.store.Delete(ctx, t.key); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "reset progress")
	}
	return nil
}
