package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "unliker/pkg/errors"
	"unliker/pkg/logger"
)

func TestTrackerLoad(t *testing.T) {
	tests := []struct {
		name    string
		stored  *string
		want    int
		warning bool
	}{
		{"absent key is zero", nil, 0, false},
		{"plain integer", strPtr("42"), 42, false},
		{"whitespace tolerated", strPtr(" 7\n"), 7, false},
		{"garbage reads as zero", strPtr("NaN"), 0, true},
		{"negative reads as zero", strPtr("-3"), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			if tt.stored != nil {
				require.NoError(t, store.Set(context.Background(), "unlikeCount", *tt.stored))
			}
			log := logger.NewTestLogger()
			tracker := NewTracker(store, "unlikeCount", log)

			got, err := tracker.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.warning, len(log.GetMessagesByLevel("WARN")) > 0)
		})
	}
}

func TestTrackerSaveAndReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tracker := NewTracker(store, "unlikeCount", logger.NewNopLogger())

	require.NoError(t, tracker.Save(ctx, 12))
	v, ok, _ := store.Get(ctx, "unlikeCount")
	assert.True(t, ok)
	assert.Equal(t, "12", v)

	n, err := tracker.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	require.NoError(t, tracker.Reset(ctx))
	n, err = tracker.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTrackerSaveErrorIsTyped(t *testing.T) {
	store := NewMemoryStore()
	store.SetErr = errors.New("quota exceeded")
	tracker := NewTracker(store, "unlikeCount", logger.NewNopLogger())

	err := tracker.Save(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeStorage))
	assert.Contains(t, err.Error(), "quota exceeded")
}

type fakeLocalStorage struct {
	items map[string]string
}

func (f *fakeLocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, ok := f.items[key]
	return v, ok, nil
}

func (f *fakeLocalStorage) SetItem(ctx context.Context, key, value string) error {
	f.items[key] = value
	return nil
}

func (f *fakeLocalStorage) RemoveItem(ctx context.Context, key string) error {
	delete(f.items, key)
	return nil
}

func TestPageStoreDelegates(t *testing.T) {
	ctx := context.Background()
	ls := &fakeLocalStorage{items: map[string]string{"unlikeCount": "5"}}
	store := NewPageStore(ls)

	v, ok, err := store.Get(ctx, "unlikeCount")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "5", v)

	require.NoError(t, store.Set(ctx, "unlikeCount", "6"))
	assert.Equal(t, "6", ls.items["unlikeCount"])

	require.NoError(t, store.Delete(ctx, "unlikeCount"))
	assert.Empty(t, ls.items)
	assert.NoError(t, store.Close())
}

func strPtr(s string) *string { return &s }
