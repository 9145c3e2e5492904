package progress

import "context"

// PageStore keeps the counter in the page's own localStorage, so progress
// follows the browser profile rather than the machine
type PageStore struct {
	page LocalStorage
}

// NewPageStore wraps a page's localStorage
func NewPageStore(page LocalStorage) *PageStore {
	return &PageStore{page: page}
}

func (p *PageStore) Get(ctx context.Context, key string) (string, bool, error) {
	return p.page.GetItem(ctx, key)
}

func (p *PageStore) Set(ctx context.Context, key, value string) error {
	return p.page.SetItem(ctx, key, value)
}

func (p *PageStore) Delete(ctx context.Context, key string) error {
	return p.page.RemoveItem(ctx, key)
}

// Close leaves the page open; its owner closes it
func (p *PageStore) Close() error { return nil }
