package browser

import (
	"context"
	"errors"
	"sync"
)

// FakeTarget is a scripted target for FakePage
type FakeTarget struct {
	Text      string
	LabelErr  error
	ActiveErr error
}

// FakePage serves scripted batches from memory. Each Targets call returns
// the next batch; once the batches run out every query is empty.
type FakePage struct {
	mu       sync.Mutex
	batches  [][]FakeTarget
	queries  int
	scrolls  int
	clicks   []string
	items    map[string]string
	overlay  [2]string
	QueryErr error
	// OnActivate runs after each activation attempt, in order
	OnActivate func(text string)
}

// NewFakePage returns a page that serves batches in order
func NewFakePage(batches ...[]FakeTarget) *FakePage {
	return &FakePage{batches: batches, items: make(map[string]string)}
}

// Succeeding builds a batch of n targets that all activate cleanly
func Succeeding(n int) []FakeTarget {
	batch := make([]FakeTarget, n)
	for i := range batch {
		batch[i] = FakeTarget{Text: "post"}
	}
	return batch
}

func (p *FakePage) Targets(ctx context.Context) ([]Target, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.QueryErr != nil {
		return nil, p.QueryErr
	}
	p.queries++
	if len(p.batches) == 0 {
		return nil, nil
	}
	batch := p.batches[0]
	p.batches = p.batches[1:]

	targets := make([]Target, len(batch))
	for i := range batch {
		targets[i] = &fakeTarget{page: p, spec: batch[i]}
	}
	return targets, nil
}

func (p *FakePage) ScrollToBottom(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrolls++
	return nil
}

// Queries returns how many times Targets succeeded
func (p *FakePage) Queries() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries
}

// Scrolls returns how many times the page was scrolled
func (p *FakePage) Scrolls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrolls
}

// Activated returns the labels of successfully activated targets
func (p *FakePage) Activated() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

func (p *FakePage) Navigate(ctx context.Context, url string) error { return ctx.Err() }

func (p *FakePage) Screenshot(ctx context.Context) ([]byte, error) {
	// PNG signature and the start of an IHDR chunk
	return []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), nil
}

func (p *FakePage) ShowStatus(ctx context.Context, progress, lastError string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overlay = [2]string{progress, lastError}
	return nil
}

// Overlay returns the last rendered status lines
func (p *FakePage) Overlay() (progress, lastError string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overlay[0], p.overlay[1]
}

func (p *FakePage) GetItem(ctx context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.items[key]
	return v, ok, nil
}

func (p *FakePage) SetItem(ctx context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[key] = value
	return nil
}

func (p *FakePage) RemoveItem(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.items, key)
	return nil
}

func (p *FakePage) Cookies(ctx context.Context) ([]byte, error) { return []byte("[]"), nil }

func (p *FakePage) Close() error { return nil }

type fakeTarget struct {
	page *FakePage
	spec FakeTarget
}

func (t *fakeTarget) Label(ctx context.Context) (string, error) {
	if t.spec.LabelErr != nil {
		return "", t.spec.LabelErr
	}
	return t.spec.Text, nil
}

func (t *fakeTarget) Activate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.page.mu.Lock()
	if t.spec.ActiveErr == nil {
		t.page.clicks = append(t.page.clicks, t.spec.Text)
	}
	hook := t.page.OnActivate
	t.page.mu.Unlock()

	if hook != nil {
		hook(t.spec.Text)
	}
	return t.spec.ActiveErr
}

// ErrDetached is a convenience failure for scripted targets
var ErrDetached = errors.New("node is detached from document")
