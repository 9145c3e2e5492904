package browser

import (
	"context"
	"time"
)

// Target is one rendered unlike control. It is only valid until the page
// re-renders, so callers re-query rather than keep targets around.
type Target interface {
	// Label returns the post text next to the control, or "" when there is
	// none
	Label(ctx context.Context) (string, error)
	// Activate clicks the control
	Activate(ctx context.Context) error
}

// Page is what the unlike loop consumes from a live page
type Page interface {
	// Targets returns the currently rendered controls in document order
	Targets(ctx context.Context) ([]Target, error)
	// ScrollToBottom asks the timeline to load more content
	ScrollToBottom(ctx context.Context) error
}

// Session is a driven browser tab: a Page plus the plumbing the command
// layer needs around it
type Session interface {
	Page

	Navigate(ctx context.Context, url string) error
	Screenshot(ctx context.Context) ([]byte, error)
	// ShowStatus renders the in-page status panel
	ShowStatus(ctx context.Context, progress, lastError string) error

	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error

	// Cookies returns the browser's cookie jar as JSON
	Cookies(ctx context.Context) ([]byte, error)
	Close() error
}

// Selectors locate targets and their labels
type Selectors struct {
	Unlike  string
	Article string
	Text    string
}

// DefaultSelectors match x.com's likes timeline
func DefaultSelectors() Selectors {
	return Selectors{
		Unlike:  `[data-testid="unlike"]`,
		Article: "article",
		Text:    `[data-testid="tweetText"]`,
	}
}

// Options configure a driver launch
type Options struct {
	Headless    bool
	BinPath     string
	UserAgent   string
	Cookies     []Cookie
	CookiesFile string
	Selectors   Selectors
	// NavigationTimeout bounds Navigate, including the wait for load
	NavigationTimeout time.Duration
}

func (o Options) selectors() Selectors {
	s := o.Selectors
	def := DefaultSelectors()
	if s.Unlike == "" {
		s.Unlike = def.Unlike
	}
	if s.Article == "" {
		s.Article = def.Article
	}
	if s.Text == "" {
		s.Text = def.Text
	}
	return s
}

func (o Options) navigationTimeout() time.Duration {
	if o.NavigationTimeout <= 0 {
		return 60 * time.Second
	}
	return o.NavigationTimeout
}
