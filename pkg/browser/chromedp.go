package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

// ChromedpSession drives one tab through chromedp
type ChromedpSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	sel         Selectors
	opts        Options
}

// LaunchChromedp starts a browser through chromedp's exec allocator. The
// browser outlives ctx and is released by Close.
func LaunchChromedp(ctx context.Context, opts Options) (*ChromedpSession, error) {
	cookies, err := resolveCookies(opts)
	if err != nil {
		return nil, err
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(1280, 900),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.BinPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.BinPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx)

	s := &ChromedpSession{
		ctx:         tabCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		sel:         opts.selectors(),
		opts:        opts,
	}

	// The first Run starts the browser
	if err := s.run(ctx, setCookies(cookies)); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "launch browser")
	}
	return s, nil
}

func setCookies(cookies []Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			p := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly)
			if c.Expires > 0 {
				exp := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				p = p.WithExpires(&exp)
			}
			if err := p.Do(ctx); err != nil {
				return errors.Wrapf(err, "set cookie %s", c.Name)
			}
		}
		return nil
	})
}

// run executes actions on the tab, aborting when either ctx or the tab ends
func (s *ChromedpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate opens url and waits for the body to be ready
func (s *ChromedpSession) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.opts.navigationTimeout())
	defer cancel()

	err := s.run(navCtx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
	return errors.Wrapf(err, "navigate to %s", url)
}

// Targets returns the rendered unlike controls
func (s *ChromedpSession) Targets(ctx context.Context) ([]Target, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, chromedp.Nodes(s.sel.Unlike, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, errors.Wrap(err, "query unlike controls")
	}

	targets := make([]Target, 0, len(nodes))
	for _, n := range nodes {
		targets = append(targets, &chromedpTarget{session: s, node: n})
	}
	return targets, nil
}

// ScrollToBottom scrolls the window to the end of the document
func (s *ChromedpSession) ScrollToBottom(ctx context.Context) error {
	err := s.run(ctx, chromedp.Evaluate(call(scrollScript), nil))
	return errors.Wrap(err, "scroll to bottom")
}

// Screenshot captures the viewport as PNG
func (s *ChromedpSession) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, chromedp.CaptureScreenshot(&buf))
	return buf, errors.Wrap(err, "capture screenshot")
}

// ShowStatus renders the in-page status panel
func (s *ChromedpSession) ShowStatus(ctx context.Context, progress, lastError string) error {
	err := s.run(ctx, chromedp.Evaluate(call(overlayScript, progress, lastError), nil))
	return errors.Wrap(err, "render status overlay")
}

// GetItem reads localStorage
func (s *ChromedpSession) GetItem(ctx context.Context, key string) (string, bool, error) {
	var item storageItem
	if err := s.run(ctx, chromedp.Evaluate(call(getItemScript, key), &item)); err != nil {
		return "", false, errors.Wrapf(err, "localStorage.getItem(%q)", key)
	}
	return item.Value, item.Present, nil
}

// SetItem writes localStorage
func (s *ChromedpSession) SetItem(ctx context.Context, key, value string) error {
	err := s.run(ctx, chromedp.Evaluate(call(setItemScript, key, value), nil))
	return errors.Wrapf(err, "localStorage.setItem(%q)", key)
}

// RemoveItem deletes a localStorage key
func (s *ChromedpSession) RemoveItem(ctx context.Context, key string) error {
	err := s.run(ctx, chromedp.Evaluate(call(removeItemScript, key), nil))
	return errors.Wrapf(err, "localStorage.removeItem(%q)", key)
}

// Cookies returns the browser's cookie jar as JSON
func (s *ChromedpSession) Cookies(ctx context.Context) ([]byte, error) {
	var cookies []*network.Cookie
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, errors.Wrap(err, "read cookies")
	}
	data, err := json.Marshal(cookies)
	return data, errors.Wrap(err, "encode cookies")
}

// Close shuts the tab and the browser process down
func (s *ChromedpSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	s.allocCancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return errors.Wrap(err, "close browser")
}

type chromedpTarget struct {
	session *ChromedpSession
	node    *cdp.Node
}

func (t *chromedpTarget) Label(ctx context.Context) (string, error) {
	var html string
	err := t.session.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.CallFunctionOnNode(ctx, t.node, articleHTMLScript, &html, t.session.sel.Article)
	}))
	if err != nil {
		return "", errors.Wrap(err, "read label")
	}
	return textFromHTML(html, t.session.sel.Text)
}

func (t *chromedpTarget) Activate(ctx context.Context) error {
	return errors.Wrap(t.session.run(ctx, chromedp.MouseClickNode(t.node)), "click unlike")
}

// textFromHTML returns the text of the first element matching sel in html
func textFromHTML(html, sel string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", errors.Wrap(err, "parse article")
	}
	return doc.Find(sel).First().Text(), nil
}

// call renders an invocation of fn with JSON-encoded arguments
func call(fn string, args ...string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		b, _ := json.Marshal(a)
		quoted[i] = string(b)
	}
	return fmt.Sprintf("(%s)(%s)", fn, strings.Join(quoted, ", "))
}
