package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"
	"github.com/xpzouying/headless_browser"
)

// RodSession drives one tab through go-rod, launched with stealth defaults
// by headless_browser
type RodSession struct {
	browser *headless_browser.Browser
	page    *rod.Page
	sel     Selectors
	opts    Options
}

// LaunchRod starts chromium with the session cookies already installed.
// Launch failures surface as errors rather than rod's Must* panics.
func LaunchRod(ctx context.Context, opts Options) (s *RodSession, err error) {
	cookies, err := resolveCookies(opts)
	if err != nil {
		return nil, err
	}

	hbOpts := []headless_browser.Option{
		headless_browser.WithHeadless(opts.Headless),
	}
	if opts.BinPath != "" {
		hbOpts = append(hbOpts, headless_browser.WithChromeBinPath(opts.BinPath))
	}
	if len(cookies) > 0 {
		data, err := json.Marshal(cookies)
		if err != nil {
			return nil, errors.Wrap(err, "encode cookies")
		}
		hbOpts = append(hbOpts, headless_browser.WithCookies(string(data)))
	}

	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("launch browser: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := headless_browser.New(hbOpts...)
	page := b.NewPage()

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			page.Close()
			b.Close()
			return nil, errors.Wrap(err, "set user agent")
		}
	}

	return &RodSession{
		browser: b,
		page:    page,
		sel:     opts.selectors(),
		opts:    opts,
	}, nil
}

// Navigate opens url and waits for the load event
func (s *RodSession) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.opts.navigationTimeout())
	defer cancel()

	p := s.page.Context(navCtx)
	if err := p.Navigate(url); err != nil {
		return errors.Wrapf(err, "navigate to %s", url)
	}
	if err := p.WaitLoad(); err != nil {
		return errors.Wrapf(err, "wait for %s to load", url)
	}
	return nil
}

// Targets returns the rendered unlike controls
func (s *RodSession) Targets(ctx context.Context) ([]Target, error) {
	els, err := s.page.Context(ctx).Elements(s.sel.Unlike)
	if err != nil {
		return nil, errors.Wrap(err, "query unlike controls")
	}

	targets := make([]Target, 0, len(els))
	for _, el := range els {
		targets = append(targets, &rodTarget{el: el, sel: s.sel})
	}
	return targets, nil
}

// ScrollToBottom scrolls the window to the end of the document
func (s *RodSession) ScrollToBottom(ctx context.Context) error {
	_, err := s.page.Context(ctx).Eval(scrollScript)
	return errors.Wrap(err, "scroll to bottom")
}

// Screenshot captures the viewport as PNG
func (s *RodSession) Screenshot(ctx context.Context) ([]byte, error) {
	data, err := s.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	return data, errors.Wrap(err, "capture screenshot")
}

// ShowStatus renders the in-page status panel
func (s *RodSession) ShowStatus(ctx context.Context, progress, lastError string) error {
	_, err := s.page.Context(ctx).Eval(overlayScript, progress, lastError)
	return errors.Wrap(err, "render status overlay")
}

// GetItem reads localStorage
func (s *RodSession) GetItem(ctx context.Context, key string) (string, bool, error) {
	res, err := s.page.Context(ctx).Eval(getItemScript, key)
	if err != nil {
		return "", false, errors.Wrapf(err, "localStorage.getItem(%q)", key)
	}
	if !res.Value.Get("present").Bool() {
		return "", false, nil
	}
	return res.Value.Get("value").Str(), true, nil
}

// SetItem writes localStorage
func (s *RodSession) SetItem(ctx context.Context, key, value string) error {
	_, err := s.page.Context(ctx).Eval(setItemScript, key, value)
	return errors.Wrapf(err, "localStorage.setItem(%q)", key)
}

// RemoveItem deletes a localStorage key
func (s *RodSession) RemoveItem(ctx context.Context, key string) error {
	_, err := s.page.Context(ctx).Eval(removeItemScript, key)
	return errors.Wrapf(err, "localStorage.removeItem(%q)", key)
}

// Cookies returns the browser's cookie jar as JSON
func (s *RodSession) Cookies(ctx context.Context) ([]byte, error) {
	cks, err := s.page.Browser().Context(ctx).GetCookies()
	if err != nil {
		return nil, errors.Wrap(err, "read cookies")
	}
	data, err := json.Marshal(cks)
	return data, errors.Wrap(err, "encode cookies")
}

// Close closes the tab and the browser
func (s *RodSession) Close() error {
	err := s.page.Close()
	s.browser.Close()
	return errors.Wrap(err, "close page")
}

type rodTarget struct {
	el  *rod.Element
	sel Selectors
}

func (t *rodTarget) Label(ctx context.Context) (string, error) {
	res, err := t.el.Context(ctx).Eval(labelScript, t.sel.Article, t.sel.Text)
	if err != nil {
		return "", errors.Wrap(err, "read label")
	}
	return res.Value.Str(), nil
}

func (t *rodTarget) Activate(ctx context.Context) error {
	return errors.Wrap(t.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1), "click unlike")
}
