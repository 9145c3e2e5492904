package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"unliker/pkg/auth"
	"unliker/pkg/browser"
	"unliker/pkg/clock"
	"unliker/pkg/config"
	"unliker/pkg/logger"
	"unliker/pkg/progress"
	"unliker/pkg/retry"
	"unliker/pkg/storage"
	"unliker/pkg/ui"
	"unliker/pkg/unlike"
)

const (
	maxScreenshots = 50
	closeTimeout   = 10 * time.Second
)

// app is one browser session wired to a controller. Every command that
// drives the loop builds exactly one.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	session browser.Session
	store   progress.Store
	tracker *progress.Tracker
	shots   *storage.Manager
	ctrl    *unlike.Controller
	slot    *reporterSlot
}

// loadConfig merges file, env and flags, with --log-level applied last
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// resolveSession fills cfg.Session from the credential stores when the
// config and environment did not provide an auth token
func resolveSession(cfg *config.Config, account string, log logger.Logger) error {
	if account == "" && cfg.Session.AuthToken != "" {
		log.Info("Using session from configuration")
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	acc, err := manager.Resolve(account)
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) && account == "" && cfg.Browser.CookiesFile != "" {
			log.WithField("cookies_file", cfg.Browser.CookiesFile).Warn("No stored session, relying on the cookie jar")
			return nil
		}
		if account != "" {
			return fmt.Errorf("account %q not found: run 'unliker auth list'", account)
		}
		return fmt.Errorf("no x.com session found: run 'unliker auth login' or set %s", auth.EnvAuthToken)
	}

	applyAccount(cfg, acc)
	log.WithField("account", acc.Username).Info("Using stored credentials")
	return nil
}

func applyAccount(cfg *config.Config, acc *auth.Account) {
	if cfg.Session.Username == "" && acc.Username != "default" {
		cfg.Session.Username = acc.Username
	}
	cfg.Session.AuthToken = acc.AuthToken
	cfg.Session.CSRFToken = acc.CSRFToken
	if acc.UserAgent != "" {
		cfg.Session.UserAgent = acc.UserAgent
	}
}

func browserOptions(cfg *config.Config) browser.Options {
	return browser.Options{
		Headless:    cfg.Browser.Headless,
		BinPath:     cfg.Browser.BinPath,
		UserAgent:   cfg.Session.UserAgent,
		Cookies:     browser.SessionCookies(cfg.Session.AuthToken, cfg.Session.CSRFToken),
		CookiesFile: cfg.Browser.CookiesFile,
		Selectors: browser.Selectors{
			Unlike:  cfg.Selectors.Unlike,
			Article: cfg.Selectors.Article,
			Text:    cfg.Selectors.Text,
		},
		NavigationTimeout: cfg.Browser.NavigationTimeout,
	}
}

func retryConfig(attempts int, log logger.Logger) *retry.Config {
	rc := retry.DefaultConfig()
	rc.MaxAttempts = attempts
	rc.Clock = clock.Real{}
	rc.Logger = log
	return rc
}

// openBrowser launches the driver and loads the start page, retrying both
func openBrowser(ctx context.Context, cfg *config.Config, log logger.Logger) (browser.Session, error) {
	rc := retryConfig(cfg.Browser.LaunchAttempts, log)
	opts := browserOptions(cfg)
	startURL := cfg.StartURL()

	session, err := retry.DoWithResult(ctx, func(ctx context.Context) (browser.Session, error) {
		return browser.Launch(ctx, cfg.Browser.Driver, opts)
	}, rc)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	logger.LogComponentStart("browser", map[string]interface{}{
		"driver":   cfg.Browser.Driver,
		"headless": cfg.Browser.Headless,
	})

	err = retry.Do(ctx, func(ctx context.Context) error {
		return session.Navigate(ctx, startURL)
	}, rc)
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("failed to open %s: %w", startURL, err)
	}
	log.WithField("url", startURL).Info("Page loaded")
	return session, nil
}

func screenshotDir(cfg *config.Config) (string, error) {
	if cfg.Browser.ScreenshotDir != "" {
		return cfg.Browser.ScreenshotDir, nil
	}
	dataDir, err := progress.DataDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "screenshots"), nil
}

// notificationReporter builds the end-of-run notifier, or nil when disabled.
// out receives the console copy of each notification.
func notificationReporter(cfg *config.Config, out io.Writer) unlike.Reporter {
	var sender ui.NotificationSender
	switch cfg.Notifications.NotificationType {
	case "none":
		return nil
	case "desktop":
		sender = ui.PlatformSender()
	}
	return ui.NewNotificationReporter(ui.NewNotifierWithSender(sender, out), cfg.Notifications)
}

// newApp launches the browser and builds the controller. reporters are
// attached in order; nil entries are skipped.
func newApp(ctx context.Context, cfg *config.Config, log logger.Logger, reporters ...unlike.Reporter) (*app, error) {
	session, err := openBrowser(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, session: session, slot: &reporterSlot{}}

	a.store, err = progress.Open(ctx, cfg.Progress, session)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open progress store: %w", err)
	}
	a.tracker = progress.NewTracker(a.store, cfg.Progress.Key, log)

	dir, err := screenshotDir(cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.shots, err = storage.NewManager(dir, maxScreenshots)
	if err != nil {
		a.close()
		return nil, err
	}

	multi := unlike.MultiReporter{a.slot}
	if cfg.Browser.Overlay {
		multi = append(multi, unlike.NewOverlayReporter(ctx, session, log))
	}
	for _, r := range reporters {
		if r != nil {
			multi = append(multi, r)
		}
	}

	a.ctrl, err = unlike.New(ctx, session, a.tracker, cfg,
		unlike.WithLogger(log),
		unlike.WithReporter(multi),
		unlike.WithFailureHook(a.captureFailure),
	)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) captureFailure(ctx context.Context, cause error) {
	path, err := a.shots.Capture(ctx, a.session)
	if err != nil {
		a.log.WithError(err).Debug("Failed to capture failure screenshot")
		return
	}
	a.log.WithFields(map[string]interface{}{
		"path":  path,
		"cause": cause.Error(),
	}).Debug("Saved failure screenshot")
}

// close saves the cookie jar when configured and releases the browser and store
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if a.cfg.Browser.CookiesFile != "" && a.session != nil {
		if data, err := a.session.Cookies(ctx); err != nil {
			a.log.WithError(err).Warn("Failed to read cookies")
		} else if err := browser.SaveCookies(a.cfg.Browser.CookiesFile, data); err != nil {
			a.log.WithError(err).Warn("Failed to save cookies")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close progress store")
		}
	}
	if a.session != nil {
		if err := a.session.Close(); err != nil {
			a.log.WithError(err).Debug("Failed to close browser")
		}
	}
	logger.LogComponentStop("browser", "shutdown")
}

// waitIdle stops a running loop and waits for it to finish, up to timeout
func (a *app) waitIdle(timeout time.Duration) {
	if a.ctrl.Status().State == unlike.StateIdle {
		return
	}
	_ = a.ctrl.Stop()
	select {
	case <-a.ctrl.Done():
	case <-time.After(timeout):
		a.log.Warn("Timed out waiting for the unlike loop to finish")
	}
}

// reporterSlot forwards to a reporter attached after the controller exists
type reporterSlot struct {
	mu sync.Mutex
	r  unlike.Reporter
}

func (s *reporterSlot) set(r unlike.Reporter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r = r
}

func (s *reporterSlot) get() unlike.Reporter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r
}

func (s *reporterSlot) Progress(st unlike.Status) {
	if r := s.get(); r != nil {
		r.Progress(st)
	}
}

func (s *reporterSlot) Failure(st unlike.Status, err error) {
	if r := s.get(); r != nil {
		r.Failure(st, err)
	}
}

func (s *reporterSlot) RateLimited(st unlike.Status, wait time.Duration) {
	if r := s.get(); r != nil {
		r.RateLimited(st, wait)
	}
}

func (s *reporterSlot) Finished(sum unlike.Summary) {
	if r := s.get(); r != nil {
		r.Finished(sum)
	}
}
