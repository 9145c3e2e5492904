package unlike

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"unliker/pkg/browser"
	"unliker/pkg/clock"
	"unliker/pkg/config"
	errs "unliker/pkg/errors"
	"unliker/pkg/logger"
	"unliker/pkg/progress"
	"unliker/pkg/ratelimit"
)

const noLabel = "No text found"

var (
	// ErrAlreadyRunning is returned by Start and Run while a run is active
	ErrAlreadyRunning = errors.New("unliker is already running")
	// ErrNotRunning is returned by Stop while idle
	ErrNotRunning = errors.New("unliker is not running")
)

// FailureHook is called after each failed action with the run's context
type FailureHook func(ctx context.Context, err error)

// Option configures a Controller
type Option func(*Controller)

// WithClock replaces the wall clock used for pacing and rate limiting
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithReporter sets the status reporter
func WithReporter(r Reporter) Option {
	return func(c *Controller) { c.reporter = r }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithFailureHook registers a callback for failed actions
func WithFailureHook(h FailureHook) Option {
	return func(c *Controller) { c.onFailure = h }
}

// WithLimiter replaces the fixed-window limiter built from config
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Controller) { c.limiter = l }
}

// Controller runs the unlike loop against a page
type Controller struct {
	page      browser.Page
	tracker   *progress.Tracker
	limiter   ratelimit.Limiter
	cfg       config.UnlikeConfig
	clock     clock.Clock
	reporter  Reporter
	logger    logger.Logger
	onFailure FailureHook

	mu      sync.Mutex
	running bool
	session Session
	done    chan struct{}

	stopRequested atomic.Bool
}

// New creates a controller and seeds its total from the tracker
func New(ctx context.Context, page browser.Page, tracker *progress.Tracker, cfg *config.Config, opts ...Option) (*Controller, error) {
	c := &Controller{
		page:     page,
		tracker:  tracker,
		cfg:      cfg.Unlike,
		clock:    clock.Real{},
		reporter: MultiReporter(nil),
		logger:   logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	total, err := tracker.Load(ctx)
	if err != nil {
		return nil, err
	}

	if c.limiter == nil {
		c.limiter = ratelimit.NewFixedWindow(cfg.RateLimit.MaxActions, cfg.RateLimit.Window, c.clock, total)
	} else {
		c.limiter.Rebase(total)
		c.limiter.Reset()
	}

	c.session = Session{Total: total, Delay: c.cfg.BaseDelay}
	c.done = make(chan struct{})
	close(c.done)

	c.logger.WithFields(map[string]interface{}{
		"total": total,
		"key":   tracker.Key(),
	}).Debug("Loaded progress")

	return c, nil
}

// Run executes the loop on the calling goroutine until it terminates.
// Only a driver failure outside an action produces an error.
func (c *Controller) Run(ctx context.Context) (*Summary, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	return c.run(ctx)
}

// Start launches the loop on a new goroutine. ctx bounds the run, not the
// call, so it must outlive the caller's request.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	go func() {
		if _, err := c.run(ctx); err != nil {
			c.logger.WithError(err).Error("Unlike loop failed")
		}
	}()
	return nil
}

// Stop asks the loop to end before its next query. The current batch
// always finishes first.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return ErrNotRunning
	}
	if !c.stopRequested.Swap(true) {
		c.logger.Info("Stop requested")
	}
	return nil
}

// Status returns a snapshot of the session
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Done is closed when the current or most recent run has finished
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *Controller) statusLocked() Status {
	s := Status{
		State:     StateIdle,
		Total:     c.session.Total,
		Failures:  c.session.TotalFailures,
		Delay:     c.session.Delay,
		LastError: c.session.LastError,
		StartedAt: c.session.StartedAt,
		CanStart:  !c.running,
	}
	if c.running {
		s.State = StateRunning
		s.CanStop = true
		s.Elapsed = c.clock.Now().Sub(c.session.StartedAt)
		if c.stopRequested.Load() {
			s.State = StateStopping
			s.CanStop = false
		}
	}
	return s
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ErrAlreadyRunning
	}
	c.running = true
	c.stopRequested.Store(false)
	c.session.StartedAt = c.clock.Now()
	c.done = make(chan struct{})
	return nil
}

func (c *Controller) run(ctx context.Context) (*Summary, error) {
	c.mu.Lock()
	startTotal := c.session.Total
	startFailures := c.session.TotalFailures
	startedAt := c.session.StartedAt
	done := c.done
	c.mu.Unlock()

	c.logger.WithFields(map[string]interface{}{
		"total":       startTotal,
		"max_actions": c.cfg.MaxActions,
		"delay":       c.cfg.BaseDelay,
	}).Info("Unliking started")

	reportCtx, stopReporting := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if c.cfg.ReportInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.reportPeriodically(reportCtx)
		}()
	}

	reason, err := c.loop(ctx)

	stopReporting()
	wg.Wait()

	c.mu.Lock()
	summary := &Summary{
		Total:     c.session.Total,
		Performed: c.session.Total - startTotal,
		Failures:  c.session.TotalFailures - startFailures,
		Elapsed:   c.clock.Now().Sub(startedAt),
		Reason:    reason,
		Err:       err,
	}
	c.mu.Unlock()

	c.logger.WithFields(map[string]interface{}{
		"total":     summary.Total,
		"performed": summary.Performed,
		"failures":  summary.Failures,
		"reason":    string(summary.Reason),
	}).Info(fmt.Sprintf("Total unliked = %d", summary.Total))
	c.logger.Info(fmt.Sprintf("Finished in %.2f seconds", summary.Elapsed.Seconds()))

	c.reporter.Finished(*summary)

	c.mu.Lock()
	c.running = false
	c.stopRequested.Store(false)
	c.mu.Unlock()
	close(done)

	return summary, err
}

func (c *Controller) loop(ctx context.Context) (Reason, error) {
	for {
		if c.stopRequested.Load() {
			return ReasonStopped, nil
		}
		if c.total() >= c.cfg.MaxActions {
			return ReasonCeiling, nil
		}
		if ctx.Err() != nil {
			return ReasonCancelled, nil
		}

		targets, err := c.page.Targets(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ReasonCancelled, nil
			}
			return ReasonError, errs.Wrap(errs.ErrorTypeBrowser, err, "query targets")
		}
		if len(targets) == 0 {
			return ReasonExhausted, nil
		}

		c.update(func(s *Session) { s.ErrorStreak = 0 })

		attempted, abandoned := 0, false
		for _, target := range targets {
			attempted++
			if err := c.unlikeOne(ctx, target); err != nil {
				if ctx.Err() != nil {
					return ReasonCancelled, nil
				}
				if c.recordFailure(ctx, err) >= c.cfg.RetryCeiling {
					abandoned = true
					break
				}
			}
		}

		c.mu.Lock()
		batchFailures := c.session.BatchFailures
		c.mu.Unlock()
		logger.LogBatch(c.logger, len(targets), attempted, batchFailures, abandoned)

		if batchFailures > 0 {
			c.update(func(s *Session) {
				s.BatchFailures = 0
				s.ErrorStreak = 0
			})
			continue
		}

		if err := c.page.ScrollToBottom(ctx); err != nil {
			if ctx.Err() != nil {
				return ReasonCancelled, nil
			}
			return ReasonError, errs.Wrap(errs.ErrorTypeBrowser, err, "scroll")
		}
		if err := c.clock.Sleep(ctx, c.cfg.SettleDelay); err != nil {
			return ReasonCancelled, nil
		}
	}
}

// unlikeOne attempts a single target. Any returned error is an action
// failure.
func (c *Controller) unlikeOne(ctx context.Context, target browser.Target) error {
	label, err := target.Label(ctx)
	if err != nil {
		return err
	}
	label = truncateLabel(label, c.cfg.LabelMaxLength)
	c.logger.WithField("label", label).Debug("Unliking post")

	if err := target.Activate(ctx); err != nil {
		logger.LogAction(c.logger, label, c.total(), err)
		return err
	}

	var total int
	c.update(func(s *Session) {
		s.Total++
		total = s.Total
	})
	if err := c.tracker.Save(ctx, total); err != nil {
		logger.LogAction(c.logger, label, total, err)
		return err
	}
	logger.LogAction(c.logger, label, total, nil)
	c.reporter.Progress(c.Status())

	if err := c.clock.Sleep(ctx, c.delay()); err != nil {
		return err
	}
	c.update(func(s *Session) {
		if s.Delay > c.cfg.DecayThreshold && s.BatchFailures == 0 {
			s.Delay -= c.cfg.DelayDecrement
		}
	})

	if wait := c.limiter.Reserve(total); wait > 0 {
		logger.LogRateLimit(c.logger, total, wait)
		c.reporter.RateLimited(c.Status(), wait)
		if err := c.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}

	c.update(func(s *Session) { s.ErrorStreak = 0 })
	return nil
}

// recordFailure books a failed action and returns the new error streak
func (c *Controller) recordFailure(ctx context.Context, err error) int {
	c.mu.Lock()
	c.session.ErrorStreak++
	c.session.BatchFailures++
	c.session.TotalFailures++
	c.session.LastError = err.Error()
	c.session.Delay += c.cfg.DelayIncrement
	streak := c.session.ErrorStreak
	status := c.statusLocked()
	c.mu.Unlock()

	c.reporter.Failure(status, err)
	if c.onFailure != nil {
		c.onFailure(ctx, err)
	}
	return streak
}

// reportPeriodically re-renders progress until ctx ends or a stop is
// requested
func (c *Controller) reportPeriodically(ctx context.Context) {
	for {
		if err := c.clock.Sleep(ctx, c.cfg.ReportInterval); err != nil {
			return
		}
		if c.stopRequested.Load() {
			return
		}
		c.reporter.Progress(c.Status())
	}
}

func (c *Controller) update(fn func(s *Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.session)
}

func (c *Controller) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Total
}

func (c *Controller) delay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Delay
}

func truncateLabel(label string, max int) string {
	if label == "" {
		return noLabel
	}
	if max <= 0 {
		return label
	}
	runes := []rune(label)
	if len(runes) <= max {
		return label
	}
	return string(runes[:max])
}
