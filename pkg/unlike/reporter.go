package unlike

import (
	"context"
	"time"

	"unliker/pkg/logger"
)

// Reporter receives status updates from the controller. Calls come from
// the loop goroutine and the periodic reporter, so implementations must be
// safe for concurrent use and should not block.
type Reporter interface {
	Progress(Status)
	Failure(Status, error)
	// RateLimited is called before the loop pauses for wait
	RateLimited(s Status, wait time.Duration)
	Finished(Summary)
}

// MultiReporter fans every call out to each reporter in order
type MultiReporter []Reporter

func (m MultiReporter) Progress(s Status) {
	for _, r := range m {
		r.Progress(s)
	}
}

func (m MultiReporter) Failure(s Status, err error) {
	for _, r := range m {
		r.Failure(s, err)
	}
}

func (m MultiReporter) RateLimited(s Status, wait time.Duration) {
	for _, r := range m {
		r.RateLimited(s, wait)
	}
}

func (m MultiReporter) Finished(sum Summary) {
	for _, r := range m {
		r.Finished(sum)
	}
}

// StatusRenderer draws the two status lines somewhere visible
type StatusRenderer interface {
	ShowStatus(ctx context.Context, progress, lastError string) error
}

// OverlayReporter mirrors the status lines into the page itself
type OverlayReporter struct {
	ctx      context.Context
	renderer StatusRenderer
	timeout  time.Duration
	logger   logger.Logger
}

// NewOverlayReporter creates a reporter that renders through r. Renders
// are abandoned once ctx ends.
func NewOverlayReporter(ctx context.Context, r StatusRenderer, log logger.Logger) *OverlayReporter {
	if log == nil {
		log = logger.GetLogger()
	}
	return &OverlayReporter{ctx: ctx, renderer: r, timeout: 5 * time.Second, logger: log}
}

func (o *OverlayReporter) Progress(s Status) { o.render(s) }

func (o *OverlayReporter) Failure(s Status, err error) { o.render(s) }

func (o *OverlayReporter) RateLimited(s Status, wait time.Duration) {}

func (o *OverlayReporter) Finished(sum Summary) {}

func (o *OverlayReporter) render(s Status) {
	if o.ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(o.ctx, o.timeout)
	defer cancel()

	if err := o.renderer.ShowStatus(ctx, s.ProgressLine(), s.ErrorLine()); err != nil {
		o.logger.WithError(err).Debug("Failed to render status overlay")
	}
}
