// Package unlike runs the unlike loop: it repeatedly queries a live page
// for unlike controls, activates them one at a time with adaptive pacing,
// caps throughput with a fixed-window limiter and persists the running
// total after every success.
//
// A Controller owns one Session for the life of the process. Start and
// Stop may be called from any goroutine; the loop itself always runs on a
// single goroutine and only observes a stop request between batches.
//
//	ctrl, err := unlike.New(ctx, page, tracker, cfg,
//		unlike.WithReporter(unlike.MultiReporter{console, overlay}),
//	)
//	summary, err := ctrl.Run(ctx)
package unlike
