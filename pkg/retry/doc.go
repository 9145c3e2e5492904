// Package retry provides bounded retries with backoff for the few browser
// operations that fail transiently: launching chromium and the first
// navigation to the likes timeline.
//
// The unlike loop itself never retries an action; it records the failure
// and moves on.
//
//	session, err := retry.DoWithResult(ctx, func(ctx context.Context) (*browser.RodSession, error) {
//		return browser.LaunchRod(ctx, opts)
//	}, &retry.Config{MaxAttempts: 3, Backoff: retry.DefaultExponentialBackoff()})
package retry
