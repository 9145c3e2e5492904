// Package ratelimit caps how many unlikes happen per window.
//
// FixedWindow is a coarse fixed-window throttle: after every successful
// action it compares the actions performed since the last durable-storage
// read against a cap. Inside the window it returns the remainder as the
// pause. The window timestamp moves to "now" on every check. The caller
// does the sleeping, so it can announce the pause first.
//
//	limiter := ratelimit.NewFixedWindow(50, time.Minute, clock.Real{}, loaded)
//	if wait := limiter.Reserve(total); wait > 0 {
//	    log.Printf("rate limited for %s", wait)
//	    if err := clk.Sleep(ctx, wait); err != nil {
//	        return err
//	    }
//	}
package ratelimit
