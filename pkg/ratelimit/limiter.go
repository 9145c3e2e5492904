package ratelimit

import (
	"sync"
	"time"

	"unliker/pkg/clock"
)

// Limiter throttles a counter-driven loop
type Limiter interface {
	// Reserve runs the check after one successful action and returns how
	// long the caller must pause. performed is the running total.
	Reserve(performed int) time.Duration
	// Rebase records the counter value last read from durable storage
	Rebase(count int)
	// Reset restarts the window at the current time
	Reset()
}

// FixedWindow is a coarse fixed-window limiter. Actions are counted against
// the value last read from durable storage, not against a dedicated counter,
// and the window restarts at every check whether or not it paused.
type FixedWindow struct {
	window   time.Duration
	max      int
	clock    clock.Clock
	last     time.Time
	baseline int
	mu       sync.Mutex
}

// NewFixedWindow creates a limiter allowing max actions per window. The
// window is anchored at clk.Now() and baseline is the counter value read
// from storage at startup.
func NewFixedWindow(max int, window time.Duration, clk clock.Clock, baseline int) *FixedWindow {
	if clk == nil {
		clk = clock.Real{}
	}
	return &FixedWindow{
		window:   window,
		max:      max,
		clock:    clk,
		last:     clk.Now(),
		baseline: baseline,
	}
}

// Reserve returns the rest of the window when performed-baseline has
// reached the cap and the window has not yet elapsed. The window restarts
// at every call.
func (fw *FixedWindow) Reserve(performed int) time.Duration {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.clock.Now()
	elapsed := now.Sub(fw.last)
	fw.last = now

	if elapsed < fw.window && performed-fw.baseline >= fw.max {
		return fw.window - elapsed
	}
	return 0
}

// Rebase records the counter value last read from durable storage
func (fw *FixedWindow) Rebase(count int) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.baseline = count
}

// Reset restarts the window at the current time
func (fw *FixedWindow) Reset() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.last = fw.clock.Now()
}

// Last returns the timestamp recorded by the most recent check
func (fw *FixedWindow) Last() time.Time {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.last
}

// Baseline returns the counter value actions are measured against
func (fw *FixedWindow) Baseline() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.baseline
}
