package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"unliker/pkg/clock"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFixedWindowBelowCap(t *testing.T) {
	clk := clock.NewFake(epoch)
	fw := NewFixedWindow(50, time.Minute, clk, 0)

	for performed := 1; performed < 50; performed++ {
		clk.Advance(100 * time.Millisecond)
		assert.Zero(t, fw.Reserve(performed), "performed=%d", performed)
	}
	assert.Equal(t, clk.Now(), fw.Last())
}

func TestFixedWindowReturnsRemainder(t *testing.T) {
	clk := clock.NewFake(epoch)
	fw := NewFixedWindow(50, time.Minute, clk, 0)

	clk.Advance(20 * time.Second)
	checkAt := clk.Now()

	assert.Equal(t, 40*time.Second, fw.Reserve(50))
	// the timestamp is the check time, not the end of the pause
	assert.Equal(t, checkAt, fw.Last())
}

func TestFixedWindowNeverSleeps(t *testing.T) {
	clk := clock.NewFake(epoch)
	fw := NewFixedWindow(2, time.Minute, clk, 10)

	clk.Advance(15 * time.Second)
	assert.Zero(t, fw.Reserve(11))

	clk.Advance(5 * time.Second)
	assert.Equal(t, 55*time.Second, fw.Reserve(12))
	assert.Empty(t, clk.Sleeps())
	assert.Equal(t, epoch.Add(20*time.Second), fw.Last())
}

func TestFixedWindowElapsedWindowDoesNotPause(t *testing.T) {
	clk := clock.NewFake(epoch)
	fw := NewFixedWindow(50, time.Minute, clk, 0)

	clk.Advance(time.Minute)
	assert.Zero(t, fw.Reserve(500))
	assert.Equal(t, epoch.Add(time.Minute), fw.Last())
}

func TestFixedWindowTimestampMovesEveryCheck(t *testing.T) {
	clk := clock.NewFake(epoch)
	fw := NewFixedWindow(50, time.Minute, clk, 0)

	// each check restarts the window, so the remainder is measured from the
	// previous action rather than from the first one
	clk.Advance(time.Second)
	fw.Reserve(49)

	clk.Advance(2 * time.Second)
	assert.Equal(t, 58*time.Second, fw.Reserve(50))
}

func TestFixedWindowBaseline(t *testing.T) {
	clk := clock.NewFake(epoch)
	fw := NewFixedWindow(50, time.Minute, clk, 1000)

	assert.Zero(t, fw.Reserve(1049))
	assert.Equal(t, time.Minute, fw.Reserve(1050))

	fw.Rebase(1050)
	assert.Equal(t, 1050, fw.Baseline())
	assert.Zero(t, fw.Reserve(1051))
}

func TestFixedWindowReset(t *testing.T) {
	clk := clock.NewFake(epoch)
	fw := NewFixedWindow(50, time.Minute, clk, 0)

	clk.Advance(5 * time.Minute)
	fw.Reset()
	assert.Equal(t, epoch.Add(5*time.Minute), fw.Last())

	clk.Advance(time.Second)
	assert.Equal(t, 59*time.Second, fw.Reserve(50))
}

func TestFixedWindowSatisfiesLimiter(t *testing.T) {
	var l Limiter = NewFixedWindow(50, time.Minute, clock.NewFake(epoch), 0)
	l.Rebase(7)
	assert.Equal(t, 7, l.(*FixedWindow).Baseline())
}
