package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealSleepHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Real{}.Sleep(ctx, time.Minute)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRealSleepShort(t *testing.T) {
	assert.NoError(t, Real{}.Sleep(context.Background(), time.Millisecond))
	assert.NoError(t, Real{}.Sleep(context.Background(), 0))
}

func TestFakeSleepAdvances(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	var hooked []time.Duration
	f.OnSleep = func(d time.Duration) { hooked = append(hooked, d) }

	assert.NoError(t, f.Sleep(context.Background(), 3*time.Second))
	f.Advance(time.Second)
	assert.NoError(t, f.Sleep(context.Background(), 100*time.Millisecond))

	assert.Equal(t, start.Add(4100*time.Millisecond), f.Now())
	assert.Equal(t, []time.Duration{3 * time.Second, 100 * time.Millisecond}, f.Sleeps())
	assert.Equal(t, f.Sleeps(), hooked)
}

func TestFakeSleepCancelled(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, f.Sleep(ctx, time.Second), context.Canceled)
	assert.Empty(t, f.Sleeps())
}
