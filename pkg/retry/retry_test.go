package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"unliker/pkg/clock"
	errs "unliker/pkg/errors"
	"unliker/pkg/logger"
)

func fakeConfig(clk *clock.Fake, attempts int) *Config {
	return &Config{
		MaxAttempts: attempts,
		Backoff:     &ConstantBackoff{Delay: time.Second},
		Clock:       clk,
		Logger:      logger.NewNopLogger(),
	}
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{9, time.Second},
	}

	for _, tt := range tests {
		if got := backoff.NextDelay(tt.attempt); got != tt.expected {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    time.Second,
		MaxDelay:     time.Minute,
		Multiplier:   2.0,
		JitterFactor: 0.5,
	}
	for i := 0; i < 50; i++ {
		d := backoff.NextDelay(1)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	attempts := 0

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("chromium not ready")
		}
		return nil
	}, fakeConfig(clk, 5))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, clk.Sleeps())
}

func TestDoGivesUp(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	attempts := 0

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errs.Wrap(errs.ErrorTypeBrowser, errors.New("launch failed"), "")
	}, fakeConfig(clk, 3))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
	assert.Equal(t, 3, attempts)
	assert.True(t, errs.Is(err, errs.ErrorTypeBrowser))
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	attempts := 0

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errs.New(errs.ErrorTypeAuth, "session cookie rejected")
	}, fakeConfig(clk, 3))

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, clk.Sleeps())
}

func TestDoCancelled(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())

	var retried []int
	cfg := fakeConfig(clk, 0)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		retried = append(retried, attempt)
		cancel()
	}

	err := Do(ctx, func(ctx context.Context) error { return errors.New("flaky") }, cfg)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{1}, retried)
}

func TestDoWithResult(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	calls := 0

	got, err := DoWithResult(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("navigation timeout")
		}
		return "https://x.com/someone/likes", nil
	}, fakeConfig(clk, 2))

	require.NoError(t, err)
	assert.Equal(t, "https://x.com/someone/likes", got)
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.False(t, DefaultRetryIf(errs.New(errs.ErrorTypeConfig, "bad")))
	assert.True(t, DefaultRetryIf(errs.New(errs.ErrorTypeBrowser, "crash")))
	assert.True(t, DefaultRetryIf(errors.New("unknown")))
}
