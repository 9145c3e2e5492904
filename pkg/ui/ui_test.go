package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"unliker/pkg/config"
	"unliker/pkg/unlike"
)

func init() {
	SetColor(false)
}

func TestBar(t *testing.T) {
	tests := []struct {
		current, max, width int
		want                string
	}{
		{0, 10, 4, "░░░░"},
		{5, 10, 4, "██░░"},
		{10, 10, 4, "████"},
		{25, 10, 4, "████"},
		{3, 0, 4, "░░░░"},
		{1, 1, 0, ""},
	}

	for _, tt := range tests {
		if got := Bar(tt.current, tt.max, tt.width); got != tt.want {
			t.Errorf("Bar(%d, %d, %d) = %q, want %q", tt.current, tt.max, tt.width, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "3m5s", FormatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "2h10m", FormatDuration(2*time.Hour+10*time.Minute))
}

func TestRate(t *testing.T) {
	assert.Zero(t, Rate(10, 0))
	assert.InDelta(t, 30.0, Rate(15, 30*time.Second), 0.001)
}

func TestFit(t *testing.T) {
	assert.Equal(t, "hello world", Fit("hello\n  world", 20))
	assert.Equal(t, "abcd…", Fit("abcdefgh", 5))
	// each CJK rune is two columns wide
	assert.Equal(t, "日本…", Fit("日本語テキスト", 5))
}

func TestProgressDisplayDebugLines(t *testing.T) {
	var buf bytes.Buffer
	d := NewProgressDisplayWithWriter(&buf, 2500, true)

	d.Progress(unlike.Status{Total: 10, Elapsed: time.Minute, Delay: 100 * time.Millisecond})
	d.Failure(unlike.Status{Total: 10, Failures: 1, LastError: "node is detached"}, errors.New("node is detached"))

	out := buf.String()
	assert.Contains(t, out, "Unliked 10 posts")
	assert.Contains(t, out, "10/2500")
	assert.Contains(t, out, "10.0/min")
	assert.Contains(t, out, "Error: node is detached")
	assert.NotContains(t, out, "\r")
}

func TestProgressDisplayRedrawsInPlace(t *testing.T) {
	var buf bytes.Buffer
	d := NewProgressDisplayWithWriter(&buf, 100, false)

	d.Progress(unlike.Status{Total: 1})
	d.Progress(unlike.Status{Total: 2})
	assert.Equal(t, 0, strings.Count(buf.String(), "\n"))

	d.Failure(unlike.Status{Total: 2, LastError: "boom"}, errors.New("boom"))
	assert.True(t, strings.HasSuffix(buf.String(), "Error: boom\n"))
}

func TestProgressDisplayRateLimited(t *testing.T) {
	var buf bytes.Buffer
	d := NewProgressDisplayWithWriter(&buf, 100, false)

	d.Progress(unlike.Status{Total: 50})
	d.RateLimited(unlike.Status{Total: 50}, 59900*time.Millisecond)

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "Rate limit reached, waiting 60 seconds\n"))
	// the in-place progress line is closed before the notice
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestProgressDisplayFinished(t *testing.T) {
	var buf bytes.Buffer
	d := NewProgressDisplayWithWriter(&buf, 100, true)

	d.Finished(unlike.Summary{
		Total:     120,
		Performed: 20,
		Failures:  2,
		Elapsed:   1500 * time.Millisecond,
		Reason:    unlike.ReasonExhausted,
	})

	out := buf.String()
	assert.Contains(t, out, "Unliked 120 posts (20 this run)")
	assert.Contains(t, out, "after 1.50 seconds")
	assert.Contains(t, out, "2 unlikes failed")
	assert.Contains(t, out, "No more liked posts")
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	PrintProgress(&buf, []ProgressRecord{
		{Backend: "file", Location: "/tmp/progress.json", Key: "unlikeCount", Value: "42"},
		{Backend: "memory", Key: "unlikeCount"},
	})

	out := buf.String()
	assert.Contains(t, out, "unlikeCount")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "/tmp/progress.json")
}

type recordingSender struct {
	titles []string
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	return nil
}

func TestNotificationReporter(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.NotificationConfig
		reason unlike.Reason
		want   []string
	}{
		{"complete", config.NotificationConfig{Enabled: true, OnComplete: true}, unlike.ReasonExhausted, []string{"Unliker finished"}},
		{"disabled", config.NotificationConfig{Enabled: false, OnComplete: true}, unlike.ReasonExhausted, nil},
		{"error off", config.NotificationConfig{Enabled: true, OnComplete: true}, unlike.ReasonError, nil},
		{"error on", config.NotificationConfig{Enabled: true, OnError: true}, unlike.ReasonError, []string{"Unliker failed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			var buf bytes.Buffer
			r := NewNotificationReporter(NewNotifierWithSender(sender, &buf), tt.cfg)

			r.Finished(unlike.Summary{Total: 5, Reason: tt.reason})

			assert.Equal(t, tt.want, sender.titles)
		})
	}
}

func TestEscapeAppleScript(t *testing.T) {
	assert.Equal(t, `say \"hi\" \\ bye`, escapeAppleScript(`say "hi" \ bye`))
}
