package main

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unliker/pkg/auth"
	"unliker/pkg/config"
	"unliker/pkg/logger"
	"unliker/pkg/ui"
	"unliker/pkg/unlike"
)

type recordingReporter struct {
	progress int
	failures int
	pauses   int
	finished []unlike.Summary
}

func (r *recordingReporter) Progress(unlike.Status)                   { r.progress++ }
func (r *recordingReporter) Failure(unlike.Status, error)             { r.failures++ }
func (r *recordingReporter) RateLimited(unlike.Status, time.Duration) { r.pauses++ }
func (r *recordingReporter) Finished(sum unlike.Summary)              { r.finished = append(r.finished, sum) }

func TestApplyAccount(t *testing.T) {
	cfg := config.DefaultConfig()
	applyAccount(cfg, &auth.Account{Username: "alice", AuthToken: "tok", CSRFToken: "ct0", UserAgent: "UA/1"})

	assert.Equal(t, "alice", cfg.Session.Username)
	assert.Equal(t, "tok", cfg.Session.AuthToken)
	assert.Equal(t, "ct0", cfg.Session.CSRFToken)
	assert.Equal(t, "UA/1", cfg.Session.UserAgent)
	assert.Equal(t, "https://x.com/alice/likes", cfg.StartURL())

	cfg = config.DefaultConfig()
	cfg.Session.Username = "bob"
	ua := cfg.Session.UserAgent
	applyAccount(cfg, &auth.Account{Username: "default", AuthToken: "tok"})
	assert.Equal(t, "bob", cfg.Session.Username)
	assert.Equal(t, ua, cfg.Session.UserAgent)
}

func TestResolveSessionPrefersConfiguredToken(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Session.AuthToken = "from-config"
	log := logger.NewTestLogger()

	require.NoError(t, resolveSession(cfg, "", log))
	assert.Equal(t, "from-config", cfg.Session.AuthToken)
	assert.True(t, log.HasMessage("Using session from configuration"))
}

func TestBrowserOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Session.AuthToken = "tok"
	cfg.Session.CSRFToken = "csrf"
	cfg.Browser.Headless = false
	cfg.Browser.CookiesFile = "/tmp/jar.json"

	opts := browserOptions(cfg)
	assert.False(t, opts.Headless)
	assert.Equal(t, "/tmp/jar.json", opts.CookiesFile)
	assert.Equal(t, cfg.Selectors.Unlike, opts.Selectors.Unlike)
	assert.Equal(t, 60*time.Second, opts.NavigationTimeout)
	require.Len(t, opts.Cookies, 2)
	assert.Equal(t, "auth_token", opts.Cookies[0].Name)
}

func TestScreenshotDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cfg := config.DefaultConfig()

	dir, err := screenshotDir(cfg)
	require.NoError(t, err)
	assert.Contains(t, dir, "screenshots")

	cfg.Browser.ScreenshotDir = "/var/shots"
	dir, err = screenshotDir(cfg)
	require.NoError(t, err)
	assert.Equal(t, "/var/shots", dir)
}

func TestNotificationReporter(t *testing.T) {
	cfg := config.DefaultConfig()

	cfg.Notifications.NotificationType = "none"
	assert.Nil(t, notificationReporter(cfg, nil))

	cfg.Notifications.NotificationType = "terminal"
	r := notificationReporter(cfg, nil)
	_, ok := r.(*ui.NotificationReporter)
	assert.True(t, ok)
}

func TestReporterSlot(t *testing.T) {
	slot := &reporterSlot{}
	slot.Progress(unlike.Status{})

	rec := &recordingReporter{}
	slot.set(rec)
	slot.Progress(unlike.Status{})
	slot.Failure(unlike.Status{}, assert.AnError)
	slot.RateLimited(unlike.Status{}, time.Minute)
	slot.Finished(unlike.Summary{Total: 4})

	assert.Equal(t, 1, rec.progress)
	assert.Equal(t, 1, rec.failures)
	assert.Equal(t, 1, rec.pauses)
	require.Len(t, rec.finished, 1)
	assert.Equal(t, 4, rec.finished[0].Total)

	slot.set(nil)
	slot.Progress(unlike.Status{})
	assert.Equal(t, 1, rec.progress)
}

func TestMaskedConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Session.AuthToken = "0123456789abcdef"
	cfg.Progress.PostgresDSN = "postgres://user:pw@db/unliker"

	masked := maskedConfig(cfg)
	assert.Equal(t, "0123********cdef", masked.Session.AuthToken)
	assert.Equal(t, "***", masked.Progress.PostgresDSN)
	assert.Equal(t, "0123456789abcdef", cfg.Session.AuthToken)
}

func TestLooksLikeHex(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0123456789abcdef0123456789abcdef", true},
		{"0123456789ABCDEF0123456789abcdef01", true},
		{"short", false},
		{"0123456789abcdef0123456789abcdeg", false},
	}
	for _, tt := range tests {
		if got := looksLikeHex(tt.in, 32); got != tt.want {
			t.Errorf("looksLikeHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExampleConfigLoads(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	cfg := config.DefaultConfig()
	require.NoError(t, os.WriteFile(path, []byte(exampleConfig), 0600))
	require.NoError(t, cfg.LoadFromFile(path))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, config.DefaultConfig().Unlike, cfg.Unlike)
	assert.Equal(t, config.DefaultConfig().RateLimit, cfg.RateLimit)
	assert.Equal(t, config.DefaultConfig().Selectors, cfg.Selectors)
}
