package logger

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"unliker/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel)
	return &zerologLogger{logger: &zlog, fields: make(map[string]interface{})}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"invalid level", &config.LoggingConfig{Level: "invalid"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "unliker.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && l == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNewWithWriterDiscardStillWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unliker.log")

	l, err := NewWithWriter(&config.LoggingConfig{Level: "info", File: path}, io.Discard)
	require.NoError(t, err)

	l.WithField("total", 3).Info("Unliked 3 posts")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Unliked 3 posts")
	assert.Contains(t, string(data), `"total":3`)
	assert.Contains(t, string(data), `"app":"unliker"`)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.WithField("driver", "rod").
		WithFields(map[string]interface{}{"total": 4, "delay": 300 * time.Millisecond}).
		WithError(errors.New("element detached")).
		Warn("Unlike failed")

	out := buf.String()
	assert.Contains(t, out, "Unlike failed")
	assert.Contains(t, out, `"driver":"rod"`)
	assert.Contains(t, out, `"total":4`)
	assert.Contains(t, out, `"error":"element detached"`)
}

func TestWithErrorNil(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	if l.WithError(nil) != Logger(l) {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	child := l.WithField("batch", 1)
	child.Info("child")
	l.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"batch":1`)
	assert.NotContains(t, lines[1], "batch")
}

func TestHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogAction(tl, "hello world", 7, nil)
	LogAction(tl, "broken", 7, errors.New("detached"))
	LogRateLimit(tl, 50, 12*time.Second)
	LogBatch(tl, 5, 4, 3, true)

	assert.True(t, tl.HasMessage("Unliked 7 posts"))
	warns := tl.GetMessagesByLevel("WARN")
	require.Len(t, warns, 2)
	assert.Equal(t, "Unlike failed", warns[0].Message)
	assert.EqualError(t, warns[0].Error, "detached")
	assert.Equal(t, "Rate limit reached, waiting 12 seconds", warns[1].Message)

	debug := tl.GetMessagesByLevel("DEBUG")
	require.Len(t, debug, 1)
	assert.Equal(t, true, debug[0].Fields["abandoned"])
}

func TestGlobalLogger(t *testing.T) {
	tl := NewTestLogger()
	SetLogger(tl)
	t.Cleanup(func() { SetLogger(NewNopLogger()) })

	Info("info message")
	WithField("key", "value").Warn("with field")
	WithError(errors.New("boom")).Error("with error")

	assert.Len(t, tl.GetMessages(), 3)
	assert.Same(t, tl, GetLogger())
}
