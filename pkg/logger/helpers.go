package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// LogAction logs the outcome of one unlike attempt
func LogAction(l Logger, label string, total int, err error) {
	fields := map[string]interface{}{
		"label": label,
		"total": total,
	}
	if err != nil {
		l.WithError(err).WarnWithFields("Unlike failed", fields)
		return
	}
	l.InfoWithFields(fmt.Sprintf("Unliked %d posts", total), fields)
}

// LogBatch logs the end of one queried batch
func LogBatch(l Logger, size, attempted, failures int, abandoned bool) {
	l.WithFields(map[string]interface{}{
		"size":      size,
		"attempted": attempted,
		"failures":  failures,
		"abandoned": abandoned,
	}).Debug("Batch finished")
}

// LogRateLimit logs rate limiting events
func LogRateLimit(l Logger, performed int, wait time.Duration) {
	l.WithFields(map[string]interface{}{
		"performed": performed,
		"wait":      wait,
		"action":    "rate_limited",
	}).Warn(fmt.Sprintf("Rate limit reached, waiting %.0f seconds", wait.Seconds()))
}

// LogComponentStart logs when a component starts
func LogComponentStart(component string, config map[string]interface{}) {
	logger := GetLogger().WithField("component", component)
	if len(config) > 0 {
		logger = logger.WithFields(config)
	}
	logger.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(component string, reason string) {
	GetLogger().WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
