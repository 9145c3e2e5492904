package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	cause := errors.New("target closed")

	assert.Equal(t, "browser error: launch: target closed", Wrap(ErrorTypeBrowser, cause, "launch").Error())
	assert.Equal(t, "storage error: target closed", Wrap(ErrorTypeStorage, cause, "").Error())
	assert.Equal(t, "auth error (code 401): no session", (&Error{Type: ErrorTypeAuth, Code: 401, Message: "no session"}).Error())
	assert.Nil(t, Wrap(ErrorTypeBrowser, nil, "launch"))
}

func TestTypeOfThroughWrapping(t *testing.T) {
	base := Wrap(ErrorTypeStorage, errors.New("disk full"), "save progress")
	wrapped := fmt.Errorf("persist: %w", base)

	assert.Equal(t, ErrorTypeStorage, TypeOf(wrapped))
	assert.True(t, Is(wrapped, ErrorTypeStorage))
	assert.False(t, Is(nil, ErrorTypeStorage))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
	assert.ErrorContains(t, errors.Unwrap(base), "disk full")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      bool
	}{
		{ErrorTypeBrowser, true},
		{ErrorTypeRateLimit, true},
		{ErrorTypeStorage, true},
		{ErrorTypeAuth, false},
		{ErrorTypeConfig, false},
		{ErrorTypeAction, false},
		{ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.errorType); got != tt.want {
			t.Errorf("IsRetryable(%s) = %v, want %v", tt.errorType, got, tt.want)
		}
	}
}
