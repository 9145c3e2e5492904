package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeAction    ErrorType = "action"
	ErrorTypeBrowser   ErrorType = "browser"
	ErrorTypeStorage   ErrorType = "storage"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error carries a type alongside the underlying cause
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		if msg == "" {
			msg = e.Cause.Error()
		} else {
			msg = msg + ": " + e.Cause.Error()
		}
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Type, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a typed error without a cause
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap attaches a type to cause. A nil cause yields nil.
func Wrap(t ErrorType, cause error, message string) error {
	if cause == nil {
		return nil
	}
	return &Error{Type: t, Message: message, Cause: cause}
}

// TypeOf returns the type of the first *Error in err's chain
func TypeOf(err error) ErrorType {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given type
func Is(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeBrowser, ErrorTypeRateLimit, ErrorTypeStorage:
		return true
	case ErrorTypeAuth, ErrorTypeConfig, ErrorTypeAction:
		return false
	default:
		return false
	}
}
