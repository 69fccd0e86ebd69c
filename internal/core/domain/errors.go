package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel kinds. Match with errors.Is.
var (
	ErrAuth        = errors.New("unauthorized")
	ErrValidation  = errors.New("invalid command")
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
	ErrUnavailable = errors.New("service unavailable")
	ErrUnknown     = errors.New("request failed")
)

// APIError is a classified failure of a remote command operation.
type APIError struct {
	Kind       error
	Status     int
	Code       int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	msg := e.Kind.Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	switch {
	case e.Message != "":
		msg += ": " + e.Message
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %v", e.RetryAfter)
	}
	return msg
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Retryable reports whether the same request may succeed after waiting.
func (e *APIError) Retryable() bool {
	return e.Kind == ErrRateLimited || e.Kind == ErrUnavailable
}

// NewValidationError builds a local validation failure; no request was sent.
func NewValidationError(format string, args ...any) *APIError {
	return &APIError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError builds a local lookup failure, e.g. no command with a given name.
func NewNotFoundError(format string, args ...any) *APIError {
	return &APIError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns a short label for err, suitable for logs and metrics.
func KindOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
