package models

import (
	"errors"
	"fmt"
)

// ValidationError represents rejected input. It never reaches the store.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

// NewValidationError is shorthand for a field-level validation failure
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	// ErrNotImplemented marks placeholder endpoints
	ErrNotImplemented = errors.New("not implemented")

	// ErrFeedbackUnavailable is returned when feedback is disabled or has no issue tracker configured
	ErrFeedbackUnavailable = errors.New("feedback integration is not configured")
)

// RateLimitError reports a rejected submission and when the caller may retry
type RateLimitError struct {
	Window     string
	Limit      int
	RetryAfter int // seconds
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d submissions per %s", e.Limit, e.Window)
}
