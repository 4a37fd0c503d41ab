// Package errors provides standardized error handling for the submission pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodePersistenceError ErrorCode = "PERSISTENCE_ERROR"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"

	ErrCodeForwardFailed  ErrorCode = "FORWARD_FAILED"
	ErrCodeFallbackFailed ErrorCode = "FALLBACK_FAILED"

	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
	ErrCodeGeoIPUnavailable ErrorCode = "GEOIP_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewPersistenceError creates a retryable store write/read error.
func NewPersistenceError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceError,
		Message:   "Submission store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable lookup error.
func NewNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   "Support request not found",
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewForwardFailedError creates a forward delivery error. The failure is an
// operational concern; it never propagates to the submitting caller.
func NewForwardFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeForwardFailed,
		Message:   "Help Scout conversation delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFallbackFailedError creates a terminal fallback delivery error.
func NewFallbackFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFallbackFailed,
		Message:   "Internal alert conversation delivery failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
