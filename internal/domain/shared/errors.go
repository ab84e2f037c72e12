// Package shared contains common domain types, errors, and events used across
// all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyValue   = errors.New("value cannot be empty")
	ErrInvalidFormat = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
	ErrRejected           = errors.New("request rejected")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "session", "srs", "grading"
	Op      string // Operation that failed, e.g., "Submit", "Rate"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

// Session domain errors
var (
	ErrSessionNotFound    = NewDomainError("session", "Find", ErrNotFound, "session not found")
	ErrNoItems            = NewDomainError("session", "Start", ErrInvalidInput, "item list is empty")
	ErrSessionNotStarted  = NewDomainError("session", "CheckStatus", ErrInvalidState, "session has not started")
	ErrSessionCompleted   = NewDomainError("session", "CheckStatus", ErrInvalidState, "session already completed")
	ErrSessionPaused      = NewDomainError("session", "Submit", ErrInvalidState, "session is paused")
	ErrNotPresenting      = NewDomainError("session", "Submit", ErrStateTransition, "no item is being presented")
	ErrNotInFeedback      = NewDomainError("session", "Advance", ErrStateTransition, "no feedback to advance from")
	ErrNotPausable        = NewDomainError("session", "Pause", ErrStateTransition, "session cannot be paused now")
	ErrNotPaused          = NewDomainError("session", "Resume", ErrInvalidState, "session is not paused")
	ErrEmptyAnswer        = NewDomainError("session", "Validate", ErrEmptyValue, "answer cannot be empty")
	ErrMalformedAnswer    = NewDomainError("session", "Validate", ErrInvalidFormat, "answer format does not match item type")
	ErrGradingUnsupported = NewDomainError("session", "Submit", ErrInvalidInput, "session has no grading capability")
	ErrRatingUnsupported  = NewDomainError("session", "Rate", ErrInvalidInput, "session has no self-rating capability")
)

// Spaced-repetition domain errors
var (
	ErrInvalidRating = NewDomainError("srs", "Rate", ErrInvalidInput, "invalid rating")
)

// Grading errors. Transient failures may be retried; permanent ones must not.
var (
	ErrGraderUnavailable = NewDomainError("grading", "Submit", ErrServiceUnavailable, "grading service unavailable")
	ErrGraderTimeout     = NewDomainError("grading", "Submit", ErrTimeout, "grading request timed out")
	ErrGraderRejected    = NewDomainError("grading", "Submit", ErrRejected, "grading service rejected the answer")
)

// Persistence errors. Always non-fatal for the engine: the in-memory state
// remains the source of truth for the rest of the session.
var (
	ErrSessionStoreFailed = NewDomainError("persistence", "Session", ErrExternalService, "session store operation failed")
	ErrCardStoreFailed    = NewDomainError("persistence", "ReviewCard", ErrExternalService, "review card store operation failed")
)

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsSessionState checks if the error is an operation-invalid-for-state error.
func IsSessionState(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrStateTransition)
}

// IsTransientGrading checks if the error is a retryable grading failure.
func IsTransientGrading(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsPermanentGrading checks if the error is a non-retryable grading failure.
func IsPermanentGrading(err error) bool {
	return errors.Is(err, ErrRejected)
}
