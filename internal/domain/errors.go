package domain

import (
	"errors"
	"fmt"
)

// Domain-specific errors for better error handling and user feedback
var (
	// ErrDomainNotFound is returned when no active domain matches a hostname
	ErrDomainNotFound = errors.New("domain not found")

	// ErrLinkNotFound is returned when a (domain, path) pair doesn't exist
	ErrLinkNotFound = errors.New("link not found")

	// ErrNoTargets is returned when the selector receives an empty list.
	// This is a caller-contract violation, not a runtime condition.
	ErrNoTargets = errors.New("target list is empty")

	// ErrStoreUnavailable is returned when a cache-populating read fails.
	// Distinct from the not-found errors so a transient outage is never
	// rendered as a "link not found" page.
	ErrStoreUnavailable = errors.New("persistent store unavailable")
)

// AppError wraps errors with additional context for better debugging
type AppError struct {
	Err        error  // Original error
	Message    string // User-friendly message
	StatusCode int    // HTTP status code
	Internal   bool   // Whether to log as internal error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps a store failure so callers can match on
// ErrStoreUnavailable while keeping the underlying cause for logs.
func NewStoreError(err error) *AppError {
	return &AppError{
		Err:        fmt.Errorf("%w: %v", ErrStoreUnavailable, err),
		Message:    "temporary backend failure",
		StatusCode: 500,
		Internal:   true,
	}
}

// NewInternalError creates a 500 internal server error
func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "Internal server error occurred",
		StatusCode: 500,
		Internal:   true, // Log this error
	}
}
