// Package shared contains common domain types and errors that are used
// across all domain packages. This package has zero external dependencies.
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
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState = errors.New("invalid state")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "contest", "leetcode"
	Op      string // Operation that failed, e.g., "Sync", "Filter"
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
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Contest domain errors
var (
	// ErrUserNotFound is returned when a user has no contest history even
	// after a synchronization attempt, or no ranked contests for the
	// best-ranking lookup.
	ErrUserNotFound = NewDomainError("contest", "Find", ErrNotFound, "user not found")

	// ErrNoMatchingContest is returned when a strict filter matches nothing.
	ErrNoMatchingContest = NewDomainError("contest", "Filter", ErrNotFound, "no contest matched the given criteria")

	// ErrInvalidTrendDirection is returned for trend values other than UP, DOWN or NONE.
	ErrInvalidTrendDirection = NewDomainError("contest", "Filter", ErrInvalidInput, "trend direction must be UP, DOWN or NONE")

	// ErrUnknownFilterKind is returned when a filter request names an
	// unsupported criterion.
	ErrUnknownFilterKind = NewDomainError("contest", "Filter", ErrInvalidInput, "unknown filter criterion")

	// ErrInvalidDurationFormat is returned when a contest duration string
	// cannot be parsed.
	ErrInvalidDurationFormat = NewDomainError("contest", "ParseDuration", ErrInvalidFormat, "invalid duration format")

	ErrInvalidUsername = NewDomainError("contest", "Validate", ErrEmptyValue, "username cannot be empty")
	ErrInvalidPage     = NewDomainError("contest", "Validate", ErrValueOutOfRange, "page number must be positive")
)

// External service errors
var (
	ErrLeetCodeUnavailable     = NewDomainError("leetcode", "Request", ErrServiceUnavailable, "LeetCode API is unavailable")
	ErrLeetCodeRateLimited     = NewDomainError("leetcode", "Request", ErrRateLimited, "LeetCode API rate limit exceeded")
	ErrLeetCodeTimeout         = NewDomainError("leetcode", "Request", ErrTimeout, "LeetCode API request timeout")
	ErrLeetCodeInvalidResponse = NewDomainError("leetcode", "Parse", ErrInvalidFormat, "invalid response from LeetCode API")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
