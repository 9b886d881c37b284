package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLinkNotFound covers both unknown and deactivated codes. The redirect
	// path must not reveal which of the two happened.
	ErrLinkNotFound = errors.New("link not found")

	// ErrAllocationExhausted means the generator ran out of retry attempts.
	// Treat as a capacity signal: the code space is too full for the
	// configured length.
	ErrAllocationExhausted = errors.New("short code allocation exhausted")
)

// ValidationError rejects a shorten request synchronously. Never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AliasConflictError means the requested custom alias is already taken or
// reserved. First committer wins on concurrent identical requests.
type AliasConflictError struct {
	Alias string
}

func (e *AliasConflictError) Error() string {
	return fmt.Sprintf("alias %q is already taken", e.Alias)
}
