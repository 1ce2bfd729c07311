package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the operation addressed a nonexistent id.
	ErrNotFound = errors.New("record not found")
	// ErrUpstreamUnavailable means the persistence backend failed; the
	// caller decides whether to retry, the store never does.
	ErrUpstreamUnavailable = errors.New("storage backend unavailable")
)

// ValidationError reports a missing required field or an unknown field name.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func missingField(name string) *ValidationError {
	return &ValidationError{Field: name, Reason: "is required"}
}

func unknownField(name string) *ValidationError {
	return &ValidationError{Field: name, Reason: "is not a known field"}
}
