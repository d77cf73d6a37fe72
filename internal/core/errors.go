// Package core holds cross-cutting error types shared by the domain,
// storage and HTTP layers. Absent entities are signaled by nil results,
// not by errors; the types here cover the remaining failure classes.
package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors. Wrapping types below unwrap to these so callers
// can classify with errors.Is without knowing the concrete type.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
)

// ValidationError reports a malformed field value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RequiredError reports a missing required field.
func RequiredError(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

// IsValidationError reports whether err is (or wraps) a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// ConflictError reports a uniqueness violation (duplicate username, email,
// favorite pair, and so on).
type ConflictError struct {
	Resource string
	Key      string
	Reason   string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %q: %s", e.Resource, e.Key, e.Reason)
	}
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Key)
}

func (e *ConflictError) Unwrap() error { return ErrAlreadyExists }

// NewConflictError builds a ConflictError.
func NewConflictError(resource, key, reason string) error {
	return &ConflictError{Resource: resource, Key: key, Reason: reason}
}

// IsConflict reports whether err is (or wraps) a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
