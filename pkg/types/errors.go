package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by the resolver, registry and object
// store wraps exactly one of these.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStoreFault = errors.New("store fault")
)

// Auth gate errors.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTierTooLow      = errors.New("account tier too low")
)

// ValidationError describes a structural payload failure. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Field  string // Offending field path; empty for whole-payload failures.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid returns a *ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFound wraps ErrNotFound with the entity kind and the key that missed.
func NotFound(kind, key string) error {
	return fmt.Errorf("%s %q %w", kind, key, ErrNotFound)
}

// Conflict wraps ErrConflict with the entity kind and the taken handle.
func Conflict(kind, handle string) error {
	return fmt.Errorf("%s handle %q is already taken: %w", kind, handle, ErrConflict)
}

// Kind returns the error kind err wraps, or ErrStoreFault when err wraps
// none of the known kinds. Kind(nil) is nil.
func Kind(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation):
		return ErrValidation
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrConflict):
		return ErrConflict
	case errors.Is(err, ErrUnauthenticated):
		return ErrUnauthenticated
	case errors.Is(err, ErrTierTooLow):
		return ErrTierTooLow
	default:
		return ErrStoreFault
	}
}
