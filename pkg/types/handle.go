package types

import "regexp"

// MaxHandleLength bounds every handle.
const MaxHandleLength = 128

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateHandle checks that handle is a well-formed handle. Handles are
// compared as exact, case-sensitive strings, so no normalization happens
// here.
func ValidateHandle(field, handle string) error {
	if handle == "" {
		return Invalid(field, "is required")
	}
	if len(handle) > MaxHandleLength {
		return Invalid(field, "must be at most %d characters", MaxHandleLength)
	}
	if !handlePattern.MatchString(handle) {
		return Invalid(field, "may contain only letters, digits, '.', '_' and '-'")
	}
	return nil
}
