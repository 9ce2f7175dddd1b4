package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries field-level messages for malformed or
// contradictory input. Handlers serialize Fields verbatim.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

// ConflictError reports a uniqueness violation on the named field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already taken", e.Field)
}

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")

	// ErrInvalidCredentials is intentionally generic: it never reveals
	// whether the email exists, the password was wrong, or the account
	// is inactive.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrResetTokenExpired = errors.New("reset token expired")
)
