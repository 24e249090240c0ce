package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrAmbiguousTarget = errors.New("ambiguous target")
)

// ValidationError reports out-of-domain input for a named field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports a master-data code that already exists for a kind
// that does not allow duplicates.
type ConflictError struct {
	Kind RowKind
	Code string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("master data %s %q already exists", e.Kind, e.Code)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// AmbiguousTargetError reports an update or delete on a duplicate-permitting
// kind that matched several entries and carried no description to pick one.
type AmbiguousTargetError struct {
	Kind    RowKind
	Code    string
	Matches int
}

func (e *AmbiguousTargetError) Error() string {
	return fmt.Sprintf("master data %s %q matches %d entries; a description is required", e.Kind, e.Code, e.Matches)
}

func (e *AmbiguousTargetError) Unwrap() error { return ErrAmbiguousTarget }
