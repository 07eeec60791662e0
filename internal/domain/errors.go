package domain

import (
	"errors"
	"fmt"
)

// Engine errors. Callers classify failures with errors.Is.
var (
	// ErrValidation is returned for non-numeric or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an index or id refers to no record.
	ErrNotFound = errors.New("not found")

	// ErrDivergentPlan is returned when a recovery sequence cannot converge.
	ErrDivergentPlan = errors.New("recovery plan does not converge")

	// ErrOutcomeLocked is returned when a resolved bet is re-marked with a different outcome.
	ErrOutcomeLocked = fmt.Errorf("%w: outcome already recorded", ErrValidation)
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError for a numeric field.
func NewValidationError(field string, value float64, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: fmt.Sprint(value), Reason: reason}
}

// NotFoundError wraps ErrNotFound with the missing reference.
func NotFoundError(kind string, ref any) error {
	return fmt.Errorf("%s %v: %w", kind, ref, ErrNotFound)
}
