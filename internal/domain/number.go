package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a form field into a finite float64.
// Empty, non-numeric, NaN and infinite values fail with a ValidationError.
func ParseNumber(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &ValidationError{Field: field, Reason: "value is required"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ValidationError{Field: field, Value: raw, Reason: "not a number"}
	}
	if !IsFinite(v) {
		return 0, &ValidationError{Field: field, Value: raw, Reason: "not a finite number"}
	}
	return v, nil
}

// ParseOptionalNumber parses a field that may be left blank.
// ok is false when the field is blank.
func ParseOptionalNumber(field, raw string) (v float64, ok bool, err error) {
	if strings.TrimSpace(raw) == "" {
		return 0, false, nil
	}
	v, err = ParseNumber(field, raw)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// RequireFinite returns a ValidationError when v is NaN or infinite.
func RequireFinite(field string, v float64) error {
	if !IsFinite(v) {
		return NewValidationError(field, v, "not a finite number")
	}
	return nil
}
