package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every input validation failure
	ErrValidation = errors.New("validation failed")
	// ErrNonPositiveDuration matches zero or negative chord/rhythm durations
	ErrNonPositiveDuration = errors.New("non-positive duration")
)

// ValidationError identifies the offending input field
type ValidationError struct {
	Field  string
	Reason string
	kind   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrValidation and the more specific kind
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || (e.kind != nil && target == e.kind)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func nonPositive(field string, value float64) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf("duration must be positive, got %g", value),
		kind:   ErrNonPositiveDuration,
	}
}
