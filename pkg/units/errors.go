package units

import (
	"errors"
	"fmt"
)

// Sentinel errors for unit and value literals.
var (
	ErrUnitParse  = errors.New("unit parse error")
	ErrValueParse = errors.New("value parse error")
)

// UnitError describes a literal that could not be interpreted.
type UnitError struct {
	Kind   error  // ErrUnitParse or ErrValueParse
	Input  string // The offending literal
	Reason string // Human-readable reason
	Cause  error  // Underlying error, if any
}

// Error implements the error interface.
func (e *UnitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %q: %s: %v", e.Kind, e.Input, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%v: %q: %s", e.Kind, e.Input, e.Reason)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *UnitError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func unitParseError(input, reason string) error {
	return &UnitError{Kind: ErrUnitParse, Input: input, Reason: reason}
}

func valueParseError(input, reason string, cause error) error {
	return &UnitError{Kind: ErrValueParse, Input: input, Reason: reason, Cause: cause}
}
