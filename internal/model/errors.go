package model

import (
	"errors"
	"fmt"
)

// Domain errors for model parameters.
var (
	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("model: parameter out of valid bounds")

	// ErrNonPositiveVolume indicates a volume outside (0, +Inf).
	ErrNonPositiveVolume = errors.New("model: volume must be positive and finite")
)

// ParamError names the offending parameter.
type ParamError struct {
	Name    string
	Value   float64
	Wrapped error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%v: %s=%g", e.Wrapped, e.Name, e.Value)
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}
