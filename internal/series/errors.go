package series

import (
	"errors"
	"fmt"
)

var (
	// ErrDiverged indicates the series did not converge.
	ErrDiverged = errors.New("series: series does not converge")

	// ErrOptions indicates invalid engine options.
	ErrOptions = errors.New("series: invalid options")
)

// DivergenceError records where summation gave up.
type DivergenceError struct {
	Terms  int64
	Reason string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%v after %d terms: %s", ErrDiverged, e.Terms, e.Reason)
}

func (e *DivergenceError) Unwrap() error {
	return ErrDiverged
}
