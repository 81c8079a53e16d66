package sweep

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/miegruneisen/internal/model"
)

var (
	// ErrInvalidSample indicates a non-finite quantity at some volume.
	ErrInvalidSample = errors.New("sweep: invalid sample (NaN or Inf detected)")

	// ErrConfig indicates an invalid sweep configuration.
	ErrConfig = errors.New("sweep: invalid configuration")
)

// SampleError wraps an error with the sample it occurred at.
type SampleError struct {
	Index   int
	Volume  float64
	Wrapped error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("sample %d (V=%.6g): %v", e.Index, e.Volume, e.Wrapped)
}

func (e *SampleError) Unwrap() error {
	return e.Wrapped
}

type Config struct {
	// Workers is the number of goroutines; 1 evaluates sequentially.
	Workers int
	// ValidateSamples rejects non-finite quantities.
	ValidateSamples bool
}

func DefaultConfig() Config {
	return Config{
		Workers:         4,
		ValidateSamples: true,
	}
}

func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrConfig, c.Workers)
	}
	return nil
}

// Result holds index-aligned quantities over the volume sweep.
type Result struct {
	Method  string
	Params  model.Params
	Volumes []float64
	Strains []float64
	Z       []float64
	E       []float64
	F       []float64
	Terms   int64
	Elapsed time.Duration
}

func (r *Result) Len() int { return len(r.Volumes) }

func (r *Result) IsValid() bool {
	for _, col := range [][]float64{r.Z, r.E, r.F} {
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Sample is one evaluated volume, as reported to observers.
type Sample struct {
	Index  int
	Volume float64
	Z      float64
	E      float64
	F      float64
}

// Observer is notified once per evaluated volume. Calls are serialised
// but arrive in completion order, not index order.
type Observer interface {
	OnSample(s Sample, total int)
}
