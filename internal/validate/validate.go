package validate

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/miegruneisen/internal/sweep"
	"github.com/san-kum/miegruneisen/internal/thermo"
)

const DefaultDecimal = 10

var (
	// ErrMismatch indicates at least one check exceeded its tolerance.
	ErrMismatch = errors.New("validate: values disagree beyond tolerance")

	// ErrLength indicates arrays of different lengths were compared.
	ErrLength = errors.New("validate: array lengths differ")
)

// Tolerance returns the absolute bound for a comparison to decimal places.
func Tolerance(decimal int) float64 {
	return 1.5 * math.Pow(10, -float64(decimal))
}

// AlmostEqual reports whether actual and desired agree to decimal places.
// NaN matches only NaN.
func AlmostEqual(actual, desired float64, decimal int) bool {
	if math.IsNaN(actual) || math.IsNaN(desired) {
		return math.IsNaN(actual) && math.IsNaN(desired)
	}
	if math.IsInf(actual, 0) || math.IsInf(desired, 0) {
		return actual == desired
	}
	return math.Abs(desired-actual) < Tolerance(decimal)
}

type Mismatch struct {
	Index   int
	Volume  float64
	Actual  float64
	Desired float64
	Diff    float64
}

type Check struct {
	Name       string
	Decimal    int
	Compared   int
	MaxAbsDiff float64
	Mismatches []Mismatch
}

func (c Check) OK() bool { return len(c.Mismatches) == 0 }

// Compare checks actual against desired element-wise.
func Compare(name string, volumes, actual, desired []float64, decimal int) (Check, error) {
	if !floats.EqualLengths(volumes, actual, desired) {
		return Check{}, fmt.Errorf("%w: %s: %d volumes, %d actual, %d desired",
			ErrLength, name, len(volumes), len(actual), len(desired))
	}

	c := Check{Name: name, Decimal: decimal, Compared: len(actual)}
	for i := range actual {
		diff := math.Abs(desired[i] - actual[i])
		if !math.IsNaN(diff) {
			c.MaxAbsDiff = math.Max(c.MaxAbsDiff, diff)
		}
		if AlmostEqual(actual[i], desired[i], decimal) {
			continue
		}
		c.Mismatches = append(c.Mismatches, Mismatch{
			Index:   i,
			Volume:  volumes[i],
			Actual:  actual[i],
			Desired: desired[i],
			Diff:    diff,
		})
	}
	return c, nil
}

type Report struct {
	Method  string
	Decimal int
	Checks  []Check
}

func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if !c.OK() {
			return false
		}
	}
	return true
}

// Err returns nil when every check passed.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	failed := make([]string, 0, len(r.Checks))
	for _, c := range r.Checks {
		if !c.OK() {
			failed = append(failed, fmt.Sprintf("%s (%d/%d, max diff %.3g)", c.Name, len(c.Mismatches), c.Compared, c.MaxAbsDiff))
		}
	}
	return &MismatchError{Decimal: r.Decimal, Failed: failed}
}

type MismatchError struct {
	Decimal int
	Failed  []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v to %d decimals: %s", ErrMismatch, e.Decimal, strings.Join(e.Failed, "; "))
}

func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}

// Expected holds the closed-form arrays over a sweep's volumes.
type Expected struct {
	Z    []float64
	E    []float64
	EExp []float64
	F    []float64
}

func ExpectedFor(an *thermo.Analytic, volumes []float64) (*Expected, error) {
	n := len(volumes)
	exp := &Expected{
		Z:    make([]float64, n),
		E:    make([]float64, n),
		EExp: make([]float64, n),
		F:    make([]float64, n),
	}
	for i, v := range volumes {
		var err error
		if exp.Z[i], err = an.PartitionFunction(v); err != nil {
			return nil, err
		}
		if exp.E[i], err = an.InternalEnergy(v); err != nil {
			return nil, err
		}
		if exp.EExp[i], err = an.InternalEnergyExp(v); err != nil {
			return nil, err
		}
		if exp.F[i], err = an.FreeEnergy(v); err != nil {
			return nil, err
		}
	}
	return exp, nil
}

// Run compares a sweep against the closed forms for the same parameters.
func Run(res *sweep.Result, decimal int) (*Report, error) {
	an, err := thermo.NewAnalytic(res.Params)
	if err != nil {
		return nil, err
	}
	exp, err := ExpectedFor(an, res.Volumes)
	if err != nil {
		return nil, err
	}

	report := &Report{Method: res.Method, Decimal: decimal}
	pairs := []struct {
		name            string
		actual, desired []float64
	}{
		{"partition_function", res.Z, exp.Z},
		{"internal_energy", res.E, exp.E},
		{"internal_energy_forms", exp.E, exp.EExp},
		{"free_energy", res.F, exp.F},
	}
	for _, p := range pairs {
		c, err := Compare(p.name, res.Volumes, p.actual, p.desired, decimal)
		if err != nil {
			return nil, err
		}
		report.Checks = append(report.Checks, c)
	}
	return report, nil
}
