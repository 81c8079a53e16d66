package analysis

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/san-kum/miegruneisen/internal/sweep"
	"github.com/san-kum/miegruneisen/internal/thermo"
)

const DefaultStep = 1e-3

// ErrLength indicates a sweep with mismatched columns.
var ErrLength = errors.New("analysis: sweep columns have different lengths")

// FreeEnergyFunc is F(V).
type FreeEnergyFunc func(v float64) (float64, error)

func derivative(f FreeEnergyFunc, v float64, s *fd.Settings) (float64, error) {
	var ferr error
	d := fd.Derivative(func(x float64) float64 {
		y, err := f(x)
		if err != nil && ferr == nil {
			ferr = err
		}
		return y
	}, v, s)
	if ferr != nil {
		return 0, fmt.Errorf("analysis: derivative at V=%g: %w", v, ferr)
	}
	return d, nil
}

// Pressure returns -dF/dV by central difference with the given step.
func Pressure(f FreeEnergyFunc, v, step float64) (float64, error) {
	d, err := derivative(f, v, &fd.Settings{Formula: fd.Central, Step: step})
	return -d, err
}

// BulkModulus returns V·d²F/dV² by central difference with the given step.
func BulkModulus(f FreeEnergyFunc, v, step float64) (float64, error) {
	d, err := derivative(f, v, &fd.Settings{Formula: fd.Central2nd, Step: step})
	return v * d, err
}

// Hugoniot returns 2(E - E₀)/(V₀ - V) + p₀ with index 0 as the reference
// state. The reference point itself is 0/0 and takes its limit p₀.
func Hugoniot(volumes, energies, pressure []float64) ([]float64, error) {
	n := len(volumes)
	if len(energies) != n || len(pressure) != n {
		return nil, ErrLength
	}
	h := make([]float64, n)
	if n == 0 {
		return h, nil
	}
	v0, e0, p0 := volumes[0], energies[0], pressure[0]
	for i := range h {
		if volumes[i] == v0 {
			h[i] = p0
			continue
		}
		h[i] = 2*(energies[i]-e0)/(v0-volumes[i]) + p0
	}
	return h, nil
}

// HugoniotAnalytic returns K·ε / (1 - (1 + γ/2)·ε) element-wise. The curve
// has a pole at ε = 1/(1 + γ/2); a point on the pole is NaN.
func HugoniotAnalytic(bulk, strain []float64, gamma float64) ([]float64, error) {
	if len(bulk) != len(strain) {
		return nil, ErrLength
	}
	h := make([]float64, len(bulk))
	for i := range h {
		denom := 1 - (1+gamma/2)*strain[i]
		if denom == 0 {
			h[i] = math.NaN()
			continue
		}
		h[i] = bulk[i] * strain[i] / denom
		if math.IsInf(h[i], 0) {
			h[i] = math.NaN()
		}
	}
	return h, nil
}

type Curves struct {
	Volumes          []float64
	Pressure         []float64
	BulkModulus      []float64
	Hugoniot         []float64
	HugoniotAnalytic []float64
}

// Compute differentiates eval's free energy at every volume of res and
// builds both Hugoniot curves. eval should be the evaluator that produced
// res.
func Compute(eval thermo.Evaluator, res *sweep.Result, step float64, workers int) (*Curves, error) {
	n := res.Len()
	if len(res.E) != n || len(res.Strains) != n {
		return nil, ErrLength
	}
	if !(step > 0) {
		return nil, fmt.Errorf("analysis: step must be positive, got %g", step)
	}

	c := &Curves{
		Volumes:     res.Volumes,
		Pressure:    make([]float64, n),
		BulkModulus: make([]float64, n),
	}

	var (
		once     sync.Once
		firstErr error
	)
	sweep.ParallelFor(n, workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			p, err := Pressure(eval.FreeEnergy, res.Volumes[i], step)
			if err == nil {
				c.Pressure[i] = p
				c.BulkModulus[i], err = BulkModulus(eval.FreeEnergy, res.Volumes[i], step)
			}
			if err != nil {
				once.Do(func() { firstErr = err })
				return
			}
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}

	var err error
	if c.Hugoniot, err = Hugoniot(res.Volumes, res.E, c.Pressure); err != nil {
		return nil, err
	}
	if c.HugoniotAnalytic, err = HugoniotAnalytic(c.BulkModulus, res.Strains, res.Params.Gamma); err != nil {
		return nil, err
	}
	return c, nil
}
