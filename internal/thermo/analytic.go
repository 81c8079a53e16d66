package thermo

import (
	"math"

	"github.com/san-kum/miegruneisen/internal/model"
)

// Analytic evaluates the closed-form results for a single quantum
// oscillator. Differences against exp(x) are taken with Expm1 so small
// β·hν keeps its digits.
type Analytic struct {
	params model.Params
}

func NewAnalytic(p model.Params) (*Analytic, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Analytic{params: p}, nil
}

func (a *Analytic) Name() string { return "analytic" }

// PartitionFunction returns [2 sinh(β hν/2)]⁻¹.
func (a *Analytic) PartitionFunction(v float64) (float64, error) {
	_, x, err := reduced(a.params, v)
	if err != nil {
		return 0, err
	}
	return 1 / (2 * math.Sinh(x/2)), nil
}

// InternalEnergy returns (hν/2)·coth(β hν/2).
func (a *Analytic) InternalEnergy(v float64) (float64, error) {
	hnu, x, err := reduced(a.params, v)
	if err != nil {
		return 0, err
	}
	return hnu / 2 / math.Tanh(x/2), nil
}

// InternalEnergyExp returns hν/2 + hν/(exp(β hν) - 1), algebraically
// identical to InternalEnergy.
func (a *Analytic) InternalEnergyExp(v float64) (float64, error) {
	hnu, x, err := reduced(a.params, v)
	if err != nil {
		return 0, err
	}
	return hnu/2 + hnu/math.Expm1(x), nil
}

// FreeEnergy returns hν/2 + ln(1 - exp(-β hν))/β.
func (a *Analytic) FreeEnergy(v float64) (float64, error) {
	hnu, x, err := reduced(a.params, v)
	if err != nil {
		return 0, err
	}
	return hnu/2 + math.Log(-math.Expm1(-x))/a.params.Beta, nil
}

func (a *Analytic) Quantities(v float64) (Quantities, error) {
	z, err := a.PartitionFunction(v)
	if err != nil {
		return Quantities{}, err
	}
	e, err := a.InternalEnergy(v)
	if err != nil {
		return Quantities{}, err
	}
	f, err := a.FreeEnergy(v)
	if err != nil {
		return Quantities{}, err
	}
	return Quantities{Z: z, E: e, F: f}, nil
}
