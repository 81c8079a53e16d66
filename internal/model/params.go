package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	DefaultBeta        = 0.30
	DefaultUnitScale   = 1.0
	DefaultRefVolume   = 13.0
	DefaultGamma       = 2.0
	DefaultSamples     = 100
	DefaultMinFraction = 0.5
)

// Params holds the constants of one analysis run. Energies are measured in
// units of UnitScale (Planck's constant) and volumes are normalised to it.
type Params struct {
	Beta        float64 `json:"beta"`       // 1/(k_B T)
	UnitScale   float64 `json:"unit_scale"` // h
	RefVolume   float64 `json:"ref_volume"` // V0
	Gamma       float64 `json:"gamma"`      // Grüneisen parameter, held constant
	Samples     int     `json:"samples"`
	MinFraction float64 `json:"min_fraction"` // smallest volume as a fraction of V0
}

func DefaultParams() Params {
	return Params{
		Beta:        DefaultBeta,
		UnitScale:   DefaultUnitScale,
		RefVolume:   DefaultRefVolume,
		Gamma:       DefaultGamma,
		Samples:     DefaultSamples,
		MinFraction: DefaultMinFraction,
	}
}

func (p Params) Validate() error {
	if !(p.Beta > 0) || math.IsInf(p.Beta, 0) {
		return &ParamError{Name: "beta", Value: p.Beta, Wrapped: ErrParameterBounds}
	}
	if !(p.UnitScale > 0) || math.IsInf(p.UnitScale, 0) {
		return &ParamError{Name: "unit_scale", Value: p.UnitScale, Wrapped: ErrParameterBounds}
	}
	if !(p.RefVolume > 0) || math.IsInf(p.RefVolume, 0) {
		return &ParamError{Name: "ref_volume", Value: p.RefVolume, Wrapped: ErrParameterBounds}
	}
	if math.IsNaN(p.Gamma) || math.IsInf(p.Gamma, 0) {
		return &ParamError{Name: "gamma", Value: p.Gamma, Wrapped: ErrParameterBounds}
	}
	if p.Samples < 2 {
		return &ParamError{Name: "samples", Value: float64(p.Samples), Wrapped: ErrParameterBounds}
	}
	if !(p.MinFraction > 0) || p.MinFraction > 1 {
		return &ParamError{Name: "min_fraction", Value: p.MinFraction, Wrapped: ErrParameterBounds}
	}
	return nil
}

// CheckVolume rejects volumes outside the model's domain.
func CheckVolume(v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return &ParamError{Name: "volume", Value: v, Wrapped: ErrNonPositiveVolume}
	}
	return nil
}

// Frequency returns the oscillator quantum hν(V) = h·exp(-γ ln V).
func (p Params) Frequency(v float64) float64 {
	return p.UnitScale * math.Exp(-p.Gamma*math.Log(v))
}

// EnergyLevel returns the i-th eigenvalue (i + 1/2)·hν(V).
func (p Params) EnergyLevel(i int64, v float64) float64 {
	return (0.5 + float64(i)) * p.Frequency(v)
}

// Volumes returns Samples evenly spaced volumes on [MinFraction·V0, V0].
func (p Params) Volumes() []float64 {
	vs := make([]float64, p.Samples)
	floats.Span(vs, p.MinFraction*p.RefVolume, p.RefVolume)
	return vs
}

func (p Params) Strain(v float64) float64 {
	return 1 - v/p.RefVolume
}

func (p Params) Strains(vs []float64) []float64 {
	eps := make([]float64, len(vs))
	for i, v := range vs {
		eps[i] = p.Strain(v)
	}
	return eps
}
