package metrics

import (
	"math"

	"github.com/san-kum/miegruneisen/internal/sweep"
)

type MeanEnergy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewMeanEnergy() *MeanEnergy {
	return &MeanEnergy{name: "mean_energy"}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) OnSample(s sweep.Sample, total int) {
	e.totalEnergy += s.E
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *MeanEnergy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// Equipartition tracks the largest |βE - 1|, the distance from the
// classical limit E = kT.
type Equipartition struct {
	name     string
	beta     float64
	maxDev   float64
	observed bool
}

func NewEquipartition(beta float64) *Equipartition {
	return &Equipartition{name: "equipartition_deviation", beta: beta}
}

func (e *Equipartition) Name() string { return e.name }

func (e *Equipartition) OnSample(s sweep.Sample, total int) {
	e.maxDev = math.Max(e.maxDev, math.Abs(e.beta*s.E-1))
	e.observed = true
}

func (e *Equipartition) Value() float64 {
	if !e.observed {
		return math.NaN()
	}
	return e.maxDev
}

func (e *Equipartition) Reset() {
	e.maxDev = 0
	e.observed = false
}

// FreeEnergyResidual tracks the largest |βF + ln Z| relative to ln Z,
// which is zero when F and Z come from the same partition sum.
type FreeEnergyResidual struct {
	name   string
	beta   float64
	maxRes float64
}

func NewFreeEnergyResidual(beta float64) *FreeEnergyResidual {
	return &FreeEnergyResidual{name: "free_energy_residual", beta: beta}
}

func (f *FreeEnergyResidual) Name() string { return f.name }

func (f *FreeEnergyResidual) OnSample(s sweep.Sample, total int) {
	lnZ := math.Log(s.Z)
	res := math.Abs(f.beta*s.F + lnZ)
	if lnZ != 0 {
		res /= math.Abs(lnZ)
	}
	if math.IsNaN(res) {
		res = math.Inf(1)
	}
	f.maxRes = math.Max(f.maxRes, res)
}

func (f *FreeEnergyResidual) Value() float64 { return f.maxRes }

func (f *FreeEnergyResidual) Reset() { f.maxRes = 0 }

// Finite is the fraction of samples whose Z, E and F are all finite.
type Finite struct {
	name    string
	bad     int
	samples int
}

func NewFinite() *Finite {
	return &Finite{name: "finite_fraction"}
}

func (f *Finite) Name() string { return f.name }

func (f *Finite) OnSample(s sweep.Sample, total int) {
	f.samples++
	for _, v := range []float64{s.Z, s.E, s.F} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			f.bad++
			break
		}
	}
}

func (f *Finite) Value() float64 {
	if f.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(f.bad)/float64(f.samples)
}

func (f *Finite) Reset() {
	f.bad = 0
	f.samples = 0
}
