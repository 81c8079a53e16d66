package metrics

import "github.com/san-kum/miegruneisen/internal/sweep"

// Metric accumulates a scalar over the samples of a sweep. The Runner
// serialises observer calls, so metrics need no locking of their own.
type Metric interface {
	sweep.Observer
	Name() string
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded for every run at inverse
// temperature beta.
func Defaults(beta float64) []Metric {
	return []Metric{
		NewMeanEnergy(),
		NewEquipartition(beta),
		NewFreeEnergyResidual(beta),
		NewFinite(),
	}
}

// Collect reads every metric into a map keyed by name.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
