// Package model defines the Mie-Grüneisen single-oscillator model.
//
// A crystal is reduced to one quantum harmonic oscillator whose frequency
// depends on volume through a constant Grüneisen parameter γ:
//
//   - [Params]: fixed constants of a run (β, unit scale, V0, γ, sampling)
//   - [Params.Frequency]: hν(V) = h·V^-γ
//   - [Params.EnergyLevel]: E_i(V) = (i + 1/2)·hν(V)
//   - [Params.Volumes]: the compressional states swept by a run
//   - [Params.Strain]: ε = 1 - V/V0
//
// # Example
//
//	p := model.DefaultParams()
//	for _, v := range p.Volumes() {
//	    hnu := p.Frequency(v)
//	}
//
// Params is a value type and is safe to share between goroutines.
package model
