// Package thermo evaluates the canonical-ensemble quantities of the
// Mie-Grüneisen oscillator at a given volume:
//
//	Z(V) = Σ exp(-β E_i)
//	E(V) = Σ E_i exp(-β E_i) / Z
//	F(V) = -ln Z / β
//
// Two [Evaluator] implementations exist. [Series] sums the infinite
// level ladder in arbitrary precision and is the quantity under test.
// [Analytic] uses the closed forms and serves as the oracle and as a cheap
// alternative. [Registry] maps method names to constructors.
package thermo
