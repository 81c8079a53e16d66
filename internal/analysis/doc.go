// Package analysis derives shock-compression curves from a sweep.
//
//   - [Pressure]: p = -dF/dV
//   - [BulkModulus]: K = V·d²F/dV²
//   - [Compute]: pressure, bulk modulus and the Hugoniot along a sweep
//
// Derivatives are central finite differences of the free energy, so their
// accuracy is set by the step size and not by the precision of F itself.
//
// # Hugoniot
//
// Taking the most compressed sample as the reference state,
//
//	P_H(V) = 2(E - E₀)/(V₀ - V) + p₀
//
// which for a constant Grüneisen parameter is compared against
//
//	P_H(V) ≈ K·ε / (1 - (1 + γ/2)·ε)
package analysis
