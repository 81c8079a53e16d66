// Package series sums slowly decaying infinite series in arbitrary precision.
//
// Terms are produced by a [Sequence] and accumulated as apd decimals so
// that sums of many small Boltzmann weights, and ratios of two such sums,
// keep far more significant digits than float64 can hold. Three stopping
// strategies are available:
//
//   - [Direct]: truncate once a term is negligible against the running sum
//   - [Ratio]: truncate, then add the geometric remainder t·r/(1-r)
//   - [Shanks]: Wynn epsilon extrapolation of the partial sums
//
// # Example
//
//	eng, _ := series.New(series.DefaultOptions())
//	res, err := eng.Sum(series.Geometric(first, ratio))
//	z, _ := res.Float64()
//
// A series that does not converge is never truncated into a plausible
// number: [Engine.Sum] fails with an error wrapping [ErrDiverged].
package series
