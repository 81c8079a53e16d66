// Package validate cross-checks a series sweep against the closed-form
// single-oscillator results.
//
// Closeness follows the decimal-places rule |desired - actual| < 1.5·10^-d
// with d = 10 by default. A [Report] carries one [Check] per compared
// quantity: the partition function, the internal energy against the coth
// form, the coth form against the exponential form, and the free energy.
// Mismatches are reported, never corrected.
package validate
