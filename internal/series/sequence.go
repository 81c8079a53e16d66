package series

import "github.com/cockroachdb/apd/v3"

// Sequence yields successive terms of a series, starting at index zero.
// Next overwrites term with the next value.
type Sequence interface {
	Next(ctx *apd.Context, term *apd.Decimal) error
}

// Func computes the i-th term of a series directly from its index.
type Func func(ctx *apd.Context, i int64, term *apd.Decimal) error

// Sequence adapts f to a Sequence starting at index zero.
func (f Func) Sequence() Sequence {
	return &funcSequence{f: f}
}

type funcSequence struct {
	f Func
	i int64
}

func (s *funcSequence) Next(ctx *apd.Context, term *apd.Decimal) error {
	err := s.f(ctx, s.i, term)
	s.i++
	return err
}

// Geometric yields first, first·ratio, first·ratio², ...
func Geometric(first, ratio *apd.Decimal) Sequence {
	g := &geometric{ratio: new(apd.Decimal).Set(ratio)}
	g.next.Set(first)
	return g
}

type geometric struct {
	next  apd.Decimal
	ratio *apd.Decimal
}

func (g *geometric) Next(ctx *apd.Context, term *apd.Decimal) error {
	term.Set(&g.next)
	_, err := ctx.Mul(&g.next, &g.next, g.ratio)
	return err
}
