package thermo

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/san-kum/miegruneisen/internal/model"
	"github.com/san-kum/miegruneisen/internal/series"
)

// Series evaluates Z, E and F by summing over the full energy ladder.
// It is safe for concurrent use.
type Series struct {
	params model.Params
	engine *series.Engine
}

func NewSeries(p model.Params, eng *series.Engine) (*Series, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if eng == nil {
		return nil, fmt.Errorf("thermo: nil series engine")
	}
	return &Series{params: p, engine: eng}, nil
}

func (s *Series) Name() string { return "series" }

func (s *Series) Engine() *series.Engine { return s.engine }

// ladder holds the decimal constants of the level ladder at one volume.
type ladder struct {
	ctx    *apd.Context
	hnu    *apd.Decimal
	ground *apd.Decimal // exp(-β E_0)
	ratio  *apd.Decimal // exp(-β hν)
}

func (s *Series) ladder(v float64) (*ladder, error) {
	hnu, _, err := reduced(s.params, v)
	if err != nil {
		return nil, err
	}

	ctx := s.engine.Context()
	l := &ladder{ctx: ctx, hnu: new(apd.Decimal), ground: new(apd.Decimal), ratio: new(apd.Decimal)}
	if _, err := l.hnu.SetFloat64(hnu); err != nil {
		return nil, fmt.Errorf("thermo: hν=%g: %w", hnu, err)
	}
	beta := new(apd.Decimal)
	if _, err := beta.SetFloat64(s.params.Beta); err != nil {
		return nil, fmt.Errorf("thermo: β=%g: %w", s.params.Beta, err)
	}

	x := new(apd.Decimal)
	if _, err := ctx.Mul(x, beta, l.hnu); err != nil {
		return nil, err
	}
	x.Neg(x)
	if _, err := ctx.Exp(l.ratio, x); err != nil {
		return nil, fmt.Errorf("thermo: boltzmann ratio: %w", err)
	}
	if _, err := ctx.Quo(x, x, apd.New(2, 0)); err != nil {
		return nil, err
	}
	if _, err := ctx.Exp(l.ground, x); err != nil {
		return nil, fmt.Errorf("thermo: ground weight: %w", err)
	}
	return l, nil
}

// weights yields the Boltzmann factors exp(-β E_i).
func (l *ladder) weights() series.Sequence {
	return series.Geometric(l.ground, l.ratio)
}

// weightedEnergies yields E_i·exp(-β E_i).
func (l *ladder) weightedEnergies() series.Sequence {
	return &energySequence{ladder: l, w: l.weights()}
}

type energySequence struct {
	*ladder
	w     series.Sequence
	i     int64
	level apd.Decimal
}

func (q *energySequence) Next(ctx *apd.Context, term *apd.Decimal) error {
	if err := q.w.Next(ctx, term); err != nil {
		return err
	}
	if err := energyLevel(ctx, &q.level, q.i, q.hnu); err != nil {
		return err
	}
	q.i++
	_, err := ctx.Mul(term, term, &q.level)
	return err
}

// energyLevel is the decimal form of model.Params.EnergyLevel:
// (i + 1/2)·hν, with i + 1/2 written exactly as (10i + 5)·10⁻¹.
func energyLevel(ctx *apd.Context, d *apd.Decimal, i int64, hnu *apd.Decimal) error {
	_, err := ctx.Mul(d, apd.New(10*i+5, -1), hnu)
	return err
}

func (s *Series) partition(l *ladder) (*series.Result, error) {
	res, err := s.engine.Sum(l.weights())
	if err != nil {
		return nil, fmt.Errorf("thermo: partition function: %w", err)
	}
	return res, nil
}

func (s *Series) energySum(l *ladder) (*series.Result, error) {
	res, err := s.engine.Sum(l.weightedEnergies())
	if err != nil {
		return nil, fmt.Errorf("thermo: energy sum: %w", err)
	}
	return res, nil
}

// PartitionFunction returns Σ exp(-β E_i(V)).
func (s *Series) PartitionFunction(v float64) (float64, error) {
	l, err := s.ladder(v)
	if err != nil {
		return 0, err
	}
	z, err := s.partition(l)
	if err != nil {
		return 0, err
	}
	return z.Float64()
}

// InternalEnergy returns Σ E_i exp(-β E_i) / Z, divided in full precision.
func (s *Series) InternalEnergy(v float64) (float64, error) {
	l, err := s.ladder(v)
	if err != nil {
		return 0, err
	}
	z, err := s.partition(l)
	if err != nil {
		return 0, err
	}
	e, err := s.energy(l, z.Sum)
	if err != nil {
		return 0, err
	}
	return e.Float64()
}

func (s *Series) energy(l *ladder, z *apd.Decimal) (*apd.Decimal, error) {
	num, err := s.energySum(l)
	if err != nil {
		return nil, err
	}
	e := new(apd.Decimal)
	if _, err := l.ctx.Quo(e, num.Sum, z); err != nil {
		return nil, fmt.Errorf("thermo: internal energy: %w", err)
	}
	return e, nil
}

// FreeEnergy returns -ln(Z)/β.
func (s *Series) FreeEnergy(v float64) (float64, error) {
	l, err := s.ladder(v)
	if err != nil {
		return 0, err
	}
	z, err := s.partition(l)
	if err != nil {
		return 0, err
	}
	f, err := s.free(l, z.Sum)
	if err != nil {
		return 0, err
	}
	return f.Float64()
}

func (s *Series) free(l *ladder, z *apd.Decimal) (*apd.Decimal, error) {
	f := new(apd.Decimal)
	if _, err := l.ctx.Ln(f, z); err != nil {
		return nil, fmt.Errorf("thermo: free energy: %w", err)
	}
	beta := new(apd.Decimal)
	if _, err := beta.SetFloat64(s.params.Beta); err != nil {
		return nil, err
	}
	if _, err := l.ctx.Quo(f, f, beta); err != nil {
		return nil, err
	}
	return f.Neg(f), nil
}

// Quantities sums the partition function once and reuses it for E and F.
func (s *Series) Quantities(v float64) (Quantities, error) {
	l, err := s.ladder(v)
	if err != nil {
		return Quantities{}, err
	}
	z, err := s.partition(l)
	if err != nil {
		return Quantities{}, err
	}
	num, err := s.energySum(l)
	if err != nil {
		return Quantities{}, err
	}

	e := new(apd.Decimal)
	if _, err := l.ctx.Quo(e, num.Sum, z.Sum); err != nil {
		return Quantities{}, fmt.Errorf("thermo: internal energy: %w", err)
	}
	f, err := s.free(l, z.Sum)
	if err != nil {
		return Quantities{}, err
	}

	var q Quantities
	q.Terms = z.Terms + num.Terms
	if q.Z, err = z.Float64(); err != nil {
		return Quantities{}, err
	}
	if q.E, err = e.Float64(); err != nil {
		return Quantities{}, err
	}
	if q.F, err = f.Float64(); err != nil {
		return Quantities{}, err
	}
	return q, nil
}

// PartialPartitionFunction returns the partition function truncated after
// n levels, with no remainder correction.
func (s *Series) PartialPartitionFunction(v float64, n int64) (float64, error) {
	l, err := s.ladder(v)
	if err != nil {
		return 0, err
	}
	sum, err := series.Partial(l.ctx, l.weights(), n)
	if err != nil {
		return 0, err
	}
	return sum.Float64()
}

// Study compares truncated partition-function sums with the engine result.
type Study struct {
	Volume      float64
	Bounds      []int64
	Partial     []float64
	Accelerated float64
	Terms       int64
}

func (s *Series) Convergence(v float64, bounds []int64) (*Study, error) {
	l, err := s.ladder(v)
	if err != nil {
		return nil, err
	}
	z, err := s.partition(l)
	if err != nil {
		return nil, err
	}

	st := &Study{Volume: v, Bounds: bounds, Partial: make([]float64, len(bounds)), Terms: z.Terms}
	if st.Accelerated, err = z.Float64(); err != nil {
		return nil, err
	}
	for i, n := range bounds {
		if st.Partial[i], err = s.PartialPartitionFunction(v, n); err != nil {
			return nil, err
		}
	}
	return st, nil
}
