package series

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Method selects how summation stops and what it adds for the remainder.
type Method int

const (
	Ratio Method = iota
	Direct
	Shanks
)

var methodNames = map[Method]string{
	Ratio:  "ratio",
	Direct: "direct",
	Shanks: "shanks",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("method(%d)", int(m))
}

func ParseMethod(s string) (Method, error) {
	for m, name := range methodNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown method %q", ErrOptions, s)
}

const (
	DefaultPrecision = 40
	DefaultDigits    = 20
	DefaultMinTerms  = 4
	DefaultMaxTerms  = 10_000_000
	DefaultWindow    = 7
)

type Options struct {
	// Precision is the working precision in significant decimal digits.
	Precision uint32
	// Digits sets the stopping tolerance 10^-Digits, relative to the sum.
	Digits   int
	MinTerms int64
	MaxTerms int64
	Method   Method
	// Window is the number of partial sums fed to the Shanks extrapolation.
	Window int
}

func DefaultOptions() Options {
	return Options{
		Precision: DefaultPrecision,
		Digits:    DefaultDigits,
		MinTerms:  DefaultMinTerms,
		MaxTerms:  DefaultMaxTerms,
		Method:    Ratio,
		Window:    DefaultWindow,
	}
}

func (o Options) Validate() error {
	if o.Digits <= 0 {
		return fmt.Errorf("%w: digits must be positive, got %d", ErrOptions, o.Digits)
	}
	if o.Precision < uint32(o.Digits)+5 {
		return fmt.Errorf("%w: precision %d too low for %d digits", ErrOptions, o.Precision, o.Digits)
	}
	if o.MinTerms < 2 {
		return fmt.Errorf("%w: min terms must be at least 2, got %d", ErrOptions, o.MinTerms)
	}
	if o.MaxTerms < o.MinTerms {
		return fmt.Errorf("%w: max terms %d below min terms %d", ErrOptions, o.MaxTerms, o.MinTerms)
	}
	if _, ok := methodNames[o.Method]; !ok {
		return fmt.Errorf("%w: unknown method %d", ErrOptions, int(o.Method))
	}
	if o.Method == Shanks && (o.Window < 3 || o.Window%2 == 0) {
		return fmt.Errorf("%w: shanks window must be odd and at least 3, got %d", ErrOptions, o.Window)
	}
	return nil
}

// Result of a summation. Sum already includes Tail.
type Result struct {
	Sum       *apd.Decimal
	Tail      *apd.Decimal
	Terms     int64
	Converged bool
}

func (r *Result) Float64() (float64, error) {
	return r.Sum.Float64()
}

// Engine sums series with fixed options. It holds no per-call state and
// may be shared between goroutines.
type Engine struct {
	opts Options
	ctx  apd.Context
	tol  *apd.Decimal
	// noise is the relative size below which a difference is rounding error.
	noise *apd.Decimal
}

func New(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		opts:  opts,
		ctx:   *apd.BaseContext.WithPrecision(opts.Precision),
		tol:   apd.New(1, -int32(opts.Digits)),
		noise: apd.New(1, -int32(opts.Precision)+5),
	}, nil
}

func (e *Engine) Options() Options { return e.opts }

// Context returns a fresh copy of the engine's arithmetic context.
func (e *Engine) Context() *apd.Context {
	c := e.ctx
	return &c
}

func (e *Engine) Sum(seq Sequence) (*Result, error) {
	if e.opts.Method == Shanks {
		return e.sumShanks(seq)
	}
	return e.sumTruncated(seq)
}

func (e *Engine) sumTruncated(seq Sequence) (*Result, error) {
	ctx := e.Context()
	sum := new(apd.Decimal)
	prev := new(apd.Decimal)
	term := new(apd.Decimal)

	for n := int64(0); n < e.opts.MaxTerms; n++ {
		if err := e.next(ctx, seq, term, n); err != nil {
			return nil, err
		}
		if _, err := ctx.Add(sum, sum, term); err != nil {
			return nil, fmt.Errorf("series: accumulate term %d: %w", n, err)
		}

		if n+1 >= e.opts.MinTerms && e.negligible(term, sum) {
			res := &Result{Sum: sum, Tail: new(apd.Decimal), Terms: n + 1, Converged: true}
			if e.opts.Method == Ratio {
				tail, err := e.remainder(ctx, prev, term, n)
				if err != nil {
					return nil, err
				}
				if _, err := ctx.Add(sum, sum, tail); err != nil {
					return nil, fmt.Errorf("series: add remainder: %w", err)
				}
				res.Tail = tail
			}
			return res, nil
		}
		prev.Set(term)
	}

	return nil, &DivergenceError{Terms: e.opts.MaxTerms, Reason: "term limit reached"}
}

func (e *Engine) next(ctx *apd.Context, seq Sequence, term *apd.Decimal, n int64) error {
	if err := seq.Next(ctx, term); err != nil {
		return fmt.Errorf("series: term %d: %w", n, err)
	}
	if term.Form != apd.Finite {
		return &DivergenceError{Terms: n, Reason: "non-finite term"}
	}
	return nil
}

// negligible reports |term| <= tol·|sum|.
func (e *Engine) negligible(term, sum *apd.Decimal) bool {
	var a, bound apd.Decimal
	a.Abs(term)
	bound.Abs(sum)
	if _, err := e.ctx.Mul(&bound, &bound, e.tol); err != nil {
		return false
	}
	return a.Cmp(&bound) <= 0
}

// remainder estimates the sum of all terms after term by treating the
// tail as geometric with the last observed ratio.
func (e *Engine) remainder(ctx *apd.Context, prev, term *apd.Decimal, n int64) (*apd.Decimal, error) {
	tail := new(apd.Decimal)
	if term.IsZero() {
		return tail, nil
	}
	if prev.IsZero() {
		return nil, &DivergenceError{Terms: n + 1, Reason: "term grew from zero"}
	}

	r := new(apd.Decimal)
	if _, err := ctx.Quo(r, term, prev); err != nil {
		return nil, fmt.Errorf("series: term ratio: %w", err)
	}
	var absR apd.Decimal
	absR.Abs(r)
	if absR.Cmp(apd.New(1, 0)) >= 0 {
		return nil, &DivergenceError{Terms: n + 1, Reason: fmt.Sprintf("term ratio %s is not below one", r.Text('g'))}
	}

	oneMinus := new(apd.Decimal)
	if _, err := ctx.Sub(oneMinus, apd.New(1, 0), r); err != nil {
		return nil, err
	}
	if _, err := ctx.Mul(tail, term, r); err != nil {
		return nil, err
	}
	if _, err := ctx.Quo(tail, tail, oneMinus); err != nil {
		return nil, fmt.Errorf("series: remainder: %w", err)
	}
	return tail, nil
}

// sumShanks accumulates partial sums and extrapolates the last Window of
// them with Wynn's epsilon algorithm. It stops once two consecutive
// extrapolations agree with their predecessor to the tolerance.
func (e *Engine) sumShanks(seq Sequence) (*Result, error) {
	ctx := e.Context()
	w := e.opts.Window
	sums := make([]*apd.Decimal, 0, w)
	partial := new(apd.Decimal)
	term := new(apd.Decimal)

	var last *apd.Decimal
	agreed := 0
	positive := true
	for n := int64(0); n < e.opts.MaxTerms; n++ {
		if err := e.next(ctx, seq, term, n); err != nil {
			return nil, err
		}
		if _, err := ctx.Add(partial, partial, term); err != nil {
			return nil, fmt.Errorf("series: accumulate term %d: %w", n, err)
		}
		if term.Sign() < 0 {
			positive = false
		}

		if len(sums) == w {
			copy(sums, sums[1:])
			sums = sums[:w-1]
		}
		sums = append(sums, new(apd.Decimal).Set(partial))
		if len(sums) < w || n+1 < e.opts.MinTerms {
			continue
		}

		est, err := wynnEpsilon(ctx, sums, e.noise)
		if err != nil {
			return nil, err
		}
		if last != nil {
			var diff apd.Decimal
			if _, err := ctx.Sub(&diff, est, last); err != nil {
				return nil, err
			}
			if e.negligible(&diff, est) {
				agreed++
			} else {
				agreed = 0
			}
		}
		last = est

		if agreed >= 2 {
			tail := new(apd.Decimal)
			if _, err := ctx.Sub(tail, est, partial); err != nil {
				return nil, err
			}
			// A divergent positive series extrapolates to an antilimit
			// below its own partial sums.
			if positive && tail.Sign() < 0 && !e.negligible(tail, est) {
				return nil, &DivergenceError{Terms: n + 1, Reason: "extrapolated below partial sum of positive terms"}
			}
			return &Result{Sum: est, Tail: tail, Terms: n + 1, Converged: true}, nil
		}
	}

	return nil, &DivergenceError{Terms: e.opts.MaxTerms, Reason: "extrapolation did not settle"}
}

// wynnEpsilon returns the highest even-column entry of the epsilon table
// built from sums. A difference at rounding level means the column has
// already converged, so the table stops there.
func wynnEpsilon(ctx *apd.Context, sums []*apd.Decimal, noise *apd.Decimal) (*apd.Decimal, error) {
	m := len(sums)
	prevCol := make([]*apd.Decimal, m)
	for i := range prevCol {
		prevCol[i] = new(apd.Decimal)
	}
	col := sums
	best := sums[m-1]

	var diff, absDiff, bound apd.Decimal
	for k := 1; k < m; k++ {
		next := make([]*apd.Decimal, len(col)-1)
		for j := range next {
			if _, err := ctx.Sub(&diff, col[j+1], col[j]); err != nil {
				return nil, err
			}
			absDiff.Abs(&diff)
			bound.Abs(col[j+1])
			if _, err := ctx.Mul(&bound, &bound, noise); err != nil {
				return nil, err
			}
			if absDiff.Cmp(&bound) <= 0 {
				return best, nil
			}
			v := new(apd.Decimal)
			if _, err := ctx.Quo(v, apd.New(1, 0), &diff); err != nil {
				return nil, fmt.Errorf("series: epsilon table: %w", err)
			}
			if _, err := ctx.Add(v, v, prevCol[j+1]); err != nil {
				return nil, err
			}
			next[j] = v
		}
		prevCol, col = col, next
		if k%2 == 0 {
			best = col[len(col)-1]
		}
	}
	return best, nil
}

// Partial returns the plain sum of the first n terms of seq.
func Partial(ctx *apd.Context, seq Sequence, n int64) (*apd.Decimal, error) {
	sum := new(apd.Decimal)
	term := new(apd.Decimal)
	for i := int64(0); i < n; i++ {
		if err := seq.Next(ctx, term); err != nil {
			return nil, fmt.Errorf("series: term %d: %w", i, err)
		}
		if _, err := ctx.Add(sum, sum, term); err != nil {
			return nil, err
		}
	}
	return sum, nil
}
