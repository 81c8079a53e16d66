package sweep

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/miegruneisen/internal/model"
	"github.com/san-kum/miegruneisen/internal/thermo"
)

// Runner evaluates an Evaluator over every sampled volume of a model.
type Runner struct {
	eval      thermo.Evaluator
	params    model.Params
	logger    *slog.Logger
	observers []Observer
}

func New(eval thermo.Evaluator, p model.Params) *Runner {
	return &Runner{
		eval:      eval,
		params:    p,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Run evaluates Z, E and F at every volume. Samples are independent, so
// they are spread over cfg.Workers goroutines and written back by index.
// The first failing sample aborts the sweep.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := r.params.Validate(); err != nil {
		return nil, err
	}

	vs := r.params.Volumes()
	n := len(vs)
	result := &Result{
		Method:  r.eval.Name(),
		Params:  r.params,
		Volumes: vs,
		Strains: r.params.Strains(vs),
		Z:       make([]float64, n),
		E:       make([]float64, n),
		F:       make([]float64, n),
	}

	r.logger.Info("sweep started", "method", result.Method, "samples", n, "workers", cfg.Workers)
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		errOnce  sync.Once
		firstErr error
		terms    atomic.Int64
		notify   sync.Mutex
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	ParallelFor(n, cfg.Workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if ctx.Err() != nil {
				return
			}

			q, err := r.eval.Quantities(vs[i])
			if err != nil {
				fail(&SampleError{Index: i, Volume: vs[i], Wrapped: err})
				return
			}
			if cfg.ValidateSamples && !finite(q) {
				fail(&SampleError{Index: i, Volume: vs[i], Wrapped: ErrInvalidSample})
				return
			}

			result.Z[i], result.E[i], result.F[i] = q.Z, q.E, q.F
			terms.Add(q.Terms)
			r.logger.Debug("sample evaluated", "index", i, "volume", vs[i], "terms", q.Terms)

			if len(r.observers) > 0 {
				s := Sample{Index: i, Volume: vs[i], Z: q.Z, E: q.E, F: q.F}
				notify.Lock()
				for _, o := range r.observers {
					o.OnSample(s, n)
				}
				notify.Unlock()
			}
		}
	})

	if firstErr != nil {
		r.logger.Error("sweep failed", "err", firstErr)
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Terms = terms.Load()
	result.Elapsed = time.Since(start)
	r.logger.Info("sweep finished", "method", result.Method, "elapsed", result.Elapsed, "terms", result.Terms)
	return result, nil
}

func finite(q thermo.Quantities) bool {
	for _, v := range []float64{q.Z, q.E, q.F} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
