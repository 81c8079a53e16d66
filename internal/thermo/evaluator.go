package thermo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/miegruneisen/internal/model"
	"github.com/san-kum/miegruneisen/internal/series"
)

// Quantities at one volume.
type Quantities struct {
	Z float64
	E float64
	F float64
	// Terms is the number of series terms consumed, zero for closed forms.
	Terms int64
}

type Evaluator interface {
	Name() string
	PartitionFunction(v float64) (float64, error)
	InternalEnergy(v float64) (float64, error)
	FreeEnergy(v float64) (float64, error)
	// Quantities evaluates all three, sharing work where possible.
	Quantities(v float64) (Quantities, error)
}

// ErrUnknownEvaluator is returned by Registry.Get for unregistered names.
var ErrUnknownEvaluator = errors.New("thermo: unknown evaluator")

type Registry struct {
	evaluators map[string]func(model.Params, series.Options) (Evaluator, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		evaluators: make(map[string]func(model.Params, series.Options) (Evaluator, error)),
	}

	r.evaluators["series"] = func(p model.Params, opts series.Options) (Evaluator, error) {
		eng, err := series.New(opts)
		if err != nil {
			return nil, err
		}
		return NewSeries(p, eng)
	}
	r.evaluators["analytic"] = func(p model.Params, _ series.Options) (Evaluator, error) {
		return NewAnalytic(p)
	}

	return r
}

func (r *Registry) Get(name string, p model.Params, opts series.Options) (Evaluator, error) {
	fn, ok := r.evaluators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvaluator, name)
	}
	return fn(p, opts)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.evaluators))
	for name := range r.evaluators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// reduced returns hν(V) and x = β·hν(V) after checking the volume.
func reduced(p model.Params, v float64) (hnu, x float64, err error) {
	if err := model.CheckVolume(v); err != nil {
		return 0, 0, err
	}
	hnu = p.Frequency(v)
	x = p.Beta * hnu
	if !(x > 0) {
		return 0, 0, fmt.Errorf("%w: β·hν = %g at V=%g is not positive", series.ErrDiverged, x, v)
	}
	return hnu, x, nil
}
