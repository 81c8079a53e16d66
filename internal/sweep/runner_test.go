package sweep

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/san-kum/miegruneisen/internal/model"
	"github.com/san-kum/miegruneisen/internal/thermo"
)

type testEvaluator struct {
	failAt float64
	nanAt  float64
}

func (t *testEvaluator) Name() string { return "test" }

func (t *testEvaluator) PartitionFunction(v float64) (float64, error) { return v, nil }
func (t *testEvaluator) InternalEnergy(v float64) (float64, error)    { return 2 * v, nil }
func (t *testEvaluator) FreeEnergy(v float64) (float64, error)        { return -v, nil }

func (t *testEvaluator) Quantities(v float64) (thermo.Quantities, error) {
	if t.failAt != 0 && v == t.failAt {
		return thermo.Quantities{}, errors.New("boom")
	}
	if t.nanAt != 0 && v == t.nanAt {
		return thermo.Quantities{Z: math.NaN()}, nil
	}
	return thermo.Quantities{Z: v, E: 2 * v, F: -v, Terms: 1}, nil
}

type countingObserver struct {
	mu   sync.Mutex
	seen map[int]bool
}

func (c *countingObserver) OnSample(s Sample, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[s.Index] = true
}

func TestRunnerRun(t *testing.T) {
	p := model.DefaultParams()
	for _, workers := range []int{1, 3, 4, 200} {
		r := New(&testEvaluator{}, p)
		obs := &countingObserver{seen: make(map[int]bool)}
		r.AddObserver(obs)

		result, err := r.Run(context.Background(), Config{Workers: workers, ValidateSamples: true})
		if err != nil {
			t.Fatalf("workers=%d: run failed: %v", workers, err)
		}
		if result.Len() != p.Samples {
			t.Fatalf("workers=%d: expected %d samples, got %d", workers, p.Samples, result.Len())
		}
		for i, v := range result.Volumes {
			if result.Z[i] != v || result.E[i] != 2*v || result.F[i] != -v {
				t.Errorf("workers=%d: sample %d misaligned", workers, i)
			}
			if result.Strains[i] != p.Strain(v) {
				t.Errorf("workers=%d: strain %d misaligned", workers, i)
			}
		}
		if result.Terms != int64(p.Samples) {
			t.Errorf("workers=%d: expected %d terms, got %d", workers, p.Samples, result.Terms)
		}
		if len(obs.seen) != p.Samples {
			t.Errorf("workers=%d: observer saw %d samples", workers, len(obs.seen))
		}
		if result.Method != "test" {
			t.Errorf("expected method test, got %s", result.Method)
		}
	}
}

func TestRunnerAnalytic(t *testing.T) {
	p := model.DefaultParams()
	an, err := thermo.NewAnalytic(p)
	if err != nil {
		t.Fatal(err)
	}

	result, err := New(an, p).Run(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !result.IsValid() {
		t.Fatal("analytic sweep produced non-finite values")
	}
	for i, v := range result.Volumes {
		z, _ := an.PartitionFunction(v)
		if result.Z[i] != z {
			t.Errorf("Z[%d] = %v, want %v", i, result.Z[i], z)
		}
	}
}

func TestRunnerSampleError(t *testing.T) {
	p := model.DefaultParams()
	vs := p.Volumes()

	tests := []struct {
		name  string
		eval  *testEvaluator
		index int
		is    error
	}{
		{"evaluator error", &testEvaluator{failAt: vs[42]}, 42, nil},
		{"non-finite", &testEvaluator{nanAt: vs[7]}, 7, ErrInvalidSample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.eval, p).Run(context.Background(), Config{Workers: 1, ValidateSamples: true})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var se *SampleError
			if !errors.As(err, &se) {
				t.Fatalf("expected SampleError, got %T", err)
			}
			if se.Index != tt.index {
				t.Errorf("expected index %d, got %d", tt.index, se.Index)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
		})
	}
}

func TestRunnerSkipsValidation(t *testing.T) {
	p := model.DefaultParams()
	result, err := New(&testEvaluator{nanAt: p.Volumes()[3]}, p).Run(context.Background(), Config{Workers: 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.IsValid() {
		t.Error("expected NaN to be kept when validation is off")
	}
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(&testEvaluator{}, model.DefaultParams()).Run(ctx, DefaultConfig())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunnerInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		params model.Params
	}{
		{"zero workers", Config{Workers: 0}, model.DefaultParams()},
		{"negative workers", Config{Workers: -2}, model.DefaultParams()},
		{"bad params", DefaultConfig(), model.Params{Beta: 0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&testEvaluator{}, tt.params).Run(context.Background(), tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParallelFor(t *testing.T) {
	for _, tt := range []struct{ n, workers int }{{0, 4}, {1, 4}, {10, 1}, {10, 3}, {100, 4}, {7, 7}} {
		var mu sync.Mutex
		hits := make([]int, tt.n)
		ParallelFor(tt.n, tt.workers, func(start, end int) {
			mu.Lock()
			defer mu.Unlock()
			for i := start; i < end; i++ {
				hits[i]++
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Errorf("n=%d workers=%d: index %d visited %d times", tt.n, tt.workers, i, h)
			}
		}
	}
}
