package export

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/miegruneisen/internal/analysis"
	"github.com/san-kum/miegruneisen/internal/model"
	"github.com/san-kum/miegruneisen/internal/sweep"
)

func TestLinesToSVG(t *testing.T) {
	out, err := LinesToSVG("a <b>", []Series{
		{Name: "one", X: []float64{0, 1, 2}, Y: []float64{0, 1, 4}},
		{Name: "two", X: []float64{0, 1, 2}, Y: []float64{4, 1, 0}, Color: "#123456"},
	}, 200, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(out, "<?xml") || !strings.Contains(out, "</svg>") {
		t.Error("expected a complete svg document")
	}
	if got := strings.Count(out, "<path"); got != 2 {
		t.Errorf("expected 2 paths, got %d", got)
	}
	if !strings.Contains(out, `stroke="#123456"`) {
		t.Error("explicit color not used")
	}
	if !strings.Contains(out, "a &lt;b&gt;") {
		t.Error("title not escaped")
	}
}

func TestLinesToSVG_SkipsNonFinite(t *testing.T) {
	out, err := LinesToSVG("gap", []Series{
		{Name: "s", X: []float64{0, 1, 2, 3}, Y: []float64{0, math.NaN(), 2, 3}},
	}, 100, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The NaN breaks the line into two subpaths.
	if got := strings.Count(out, "M"); got < 2 {
		t.Errorf("expected a new subpath after the gap, got %d moves", got)
	}
}

func TestLinesToSVG_NoData(t *testing.T) {
	_, err := LinesToSVG("empty", []Series{{X: []float64{1}, Y: []float64{1}}}, 100, 100)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestQuantity(t *testing.T) {
	p := model.DefaultParams()
	p.Samples = 4
	vs := p.Volumes()
	res := &sweep.Result{
		Method: "series", Params: p, Volumes: vs,
		Z: []float64{1, 2, 3, 4}, E: []float64{1, 1, 1, 1}, F: []float64{-1, -2, -3, -4},
	}

	for _, q := range []string{"Z", "e", "F"} {
		out, err := Quantity(res, q, 100, 50)
		if err != nil {
			t.Fatalf("%s: %v", q, err)
		}
		if !strings.Contains(out, strings.ToUpper(q)+"(V)") {
			t.Errorf("%s: missing title", q)
		}
	}
	if _, err := Quantity(res, "S", 100, 50); err == nil {
		t.Error("expected error for unknown quantity")
	}
}

func TestHugoniot(t *testing.T) {
	c := &analysis.Curves{
		Volumes:          []float64{6.5, 9.75, 13},
		Hugoniot:         []float64{3, 2, 1},
		HugoniotAnalytic: []float64{3.2, 1.9, 0},
	}
	out, err := Hugoniot(c, 300, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "numeric") || !strings.Contains(out, "analytic") {
		t.Error("expected both series labels")
	}
}
