package viz

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/miegruneisen/internal/analysis"
	"github.com/san-kum/miegruneisen/internal/model"
	"github.com/san-kum/miegruneisen/internal/sweep"
	"github.com/san-kum/miegruneisen/internal/thermo"
	"github.com/san-kum/miegruneisen/internal/validate"
)

func testResult() *sweep.Result {
	return &sweep.Result{
		Method:  "series",
		Volumes: []float64{6.5, 8.125, 9.75, 11.375, 13},
		Strains: []float64{0.5, 0.375, 0.25, 0.125, 0},
		Z:       []float64{46.9, 73.3, 105.6, 143.7, 187.7},
		E:       []float64{3.34, 3.337, 3.335, 3.334, 3.3337},
		F:       []float64{-12.8, -14.3, -15.5, -16.56, -17.44},
	}
}

func TestPlotQuantities(t *testing.T) {
	out := PlotQuantities(testResult(), 40, 5)
	for _, caption := range []string{"partition function Z", "internal energy E", "free energy F"} {
		if !strings.Contains(out, caption) {
			t.Errorf("missing caption %q", caption)
		}
	}
	if PlotQuantities(&sweep.Result{}, 40, 5) != "" {
		t.Error("expected empty plot for empty result")
	}
}

func TestPlotHugoniot(t *testing.T) {
	c := &analysis.Curves{
		Hugoniot:         []float64{3, 2, 1.5, 1.2, 1},
		HugoniotAnalytic: []float64{3.1, 2.1, 1.4, 1.1, 0},
	}
	out := PlotHugoniot(c, 40, 5)
	if !strings.Contains(out, "numeric") || !strings.Contains(out, "analytic") {
		t.Error("expected both legends")
	}
	if PlotHugoniot(&analysis.Curves{}, 40, 5) != "" {
		t.Error("expected empty plot for empty curves")
	}
}

func TestPlotHugoniot_DefaultModel(t *testing.T) {
	p := model.DefaultParams()
	an, err := thermo.NewAnalytic(p)
	if err != nil {
		t.Fatal(err)
	}
	res, err := sweep.New(an, p).Run(context.Background(), sweep.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	c, err := analysis.Compute(an, res, analysis.DefaultStep, 4)
	if err != nil {
		t.Fatal(err)
	}

	out := PlotHugoniot(c, DefaultPlotWidth, DefaultPlotHeight)
	if !strings.Contains(out, "analytic") {
		t.Error("expected the analytic legend")
	}
}

func TestPlotHugoniot_NonFinite(t *testing.T) {
	c := &analysis.Curves{
		Hugoniot:         []float64{4, 3, 2, 1},
		HugoniotAnalytic: []float64{math.Inf(1), math.NaN(), 2.1, 0.9},
	}
	if out := PlotHugoniot(c, 20, 5); !strings.Contains(out, "numeric") {
		t.Error("expected a plot with gaps")
	}

	c = &analysis.Curves{
		Hugoniot:         []float64{math.NaN(), math.Inf(-1)},
		HugoniotAnalytic: []float64{math.NaN(), math.NaN()},
	}
	if PlotHugoniot(c, 20, 5) != "" {
		t.Error("expected empty plot when nothing is finite")
	}
}

func TestPlotConvergence(t *testing.T) {
	st := &thermo.Study{Volume: 1, Bounds: []int64{1, 2, 3}, Partial: []float64{0.5, 0.7, 0.75}, Accelerated: 0.8}
	out := PlotConvergence(st, 30, 5)
	if !strings.Contains(out, "1 to 3 terms") {
		t.Errorf("unexpected caption in %q", out)
	}
}

func TestRenderReport(t *testing.T) {
	r := &validate.Report{
		Method:  "series",
		Decimal: 10,
		Checks: []validate.Check{
			{Name: "partition_function", Compared: 5, MaxAbsDiff: 1e-13},
			{Name: "free_energy", Compared: 5, MaxAbsDiff: 1e-3, Mismatches: []validate.Mismatch{
				{Index: 0, Volume: 6.5, Actual: 1, Desired: 1.001, Diff: 1e-3},
			}},
		},
	}

	out := RenderReport(r, false)
	if !strings.Contains(out, "PASS") || !strings.Contains(out, "FAIL") {
		t.Errorf("expected PASS and FAIL in %q", out)
	}
	if !strings.Contains(out, "V=6.5") {
		t.Error("expected mismatch to be listed")
	}
	if strings.Contains(out, "1.000e-13") {
		t.Error("passing residual shown without verbose")
	}
	if !strings.Contains(RenderReport(r, true), "1.000e-13") {
		t.Error("verbose should show passing residual")
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(testResult(), 2)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// header, rows 0 2 4, summary; the header carries a bottom border line
	rows := 0
	for _, l := range lines {
		if strings.Contains(l, "6.50000") || strings.Contains(l, "9.75000") || strings.Contains(l, "13.00000") {
			rows++
		}
		if strings.Contains(l, "8.12500") {
			t.Error("row 1 should be skipped")
		}
	}
	if rows != 3 {
		t.Errorf("expected 3 rows, got %d", rows)
	}

	out = RenderTable(testResult(), 3)
	if !strings.Contains(out, "13.00000") {
		t.Error("last sample should always be listed")
	}
	if !strings.Contains(RenderTable(&sweep.Result{Method: "series"}, 1), "0 samples") {
		t.Error("empty result should still render a summary")
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("expected flat line, got %q", got)
	}
	out := SparklineChart([]float64{1, 2, 3}, 3)
	if !strings.Contains(out, "▁") || !strings.Contains(out, "█") {
		t.Errorf("expected lowest and highest bars in %q", out)
	}
}

func TestLiveModel(t *testing.T) {
	m := NewLiveModel("series", 3)

	var tm tea.Model = m
	tm, _ = tm.Update(SampleMsg{Sample: sweep.Sample{Index: 1, Volume: 2, Z: 1, E: 2, F: 3}, Total: 3})
	tm, _ = tm.Update(SampleMsg{Sample: sweep.Sample{Index: 1, Volume: 2, Z: 1, E: 2, F: 3}, Total: 3})
	tm, _ = tm.Update(SampleMsg{Sample: sweep.Sample{Index: 7}, Total: 3})

	lm := tm.(LiveModel)
	if lm.Done() != 1 {
		t.Errorf("expected 1 completed sample, got %d", lm.Done())
	}
	if !strings.Contains(lm.View(), "1/3") {
		t.Error("expected progress in view")
	}

	res := testResult()
	tm, cmd := tm.Update(DoneMsg{Result: res})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	got, err := tm.(LiveModel).Result()
	if err != nil || got != res {
		t.Errorf("unexpected result %v, %v", got, err)
	}
	if !strings.Contains(tm.View(), "done") {
		t.Error("expected done status")
	}
}

func TestLiveModel_Failure(t *testing.T) {
	var tm tea.Model = NewLiveModel("series", 2)
	tm, _ = tm.Update(DoneMsg{Err: errors.New("diverged")})
	if !strings.Contains(tm.View(), "diverged") {
		t.Error("expected error in view")
	}
}

type recordingSender struct{ msgs []tea.Msg }

func (r *recordingSender) Send(msg tea.Msg) { r.msgs = append(r.msgs, msg) }

func TestProgramObserver(t *testing.T) {
	rs := &recordingSender{}
	var o sweep.Observer = NewObserver(rs)
	o.OnSample(sweep.Sample{Index: 4}, 10)

	if len(rs.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(rs.msgs))
	}
	msg, ok := rs.msgs[0].(SampleMsg)
	if !ok || msg.Sample.Index != 4 || msg.Total != 10 {
		t.Errorf("unexpected message %+v", rs.msgs[0])
	}
}
