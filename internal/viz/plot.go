package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/miegruneisen/internal/analysis"
	"github.com/san-kum/miegruneisen/internal/sweep"
	"github.com/san-kum/miegruneisen/internal/thermo"
)

const (
	DefaultPlotWidth  = 80
	DefaultPlotHeight = 10
)

// PlotQuantities draws Z, E and F against volume, one graph each.
func PlotQuantities(res *sweep.Result, width, height int) string {
	if res.Len() == 0 {
		return ""
	}
	span := fmt.Sprintf("V in [%.4g, %.4g]", res.Volumes[0], res.Volumes[res.Len()-1])

	var s strings.Builder
	for _, q := range []struct {
		name string
		data []float64
	}{
		{"partition function Z", res.Z},
		{"internal energy E", res.E},
		{"free energy F", res.F},
	} {
		data, ok := gaps(q.data)
		if !ok {
			continue
		}
		s.WriteString(asciigraph.Plot(data,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Precision(4),
			asciigraph.Caption(fmt.Sprintf("%s (%s, %s)", q.name, res.Method, span)),
		))
		s.WriteString("\n\n")
	}
	return s.String()
}

// gaps copies xs with ±Inf replaced by NaN, which asciigraph leaves blank.
// ok is false when no value is finite.
func gaps(xs []float64) (out []float64, ok bool) {
	out = make([]float64, len(xs))
	for i, x := range xs {
		if math.IsInf(x, 0) {
			x = math.NaN()
		}
		if !math.IsNaN(x) {
			ok = true
		}
		out[i] = x
	}
	return out, ok
}

// PlotHugoniot overlays the numeric and analytic Hugoniot curves. Points
// off either curve are left as gaps.
func PlotHugoniot(c *analysis.Curves, width, height int) string {
	numeric, okN := gaps(c.Hugoniot)
	analytic, okA := gaps(c.HugoniotAnalytic)
	if !okN && !okA {
		return ""
	}
	return asciigraph.PlotMany([][]float64{numeric, analytic},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(4),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Yellow),
		asciigraph.SeriesLegends("numeric", "analytic"),
		asciigraph.Caption("Hugoniot pressure vs volume"),
	)
}

// PlotConvergence draws truncated partition-function sums against the
// number of terms, with the accelerated value as a flat reference line.
func PlotConvergence(st *thermo.Study, width, height int) string {
	if len(st.Partial) == 0 {
		return ""
	}
	partial, ok := gaps(st.Partial)
	if !ok || math.IsNaN(st.Accelerated) || math.IsInf(st.Accelerated, 0) {
		return ""
	}
	ref := make([]float64, len(partial))
	for i := range ref {
		ref[i] = st.Accelerated
	}
	return asciigraph.PlotMany([][]float64{partial, ref},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(6),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.SeriesLegends("truncated", "accelerated"),
		asciigraph.Caption(fmt.Sprintf("Z at V=%g, %d to %d terms", st.Volume, st.Bounds[0], st.Bounds[len(st.Bounds)-1])),
	)
}
