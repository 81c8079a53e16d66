package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/miegruneisen/internal/sweep"
	"github.com/san-kum/miegruneisen/internal/validate"
)

const maxListedMismatches = 5

var (
	GlassPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusPass = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusFail = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(22)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// AnimatedSpinner returns frame of animated spinner
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// ProgressBar renders a progress bar for a fraction in [0, 1].
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent > 0.8 {
		return SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}

// SparklineChart renders a mini sparkline from values, skipping NaNs.
func SparklineChart(values []float64, width int) string {
	vals := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(vals) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(vals); i++ {
		norm := (vals[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}
	return result.String()
}

// RenderReport formats a validation report. Failing checks list their
// first few mismatches; verbose lists the residual of passing checks too.
func RenderReport(r *validate.Report, verbose bool) string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(fmt.Sprintf("validation: %s vs analytic, %d decimals", r.Method, r.Decimal)))
	s.WriteString("\n")

	for _, c := range r.Checks {
		status := StatusPass.Render("PASS")
		if !c.OK() {
			status = StatusFail.Render("FAIL")
		}
		s.WriteString(MetricLabel.Render(c.Name) + status)
		if verbose || !c.OK() {
			s.WriteString(Subtle.Render(fmt.Sprintf("  max|Δ| %.3e over %d points", c.MaxAbsDiff, c.Compared)))
		}
		s.WriteString("\n")

		for i, m := range c.Mismatches {
			if i == maxListedMismatches {
				s.WriteString(Subtle.Render(fmt.Sprintf("    ... %d more\n", len(c.Mismatches)-i)))
				break
			}
			s.WriteString(fmt.Sprintf("    V=%-10.6g got %.15g want %.15g\n", m.Volume, m.Actual, m.Desired))
		}
	}
	return s.String()
}

// RenderTable lists every step-th sample of res; step < 1 lists all.
func RenderTable(res *sweep.Result, step int) string {
	if step < 1 {
		step = 1
	}

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(fmt.Sprintf("%10s %10s %22s %22s %22s", "V", "strain", "Z", "E", "F")))
	s.WriteString("\n")
	n := res.Len()
	for i := 0; i < n; i += step {
		fmt.Fprintf(&s, "%10.5f %10.6f %22.12f %22.15f %22.15f\n",
			res.Volumes[i], res.Strains[i], res.Z[i], res.E[i], res.F[i])
	}
	if n > 0 && (n-1)%step != 0 {
		i := n - 1
		fmt.Fprintf(&s, "%10.5f %10.6f %22.12f %22.15f %22.15f\n",
			res.Volumes[i], res.Strains[i], res.Z[i], res.E[i], res.F[i])
	}

	s.WriteString(Subtle.Render(fmt.Sprintf("%s: %d samples, %d terms, %v", res.Method, n, res.Terms, res.Elapsed)))
	s.WriteString("\n")
	return s.String()
}
