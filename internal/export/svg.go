package export

import (
	"errors"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/miegruneisen/internal/analysis"
	"github.com/san-kum/miegruneisen/internal/sweep"
)

var ErrNoData = errors.New("export: nothing to draw")

var palette = []string{"#00ffff", "#ffcc00", "#ff4f9a", "#00ff88"}

// Series is one curve of a line plot.
type Series struct {
	Name  string
	X, Y  []float64
	Color string
}

// LinesToSVG draws every series on shared axes. Points with a non-finite
// coordinate are skipped.
func LinesToSVG(title string, series []Series, width, height int) (string, error) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	points := 0
	for _, s := range series {
		for i := range min(len(s.X), len(s.Y)) {
			x, y := s.X[i], s.Y[i]
			if !finite(x) || !finite(y) {
				continue
			}
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
			points++
		}
	}
	if points < 2 {
		return "", ErrNoData
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="10" y="20" fill="#ffffff" font-family="monospace" font-size="14">%s</text>
`, width, height, width, height, html.EscapeString(title))

	for k, s := range series {
		color := s.Color
		if color == "" {
			color = palette[k%len(palette)]
		}

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, color))
		move := true
		for i := range min(len(s.X), len(s.Y)) {
			if !finite(s.X[i]) || !finite(s.Y[i]) {
				move = true
				continue
			}
			x := (s.X[i] - minX) / rangeX * float64(width)
			y := float64(height) - (s.Y[i]-minY)/rangeY*float64(height)
			if move {
				sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
				move = false
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		fmt.Fprintf(&sb, `<text x="10" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 40+16*k, color, html.EscapeString(s.Name))
	}

	fmt.Fprintf(&sb, `<text x="10" y="%d" fill="#888899" font-family="monospace" font-size="11">x [%.4g, %.4g]  y [%.4g, %.4g]</text>
`, height-8, minX, maxX, minY, maxY)
	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

// Quantity draws one of "Z", "E" or "F" against volume.
func Quantity(res *sweep.Result, name string, width, height int) (string, error) {
	var ys []float64
	switch name {
	case "Z", "z":
		ys = res.Z
	case "E", "e":
		ys = res.E
	case "F", "f":
		ys = res.F
	default:
		return "", fmt.Errorf("export: unknown quantity %q", name)
	}
	title := fmt.Sprintf("%s(V), %s, beta=%g gamma=%g", strings.ToUpper(name), res.Method, res.Params.Beta, res.Params.Gamma)
	return LinesToSVG(title, []Series{{Name: strings.ToUpper(name), X: res.Volumes, Y: ys}}, width, height)
}

// Hugoniot draws the numeric and analytic Hugoniot against volume.
func Hugoniot(c *analysis.Curves, width, height int) (string, error) {
	return LinesToSVG("Hugoniot pressure", []Series{
		{Name: "numeric", X: c.Volumes, Y: c.Hugoniot},
		{Name: "analytic", X: c.Volumes, Y: c.HugoniotAnalytic},
	}, width, height)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
