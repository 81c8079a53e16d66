package metrics

import (
	"math"

	"github.com/san-kum/miegruneisen/internal/analysis"
)

// HugoniotRMS is the root mean square gap between the numeric and
// analytic Hugoniot over points where both are finite, NaN when there are
// none.
func HugoniotRMS(c *analysis.Curves) float64 {
	n := min(len(c.Hugoniot), len(c.HugoniotAnalytic))
	var sum float64
	used := 0
	for i := 0; i < n; i++ {
		d := c.Hugoniot[i] - c.HugoniotAnalytic[i]
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		sum += d * d
		used++
	}
	if used == 0 {
		return math.NaN()
	}
	return math.Sqrt(sum / float64(used))
}
