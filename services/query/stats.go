package query

import (
	"math"
	"strconv"
	"strings"

	"github.com/sapiens-platform/sapiens/internal/tabular"
	"github.com/sapiens-platform/sapiens/models"
)

// Correlation strength tiers by absolute coefficient.
const (
	correlationStrong   = 0.7
	correlationModerate = 0.4
)

// minCorrelationPairs is the smallest sample a coefficient is computed from.
const minCorrelationPairs = 3

// correlations computes the Pearson coefficient for every pair of numeric
// columns. Pairs with too few joint values or a constant column are omitted.
func correlations(t *tabular.Table) []models.CorrelationStat {
	numeric := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if t.IsNumericColumn(c) {
			numeric = append(numeric, c)
		}
	}

	var out []models.CorrelationStat
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			xs, ys := pairedValues(t, numeric[i], numeric[j])
			r, ok := pearson(xs, ys)
			if !ok {
				continue
			}
			out = append(out, models.CorrelationStat{
				ColumnA:     numeric[i],
				ColumnB:     numeric[j],
				Coefficient: r,
				Strength:    strengthLabel(r),
				Pairs:       len(xs),
			})
		}
	}
	return out
}

// pairedValues collects the rows where both columns parse as numbers.
func pairedValues(t *tabular.Table, a, b string) (xs, ys []float64) {
	ia, ib := t.ColumnIndex(a), t.ColumnIndex(b)
	for _, row := range t.Rows {
		x, errA := strconv.ParseFloat(strings.TrimSpace(row[ia]), 64)
		y, errB := strconv.ParseFloat(strings.TrimSpace(row[ib]), 64)
		if errA != nil || errB != nil {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}

// pearson returns the correlation coefficient of two equal-length samples.
// ok is false when the sample is too small or either side has no variance.
func pearson(xs, ys []float64) (r float64, ok bool) {
	if len(xs) < minCorrelationPairs {
		return 0, false
	}
	n := float64(len(xs))

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

func strengthLabel(r float64) string {
	switch abs := math.Abs(r); {
	case abs >= correlationStrong:
		return "forte"
	case abs >= correlationModerate:
		return "moderada"
	default:
		return "fraca"
	}
}
