// Package formulas provides pure statistical helpers used by the risk metrics.
package formulas

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HHI calculates the Herfindahl-Hirschman Index (sum of squared weights).
// Weights are expected to sum to 1; the result then lies in [1/n, 1].
func HHI(weights []float64) float64 {
	if len(weights) == 0 {
		return 0
	}
	return floats.Dot(weights, weights)
}

// NormalizedDiversification rescales 1 - HHI onto [0, 1] relative to the
// maximally diversified portfolio of n equal weights (HHI = 1/n).
// A single holding has no diversification.
func NormalizedDiversification(hhi float64, n int) float64 {
	if n <= 1 {
		return 0
	}
	floor := 1.0 / float64(n)
	d := (1 - hhi) / (1 - floor)
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}

type weightedValue struct {
	value  float64
	weight float64
}

// WeightedQuantile returns the p-quantile of the weighted distribution of values
// using linear interpolation between order statistics.
// Entries with non-positive weight are ignored. Returns 0 when nothing remains.
func WeightedQuantile(values, weights []float64, p float64) float64 {
	if len(values) == 0 || len(values) != len(weights) {
		return 0
	}

	pairs := make([]weightedValue, 0, len(values))
	for i, v := range values {
		if weights[i] > 0 {
			pairs = append(pairs, weightedValue{value: v, weight: weights[i]})
		}
	}
	if len(pairs) == 0 {
		return 0
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	if p <= 0 {
		return pairs[0].value
	}
	if p >= 1 {
		return pairs[len(pairs)-1].value
	}

	xs := make([]float64, len(pairs))
	ws := make([]float64, len(pairs))
	for i, pair := range pairs {
		xs[i] = pair.value
		ws[i] = pair.weight
	}

	return stat.Quantile(p, stat.LinInterp, xs, ws)
}
