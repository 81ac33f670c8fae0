// Package risk computes summary risk metrics over the position-level results of a stress run.
package risk

import (
	"math"

	"github.com/aristath/sentinel-stress/pkg/formulas"
)

// CoverageEpsilon is the |impact %| a position must exceed to count as touched by a scenario
const CoverageEpsilon = 0.01

// TailPercentile is the percentile of the weighted impact distribution reported as tail risk
const TailPercentile = 0.05

// PositionImpact is the slice of a position result the metrics need
type PositionImpact struct {
	Weight        float64
	ImpactPercent float64
}

// Input carries everything Compute needs.
// TotalImpactPercent includes volatility amplification; UnamplifiedImpactPercent does not.
type Input struct {
	Positions                []PositionImpact
	AssetClassWeights        []float64
	TotalImpactPercent       float64
	UnamplifiedImpactPercent float64
}

// Metrics is the risk summary of a stress run
type Metrics struct {
	// Concentration is the HHI over position weights, in [1/n, 1]
	Concentration float64 `json:"concentration"`
	// Diversification is 1 - HHI normalized against the equal-weight baseline, in [0, 1]
	Diversification float64 `json:"diversification"`
	// Coverage is the fraction of positions with |impact %| > CoverageEpsilon
	Coverage float64 `json:"coverage"`
	// TailRisk is the weighted 5th percentile of position impact %
	TailRisk float64 `json:"tail_risk"`
	// VolatilityImpact is the fractional increase of |total impact %| caused by volatility amplification
	VolatilityImpact float64 `json:"volatility_impact"`
	// AssetClassConcentration is the HHI over asset class weights
	AssetClassConcentration float64 `json:"asset_class_concentration"`
}

// Compute derives the risk metrics of a run
func Compute(in Input) Metrics {
	n := len(in.Positions)
	if n == 0 {
		return Metrics{}
	}

	weights := make([]float64, n)
	impacts := make([]float64, n)
	touched := 0
	for i, p := range in.Positions {
		weights[i] = p.Weight
		impacts[i] = p.ImpactPercent
		if math.Abs(p.ImpactPercent) > CoverageEpsilon {
			touched++
		}
	}

	hhi := formulas.HHI(weights)

	return Metrics{
		Concentration:           hhi,
		Diversification:         formulas.NormalizedDiversification(hhi, n),
		Coverage:                float64(touched) / float64(n),
		TailRisk:                formulas.WeightedQuantile(impacts, weights, TailPercentile),
		VolatilityImpact:        VolatilityImpact(in.TotalImpactPercent, in.UnamplifiedImpactPercent),
		AssetClassConcentration: formulas.HHI(in.AssetClassWeights),
	}
}

// VolatilityImpact returns (|amplified| - |unamplified|) / |unamplified|, 0 when unamplified is 0
func VolatilityImpact(amplified, unamplified float64) float64 {
	if unamplified == 0 {
		return 0
	}
	return (math.Abs(amplified) - math.Abs(unamplified)) / math.Abs(unamplified)
}
