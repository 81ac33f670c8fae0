package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_EmptyInput(t *testing.T) {
	assert.Equal(t, Metrics{}, Compute(Input{}))
}

func TestCompute_SinglePosition(t *testing.T) {
	m := Compute(Input{
		Positions:          []PositionImpact{{Weight: 1, ImpactPercent: -25}},
		AssetClassWeights:  []float64{1},
		TotalImpactPercent: -25, UnamplifiedImpactPercent: -25,
	})

	assert.InDelta(t, 1.0, m.Concentration, 1e-12)
	assert.Equal(t, 0.0, m.Diversification)
	assert.Equal(t, 1.0, m.Coverage)
	assert.Equal(t, -25.0, m.TailRisk)
	assert.Equal(t, 0.0, m.VolatilityImpact)
	assert.InDelta(t, 1.0, m.AssetClassConcentration, 1e-12)
}

func TestCompute_EqualWeightsAreFullyDiversified(t *testing.T) {
	positions := make([]PositionImpact, 4)
	for i := range positions {
		positions[i] = PositionImpact{Weight: 0.25, ImpactPercent: float64(-i)}
	}

	m := Compute(Input{Positions: positions})

	assert.InDelta(t, 0.25, m.Concentration, 1e-12)
	assert.InDelta(t, 1.0, m.Diversification, 1e-12)
	assert.Equal(t, 0.75, m.Coverage, "the zero-impact position is not covered")
}

func TestCompute_CoverageEpsilon(t *testing.T) {
	m := Compute(Input{Positions: []PositionImpact{
		{Weight: 0.5, ImpactPercent: 0.01},
		{Weight: 0.5, ImpactPercent: -0.0100001},
	}})
	assert.Equal(t, 0.5, m.Coverage)
}

func TestCompute_MarketDeclineTail(t *testing.T) {
	total := 65067.5
	m := Compute(Input{
		Positions: []PositionImpact{
			{Weight: 21630 / total, ImpactPercent: -25},
			{Weight: 31400 / total, ImpactPercent: 0},
			{Weight: 12037.5 / total, ImpactPercent: -7.5},
		},
	})

	assert.Equal(t, -25.0, m.TailRisk)
	assert.InDelta(t, 2.0/3.0, m.Coverage, 1e-12)
	assert.Greater(t, m.Diversification, 0.0)
	assert.Less(t, m.Diversification, 1.0)
}

func TestVolatilityImpact(t *testing.T) {
	assert.InDelta(t, 0.02, VolatilityImpact(-10.2, -10), 1e-12)
	assert.InDelta(t, -0.05, VolatilityImpact(-9.5, -10), 1e-12)
	assert.Equal(t, 0.0, VolatilityImpact(0, 0))
}

func TestComputeGreeks(t *testing.T) {
	g := ComputeGreeks(-5000, 200, 100000, -4.8, -30)

	assert.InDelta(t, -5.0, g.Delta, 1e-12)
	assert.InDelta(t, -0.5, g.Gamma, 1e-12)
	assert.InDelta(t, -0.048, g.Theta, 1e-12)
	assert.InDelta(t, 0.3, g.Vega, 1e-12)
	assert.InDelta(t, 0.2, g.Rho, 1e-12)

	assert.Equal(t, Greeks{Vega: 0.1}, ComputeGreeks(100, 100, 0, 0, 10))
}
