package risk

import "math"

// GammaRatio scales delta into the reported gamma
const GammaRatio = 0.1

// ThetaRatio scales the total impact % into the reported theta
const ThetaRatio = 0.01

// Greeks is a declarative first-order summary of portfolio factor exposure.
// It is not an option pricing model.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// ComputeGreeks summarizes exposure from the equity and rates attribution
// (dollar impacts), the portfolio value, the total impact % and the
// scenario volatility change.
func ComputeGreeks(equityAttribution, ratesAttribution, portfolioValue, totalImpactPercent, volatility float64) Greeks {
	var delta, rho float64
	if portfolioValue > 0 {
		delta = equityAttribution / portfolioValue * 100
		rho = ratesAttribution / portfolioValue * 100
	}
	return Greeks{
		Delta: delta,
		Gamma: delta * GammaRatio,
		Theta: totalImpactPercent * ThetaRatio,
		Vega:  math.Abs(volatility) / 100,
		Rho:   rho,
	}
}
