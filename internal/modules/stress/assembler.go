package stress

import (
	"github.com/aristath/sentinel-stress/internal/domain"
	"github.com/aristath/sentinel-stress/internal/modules/risk"
	"github.com/aristath/sentinel-stress/internal/modules/sensitivity"
	"github.com/shopspring/decimal"
)

// Display precision
const (
	MoneyPlaces   = 2
	PercentPlaces = 4
	RatioPlaces   = 6
)

// Rounded returns a deep copy of the result with display fields rounded
// half away from zero. The receiver is left untouched, so invariant checks
// keep running against the unrounded values.
func (r *Result) Rounded() *Result {
	out := &Result{
		PortfolioValue:       money(r.PortfolioValue),
		StressedValue:        money(r.StressedValue),
		TotalImpact:          money(r.TotalImpact),
		TotalImpactPercent:   percent(r.TotalImpactPercent),
		FactorAttribution:    roundFactors(r.FactorAttribution, MoneyPlaces),
		RiskMetrics:          roundMetrics(r.RiskMetrics),
		Greeks:               roundGreeks(r.Greeks),
		ScenarioFactors:      copyChanges(r.ScenarioFactors),
		VolatilityMultiplier: ratio(r.VolatilityMultiplier),
		TablesVersion:        r.TablesVersion,
	}

	out.AssetClassImpacts = make([]AssetClassImpact, len(r.AssetClassImpacts))
	for i, c := range r.AssetClassImpacts {
		out.AssetClassImpacts[i] = AssetClassImpact{
			AssetClass:    c.AssetClass,
			PositionCount: c.PositionCount,
			CurrentValue:  money(c.CurrentValue),
			StressedValue: money(c.StressedValue),
			ImpactValue:   money(c.ImpactValue),
			ImpactPercent: percent(c.ImpactPercent),
			Weight:        ratio(c.Weight),
		}
	}

	out.PositionResults = make([]PositionResult, len(r.PositionResults))
	for i, p := range r.PositionResults {
		out.PositionResults[i] = PositionResult{
			Symbol:                  p.Symbol,
			Name:                    p.Name,
			AssetClass:              p.AssetClass,
			Quantity:                p.Quantity,
			Price:                   p.Price,
			CurrentValue:            money(p.CurrentValue),
			StressedValue:           money(p.StressedValue),
			ImpactValue:             money(p.ImpactValue),
			ImpactPercent:           percent(p.ImpactPercent),
			Weight:                  ratio(p.Weight),
			ContributionToPortfolio: percent(p.ContributionToPortfolio),
			StressedPrice:           money(p.StressedPrice),
			PriceChange:             money(p.PriceChange),
			PriceChangePercent:      percent(p.PriceChangePercent),
			FactorContributions:     roundFactors(p.FactorContributions, MoneyPlaces),
			Sensitivities:           sensitivity.Sensitivities(roundFactors(p.Sensitivities, RatioPlaces)),
			Metadata:                p.Metadata,
			RiskProfile:             p.RiskProfile,
		}
	}
	return out
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func money(v float64) float64   { return round(v, MoneyPlaces) }
func percent(v float64) float64 { return round(v, PercentPlaces) }
func ratio(v float64) float64   { return round(v, RatioPlaces) }

func roundFactors(m map[domain.Factor]float64, places int32) map[domain.Factor]float64 {
	if m == nil {
		return nil
	}
	out := make(map[domain.Factor]float64, len(m))
	for f, v := range m {
		out[f] = round(v, places)
	}
	return out
}

func roundMetrics(m risk.Metrics) risk.Metrics {
	return risk.Metrics{
		Concentration:           ratio(m.Concentration),
		Diversification:         ratio(m.Diversification),
		Coverage:                ratio(m.Coverage),
		TailRisk:                percent(m.TailRisk),
		VolatilityImpact:        ratio(m.VolatilityImpact),
		AssetClassConcentration: ratio(m.AssetClassConcentration),
	}
}

func roundGreeks(g risk.Greeks) risk.Greeks {
	return risk.Greeks{
		Delta: ratio(g.Delta),
		Gamma: ratio(g.Gamma),
		Theta: ratio(g.Theta),
		Vega:  ratio(g.Vega),
		Rho:   ratio(g.Rho),
	}
}
