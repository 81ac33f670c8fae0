package stress

import (
	"github.com/aristath/sentinel-stress/internal/domain"
	"github.com/aristath/sentinel-stress/internal/modules/classification"
	"github.com/aristath/sentinel-stress/internal/modules/risk"
	"github.com/aristath/sentinel-stress/internal/modules/sensitivity"
)

// PositionResult is the stressed valuation of a single position
type PositionResult struct {
	Symbol     string            `json:"symbol"`
	Name       string            `json:"name,omitempty"`
	AssetClass domain.AssetClass `json:"asset_class"`
	Quantity   float64           `json:"quantity"`
	Price      float64           `json:"price"`

	CurrentValue            float64 `json:"current_value"`
	StressedValue           float64 `json:"stressed_value"`
	ImpactValue             float64 `json:"impact_value"`
	ImpactPercent           float64 `json:"impact_percent"`
	Weight                  float64 `json:"weight"`
	ContributionToPortfolio float64 `json:"contribution_to_portfolio"`

	StressedPrice      float64 `json:"stressed_price"`
	PriceChange        float64 `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`

	FactorContributions map[domain.Factor]float64 `json:"factor_contributions"`
	Sensitivities       sensitivity.Sensitivities `json:"sensitivities"`
	Metadata            classification.Metadata   `json:"metadata"`
	RiskProfile         sensitivity.RiskProfile   `json:"risk_profile"`
}

// AssetClassImpact aggregates the positions of one asset class
type AssetClassImpact struct {
	AssetClass    domain.AssetClass `json:"asset_class"`
	PositionCount int               `json:"position_count"`
	CurrentValue  float64           `json:"current_value"`
	StressedValue float64           `json:"stressed_value"`
	ImpactValue   float64           `json:"impact_value"`
	ImpactPercent float64           `json:"impact_percent"`
	Weight        float64           `json:"weight"`
}

// Result is the complete outcome of applying a scenario to a portfolio.
// PositionResults are ordered by descending |ImpactValue|; AssetClassImpacts
// follow domain.AssetClasses order and only list classes that are held.
type Result struct {
	PortfolioValue     float64 `json:"portfolio_value"`
	StressedValue      float64 `json:"stressed_value"`
	TotalImpact        float64 `json:"total_impact"`
	TotalImpactPercent float64 `json:"total_impact_percent"`

	AssetClassImpacts []AssetClassImpact        `json:"asset_class_impacts"`
	FactorAttribution map[domain.Factor]float64 `json:"factor_attribution"`
	RiskMetrics       risk.Metrics              `json:"risk_metrics"`
	Greeks            risk.Greeks               `json:"greeks"`
	PositionResults   []PositionResult          `json:"position_results"`

	ScenarioFactors      domain.FactorChanges `json:"scenario_factors"`
	VolatilityMultiplier float64              `json:"volatility_multiplier"`
	TablesVersion        string               `json:"tables_version"`
}
