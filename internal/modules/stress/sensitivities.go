package stress

import (
	"fmt"

	"github.com/aristath/sentinel-stress/internal/domain"
	"github.com/aristath/sentinel-stress/internal/modules/classification"
	"github.com/aristath/sentinel-stress/internal/modules/sensitivity"
)

// PositionSensitivity is the classification and factor exposure of one position
type PositionSensitivity struct {
	Symbol        string                    `json:"symbol"`
	AssetClass    domain.AssetClass         `json:"asset_class"`
	Metadata      classification.Metadata   `json:"metadata"`
	Sensitivities sensitivity.Sensitivities `json:"sensitivities"`
	RiskProfile   sensitivity.RiskProfile   `json:"risk_profile"`
}

// Sensitivities classifies every position and returns its factor
// sensitivities without applying a scenario. Output follows input order.
func (e *Engine) Sensitivities(portfolio domain.Portfolio) ([]PositionSensitivity, error) {
	if len(portfolio.Positions) == 0 {
		return nil, fmt.Errorf("%w: portfolio has no positions", domain.ErrEmptyPortfolio)
	}
	if err := portfolio.Check(); err != nil {
		return nil, err
	}

	base := portfolio.Base()
	out := make([]PositionSensitivity, len(portfolio.Positions))
	for i, pos := range portfolio.Positions {
		meta := e.classifier.Classify(pos, base)
		out[i] = PositionSensitivity{
			Symbol:        pos.Symbol,
			AssetClass:    meta.AssetClass(),
			Metadata:      meta,
			Sensitivities: e.calculator.Calculate(meta),
			RiskProfile:   e.calculator.RiskProfile(meta.AssetClass()),
		}
	}
	return out, nil
}
