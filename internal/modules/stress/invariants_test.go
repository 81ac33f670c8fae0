package stress

import (
	"testing"

	"github.com/aristath/sentinel-stress/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInvariants_DetectsViolations(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	tests := []struct {
		name   string
		tamper func(r *Result)
	}{
		{"total impact", func(r *Result) { r.TotalImpact += 1 }},
		{"factor attribution", func(r *Result) { r.FactorAttribution[domain.FactorRates] = 50 }},
		{"asset class value", func(r *Result) { r.AssetClassImpacts[0].CurrentValue += 100 }},
		{"weights", func(r *Result) { r.PositionResults[0].Weight += 0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Run(samplePortfolio(), marketDecline())
			require.NoError(t, err)
			require.NoError(t, CheckInvariants(result))

			tt.tamper(result)
			err = CheckInvariants(result)
			assert.ErrorIs(t, err, ErrInvariantViolated)
		})
	}
}

func TestApproxEqual(t *testing.T) {
	assert.True(t, approxEqual(1e6, 1e6+0.5, 1e6))
	assert.False(t, approxEqual(1e6, 1e6+5, 1e6))
	assert.True(t, approxEqual(0, 1e-9, 0))
	assert.False(t, approxEqual(0, 1e-3, 0))
}
