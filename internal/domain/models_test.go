package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssetClass(t *testing.T) {
	tests := []struct {
		raw      string
		expected AssetClass
	}{
		{"", AssetClassEquity},
		{"Equity", AssetClassEquity},
		{"stock", AssetClassEquity},
		{"ETF", AssetClassEquity},
		{"fixed income", AssetClassBond},
		{"Fixed-Income", AssetClassBond},
		{"cash", AssetClassCash},
		{"commodities", AssetClassCommodity},
		{"alternative", AssetClassAlternative},
		{"REIT", AssetClassRealEstate},
		{"Real Estate", AssetClassRealEstate},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			class, err := ParseAssetClass(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, class)
		})
	}

	_, err := ParseAssetClass("crypto")
	assert.True(t, errors.Is(err, ErrInvalidPosition))
}

func TestPosition_CurrentValue(t *testing.T) {
	assert.InDelta(t, 21630.0, Position{Quantity: 300, Price: 72.10}.CurrentValue(), 1e-9)
	assert.Zero(t, Position{Quantity: 0, Price: 72.10}.CurrentValue())
}

func TestPosition_Check(t *testing.T) {
	negative := -1.0
	nan := math.NaN()

	tests := []struct {
		name    string
		pos     Position
		wantErr bool
	}{
		{"valid", Position{Symbol: "VTI", Quantity: 1, Price: 200}, false},
		{"zero value allowed", Position{Symbol: "VTI", Quantity: 0, Price: 0}, false},
		{"missing symbol", Position{Symbol: "  ", Quantity: 1, Price: 1}, true},
		{"negative quantity", Position{Symbol: "A", Quantity: -1, Price: 1}, true},
		{"NaN price", Position{Symbol: "A", Quantity: 1, Price: math.NaN()}, true},
		{"infinite quantity", Position{Symbol: "A", Quantity: math.Inf(1), Price: 1}, true},
		{"negative duration", Position{Symbol: "A", Quantity: 1, Price: 1, AssetClass: "bond", Duration: &negative}, true},
		{"NaN duration", Position{Symbol: "A", Quantity: 1, Price: 1, AssetClass: "bond", Duration: &nan}, true},
		{"unknown asset class", Position{Symbol: "A", Quantity: 1, Price: 1, AssetClass: "crypto"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pos.Check()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidPosition), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPortfolio_Base(t *testing.T) {
	assert.Equal(t, "USD", Portfolio{}.Base())
	assert.Equal(t, "EUR", Portfolio{BaseCurrency: "eur"}.Base())
}

func TestFactor_IsBasisPoints(t *testing.T) {
	assert.True(t, FactorRates.IsBasisPoints())
	assert.True(t, FactorCredit.IsBasisPoints())
	assert.False(t, FactorEquity.IsBasisPoints())
	assert.False(t, FactorVolatility.IsBasisPoints())
}
