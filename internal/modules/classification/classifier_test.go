package classification

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/sentinel-stress/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestClassify_UnknownSymbolGetsNeutralDefaults(t *testing.T) {
	c := NewClassifier(nil)

	meta := c.Classify(domain.Position{Symbol: "SCHD", Quantity: 300, Price: 72.10, AssetClass: "equity"}, "USD")

	equity, ok := meta.(Equity)
	require.True(t, ok, "expected equity metadata, got %T", meta)
	assert.Equal(t, "Diversified", equity.Sector)
	assert.Equal(t, domain.MarketCapMid, equity.MarketCap)
	assert.Equal(t, domain.GeographyUS, equity.Geography)
}

func TestClassify_UnknownBondHasNoDurationOrRating(t *testing.T) {
	c := NewClassifier(nil)

	meta := c.Classify(domain.Position{Symbol: "VCIT", AssetClass: "bond"}, "USD")

	bond, ok := meta.(Bond)
	require.True(t, ok)
	assert.Nil(t, bond.Duration)
	assert.Empty(t, bond.CreditRating)
	assert.False(t, bond.ForeignCurrency)
}

func TestClassify_Precedence(t *testing.T) {
	ref := StaticReference{
		"AAPL": {Sector: "Information Technology", MarketCap: "mega", Geography: "us"},
		"BNDX": {Duration: floatPtr(7.1), CreditRating: "AA-", Currency: "EUR"},
	}
	c := NewClassifier(ref)

	t.Run("reference fills missing fields", func(t *testing.T) {
		meta := c.Classify(domain.Position{Symbol: "aapl", AssetClass: "equity"}, "USD")
		assert.Equal(t, Equity{Sector: "Technology", MarketCap: domain.MarketCapLarge, Geography: domain.GeographyUS}, meta)
	})

	t.Run("position overrides reference", func(t *testing.T) {
		meta := c.Classify(domain.Position{Symbol: "AAPL", AssetClass: "equity", MarketCap: "small"}, "USD")
		assert.Equal(t, domain.MarketCapSmall, meta.(Equity).MarketCap)
		assert.Equal(t, "Technology", meta.(Equity).Sector)
	})

	t.Run("bond reference and foreign currency", func(t *testing.T) {
		meta := c.Classify(domain.Position{Symbol: "BNDX", AssetClass: "bond"}, "USD")
		assert.Equal(t, Bond{Duration: floatPtr(7.1), CreditRating: "AA", ForeignCurrency: true}, meta)
	})

	t.Run("base currency match is not foreign", func(t *testing.T) {
		meta := c.Classify(domain.Position{Symbol: "BNDX", AssetClass: "bond"}, "eur")
		assert.False(t, meta.(Bond).ForeignCurrency)
	})

	t.Run("position duration wins", func(t *testing.T) {
		meta := c.Classify(domain.Position{Symbol: "BNDX", AssetClass: "bond", Duration: floatPtr(2)}, "USD")
		require.NotNil(t, meta.(Bond).Duration)
		assert.Equal(t, 2.0, *meta.(Bond).Duration)
	})

	t.Run("explicit zero duration is kept", func(t *testing.T) {
		meta := c.Classify(domain.Position{Symbol: "BNDX", AssetClass: "bond", Duration: floatPtr(0)}, "USD")
		require.NotNil(t, meta.(Bond).Duration)
		assert.Equal(t, 0.0, *meta.(Bond).Duration)
	})
}

func TestClassify_AssetClassVariants(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name     string
		position domain.Position
		expected Metadata
	}{
		{"cash in base currency", domain.Position{Symbol: "USD", AssetClass: "cash"}, Cash{}},
		{"foreign cash", domain.Position{Symbol: "EURCASH", AssetClass: "cash", Currency: "EUR"}, Cash{ForeignCurrency: true}},
		{"gold", domain.Position{Symbol: "GLD", AssetClass: "commodity", CommodityType: "Gold"}, Commodity{Type: CommodityPreciousMetals}},
		{"broad commodity", domain.Position{Symbol: "DBC", AssetClass: "commodities"}, Commodity{Type: CommodityBroad}},
		{"alternative", domain.Position{Symbol: "HF1", AssetClass: "alternative"}, Alternative{}},
		{"reit alias", domain.Position{Symbol: "VNQ", AssetClass: "REIT"}, RealEstate{}},
		{"empty class is equity", domain.Position{Symbol: "X"}, Equity{Sector: "Diversified", MarketCap: domain.MarketCapMid, Geography: domain.GeographyUS}},
		{"unparseable class is equity", domain.Position{Symbol: "Y", AssetClass: "crypto"}, Equity{Sector: "Diversified", MarketCap: domain.MarketCapMid, Geography: domain.GeographyUS}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := c.Classify(tt.position, "USD")
			assert.Equal(t, tt.expected, meta)
		})
	}
}

func TestNormalizeRating(t *testing.T) {
	tests := map[string]string{
		"AAA":        "AAA",
		"aa+":        "AA",
		"A-":         "A",
		"BBB-":       "BBB",
		"Baa2":       "BBB",
		"Ba1":        "BB",
		"B3":         "B",
		"Caa1":       "CCC",
		"CC":         "CCC",
		"high yield": "B",
		"":           "",
		"NR":         "",
	}

	for raw, expected := range tests {
		t.Run(raw, func(t *testing.T) {
			assert.Equal(t, expected, NormalizeRating(raw))
		})
	}
}

func TestParsers(t *testing.T) {
	assert.Equal(t, domain.MarketCapSmall, ParseMarketCap("Small-Cap"))
	assert.Equal(t, domain.MarketCapLarge, ParseMarketCap("large_cap"))
	assert.Equal(t, domain.MarketCapMid, ParseMarketCap("unknown"))

	assert.Equal(t, domain.GeographyEmerging, ParseGeography("Emerging Markets"))
	assert.Equal(t, domain.GeographyInternational, ParseGeography("ex-US"))
	assert.Equal(t, domain.GeographyGlobal, ParseGeography("WORLD"))
	assert.Equal(t, domain.GeographyUS, ParseGeography(""))

	assert.Equal(t, "Financials", CanonicalSector("financial"))
	assert.Equal(t, "Communication Services", CanonicalSector("Telecommunications"))
	assert.Equal(t, "Shipping", CanonicalSector(" Shipping "))

	assert.Equal(t, CommodityEnergy, ParseCommodityType("crude"))
	assert.Equal(t, CommodityIndustrialMetals, ParseCommodityType("Base-Metals"))
}

func TestLoadReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.yaml")
	content := `version: "2024-06"
symbols:
  vcit:
    name: Vanguard Intermediate-Term Corporate Bond ETF
    duration: 6.2
    credit_rating: BBB
  EFA:
    sector: Diversified
    geography: international
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ref, err := LoadReference(path)
	require.NoError(t, err)
	require.Len(t, ref, 2)

	vcit, ok := ref.Lookup("VCIT")
	require.True(t, ok)
	require.NotNil(t, vcit.Duration)
	assert.Equal(t, 6.2, *vcit.Duration)
	assert.Equal(t, "BBB", vcit.CreditRating)

	meta := NewClassifier(ref).Classify(domain.Position{Symbol: "EFA", AssetClass: "equity"}, "USD")
	assert.Equal(t, domain.GeographyInternational, meta.(Equity).Geography)
}

func TestLoadReference_Errors(t *testing.T) {
	_, err := LoadReference(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbols:\n  X:\n    duration: -1\n"), 0o644))
	_, err = LoadReference(path)
	assert.Error(t, err)
}
