package sensitivity

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTables(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultTables_Valid(t *testing.T) {
	tables := DefaultTables()
	require.NoError(t, tables.Validate())
	assert.Equal(t, TablesVersion, tables.Version)
}

func TestLoadTables_OverlaysDefaults(t *testing.T) {
	path := writeTables(t, `version: "2025.2"
equity:
  sector:
    Technology: 1.5
    Shipping: 1.3
bond:
  credit_spread_factors:
    bbb: 0.7
`)

	tables, err := LoadTables(path)
	require.NoError(t, err)

	assert.Equal(t, "2025.2", tables.Version)
	assert.Equal(t, 1.5, tables.Equity.Sector["technology"])
	assert.Equal(t, 1.3, tables.Equity.Sector["shipping"])
	assert.Equal(t, 0.6, tables.Equity.Sector["utilities"])
	assert.Equal(t, 0.7, tables.Bond.CreditSpreadFactors["BBB"])
	assert.Equal(t, 0.2, tables.Bond.CreditSpreadFactors["AAA"])
	assert.Equal(t, BondDefaultDuration, tables.Bond.DefaultDuration)
	assert.Equal(t, RealEstateRatesSensitivity, tables.RealEstate.Rates)
}

func TestLoadTables_RoundTrip(t *testing.T) {
	data, err := DefaultTables().YAML()
	require.NoError(t, err)

	tables, err := LoadTables(writeTables(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, DefaultTables(), tables)
}

func TestLoadTables_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"multiplier above bound", "equity:\n  sector:\n    technology: 5\n"},
		{"zero multiplier", "equity:\n  market_cap:\n    small: 0\n"},
		{"negative spread factor", "bond:\n  credit_spread_factors:\n    BBB: -1\n"},
		{"missing version", "version: \"\"\n"},
		{"non-positive default duration", "bond:\n  default_duration: 0\n"},
		{"unknown risk profile class", "risk_profiles:\n  crypto: {volatility: 0.9}\n"},
		{"malformed yaml", "equity: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTables(writeTables(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadTables(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_RejectsNonFinite(t *testing.T) {
	tables := DefaultTables()
	tables.Alternative.Equity = math.NaN()
	assert.Error(t, tables.Validate())

	tables = DefaultTables()
	tables.Equity.Geography["emerging"] = math.Inf(1)
	assert.Error(t, tables.Validate())
}
