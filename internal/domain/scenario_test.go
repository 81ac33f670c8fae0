package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFactorChanges_UnmarshalJSON(t *testing.T) {
	var fc FactorChanges
	require.NoError(t, json.Unmarshal([]byte(`{"equity": -25, "rates": 100, "volatility": 50}`), &fc))
	assert.Equal(t, -25.0, fc.Get(FactorEquity))
	assert.Equal(t, 100.0, fc.Get(FactorRates))
	assert.Equal(t, 0.0, fc.Get(FactorFX))
	assert.Equal(t, 50.0, fc.Volatility())

	for _, raw := range []string{
		`{"equity": null}`,
		`{"equity": "-25"}`,
		`{"equity": true}`,
		`{"equity": [1]}`,
		`[1, 2]`,
	} {
		t.Run(raw, func(t *testing.T) {
			var fc FactorChanges
			err := json.Unmarshal([]byte(raw), &fc)
			assert.True(t, errors.Is(err, ErrInvalidScenario), "got %v", err)
		})
	}
}

func TestFactorChanges_UnmarshalYAML(t *testing.T) {
	var sc Scenario
	require.NoError(t, yaml.Unmarshal([]byte("id: mixed\nfactor_changes:\n  equity: -25\n  rates: 100\n  volatility: 12.5\n"), &sc))
	assert.Equal(t, -25.0, sc.FactorChanges.Get(FactorEquity))
	assert.Equal(t, 100.0, sc.FactorChanges.Get(FactorRates))
	assert.Equal(t, 12.5, sc.FactorChanges.Volatility())
	assert.NoError(t, sc.Check())

	tests := []struct {
		name string
		doc  string
	}{
		{"explicit null", "factor_changes: {equity: null, rates: 0}"},
		{"bare key", "factor_changes:\n  equity:\n  rates: 0\n"},
		{"tilde", "factor_changes: {equity: ~}"},
		{"quoted number", `factor_changes: {equity: "-25"}`},
		{"string", "factor_changes: {equity: crash}"},
		{"bool", "factor_changes: {equity: true}"},
		{"sequence value", "factor_changes: {equity: [1]}"},
		{"not a mapping", "factor_changes: [1, 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sc Scenario
			err := yaml.Unmarshal([]byte(tt.doc), &sc)
			assert.True(t, errors.Is(err, ErrInvalidScenario), "got %v", err)
		})
	}
}

func TestFactorChanges_UnmarshalYAMLNonFiniteFailsCheck(t *testing.T) {
	var sc Scenario
	require.NoError(t, yaml.Unmarshal([]byte("factor_changes: {equity: .nan}"), &sc))
	assert.True(t, errors.Is(sc.Check(), ErrInvalidScenario))
}

func TestFactorChanges_Check(t *testing.T) {
	tests := []struct {
		name    string
		fc      FactorChanges
		wantErr bool
	}{
		{"single factor", FactorChanges{FactorEquity: -10}, false},
		{"volatility only", FactorChanges{FactorVolatility: 20}, false},
		{"all zero", FactorChanges{FactorEquity: 0, FactorRates: 0}, false},
		{"empty", FactorChanges{}, true},
		{"nil", nil, true},
		{"unknown factor", FactorChanges{"gold": 5}, true},
		{"NaN", FactorChanges{FactorEquity: math.NaN()}, true},
		{"infinite", FactorChanges{FactorRates: math.Inf(-1)}, true},
		{"volatility wipes out", FactorChanges{FactorVolatility: -100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fc.Check()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidScenario), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScenario_CheckIncludesID(t *testing.T) {
	err := Scenario{ID: "broken", FactorChanges: FactorChanges{}}.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.True(t, errors.Is(err, ErrInvalidScenario))
}
