package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validInput() RunInput {
	return RunInput{
		Portfolio: Portfolio{Positions: []Position{
			{Symbol: "SCHD", Quantity: 300, Price: 72.10, AssetClass: "equity"},
			{Symbol: "VCIT", Quantity: 400, Price: 78.50, AssetClass: "bond"},
		}},
		Scenario: Scenario{ID: "decline", FactorChanges: FactorChanges{FactorEquity: -25}},
	}
}

func TestRunInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *RunInput)
		kind   error
	}{
		{"valid", func(in *RunInput) {}, nil},
		{"empty portfolio passes validation", func(in *RunInput) { in.Portfolio.Positions = nil }, nil},
		{"options echoed", func(in *RunInput) { in.Options = Options{ConfidenceLevel: 0.95, TimeHorizonDays: 10} }, nil},
		{"bad base currency", func(in *RunInput) { in.Portfolio.BaseCurrency = "DOLLARS" }, ErrInvalidPosition},
		{"bad position currency", func(in *RunInput) { in.Portfolio.Positions[0].Currency = "E" }, ErrInvalidPosition},
		{"negative price", func(in *RunInput) { in.Portfolio.Positions[1].Price = -1 }, ErrInvalidPosition},
		{"duplicate symbol", func(in *RunInput) { in.Portfolio.Positions[1].Symbol = " schd" }, ErrInvalidPosition},
		{"no factors", func(in *RunInput) { in.Scenario.FactorChanges = nil }, ErrInvalidScenario},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.kind == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			}
		})
	}
}
