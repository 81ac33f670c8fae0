// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"math"
	"strings"
)

// AssetClass represents the coarse classification of a holding
type AssetClass string

const (
	AssetClassEquity      AssetClass = "equity"
	AssetClassBond        AssetClass = "bond"
	AssetClassCash        AssetClass = "cash"
	AssetClassCommodity   AssetClass = "commodity"
	AssetClassAlternative AssetClass = "alternative"
	AssetClassRealEstate  AssetClass = "real_estate"
)

// AssetClasses lists every supported asset class in reporting order
var AssetClasses = []AssetClass{
	AssetClassEquity,
	AssetClassBond,
	AssetClassCash,
	AssetClassCommodity,
	AssetClassAlternative,
	AssetClassRealEstate,
}

// assetClassAliases maps common spellings to a canonical asset class
var assetClassAliases = map[string]AssetClass{
	"":             AssetClassEquity,
	"equity":       AssetClassEquity,
	"equities":     AssetClassEquity,
	"stock":        AssetClassEquity,
	"etf":          AssetClassEquity,
	"bond":         AssetClassBond,
	"bonds":        AssetClassBond,
	"fixed_income": AssetClassBond,
	"cash":         AssetClassCash,
	"commodity":    AssetClassCommodity,
	"commodities":  AssetClassCommodity,
	"alternative":  AssetClassAlternative,
	"alternatives": AssetClassAlternative,
	"real_estate":  AssetClassRealEstate,
	"realestate":   AssetClassRealEstate,
	"reit":         AssetClassRealEstate,
}

// ParseAssetClass resolves a raw asset class string, accepting common aliases.
// An empty string resolves to equity.
func ParseAssetClass(raw string) (AssetClass, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if class, ok := assetClassAliases[key]; ok {
		return class, nil
	}
	return "", fmt.Errorf("%w: unknown asset class %q", ErrInvalidPosition, raw)
}

// MarketCap represents the market capitalisation bucket of an equity
type MarketCap string

const (
	MarketCapSmall MarketCap = "small"
	MarketCapMid   MarketCap = "mid"
	MarketCapLarge MarketCap = "large"
)

// Geography represents the listing/exposure region of a holding
type Geography string

const (
	GeographyUS            Geography = "US"
	GeographyInternational Geography = "international"
	GeographyEmerging      Geography = "emerging"
	GeographyGlobal        Geography = "global"
)

// Factor represents a market risk factor a scenario can shock
type Factor string

const (
	FactorEquity    Factor = "equity"
	FactorRates     Factor = "rates"
	FactorCredit    Factor = "credit"
	FactorFX        Factor = "fx"
	FactorCommodity Factor = "commodity"
	// FactorVolatility only amplifies the value factors; it never drives value on its own.
	FactorVolatility Factor = "volatility"
)

// Factors lists the value-driving factors in accumulation order.
// Every sum over factors iterates this slice so results are reproducible.
var Factors = []Factor{
	FactorEquity,
	FactorRates,
	FactorCredit,
	FactorFX,
	FactorCommodity,
}

// IsBasisPoints reports whether the factor change is quoted in basis points
func (f Factor) IsBasisPoints() bool {
	return f == FactorRates || f == FactorCredit
}

// Position represents a single holding as supplied by the caller.
// Classification fields are optional; the asset classifier fills in defaults.
type Position struct {
	Symbol        string   `json:"symbol" yaml:"symbol" validate:"required,max=64"`
	Name          string   `json:"name,omitempty" yaml:"name,omitempty"`
	Quantity      float64  `json:"quantity" yaml:"quantity" validate:"gte=0"`
	Price         float64  `json:"price" yaml:"price" validate:"gte=0"`
	AssetClass    string   `json:"asset_class" yaml:"asset_class"`
	Sector        string   `json:"sector,omitempty" yaml:"sector,omitempty"`
	MarketCap     string   `json:"market_cap,omitempty" yaml:"market_cap,omitempty"`
	Geography     string   `json:"geography,omitempty" yaml:"geography,omitempty"`
	Duration      *float64 `json:"duration,omitempty" yaml:"duration,omitempty" validate:"omitempty,gte=0"`
	CreditRating  string   `json:"credit_rating,omitempty" yaml:"credit_rating,omitempty"`
	Currency      string   `json:"currency,omitempty" yaml:"currency,omitempty" validate:"omitempty,len=3"`
	CommodityType string   `json:"commodity_type,omitempty" yaml:"commodity_type,omitempty"`
}

// CurrentValue returns quantity × price
func (p Position) CurrentValue() float64 {
	return p.Quantity * p.Price
}

// Check verifies the numeric fields and asset class of a position
func (p Position) Check() error {
	if strings.TrimSpace(p.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidPosition)
	}
	if !isFinite(p.Quantity) || p.Quantity < 0 {
		return fmt.Errorf("%w: %s has invalid quantity %v", ErrInvalidPosition, p.Symbol, p.Quantity)
	}
	if !isFinite(p.Price) || p.Price < 0 {
		return fmt.Errorf("%w: %s has invalid price %v", ErrInvalidPosition, p.Symbol, p.Price)
	}
	if p.Duration != nil && (!isFinite(*p.Duration) || *p.Duration < 0) {
		return fmt.Errorf("%w: %s has invalid duration %v", ErrInvalidPosition, p.Symbol, *p.Duration)
	}
	if _, err := ParseAssetClass(p.AssetClass); err != nil {
		return fmt.Errorf("%s: %w", p.Symbol, err)
	}
	return nil
}

// Portfolio is the set of positions evaluated in a single stress run
type Portfolio struct {
	ID           string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string     `json:"name,omitempty" yaml:"name,omitempty"`
	BaseCurrency string     `json:"base_currency,omitempty" yaml:"base_currency,omitempty" validate:"omitempty,len=3"`
	Positions    []Position `json:"positions" yaml:"positions" validate:"dive"`
}

// DefaultBaseCurrency is assumed when a portfolio does not declare one
const DefaultBaseCurrency = "USD"

// Base returns the portfolio base currency, upper-cased, defaulting to USD
func (p Portfolio) Base() string {
	if p.BaseCurrency == "" {
		return DefaultBaseCurrency
	}
	return strings.ToUpper(p.BaseCurrency)
}

// Options carries caller-supplied run options. Confidence and time horizon are
// accepted for interface compatibility and echoed back; no metric uses them.
type Options struct {
	ConfidenceLevel float64 `json:"confidence_level,omitempty" yaml:"confidence_level,omitempty" validate:"omitempty,gt=0,lt=1"`
	TimeHorizonDays int     `json:"time_horizon_days,omitempty" yaml:"time_horizon_days,omitempty" validate:"omitempty,gte=0"`
}

// RunInput is the complete input of a stress run
type RunInput struct {
	Portfolio Portfolio `json:"portfolio" yaml:"portfolio"`
	Scenario  Scenario  `json:"scenario" yaml:"scenario"`
	Options   Options   `json:"options,omitempty" yaml:"options,omitempty"`
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
