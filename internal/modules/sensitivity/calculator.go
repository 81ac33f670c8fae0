package sensitivity

import (
	"math"
	"strings"

	"github.com/aristath/sentinel-stress/internal/domain"
	"github.com/aristath/sentinel-stress/internal/modules/classification"
)

// Sensitivities maps every value factor to its coefficient.
// A Sensitivities produced by Calculate always holds all of domain.Factors.
type Sensitivities map[domain.Factor]float64

// Get returns the coefficient of a factor
func (s Sensitivities) Get(f domain.Factor) float64 {
	return s[f]
}

func newSensitivities() Sensitivities {
	s := make(Sensitivities, len(domain.Factors))
	for _, f := range domain.Factors {
		s[f] = 0
	}
	return s
}

func fromBlend(b Blend) Sensitivities {
	s := newSensitivities()
	s[domain.FactorEquity] = b.Equity
	s[domain.FactorRates] = b.Rates
	s[domain.FactorCredit] = b.Credit
	s[domain.FactorFX] = b.FX
	s[domain.FactorCommodity] = b.Commodity
	return s
}

// Calculator derives factor sensitivities from asset metadata
type Calculator struct {
	tables    Tables
	leveraged map[string]struct{}
}

// NewCalculator creates a calculator over the given coefficient tables
func NewCalculator(tables Tables) *Calculator {
	tables = tables.normalized()
	leveraged := make(map[string]struct{}, len(tables.Equity.LeveragedSectors))
	for _, s := range tables.Equity.LeveragedSectors {
		leveraged[s] = struct{}{}
	}
	return &Calculator{tables: tables, leveraged: leveraged}
}

// Tables returns the coefficient tables in use
func (c *Calculator) Tables() Tables {
	return c.tables
}

// RiskProfile returns the static risk profile of an asset class
func (c *Calculator) RiskProfile(class domain.AssetClass) RiskProfile {
	return c.tables.RiskProfiles[string(class)]
}

// Calculate returns the sensitivity of an asset to every value factor
func (c *Calculator) Calculate(meta classification.Metadata) Sensitivities {
	switch m := meta.(type) {
	case classification.Equity:
		return c.equity(m)
	case classification.Bond:
		return c.bond(m)
	case classification.RealEstate:
		return fromBlend(c.tables.RealEstate)
	case classification.Commodity:
		s := newSensitivities()
		s[domain.FactorCommodity] = c.tables.Commodity.BaseBeta * adjustment(c.tables.Commodity.TypeMultipliers, string(m.Type))
		s[domain.FactorFX] = c.tables.Commodity.FX
		return s
	case classification.Cash:
		s := newSensitivities()
		if m.ForeignCurrency {
			s[domain.FactorFX] = c.tables.Cash.ForeignFX
		}
		return s
	case classification.Alternative:
		return fromBlend(c.tables.Alternative)
	default:
		return newSensitivities()
	}
}

func (c *Calculator) equity(m classification.Equity) Sensitivities {
	t := c.tables.Equity
	sector := strings.ToLower(m.Sector)

	s := newSensitivities()
	s[domain.FactorEquity] = t.BaseBeta *
		adjustment(t.MarketCap, string(m.MarketCap)) *
		adjustment(t.Sector, sector) *
		adjustment(t.Geography, string(m.Geography))

	if m.Geography != domain.GeographyUS {
		s[domain.FactorFX] = t.NonUSFX
	}

	_, leveraged := c.leveraged[sector]
	if leveraged || m.MarketCap == domain.MarketCapSmall {
		s[domain.FactorCredit] = t.LeveragedCredit
	}
	return s
}

func (c *Calculator) bond(m classification.Bond) Sensitivities {
	t := c.tables.Bond

	duration := t.DefaultDuration
	if m.Duration != nil {
		duration = *m.Duration
	}

	spread, ok := t.CreditSpreadFactors[m.CreditRating]
	if !ok {
		spread = t.DefaultCreditSpreadFactor
	}

	s := newSensitivities()
	if duration != 0 {
		s[domain.FactorRates] = -duration
	}
	s[domain.FactorCredit] = -spread * math.Max(duration, t.MinCreditDuration)
	if m.ForeignCurrency {
		s[domain.FactorFX] = t.ForeignFX
	}
	return s
}

// adjustment looks up a multiplier, 1.0 when the key is not in the table
func adjustment(table map[string]float64, key string) float64 {
	if v, ok := table[strings.ToLower(key)]; ok {
		return v
	}
	return 1.0
}
