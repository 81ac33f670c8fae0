// Package sensitivity derives per-factor sensitivity coefficients from asset metadata.
package sensitivity

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/aristath/sentinel-stress/internal/domain"
	"gopkg.in/yaml.v3"
)

// Coefficient units:
//   - equity, fx, commodity: percent value change per 1% factor move
//   - rates, credit: percent value change per 100bp factor move
//
// Positive credit moves are spread widening, so credit coefficients are <= 0.
// Positive fx moves are foreign currencies appreciating against the base currency.

// TablesVersion identifies the built-in coefficient set
const TablesVersion = "2024.1"

// Equity coefficients
const (
	EquityBaseBeta            = 1.0
	EquityNonUSFXSensitivity  = 0.3
	EquityLeveragedCreditBeta = -0.1
)

// Bond coefficients
const (
	BondDefaultDuration           = 5.0
	BondMinCreditDuration         = 1.0
	BondDefaultCreditSpreadFactor = 0.6
	BondForeignFXSensitivity      = 0.5
)

// Real estate blend
const (
	RealEstateEquitySensitivity = 0.3
	RealEstateRatesSensitivity  = -0.5
)

// Commodity coefficients
const (
	CommodityBaseBeta        = 1.0
	CommodityFXSensitivity   = 0.1
	CashForeignFXSensitivity = 0.1
)

// Alternatives blend
const (
	AlternativeEquitySensitivity = 0.5
	AlternativeCreditSensitivity = -0.3
)

// MaxAdjustment bounds every multiplier in the tables
const MaxAdjustment = 3.0

// Blend is a fixed set of sensitivities for asset classes without sub-structure
type Blend struct {
	Equity    float64 `yaml:"equity" json:"equity"`
	Rates     float64 `yaml:"rates" json:"rates"`
	Credit    float64 `yaml:"credit" json:"credit"`
	FX        float64 `yaml:"fx" json:"fx"`
	Commodity float64 `yaml:"commodity" json:"commodity"`
}

// EquityTable holds the equity beta adjustments
type EquityTable struct {
	BaseBeta         float64            `yaml:"base_beta" json:"base_beta"`
	MarketCap        map[string]float64 `yaml:"market_cap" json:"market_cap"`
	Sector           map[string]float64 `yaml:"sector" json:"sector"`
	Geography        map[string]float64 `yaml:"geography" json:"geography"`
	NonUSFX          float64            `yaml:"non_us_fx" json:"non_us_fx"`
	LeveragedCredit  float64            `yaml:"leveraged_credit" json:"leveraged_credit"`
	LeveragedSectors []string           `yaml:"leveraged_sectors" json:"leveraged_sectors"`
}

// BondTable holds the duration and credit spread parameters
type BondTable struct {
	DefaultDuration           float64            `yaml:"default_duration" json:"default_duration"`
	MinCreditDuration         float64            `yaml:"min_credit_duration" json:"min_credit_duration"`
	CreditSpreadFactors       map[string]float64 `yaml:"credit_spread_factors" json:"credit_spread_factors"`
	DefaultCreditSpreadFactor float64            `yaml:"default_credit_spread_factor" json:"default_credit_spread_factor"`
	ForeignFX                 float64            `yaml:"foreign_fx" json:"foreign_fx"`
}

// CommodityTable holds the commodity pass-through parameters
type CommodityTable struct {
	BaseBeta        float64            `yaml:"base_beta" json:"base_beta"`
	TypeMultipliers map[string]float64 `yaml:"type_multipliers" json:"type_multipliers"`
	FX              float64            `yaml:"fx" json:"fx"`
}

// CashTable holds the cash parameters
type CashTable struct {
	ForeignFX float64 `yaml:"foreign_fx" json:"foreign_fx"`
}

// RiskProfile is the static risk description of an asset class
type RiskProfile struct {
	Volatility        float64 `yaml:"volatility" json:"volatility"`
	MarketCorrelation float64 `yaml:"market_correlation" json:"market_correlation"`
	Liquidity         float64 `yaml:"liquidity" json:"liquidity"`
}

// Tables is the complete, versioned coefficient configuration.
// A Tables value is treated as immutable once handed to a Calculator.
type Tables struct {
	Version      string                 `yaml:"version" json:"version"`
	Equity       EquityTable            `yaml:"equity" json:"equity"`
	Bond         BondTable              `yaml:"bond" json:"bond"`
	RealEstate   Blend                  `yaml:"real_estate" json:"real_estate"`
	Commodity    CommodityTable         `yaml:"commodity" json:"commodity"`
	Cash         CashTable              `yaml:"cash" json:"cash"`
	Alternative  Blend                  `yaml:"alternative" json:"alternative"`
	RiskProfiles map[string]RiskProfile `yaml:"risk_profiles" json:"risk_profiles"`
}

// DefaultTables returns a fresh copy of the built-in coefficient tables
func DefaultTables() Tables {
	return Tables{
		Version: TablesVersion,
		Equity: EquityTable{
			BaseBeta: EquityBaseBeta,
			MarketCap: map[string]float64{
				"small": 1.2,
				"mid":   1.0,
				"large": 0.95,
			},
			Sector: map[string]float64{
				"technology":             1.2,
				"consumer discretionary": 1.15,
				"financials":             1.1,
				"energy":                 1.1,
				"materials":              1.05,
				"industrials":            1.0,
				"communication services": 1.0,
				"diversified":            1.0,
				"real estate":            0.9,
				"healthcare":             0.85,
				"consumer staples":       0.7,
				"utilities":              0.6,
			},
			Geography: map[string]float64{
				"us":            1.0,
				"international": 1.1,
				"global":        1.05,
				"emerging":      1.3,
			},
			NonUSFX:          EquityNonUSFXSensitivity,
			LeveragedCredit:  EquityLeveragedCreditBeta,
			LeveragedSectors: []string{"financials", "real estate"},
		},
		Bond: BondTable{
			DefaultDuration:   BondDefaultDuration,
			MinCreditDuration: BondMinCreditDuration,
			CreditSpreadFactors: map[string]float64{
				"AAA": 0.2,
				"AA":  0.3,
				"A":   0.4,
				"BBB": 0.6,
				"BB":  1.0,
				"B":   1.5,
				"CCC": 2.0,
				"D":   2.5,
			},
			DefaultCreditSpreadFactor: BondDefaultCreditSpreadFactor,
			ForeignFX:                 BondForeignFXSensitivity,
		},
		RealEstate: Blend{
			Equity: RealEstateEquitySensitivity,
			Rates:  RealEstateRatesSensitivity,
		},
		Commodity: CommodityTable{
			BaseBeta: CommodityBaseBeta,
			TypeMultipliers: map[string]float64{
				"broad":             1.0,
				"precious_metals":   0.8,
				"energy":            1.1,
				"agriculture":       0.9,
				"industrial_metals": 1.0,
			},
			FX: CommodityFXSensitivity,
		},
		Cash: CashTable{
			ForeignFX: CashForeignFXSensitivity,
		},
		Alternative: Blend{
			Equity: AlternativeEquitySensitivity,
			Credit: AlternativeCreditSensitivity,
		},
		RiskProfiles: map[string]RiskProfile{
			string(domain.AssetClassEquity):      {Volatility: 0.20, MarketCorrelation: 0.8, Liquidity: 0.9},
			string(domain.AssetClassBond):        {Volatility: 0.08, MarketCorrelation: 0.1, Liquidity: 0.7},
			string(domain.AssetClassCash):        {Volatility: 0.01, MarketCorrelation: 0.0, Liquidity: 1.0},
			string(domain.AssetClassCommodity):   {Volatility: 0.25, MarketCorrelation: 0.3, Liquidity: 0.6},
			string(domain.AssetClassRealEstate):  {Volatility: 0.18, MarketCorrelation: 0.6, Liquidity: 0.8},
			string(domain.AssetClassAlternative): {Volatility: 0.30, MarketCorrelation: 0.4, Liquidity: 0.4},
		},
	}
}

// LoadTables reads coefficient tables from a YAML file. Sections omitted
// from the file keep their built-in values.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read coefficient tables: %w", err)
	}

	tables := DefaultTables()
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return Tables{}, fmt.Errorf("failed to parse coefficient tables YAML: %w", err)
	}

	tables = tables.normalized()
	if err := tables.Validate(); err != nil {
		return Tables{}, err
	}
	return tables, nil
}

// YAML renders the tables as YAML
func (t Tables) YAML() ([]byte, error) {
	data, err := yaml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal coefficient tables: %w", err)
	}
	return data, nil
}

// Validate checks that every coefficient is finite and every multiplier is in (0, MaxAdjustment]
func (t Tables) Validate() error {
	if strings.TrimSpace(t.Version) == "" {
		return fmt.Errorf("coefficient tables: version is required")
	}

	multipliers := map[string]float64{
		"equity.base_beta":    t.Equity.BaseBeta,
		"commodity.base_beta": t.Commodity.BaseBeta,
	}
	for name, table := range map[string]map[string]float64{
		"equity.market_cap":          t.Equity.MarketCap,
		"equity.sector":              t.Equity.Sector,
		"equity.geography":           t.Equity.Geography,
		"bond.credit_spread_factors": t.Bond.CreditSpreadFactors,
		"commodity.type_multipliers": t.Commodity.TypeMultipliers,
	} {
		for key, v := range table {
			multipliers[name+"."+key] = v
		}
	}
	multipliers["bond.default_credit_spread_factor"] = t.Bond.DefaultCreditSpreadFactor

	for _, name := range sortedKeys(multipliers) {
		v := multipliers[name]
		if !isFinite(v) || v <= 0 || v > MaxAdjustment {
			return fmt.Errorf("coefficient tables: %s = %v outside (0, %v]", name, v, MaxAdjustment)
		}
	}

	coefficients := map[string]float64{
		"equity.non_us_fx":         t.Equity.NonUSFX,
		"equity.leveraged_credit":  t.Equity.LeveragedCredit,
		"bond.foreign_fx":          t.Bond.ForeignFX,
		"commodity.fx":             t.Commodity.FX,
		"cash.foreign_fx":          t.Cash.ForeignFX,
		"real_estate.equity":       t.RealEstate.Equity,
		"real_estate.rates":        t.RealEstate.Rates,
		"real_estate.credit":       t.RealEstate.Credit,
		"real_estate.fx":           t.RealEstate.FX,
		"real_estate.commodity":    t.RealEstate.Commodity,
		"alternative.equity":       t.Alternative.Equity,
		"alternative.rates":        t.Alternative.Rates,
		"alternative.credit":       t.Alternative.Credit,
		"alternative.fx":           t.Alternative.FX,
		"alternative.commodity":    t.Alternative.Commodity,
		"bond.default_duration":    t.Bond.DefaultDuration,
		"bond.min_credit_duration": t.Bond.MinCreditDuration,
	}
	for _, name := range sortedKeys(coefficients) {
		v := coefficients[name]
		if !isFinite(v) || math.Abs(v) > 100 {
			return fmt.Errorf("coefficient tables: %s = %v is not a usable coefficient", name, v)
		}
	}
	if t.Bond.DefaultDuration <= 0 {
		return fmt.Errorf("coefficient tables: bond.default_duration must be positive")
	}
	if t.Bond.MinCreditDuration < 0 {
		return fmt.Errorf("coefficient tables: bond.min_credit_duration must not be negative")
	}

	for class, profile := range t.RiskProfiles {
		if _, err := domain.ParseAssetClass(class); err != nil {
			return fmt.Errorf("coefficient tables: risk profile for %w", err)
		}
		if !isFinite(profile.Volatility) || !isFinite(profile.MarketCorrelation) || !isFinite(profile.Liquidity) {
			return fmt.Errorf("coefficient tables: risk profile %s has non-finite values", class)
		}
	}
	return nil
}

// normalized lower-cases lookup keys so YAML authors can use display names
func (t Tables) normalized() Tables {
	t.Equity.MarketCap = lowerKeys(t.Equity.MarketCap)
	t.Equity.Sector = lowerKeys(t.Equity.Sector)
	t.Equity.Geography = lowerKeys(t.Equity.Geography)
	t.Commodity.TypeMultipliers = lowerKeys(t.Commodity.TypeMultipliers)

	ratingKeys := sortedKeys(t.Bond.CreditSpreadFactors)
	ratings := make(map[string]float64, len(ratingKeys))
	for _, k := range ratingKeys {
		ratings[strings.ToUpper(strings.TrimSpace(k))] = t.Bond.CreditSpreadFactors[k]
	}
	t.Bond.CreditSpreadFactors = ratings

	sectors := make([]string, len(t.Equity.LeveragedSectors))
	for i, s := range t.Equity.LeveragedSectors {
		sectors[i] = strings.ToLower(strings.TrimSpace(s))
	}
	t.Equity.LeveragedSectors = sectors
	return t
}

// lowerKeys folds keys to lower case. YAML overrides merge into the built-in
// maps, so a key spelled with capitals ("Technology") must win over the
// built-in lower-case key; reverse sorted order visits capitals last.
func lowerKeys(in map[string]float64) map[string]float64 {
	keys := sortedKeys(in)
	out := make(map[string]float64, len(in))
	for i := len(keys) - 1; i >= 0; i-- {
		out[strings.ToLower(strings.TrimSpace(keys[i]))] = in[keys[i]]
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
