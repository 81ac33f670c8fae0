package classification

import (
	"strings"

	"github.com/aristath/sentinel-stress/internal/domain"
)

// Neutral defaults used when neither the position nor the reference data
// supplies a classification field.
const (
	DefaultSector    = "Diversified"
	DefaultMarketCap = domain.MarketCapMid
	DefaultGeography = domain.GeographyUS
)

// Classifier enriches positions with asset metadata.
//
// Classify is total: unknown symbols, unknown enum spellings and missing
// reference data all resolve to neutral defaults, so downstream stages never
// see an unclassifiable asset.
type Classifier struct {
	reference ReferenceData
}

// NewClassifier creates a classifier backed by the given reference data (may be nil)
func NewClassifier(reference ReferenceData) *Classifier {
	if reference == nil {
		reference = StaticReference{}
	}
	return &Classifier{reference: reference}
}

// Classify derives the metadata of a position. Fields set on the position take
// precedence over reference data, which takes precedence over defaults.
// An unparseable asset class is treated as equity.
func (c *Classifier) Classify(pos domain.Position, baseCurrency string) Metadata {
	ref, _ := c.reference.Lookup(pos.Symbol)

	class, err := domain.ParseAssetClass(pos.AssetClass)
	if err != nil {
		class = domain.AssetClassEquity
	}

	currency := firstNonEmpty(pos.Currency, ref.Currency)
	foreign := isForeign(currency, baseCurrency)

	switch class {
	case domain.AssetClassBond:
		var duration *float64
		if pos.Duration != nil {
			d := *pos.Duration
			duration = &d
		} else if ref.Duration != nil {
			d := *ref.Duration
			duration = &d
		}
		return Bond{
			Duration:        duration,
			CreditRating:    NormalizeRating(firstNonEmpty(pos.CreditRating, ref.CreditRating)),
			ForeignCurrency: foreign,
		}
	case domain.AssetClassCash:
		return Cash{ForeignCurrency: foreign}
	case domain.AssetClassCommodity:
		return Commodity{Type: ParseCommodityType(firstNonEmpty(pos.CommodityType, ref.CommodityType))}
	case domain.AssetClassAlternative:
		return Alternative{}
	case domain.AssetClassRealEstate:
		return RealEstate{}
	default:
		return Equity{
			Sector:    CanonicalSector(firstNonEmpty(pos.Sector, ref.Sector)),
			MarketCap: ParseMarketCap(firstNonEmpty(pos.MarketCap, ref.MarketCap)),
			Geography: ParseGeography(firstNonEmpty(pos.Geography, ref.Geography)),
		}
	}
}

var sectorAliases = map[string]string{
	"technology":             "Technology",
	"tech":                   "Technology",
	"information technology": "Technology",
	"healthcare":             "Healthcare",
	"health care":            "Healthcare",
	"financial":              "Financials",
	"financials":             "Financials",
	"financial services":     "Financials",
	"consumer discretionary": "Consumer Discretionary",
	"consumer cyclical":      "Consumer Discretionary",
	"consumer staples":       "Consumer Staples",
	"consumer defensive":     "Consumer Staples",
	"energy":                 "Energy",
	"materials":              "Materials",
	"basic materials":        "Materials",
	"industrials":            "Industrials",
	"industrial":             "Industrials",
	"utilities":              "Utilities",
	"real estate":            "Real Estate",
	"communication services": "Communication Services",
	"telecommunications":     "Communication Services",
	"telecom":                "Communication Services",
	"diversified":            "Diversified",
}

// CanonicalSector maps sector spellings onto the canonical sector names.
// Unrecognised sectors are kept as given; empty resolves to Diversified.
func CanonicalSector(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultSector
	}
	if canonical, ok := sectorAliases[normalizeKey(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// ParseMarketCap resolves a market-cap bucket, defaulting to mid
func ParseMarketCap(raw string) domain.MarketCap {
	switch strings.ReplaceAll(normalizeKey(raw), " ", "") {
	case "small", "smallcap", "micro", "microcap":
		return domain.MarketCapSmall
	case "large", "largecap", "mega", "megacap":
		return domain.MarketCapLarge
	default:
		return DefaultMarketCap
	}
}

// ParseGeography resolves an exposure region, defaulting to US
func ParseGeography(raw string) domain.Geography {
	switch normalizeKey(raw) {
	case "international", "intl", "developed", "developed markets", "ex us":
		return domain.GeographyInternational
	case "emerging", "em", "emerging markets", "frontier":
		return domain.GeographyEmerging
	case "global", "world":
		return domain.GeographyGlobal
	default:
		return DefaultGeography
	}
}

// ParseCommodityType resolves a commodity sub-class, defaulting to broad
func ParseCommodityType(raw string) CommodityType {
	switch normalizeKey(raw) {
	case "precious metals", "precious", "gold", "silver", "platinum":
		return CommodityPreciousMetals
	case "energy", "oil", "crude", "natural gas":
		return CommodityEnergy
	case "agriculture", "agricultural", "grains", "softs", "livestock":
		return CommodityAgriculture
	case "industrial metals", "base metals", "copper", "aluminium", "aluminum":
		return CommodityIndustrialMetals
	default:
		return CommodityBroad
	}
}

var ratingAliases = map[string]string{
	"AAA": "AAA", "AA": "AA", "A": "A", "BBB": "BBB", "BB": "BB", "B": "B",
	"CCC": "CCC", "CC": "CCC", "C": "CCC", "D": "D", "SD": "D", "RD": "D",
	// Moody's
	"BAA": "BBB", "BA": "BB", "CAA": "CCC", "CA": "CCC",
	// Buckets
	"IG": "BBB", "INVESTMENTGRADE": "BBB",
	"HY": "B", "HIGHYIELD": "B", "JUNK": "B",
	"GOVT": "AAA", "GOVERNMENT": "AAA", "TREASURY": "AAA",
}

// NormalizeRating maps S&P, Fitch and Moody's ratings onto the S&P letter
// scale without notches. Unknown ratings normalise to "" (unrated).
func NormalizeRating(raw string) string {
	r := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	r = strings.TrimRight(r, "+-123")
	if r == "" {
		return ""
	}
	if canonical, ok := ratingAliases[r]; ok {
		return canonical
	}
	return ""
}

func normalizeKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	return strings.Join(strings.Fields(key), " ")
}

func isForeign(currency, base string) bool {
	if currency == "" {
		return false
	}
	if base == "" {
		base = domain.DefaultBaseCurrency
	}
	return !strings.EqualFold(strings.TrimSpace(currency), base)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
