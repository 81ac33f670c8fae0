// Package classification maps raw holdings onto enriched asset metadata.
package classification

import "github.com/aristath/sentinel-stress/internal/domain"

// Metadata is the enriched, immutable classification of a single position.
// It is a closed set of variants, one per asset class; each variant carries
// only the fields that are meaningful for that class.
type Metadata interface {
	AssetClass() domain.AssetClass
	isMetadata()
}

// Equity describes a stock or equity fund
type Equity struct {
	Sector    string           `json:"sector"`
	MarketCap domain.MarketCap `json:"market_cap"`
	Geography domain.Geography `json:"geography"`
}

// Bond describes a fixed-income holding.
// Duration is nil and CreditRating empty when neither the position nor the
// reference data knows them. A zero duration is a known value (bills, floaters).
type Bond struct {
	Duration        *float64 `json:"duration,omitempty"`
	CreditRating    string   `json:"credit_rating,omitempty"`
	ForeignCurrency bool     `json:"foreign_currency"`
}

// Cash describes a cash or money-market balance
type Cash struct {
	ForeignCurrency bool `json:"foreign_currency"`
}

// CommodityType sub-classifies commodity holdings
type CommodityType string

const (
	CommodityBroad            CommodityType = "broad"
	CommodityPreciousMetals   CommodityType = "precious_metals"
	CommodityEnergy           CommodityType = "energy"
	CommodityAgriculture      CommodityType = "agriculture"
	CommodityIndustrialMetals CommodityType = "industrial_metals"
)

// Commodity describes a commodity or commodity fund
type Commodity struct {
	Type CommodityType `json:"commodity_type"`
}

// Alternative describes hedge funds, private equity and similar holdings
type Alternative struct{}

// RealEstate describes REITs and direct property holdings
type RealEstate struct{}

func (Equity) AssetClass() domain.AssetClass      { return domain.AssetClassEquity }
func (Bond) AssetClass() domain.AssetClass        { return domain.AssetClassBond }
func (Cash) AssetClass() domain.AssetClass        { return domain.AssetClassCash }
func (Commodity) AssetClass() domain.AssetClass   { return domain.AssetClassCommodity }
func (Alternative) AssetClass() domain.AssetClass { return domain.AssetClassAlternative }
func (RealEstate) AssetClass() domain.AssetClass  { return domain.AssetClassRealEstate }

func (Equity) isMetadata()      {}
func (Bond) isMetadata()        {}
func (Cash) isMetadata()        {}
func (Commodity) isMetadata()   {}
func (Alternative) isMetadata() {}
func (RealEstate) isMetadata()  {}
