package classification

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reference is what an external reference data source knows about a symbol.
// Every field is optional.
type Reference struct {
	Name          string   `yaml:"name,omitempty" json:"name,omitempty"`
	Sector        string   `yaml:"sector,omitempty" json:"sector,omitempty"`
	MarketCap     string   `yaml:"market_cap,omitempty" json:"market_cap,omitempty"`
	Geography     string   `yaml:"geography,omitempty" json:"geography,omitempty"`
	Duration      *float64 `yaml:"duration,omitempty" json:"duration,omitempty"`
	CreditRating  string   `yaml:"credit_rating,omitempty" json:"credit_rating,omitempty"`
	Currency      string   `yaml:"currency,omitempty" json:"currency,omitempty"`
	CommodityType string   `yaml:"commodity_type,omitempty" json:"commodity_type,omitempty"`
}

// ReferenceData resolves symbols to reference records
type ReferenceData interface {
	Lookup(symbol string) (Reference, bool)
}

// StaticReference is an in-memory reference table keyed by upper-case symbol
type StaticReference map[string]Reference

// Lookup returns the reference record for a symbol (case-insensitive)
func (s StaticReference) Lookup(symbol string) (Reference, bool) {
	ref, ok := s[strings.ToUpper(strings.TrimSpace(symbol))]
	return ref, ok
}

type referenceFile struct {
	Version string               `yaml:"version"`
	Symbols map[string]Reference `yaml:"symbols"`
}

// LoadReference reads a YAML reference file of the form:
//
//	version: "2024-06"
//	symbols:
//	  VCIT: {duration: 6.2, credit_rating: BBB}
func LoadReference(path string) (StaticReference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference data: %w", err)
	}

	var file referenceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse reference YAML: %w", err)
	}

	ref := make(StaticReference, len(file.Symbols))
	for symbol, record := range file.Symbols {
		if record.Duration != nil && *record.Duration < 0 {
			return nil, fmt.Errorf("reference %s: negative duration %v", symbol, *record.Duration)
		}
		ref[strings.ToUpper(strings.TrimSpace(symbol))] = record
	}
	return ref, nil
}
