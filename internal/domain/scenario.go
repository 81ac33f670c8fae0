package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// FactorChanges maps a factor to its shock.
// equity, fx, commodity and volatility are percentages (-25 means -25%);
// rates and credit are basis points. Omitted value factors are treated as 0.
type FactorChanges map[Factor]float64

// Get returns the change for a factor, 0 when omitted
func (fc FactorChanges) Get(f Factor) float64 {
	return fc[f]
}

// Volatility returns the declared volatility change, 0 when omitted
func (fc FactorChanges) Volatility() float64 {
	return fc[FactorVolatility]
}

// Check validates the factor keys and values
func (fc FactorChanges) Check() error {
	if len(fc) == 0 {
		return fmt.Errorf("%w: no factor changes declared", ErrInvalidScenario)
	}

	keys := make([]string, 0, len(fc))
	for f := range fc {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	for _, key := range keys {
		f := Factor(key)
		if !isKnownFactor(f) {
			return fmt.Errorf("%w: unknown factor %q", ErrInvalidScenario, key)
		}
		if !isFinite(fc[f]) {
			return fmt.Errorf("%w: factor %q is not a finite number", ErrInvalidScenario, key)
		}
	}

	if fc.Volatility() <= -100 {
		return fmt.Errorf("%w: volatility change %v would remove all volatility", ErrInvalidScenario, fc.Volatility())
	}
	return nil
}

// UnmarshalJSON rejects null, string and other non-numeric factor values
// instead of silently decoding them as zero.
func (fc *FactorChanges) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: factor changes must be an object: %v", ErrInvalidScenario, err)
	}

	out := make(FactorChanges, len(raw))
	for key, value := range raw {
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return fmt.Errorf("%w: factor %q has no value", ErrInvalidScenario, key)
		}
		var v float64
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return fmt.Errorf("%w: factor %q is not numeric", ErrInvalidScenario, key)
		}
		out[Factor(key)] = v
	}

	*fc = out
	return nil
}

// UnmarshalYAML applies the UnmarshalJSON rules to YAML documents. yaml.v3
// would otherwise decode a null or bare key as zero.
func (fc *FactorChanges) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: factor changes must be a mapping", ErrInvalidScenario)
	}

	out := make(FactorChanges, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		if value.Kind == yaml.AliasNode {
			value = value.Alias
		}
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: factor %q is not numeric", ErrInvalidScenario, key)
		}

		switch value.ShortTag() {
		case "!!int", "!!float":
		case "!!null":
			return fmt.Errorf("%w: factor %q has no value", ErrInvalidScenario, key)
		default:
			return fmt.Errorf("%w: factor %q is not numeric", ErrInvalidScenario, key)
		}

		var v float64
		if err := value.Decode(&v); err != nil {
			return fmt.Errorf("%w: factor %q is not numeric", ErrInvalidScenario, key)
		}
		out[Factor(key)] = v
	}

	*fc = out
	return nil
}

func isKnownFactor(f Factor) bool {
	if f == FactorVolatility {
		return true
	}
	for _, known := range Factors {
		if f == known {
			return true
		}
	}
	return false
}

// Scenario is a hypothetical market-stress event
type Scenario struct {
	ID            string        `json:"id,omitempty" yaml:"id,omitempty"`
	Name          string        `json:"name,omitempty" yaml:"name,omitempty"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty"`
	FactorChanges FactorChanges `json:"factor_changes" yaml:"factor_changes"`
}

// Check validates the scenario
func (s Scenario) Check() error {
	if err := s.FactorChanges.Check(); err != nil {
		if s.ID != "" {
			return fmt.Errorf("scenario %s: %w", s.ID, err)
		}
		return err
	}
	return nil
}
