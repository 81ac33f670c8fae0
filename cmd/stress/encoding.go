package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

func decodeJSON(data []byte, dst interface{}) error {
	return json.Unmarshal(data, dst)
}

// encode renders v as indented JSON or as YAML
func encode(format string, v interface{}) ([]byte, error) {
	switch format {
	case "", "json":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "yaml":
		// Round-trip through JSON so map keys and field names follow the json tags
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil, err
		}
		return yaml.Marshal(generic)
	default:
		return nil, fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
