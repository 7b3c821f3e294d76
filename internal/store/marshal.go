package store

import (
	"encoding/json"
	"fmt"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
	"github.com/Moop-Lang/Moop-wasm/internal/ir"
)

// marshalStrings converts a string list to canonical JSON TEXT for storage.
func marshalStrings(ss []string) (string, error) {
	if ss == nil {
		ss = []string{}
	}
	data, err := ir.MarshalCanonical(ss)
	if err != nil {
		return "", fmt.Errorf("marshal strings: %w", err)
	}
	return string(data), nil
}

// unmarshalStrings parses JSON TEXT into a string list. Never returns nil.
func unmarshalStrings(data string) ([]string, error) {
	out := []string{}
	if data == "" || data == "[]" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal strings: %w", err)
	}
	return out, nil
}

// marshalOptions stores options under their snake_case keys.
func marshalOptions(o compiler.Options) (string, error) {
	data, err := ir.EncodeJSON(o)
	if err != nil {
		return "", fmt.Errorf("marshal options: %w", err)
	}
	return string(data), nil
}

// unmarshalOptions starts from the defaults so rows written before a new
// option existed still decode to sensible values.
func unmarshalOptions(data string) (compiler.Options, error) {
	o := compiler.DefaultOptions()
	if data == "" || data == "{}" {
		return o, nil
	}
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		return compiler.Options{}, fmt.Errorf("unmarshal options: %w", err)
	}
	return o, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
