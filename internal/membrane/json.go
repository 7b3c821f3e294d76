package membrane

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Moop-Lang/Moop-wasm/internal/ir"
)

type logJSON struct {
	CrossingCount int            `json:"crossing_count"`
	Crossings     []crossingJSON `json:"crossings"`
}

type crossingJSON struct {
	Index  int    `json:"index"`
	Opcode string `json:"opcode"`
	Tag    string `json:"tag"`
}

type debugLogJSON struct {
	CrossingCount int        `json:"crossing_count"`
	Crossings     []Crossing `json:"crossings"`
}

// MarshalLog serializes log as
//
//	{"crossing_count":1,"crossings":[{"index":0,"opcode":"output","tag":"io"}]}
//
// With debug set each crossing also carries cell_id.
func MarshalLog(log []Crossing, debug bool) ([]byte, error) {
	if debug {
		doc := debugLogJSON{CrossingCount: len(log), Crossings: append([]Crossing{}, log...)}
		return ir.EncodeJSON(doc)
	}

	doc := logJSON{CrossingCount: len(log), Crossings: make([]crossingJSON, len(log))}
	for i, x := range log {
		doc.Crossings[i] = crossingJSON{Index: x.Index, Opcode: x.Opcode, Tag: x.Tag}
	}
	return ir.EncodeJSON(doc)
}

// UnmarshalLog parses either form produced by MarshalLog.
func UnmarshalLog(data []byte) ([]Crossing, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc debugLogJSON
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode membrane log: %w", err)
	}
	if doc.CrossingCount != len(doc.Crossings) {
		return nil, fmt.Errorf("decode membrane log: crossing_count %d does not match %d crossings",
			doc.CrossingCount, len(doc.Crossings))
	}
	for i, x := range doc.Crossings {
		if x.Index != i {
			return nil, fmt.Errorf("decode membrane log: crossing %d has index %d", i, x.Index)
		}
	}
	if doc.Crossings == nil {
		doc.Crossings = []Crossing{}
	}
	return doc.Crossings, nil
}
