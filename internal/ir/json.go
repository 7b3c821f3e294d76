package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// hrirJSON is the documented HRIR wire schema.
type hrirJSON struct {
	CellCount int        `json:"cell_count"`
	Cells     []cellJSON `json:"cells"`
}

type cellJSON struct {
	Opcode       string   `json:"opcode"`
	Args         []string `json:"args"`
	IsReversible bool     `json:"is_reversible"`
}

// debugHRIRJSON extends the schema with diagnostic cell fields.
type debugHRIRJSON struct {
	CellCount int             `json:"cell_count"`
	Cells     []debugCellJSON `json:"cells"`
}

type debugCellJSON struct {
	ID           uint32   `json:"id"`
	Opcode       string   `json:"opcode"`
	Args         []string `json:"args"`
	IsReversible bool     `json:"is_reversible"`
	Target       string   `json:"target"`
	Tag          string   `json:"tag"`
	Line         int      `json:"line"`
	Inverse      string   `json:"inverse"`
}

// MarshalProgram serializes p to the HRIR JSON schema:
//
//	{"cell_count":N,"cells":[{"opcode":"add","args":["5","3"],"is_reversible":true}]}
//
// With debug set each cell also carries id, target, tag, line, and inverse.
func MarshalProgram(p *Program, debug bool) ([]byte, error) {
	if debug {
		doc := debugHRIRJSON{CellCount: p.Len(), Cells: make([]debugCellJSON, p.Len())}
		for i, c := range p.cells {
			doc.Cells[i] = debugCellJSON{
				ID:           c.ID,
				Opcode:       c.Opcode,
				Args:         nonNil(c.Args),
				IsReversible: c.Reversible,
				Target:       c.Target,
				Tag:          c.Tag,
				Line:         c.Line,
				Inverse:      c.Inverse,
			}
		}
		return EncodeJSON(doc)
	}

	doc := hrirJSON{CellCount: p.Len(), Cells: make([]cellJSON, p.Len())}
	for i, c := range p.cells {
		doc.Cells[i] = cellJSON{
			Opcode:       c.Opcode,
			Args:         nonNil(c.Args),
			IsReversible: c.Reversible,
		}
	}
	return EncodeJSON(doc)
}

// UnmarshalProgram parses HRIR JSON in either the plain or the debug form.
// Cell order is preserved. IDs, when present, must match cell positions.
func UnmarshalProgram(data []byte) (*Program, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc debugHRIRJSON
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode hrir: %w", err)
	}
	if doc.CellCount != len(doc.Cells) {
		return nil, fmt.Errorf("decode hrir: cell_count %d does not match %d cells", doc.CellCount, len(doc.Cells))
	}

	p := NewProgram()
	for i, c := range doc.Cells {
		if c.ID != 0 && c.ID != uint32(i+1) {
			return nil, fmt.Errorf("decode hrir: cell %d has id %d", i, c.ID)
		}
		if c.Opcode == "" {
			return nil, fmt.Errorf("decode hrir: cell %d has empty opcode", i)
		}
		p.Append(Cell{
			Opcode:     c.Opcode,
			Args:       c.Args,
			Reversible: c.IsReversible,
			Tag:        c.Tag,
			Target:     c.Target,
			Line:       c.Line,
			Inverse:    c.Inverse,
		})
	}
	return p, nil
}

// EncodeJSON is json.Marshal without HTML escaping or the trailing
// newline json.Encoder adds.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
