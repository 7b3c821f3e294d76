// Package membrane records every crossing from the reversible domain into
// effectful territory.
//
// The tracker observes cells as they are emitted. Each D-term cell appends
// one Crossing whose Index counts D-term cells only, starting at 0. The log
// is append-only: crossings are never reordered or deduplicated, so
// filtering a program by !Reversible and projecting to (opcode, tag) always
// reproduces the log exactly.
package membrane

import (
	"fmt"

	"github.com/Moop-Lang/Moop-wasm/internal/ir"
)

// Crossing is one recorded membrane crossing.
type Crossing struct {
	Index  int    `json:"index"`
	Opcode string `json:"opcode"`
	Tag    string `json:"tag"`

	// CellID is the ID of the originating cell.
	CellID uint32 `json:"cell_id"`
}

// Tracker accumulates the crossing log for one compilation unit.
// A Tracker is not safe for concurrent use.
type Tracker struct {
	log []Crossing
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe records c if it is a D-term cell. R-term cells are ignored and
// do not consume an index.
func (t *Tracker) Observe(c ir.Cell) {
	if c.Reversible {
		return
	}
	t.log = append(t.log, Crossing{
		Index:  len(t.log),
		Opcode: c.Opcode,
		Tag:    c.Tag,
		CellID: c.ID,
	})
}

// Log returns a copy of the crossings in order.
func (t *Tracker) Log() []Crossing {
	out := make([]Crossing, len(t.log))
	copy(out, t.log)
	return out
}

// Len returns the number of crossings recorded.
func (t *Tracker) Len() int {
	return len(t.log)
}

// Project derives the crossing log a program implies.
func Project(p *ir.Program) []Crossing {
	t := NewTracker()
	for _, c := range p.Cells() {
		t.Observe(c)
	}
	return t.Log()
}

// Verify checks that log is exactly the projection of p's D-term cells to
// (opcode, tag), in order, with contiguous indices.
func Verify(p *ir.Program, log []Crossing) error {
	dterms := p.DTerms()
	if len(dterms) != len(log) {
		return fmt.Errorf("membrane: %d D-term cells but %d crossings", len(dterms), len(log))
	}
	for i, c := range dterms {
		x := log[i]
		if x.Index != i {
			return fmt.Errorf("membrane: crossing %d has index %d", i, x.Index)
		}
		if x.Opcode != c.Opcode || x.Tag != c.Tag {
			return fmt.Errorf("membrane: crossing %d is (%s, %q), cell %d is (%s, %q)",
				i, x.Opcode, x.Tag, c.ID, c.Opcode, c.Tag)
		}
	}
	return nil
}

// Hash identifies a crossing log by its (index, opcode, tag) entries.
func Hash(log []Crossing) (string, error) {
	entries := make(ir.IRArray, len(log))
	for i, x := range log {
		entries[i] = ir.IRObject{
			"index":  ir.IRInt(x.Index),
			"opcode": ir.IRString(x.Opcode),
			"tag":    ir.IRString(x.Tag),
		}
	}
	return ir.ContentHash(ir.DomainMembrane, entries)
}
