package ir

import (
	"slices"
	"strings"
)

// Cell is one unit of emitted HRIR.
//
// Opcode, Args, and Reversible form the program proper and are always
// serialized. The remaining fields are diagnostics emitted only in debug
// mode.
type Cell struct {
	// ID is the 1-based position assigned by Program.Append.
	ID uint32

	Opcode string
	Args   []string

	// Reversible is false for D-term cells.
	Reversible bool

	// Tag is the explicit effect marker without its '@', or "".
	Tag string

	// Target is the receiver token the operation was written against.
	Target string

	// Line is the 1-based source line, or 0 when unknown.
	Line int

	// Inverse is the opcode that undoes this cell, or "" when none exists.
	Inverse string
}

// IsDTerm reports whether the cell crosses the membrane.
func (c Cell) IsDTerm() bool {
	return !c.Reversible
}

// Term returns "R" for reversible cells and "D" otherwise.
func (c Cell) Term() string {
	if c.Reversible {
		return "R"
	}
	return "D"
}

// HasInverse reports whether the cell can be undone by another cell.
func (c Cell) HasInverse() bool {
	return c.Reversible && c.Inverse != ""
}

// Invert returns the cell that undoes c: same arguments, inverse opcode.
// Returns false for D-term cells and reversible cells without a known inverse.
func (c Cell) Invert() (Cell, bool) {
	if !c.HasInverse() {
		return Cell{}, false
	}
	inv := c.clone()
	inv.ID = 0
	inv.Opcode, inv.Inverse = c.Inverse, c.Opcode
	return inv, true
}

// String renders the cell the way program listings show it.
func (c Cell) String() string {
	var sb strings.Builder
	sb.WriteString(c.Opcode)
	sb.WriteByte('(')
	sb.WriteString(strings.Join(c.Args, ", "))
	sb.WriteString(") [")
	sb.WriteString(c.Term())
	sb.WriteByte(']')
	return sb.String()
}

func (c Cell) clone() Cell {
	c.Args = slices.Clone(c.Args)
	if c.Args == nil {
		c.Args = []string{}
	}
	return c
}

// Value returns the canonical-JSON value of the cell's program fields.
func (c Cell) Value() IRObject {
	return IRObject{
		"opcode":        IRString(c.Opcode),
		"args":          Strings(c.Args),
		"is_reversible": IRBool(c.Reversible),
	}
}
