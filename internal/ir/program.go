package ir

import (
	"fmt"
	"strings"
)

// Program is an append-only, ordered sequence of cells.
// The zero value is an empty program ready for use.
type Program struct {
	cells []Cell
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{}
}

// Append assigns the next ID to c and adds it to the end of the program.
// The stored cell owns a private copy of c.Args. Returns the stored cell.
func (p *Program) Append(c Cell) Cell {
	stored := c.clone()
	stored.ID = uint32(len(p.cells) + 1)
	p.cells = append(p.cells, stored)
	return stored.clone()
}

// Len returns the number of cells.
func (p *Program) Len() int {
	return len(p.cells)
}

// At returns the i-th cell (0-based).
func (p *Program) At(i int) Cell {
	return p.cells[i].clone()
}

// Cells returns a copy of all cells in program order.
func (p *Program) Cells() []Cell {
	out := make([]Cell, len(p.cells))
	for i, c := range p.cells {
		out[i] = c.clone()
	}
	return out
}

// Counts returns the number of R-term and D-term cells.
func (p *Program) Counts() (rTerms, dTerms int) {
	for _, c := range p.cells {
		if c.Reversible {
			rTerms++
		} else {
			dTerms++
		}
	}
	return rTerms, dTerms
}

// DTerms returns the D-term cells in program order.
func (p *Program) DTerms() []Cell {
	var out []Cell
	for _, c := range p.cells {
		if !c.Reversible {
			out = append(out, c.clone())
		}
	}
	return out
}

// UndoPlan returns the cells that undo the program's trailing reversible
// suffix, latest first. Undo stops at the most recent D-term cell, since
// nothing before a membrane crossing can be rolled back. A reversible cell
// without a known inverse also stops the plan.
func (p *Program) UndoPlan() []Cell {
	plan := []Cell{}
	for i := len(p.cells) - 1; i >= 0; i-- {
		inv, ok := p.cells[i].Invert()
		if !ok {
			break
		}
		plan = append(plan, inv)
	}
	return plan
}

// Listing renders the program one cell per line as "[i] op(a, b) [R]".
func (p *Program) Listing() string {
	var sb strings.Builder
	for i, c := range p.cells {
		fmt.Fprintf(&sb, "[%d] %s\n", i, c.String())
	}
	return sb.String()
}

// Value returns the canonical-JSON value of the program, matching the
// non-debug HRIR schema.
func (p *Program) Value() IRObject {
	cells := make(IRArray, len(p.cells))
	for i, c := range p.cells {
		cells[i] = c.Value()
	}
	return IRObject{
		"cell_count": IRInt(len(p.cells)),
		"cells":      cells,
	}
}

// Validate checks structural consistency: IDs strictly increasing from 1
// and every opcode non-empty.
func (p *Program) Validate() error {
	for i, c := range p.cells {
		if c.ID != uint32(i+1) {
			return fmt.Errorf("cell %d: id %d out of sequence", i, c.ID)
		}
		if c.Opcode == "" {
			return fmt.Errorf("cell %d: empty opcode", i)
		}
	}
	return nil
}
