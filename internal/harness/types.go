package harness

import (
	"fmt"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
	"github.com/Moop-Lang/Moop-wasm/internal/membrane"
)

// UnitOutcome is the observable result of one scenario unit.
type UnitOutcome struct {
	Seq       int64    `json:"seq"`
	Success   bool     `json:"success"`
	ErrorCode string   `json:"error_code"`
	ErrorLine int      `json:"error_line,omitempty"`
	Cells     []string `json:"cells"`
	Crossings []string `json:"crossings"`
	Graph     []string `json:"graph"`
	Warnings  []string `json:"warnings"`
}

func newUnitOutcome(res *compiler.Result) UnitOutcome {
	out := UnitOutcome{
		Seq:       res.Seq,
		Success:   res.Success,
		ErrorCode: res.ErrorCode(),
		Cells:     []string{},
		Crossings: make([]string, 0, len(res.Crossings)),
		Graph:     append([]string{}, res.InheritanceRelations...),
		Warnings:  append([]string{}, res.Warnings...),
	}
	if res.Err != nil {
		out.ErrorLine = res.Err.Line
	}
	if res.Program != nil {
		for _, c := range res.Program.Cells() {
			out.Cells = append(out.Cells, c.String())
		}
	}
	for _, c := range res.Crossings {
		out.Crossings = append(out.Crossings, formatCrossing(c))
	}
	return out
}

// formatCrossing renders "opcode @tag (cell n)", dropping the tag when
// the crossing came from an untagged effect.
func formatCrossing(c membrane.Crossing) string {
	if c.Tag == "" {
		return fmt.Sprintf("%s (cell %d)", c.Opcode, c.CellID)
	}
	return fmt.Sprintf("%s @%s (cell %d)", c.Opcode, c.Tag, c.CellID)
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation held and the session replayed
	// deterministically from the store.
	Pass bool `json:"pass"`

	SessionID string        `json:"session_id"`
	Units     []UnitOutcome `json:"units"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(sessionID string) *Result {
	return &Result{
		Pass:      true,
		SessionID: sessionID,
		Units:     []UnitOutcome{},
		Errors:    []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}
