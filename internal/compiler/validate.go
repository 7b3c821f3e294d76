package compiler

import (
	"fmt"

	"github.com/Moop-Lang/Moop-wasm/internal/ir"
	"github.com/Moop-Lang/Moop-wasm/internal/membrane"
)

// validateUnit runs the post-emission consistency checks: program structure,
// the membrane projection, and the stats derived from both.
// Returns all problems found (does not fail-fast).
func validateUnit(p *ir.Program, log []membrane.Crossing, stats Stats) []error {
	var errs []error

	if err := p.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("program: %w", err))
	}
	if err := membrane.Verify(p, log); err != nil {
		errs = append(errs, err)
	}
	if stats.RTermOps+stats.DTermOps != p.Len() {
		errs = append(errs, fmt.Errorf("stats: %d R-terms + %d D-terms != %d cells",
			stats.RTermOps, stats.DTermOps, p.Len()))
	}
	if stats.MembraneCrossings != stats.DTermOps {
		errs = append(errs, fmt.Errorf("stats: %d crossings for %d D-terms",
			stats.MembraneCrossings, stats.DTermOps))
	}
	return errs
}
