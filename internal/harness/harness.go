package harness

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
	"github.com/Moop-Lang/Moop-wasm/internal/store"
	"github.com/Moop-Lang/Moop-wasm/internal/testutil"
)

// epoch anchors the stepped wall clock so phase timings are reproducible.
var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Create a session with the scenario's fixed id and deterministic clocks
//  2. Compile each unit in order, store it, and check its expectations
//  3. Replay the stored session and report any divergence
//
// An error is returned only when the harness itself cannot proceed.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	session := compiler.NewSession(
		compiler.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.SessionID)),
		compiler.WithClock(testutil.NewDeterministicClock()),
		compiler.WithNow(testutil.StepNow(epoch, time.Millisecond)),
	)
	defer session.Close()

	ctx := context.Background()
	result := NewResult(session.ID())

	for i, unit := range scenario.Units {
		opts, err := scenario.UnitOptions(i)
		if err != nil {
			return nil, fmt.Errorf("units[%d]: %w", i, err)
		}

		res := session.Compile(unit.Source, opts)
		if _, err := st.WriteResult(ctx, res); err != nil {
			return nil, fmt.Errorf("units[%d]: store: %w", i, err)
		}

		outcome := newUnitOutcome(res)
		result.Units = append(result.Units, outcome)
		if unit.Expect != nil {
			checkExpect(result, i, unit.Expect, outcome, res.ErrorMessage())
		}
	}

	report, err := st.Replay(ctx, session.ID())
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	for _, m := range report.Mismatches {
		result.AddError("replay: seq %d: %s stored %q, replayed %q", m.Seq, m.Field, m.Stored, m.Replayed)
	}
	return result, nil
}

// checkExpect compares one unit against its expect clause.
func checkExpect(r *Result, i int, want *Expect, got UnitOutcome, message string) {
	if want.Success != nil && *want.Success != got.Success {
		if got.Success {
			r.AddError("units[%d]: expected failure, compiled successfully", i)
		} else {
			r.AddError("units[%d]: expected success, got %s: %s", i, got.ErrorCode, message)
		}
	}
	if want.ErrorCode != "" && want.ErrorCode != got.ErrorCode {
		r.AddError("units[%d]: error code: expected %q, got %q", i, want.ErrorCode, got.ErrorCode)
	}
	if want.ErrorLine != 0 && want.ErrorLine != got.ErrorLine {
		r.AddError("units[%d]: error line: expected %d, got %d", i, want.ErrorLine, got.ErrorLine)
	}
	checkList(r, i, "cells", want.Cells, got.Cells)
	checkList(r, i, "crossings", want.Crossings, got.Crossings)
	checkList(r, i, "graph", want.Graph, got.Graph)
	checkList(r, i, "warnings", want.Warnings, got.Warnings)
}

// checkList requires an exact, ordered match. A nil want is not checked.
func checkList(r *Result, i int, field string, want, got []string) {
	if want == nil || slices.Equal(want, got) {
		return
	}
	r.AddError("units[%d]: %s: expected %q, got %q", i, field, want, got)
}
