package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestRunPassingScenario(t *testing.T) {
	s := &Scenario{
		Name:        "chain",
		Description: "chain",
		SessionID:   "session-chain",
		Options:     defaultScenarioOptions(),
		Units: []Unit{
			{Source: "B <- A\ndef A.m.f"},
			{
				Source: "obj -> clone B.m.f",
				Expect: &Expect{
					Success: boolPtr(true),
					Cells:   []string{"clone(A.m.f) [R]"},
					Graph:   []string{"B <- A"},
				},
			},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "session-chain", result.SessionID)

	require.Len(t, result.Units, 2)
	assert.Equal(t, int64(1), result.Units[0].Seq)
	assert.Equal(t, int64(2), result.Units[1].Seq)
}

func TestRunReportsMismatches(t *testing.T) {
	s := &Scenario{
		Name:        "wrong",
		Description: "wrong expectations",
		SessionID:   "session-wrong",
		Options:     defaultScenarioOptions(),
		Units: []Unit{
			{
				Source: "math -> add 1 2",
				Expect: &Expect{
					Success:  boolPtr(false),
					Cells:    []string{"subtract(1, 2) [R]"},
					Warnings: []string{},
				},
			},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "expected failure")
	assert.Contains(t, result.Errors[1], "cells")
}

func TestRunFailedUnitOutcome(t *testing.T) {
	s := &Scenario{
		Name:        "cycle",
		Description: "cycle",
		SessionID:   "session-cycle",
		Options:     defaultScenarioOptions(),
		Units: []Unit{
			{
				Source: "A <- A",
				Expect: &Expect{Success: boolPtr(false), ErrorCode: "E007", ErrorLine: 1},
			},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)

	u := result.Units[0]
	assert.False(t, u.Success)
	assert.Equal(t, "E007", u.ErrorCode)
	assert.Equal(t, 1, u.ErrorLine)
	assert.Empty(t, u.Cells)
	assert.Empty(t, u.Crossings)
}

func TestRunUntaggedEffectCrossing(t *testing.T) {
	s := &Scenario{
		Name:        "untagged",
		Description: "untagged effect",
		SessionID:   "session-untagged",
		Options:     defaultScenarioOptions(),
		Units: []Unit{
			{
				Source: "file -> write x",
				Expect: &Expect{Crossings: []string{"write (cell 1)"}},
			},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestResultAddError(t *testing.T) {
	r := NewResult("s")
	assert.True(t, r.Pass)

	r.AddError("units[%d]: %s", 2, "broken")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"units[2]: broken"}, r.Errors)
}
