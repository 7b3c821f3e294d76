package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/Moop-Lang/Moop-wasm/internal/ir"
)

// Snapshot captures the observable outcome of a scenario for golden
// comparison. Timings and hashes are left out; the replay check already
// covers hash stability.
type Snapshot struct {
	ScenarioName string
	Units        []UnitOutcome
}

// toCanonicalMap converts a Snapshot for canonical JSON serialization.
// ir.MarshalCanonical only handles IR types and primitives.
func (s *Snapshot) toCanonicalMap() map[string]any {
	units := make([]any, len(s.Units))
	for i, u := range s.Units {
		units[i] = map[string]any{
			"seq":        u.Seq,
			"success":    u.Success,
			"error_code": u.ErrorCode,
			"cells":      u.Cells,
			"crossings":  u.Crossings,
			"graph":      u.Graph,
			"warnings":   u.Warnings,
		}
	}
	return map[string]any{
		"scenario": s.ScenarioName,
		"units":    units,
	}
}

// Marshal renders the snapshot as canonical JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Expectation failures are reported through the returned Result, not t.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against the golden
// file named scenarioName.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{ScenarioName: scenarioName, Units: result.Units}
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
