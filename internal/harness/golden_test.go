package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
)

func defaultScenarioOptions() compiler.Options {
	return compiler.DefaultOptions()
}

// TestConformance runs every scenario under testdata/scenarios and compares
// its snapshot with the matching golden file.
func TestConformance(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), ".yaml")
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)
			require.Equal(t, name, s.Name, "scenario name must match its file name")

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario errors: %v", result.Errors)
		})
	}
}

func TestSnapshotMarshal(t *testing.T) {
	snap := Snapshot{
		ScenarioName: "snap",
		Units: []UnitOutcome{{
			Seq:       1,
			Success:   true,
			Cells:     []string{"add(1, 2) [R]"},
			Crossings: []string{},
			Graph:     []string{},
			Warnings:  []string{},
		}},
	}

	data, err := snap.Marshal()
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario":"snap","units":[{"cells":["add(1, 2) [R]"],"crossings":[],"error_code":"","graph":[],"seq":1,"success":true,"warnings":[]}]}`,
		string(data))
}

func TestSnapshotIsStable(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/session_persistence.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := (&Snapshot{ScenarioName: s.Name, Units: first.Units}).Marshal()
	require.NoError(t, err)
	b, err := (&Snapshot{ScenarioName: s.Name, Units: second.Units}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
