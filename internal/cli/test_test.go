package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: add
description: one reversible cell
units:
  - source: "math -> add 5 3"
    expect:
      success: true
      cells: ["add(5, 3) [R]"]
`

const failingScenario = `name: wrong
description: expectation that does not hold
units:
  - source: "math -> add 5 3"
    expect:
      success: false
`

func TestTestCommandPasses(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "add.yaml", passingScenario)

	stdout, _, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ add")
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}

func TestTestCommandFailure(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "add.yaml", passingScenario)
	writeUnit(t, dir, "wrong.yaml", failingScenario)

	stdout, _, err := execute(t, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "add.yaml", passingScenario)
	writeUnit(t, dir, "wrong.yaml", failingScenario)

	stdout, _, err := execute(t, "test", dir, "--filter", "a*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "add.yaml", passingScenario)

	stdout, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "add.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"cells":["add(5, 3) [R]"]`)

	_, _, err = execute(t, "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "add.golden"), []byte("{}"), 0o644))
	stdout, _, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "does not match golden file")
}

func TestTestCommandMissingDir(t *testing.T) {
	_, _, err := execute(t, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandBadScenario(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "bad.yaml", "name: bad\n")

	stdout, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "✗ bad.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}
