package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compileInto compiles files into db through the CLI and returns the report.
func compileInto(t *testing.T, db string, files ...string) CompileReport {
	t.Helper()
	args := append([]string{"--format", "json", "compile", "--db", db}, files...)
	out, _, _ := execute(t, args...)

	var resp struct {
		Data CompileReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp.Data
}

func TestLogListsUnits(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "rio.db")
	ok := writeUnit(t, dir, "ok.rio", "@io io -> output \"a\"\n")
	bad := writeUnit(t, dir, "bad.rio", "A <- B\nB <- A\n")

	report := compileInto(t, db, ok, bad)
	require.Len(t, report.Units, 2)

	out, _, err := execute(t, "--format", "json", "log", "--db", db)
	require.NoError(t, err)

	var resp struct {
		Data []LogEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, int64(1), resp.Data[0].Seq)
	assert.True(t, resp.Data[0].Success)
	assert.Equal(t, 1, resp.Data[0].DTerms)
	assert.Equal(t, int64(2), resp.Data[1].Seq)
	assert.False(t, resp.Data[1].Success)
	assert.Equal(t, "E007", resp.Data[1].ErrorCode)
}

func TestLogShowsUnitCrossings(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "rio.db")
	f := writeUnit(t, dir, "u.rio", "@io io -> output \"a\"\nmath -> add 1 2\n@file file -> write \"b\"\n")

	report := compileInto(t, db, f)
	id := report.Units[0].UnitID
	require.NotEmpty(t, id)

	out, _, err := execute(t, "log", "--db", db, "--unit", id)
	require.NoError(t, err)
	assert.Contains(t, out, "crossing 0: output @io (cell 1)")
	assert.Contains(t, out, "crossing 1: write @file (cell 3)")
}

func TestLogUnknownUnit(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "rio.db")
	compileInto(t, db, writeUnit(t, dir, "u.rio", "A <- B\n"))

	_, _, err := execute(t, "log", "--db", db, "--unit", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLogMissingDatabase(t *testing.T) {
	out, _, err := execute(t, "log", "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E001]")
}

func TestLogEmptyDatabase(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "rio.db")
	compileInto(t, db, writeUnit(t, dir, "u.rio", "A <- B\n"))

	out, _, err := execute(t, "log", "--db", db, "--session", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "No units stored")
}

func TestReplayDeterministic(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "rio.db")
	base := writeUnit(t, dir, "base.rio", "Animal <- Base\ndef Animal.speak\n")
	dog := writeUnit(t, dir, "dog.rio", "Dog <- Animal\n@io io -> output Dog.speak\n")
	compileInto(t, db, base, dog)
	compileInto(t, db, dog)

	out, _, err := execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2 session(s), 3 unit(s)")
}

func TestReplayJSON(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "rio.db")
	report := compileInto(t, db, writeUnit(t, dir, "u.rio", "math -> add 1 2\n"))

	out, _, err := execute(t, "--format", "json", "replay", "--db", db, "--session", report.SessionID)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	assert.Equal(t, 1, resp.Data.TotalUnits)
}

func TestReplayRequiresDB(t *testing.T) {
	_, _, err := execute(t, "replay")
	require.Error(t, err)
}
