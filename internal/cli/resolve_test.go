package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const diamondSource = `D <- B
D <- C
B <- A
C <- A
def B.greet
def C.greet
def A.base
`

func TestResolveThroughDiamond(t *testing.T) {
	f := writeUnit(t, t.TempDir(), "diamond.rio", diamondSource)

	out, _, err := execute(t, "resolve", "--source", f, "D.greet", "D.base")
	require.NoError(t, err)
	assert.Contains(t, out, "D.greet -> B.greet (depth 1, via [D B C A])")
	assert.Contains(t, out, "D.base -> A.base (depth 2, via [D B C A])")
}

func TestResolveUnresolved(t *testing.T) {
	f := writeUnit(t, t.TempDir(), "diamond.rio", diamondSource)

	out, _, err := execute(t, "--format", "json", "resolve", "-s", f, "D.greet", "D.missing", "Nope.x")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string       `json:"status"`
		Data   []Resolution `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.Len(t, resp.Data, 3)
	assert.True(t, resp.Data[0].Resolved)
	assert.Equal(t, "B", resp.Data[0].Definer)
	assert.False(t, resp.Data[1].Resolved)
	assert.Equal(t, "Unresolved", resp.Data[1].Kind)
	assert.Equal(t, "Unresolved", resp.Data[2].Kind)
}

func TestResolveMalformedPath(t *testing.T) {
	out, _, err := execute(t, "resolve", "A..b")
	require.Error(t, err)
	assert.Contains(t, out, "A..b: MalformedSegment")
}

func TestResolveKeepsDeclarationsOfFailedUnit(t *testing.T) {
	f := writeUnit(t, t.TempDir(), "partial.rio", "Dog <- Animal\ndef Animal.speak\nAnimal <- Dog\n")

	out, _, err := execute(t, "resolve", "--source", f, "Dog.speak")
	require.NoError(t, err)
	assert.Contains(t, out, "Dog.speak -> Animal.speak")
}
