package api

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
	"github.com/Moop-Lang/Moop-wasm/internal/testutil"
)

func newVM(t *testing.T) *VM {
	t.Helper()
	vm, err := CreateSession(compiler.WithIDGenerator(testutil.NewFixedIDGenerator("vm-1")))
	require.NoError(t, err)
	t.Cleanup(vm.Destroy)
	return vm
}

func TestCompileArithmetic(t *testing.T) {
	vm := newVM(t)

	h, err := vm.Compile("ObjectProto <- BaseProto\nMathProto <- ObjectProto\nmath -> add 5 3", DefaultOptions())
	require.NoError(t, err)
	defer h.Free()

	require.True(t, h.Success(), h.ErrorMessage())
	assert.Equal(t, `{"cell_count":1,"cells":[{"opcode":"add","args":["5","3"],"is_reversible":true}]}`, h.HRIRJSON())
	assert.Equal(t, []string{"ObjectProto <- BaseProto", "MathProto <- ObjectProto"}, h.InheritanceRelations())
	assert.Equal(t, `{"crossing_count":0,"crossings":[]}`, h.MembraneLog())
	assert.Equal(t, "[0] add(5, 3) [R]\n", h.ReversibleIR())
	assert.Equal(t, 1, h.Stats().RTermOps)
	assert.Empty(t, h.ErrorCode())
	assert.Empty(t, h.Warnings())
}

func TestJSONOutputIncludesRelations(t *testing.T) {
	vm := newVM(t)

	for _, jsonOut := range []bool{true, false} {
		opts := DefaultOptions()
		opts.JSONOutput = jsonOut

		h, err := vm.Compile("Dog <- Animal", opts)
		require.NoError(t, err)

		var doc struct {
			Success              bool     `json:"success"`
			Version              string   `json:"version"`
			InheritanceRelations []string `json:"inheritance_relations"`
		}
		require.NoError(t, json.Unmarshal([]byte(h.JSONOutput()), &doc))
		assert.True(t, doc.Success)
		assert.Equal(t, Version(), doc.Version)
		assert.Equal(t, []string{"Dog <- Animal"}, doc.InheritanceRelations)
		h.Free()
	}
}

func TestFailedCompileIsNotAnError(t *testing.T) {
	vm := newVM(t)

	h, err := vm.Compile("A <- B\nB <- A", DefaultOptions())
	require.NoError(t, err)
	defer h.Free()

	assert.False(t, h.Success())
	assert.Equal(t, compiler.ErrInheritanceCycle, h.ErrorCode())
	assert.NotEmpty(t, h.ErrorMessage())
	assert.Empty(t, h.HRIRJSON())
	assert.Empty(t, h.MembraneLog())
	assert.Equal(t, []string{"A <- B"}, h.InheritanceRelations())
}

func TestRegistryPersistsAcrossCompiles(t *testing.T) {
	vm := newVM(t)

	h1, err := vm.Compile("Animal <- Base\ndef Animal.speak", DefaultOptions())
	require.NoError(t, err)
	require.True(t, h1.Success(), h1.ErrorMessage())
	h1.Free()

	opts := DefaultOptions()
	opts.StrictMode = true
	h2, err := vm.Compile("Dog <- Animal\n@io io -> output Dog.speak", opts)
	require.NoError(t, err)
	defer h2.Free()
	require.True(t, h2.Success(), h2.ErrorMessage())
	assert.Contains(t, h2.HRIRJSON(), `"Animal.speak"`)
}

func TestFreeZeroesAccessors(t *testing.T) {
	vm := newVM(t)

	h, err := vm.Compile(`@io io -> output "hi"`, DefaultOptions())
	require.NoError(t, err)
	require.True(t, h.Success())

	h.Free()
	h.Free()

	assert.True(t, h.Freed())
	assert.False(t, h.Success())
	assert.Empty(t, h.HRIRJSON())
	assert.Empty(t, h.JSONOutput())
	assert.Empty(t, h.MembraneLog())
	assert.Empty(t, h.CanonicalCode())
	assert.Empty(t, h.ReversibleIR())
	assert.Nil(t, h.InheritanceRelations())
	assert.Equal(t, Stats{}, h.Stats())
	assert.Nil(t, h.Result())
}

func TestDestroyedVMRejectsCompile(t *testing.T) {
	vm, err := CreateSession()
	require.NoError(t, err)
	assert.NotEmpty(t, vm.SessionID())

	vm.Destroy()
	vm.Destroy()

	h, err := vm.Compile("A <- B", DefaultOptions())
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.Nil(t, h)
	assert.Empty(t, vm.SessionID())
}

func TestResultOutlivesVM(t *testing.T) {
	vm, err := CreateSession()
	require.NoError(t, err)

	h, err := vm.Compile(`@io io -> output "hi"`, DefaultOptions())
	require.NoError(t, err)
	vm.Destroy()

	assert.True(t, h.Success())
	assert.Equal(t, 1, h.Stats().DTermOps)
	h.Free()
}

func TestSessionsAreIndependent(t *testing.T) {
	a := newVM(t)
	b := newVM(t)

	ha, err := a.Compile("Dog <- Animal", DefaultOptions())
	require.NoError(t, err)
	hb, err := b.Compile("Cat <- Animal", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Dog <- Animal"}, ha.InheritanceRelations())
	assert.Equal(t, []string{"Cat <- Animal"}, hb.InheritanceRelations())
}

func TestConcurrentCompilesAreSerialized(t *testing.T) {
	vm := newVM(t)

	var wg sync.WaitGroup
	handles := make([]*ResultHandle, 8)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := vm.Compile("math -> add 1 2", DefaultOptions())
			if err == nil {
				handles[i] = h
			}
		}(i)
	}
	wg.Wait()

	seqs := map[int64]bool{}
	for _, h := range handles {
		require.NotNil(t, h)
		require.True(t, h.Success(), h.ErrorMessage())
		seqs[h.Result().Seq] = true
	}
	assert.Len(t, seqs, len(handles))
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Proto.actor.func", true},
		{"Proto", true},
		{"Proto.actor", true},
		{"", false},
		{"Proto..func", false},
		{"1Proto.actor", false},
		{"a.b.c.d", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePath(tt.text))
		})
	}
}

func TestDefaultsAndVersion(t *testing.T) {
	opts := DefaultOptions()
	assert.False(t, opts.StrictMode)
	assert.True(t, opts.AutoHoist)
	assert.False(t, opts.DebugMode)
	assert.False(t, opts.JSONOutput)
	assert.True(t, opts.ReversibleDefault)
	assert.Equal(t, "Rio+RioVN v1.0.0", Version())
}
