package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"opts.cue", FormatCUE},
		{"opts.yaml", FormatYAML},
		{"opts.YML", FormatYAML},
		{"dir/opts.toml", FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatOf(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FormatOf("opts.json")
	require.Error(t, err)
	assert.Equal(t, compiler.ErrInvalidOptions, compiler.Code(err))
}

func TestLoadCUE(t *testing.T) {
	p := writeFile(t, "rio.cue", `
strict_mode: true
debug_mode:  true
`)
	opts, err := Load(p)
	require.NoError(t, err)

	want := compiler.DefaultOptions()
	want.StrictMode = true
	want.DebugMode = true
	assert.Equal(t, want, opts)
}

func TestLoadCUEDefaults(t *testing.T) {
	p := writeFile(t, "empty.cue", "")
	opts, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, compiler.DefaultOptions(), opts)
}

func TestLoadCUERejectsUnknownField(t *testing.T) {
	p := writeFile(t, "bad.cue", `strict: true`)
	_, err := Load(p)
	require.Error(t, err)
	assert.Equal(t, compiler.ErrInvalidOptions, compiler.Code(err))
	assert.Equal(t, compiler.KindOptions, compiler.Kind(err))
}

func TestLoadCUERejectsWrongType(t *testing.T) {
	p := writeFile(t, "bad.cue", `auto_hoist: "yes"`)
	_, err := Load(p)
	require.Error(t, err)
	assert.Equal(t, compiler.ErrInvalidOptions, compiler.Code(err))
}

func TestLoadYAML(t *testing.T) {
	p := writeFile(t, "rio.yaml", "auto_hoist: false\njson_output: true\n")
	opts, err := Load(p)
	require.NoError(t, err)

	want := compiler.DefaultOptions()
	want.AutoHoist = false
	want.JSONOutput = true
	assert.Equal(t, want, opts)
}

func TestLoadYAMLEmpty(t *testing.T) {
	p := writeFile(t, "rio.yml", "\n")
	opts, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, compiler.DefaultOptions(), opts)
}

func TestLoadYAMLRejectsUnknownField(t *testing.T) {
	p := writeFile(t, "rio.yaml", "strict_mode: true\nverbose: true\n")
	_, err := Load(p)
	require.Error(t, err)
	assert.Equal(t, compiler.ErrInvalidOptions, compiler.Code(err))
}

func TestLoadTOML(t *testing.T) {
	p := writeFile(t, "rio.toml", "reversible_default = false\nstrict_mode = true\n")
	opts, err := Load(p)
	require.NoError(t, err)

	want := compiler.DefaultOptions()
	want.ReversibleDefault = false
	want.StrictMode = true
	assert.Equal(t, want, opts)
}

func TestLoadTOMLRejectsUnknownKeys(t *testing.T) {
	p := writeFile(t, "rio.toml", "strict_mode = true\nzeta = 1\nalpha = 2\n")
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys: alpha, zeta")
	assert.Equal(t, compiler.ErrInvalidOptions, compiler.Code(err))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, compiler.ErrInvalidOptions, compiler.Code(err))
}

func TestSchemaCarriesDefaults(t *testing.T) {
	s := Schema()
	assert.Contains(t, s, "#Options")
	assert.Contains(t, s, "auto_hoist:         bool | *true")
}
