// Package config loads compile options from CUE, YAML, or TOML files.
//
// Every format starts from compiler.DefaultOptions; keys not present in the
// file keep their defaults and unknown keys are rejected. CUE documents are
// unified with the closed #Options schema embedded in this package, so the
// schema is also the single source of the defaults for CUE users.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
)

//go:embed schema.cue
var schemaSource string

// Format identifies an options file syntax.
type Format string

const (
	FormatCUE  Format = "cue"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".cue":
		return FormatCUE, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", &compiler.OptionsError{
			Source:  filename,
			Message: fmt.Sprintf("unsupported extension %q (want .cue, .yaml, .yml, or .toml)", filepath.Ext(filename)),
		}
	}
}

// Load reads an options file. The format follows the extension.
func Load(filename string) (compiler.Options, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return compiler.Options{}, err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return compiler.Options{}, &compiler.OptionsError{
			Source:  filename,
			Message: "cannot read file",
			Err:     err,
		}
	}
	return Decode(filename, format, data)
}

// Decode parses data in the given format. name labels error messages.
func Decode(name string, format Format, data []byte) (compiler.Options, error) {
	var (
		opts compiler.Options
		err  error
	)
	switch format {
	case FormatCUE:
		opts, err = decodeCUE(name, data)
	case FormatYAML:
		opts, err = decodeYAML(data)
	case FormatTOML:
		opts, err = decodeTOML(data)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		var oe *compiler.OptionsError
		if errors.As(err, &oe) {
			return compiler.Options{}, err
		}
		return compiler.Options{}, &compiler.OptionsError{
			Source:  name,
			Message: err.Error(),
			Err:     err,
		}
	}
	return opts, nil
}

// Schema returns the embedded CUE schema text.
func Schema() string {
	return schemaSource
}

func decodeCUE(name string, data []byte) (compiler.Options, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return compiler.Options{}, fmt.Errorf("embedded schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Options"))

	doc := ctx.CompileBytes(data, cue.Filename(name))
	if err := doc.Err(); err != nil {
		return compiler.Options{}, formatCUEError(err)
	}

	v := def.Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return compiler.Options{}, formatCUEError(err)
	}

	var opts compiler.Options
	if err := v.Decode(&opts); err != nil {
		return compiler.Options{}, formatCUEError(err)
	}
	return opts, nil
}

// formatCUEError flattens a CUE error list into one line per problem.
func formatCUEError(err error) error {
	var lines []string
	for _, e := range cueerrors.Errors(err) {
		lines = append(lines, strings.TrimSpace(cueerrors.Details(e, nil)))
	}
	if len(lines) == 0 {
		return err
	}
	return errors.New(strings.Join(lines, "; "))
}

func decodeYAML(data []byte) (compiler.Options, error) {
	opts := compiler.DefaultOptions()
	if len(bytes.TrimSpace(data)) == 0 {
		return opts, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		return compiler.Options{}, err
	}
	return opts, nil
}

func decodeTOML(data []byte) (compiler.Options, error) {
	opts := compiler.DefaultOptions()
	md, err := toml.Decode(string(data), &opts)
	if err != nil {
		return compiler.Options{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return compiler.Options{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return opts, nil
}
