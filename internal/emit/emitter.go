// Package emit translates parsed operations into classified HRIR cells.
//
// Classification, in priority order:
//  1. An explicit effect tag makes the cell a D-term carrying that tag.
//  2. An effectful receiver (io, file, network, system) makes it a D-term.
//  3. The static opcode table decides.
//  4. Unknown opcodes take the configured default, R-term unless told
//     otherwise. Under strict mode they are rejected instead.
//
// Argument tokens that look like canonical paths are resolved through the
// inheritance registry before the cell is appended.
package emit

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Moop-Lang/Moop-wasm/internal/ir"
	"github.com/Moop-Lang/Moop-wasm/internal/path"
	"github.com/Moop-Lang/Moop-wasm/internal/registry"
)

// PlaceholderPrefix marks an argument that could not be resolved in
// best-effort mode.
const PlaceholderPrefix = "?"

// Operation is one parsed operation statement.
type Operation struct {
	Target string
	Opcode string
	Args   []string
	Tag    string // without the leading '@'
	Line   int

	// Statement is the rendered source statement, used in diagnostics.
	Statement string
}

// Options control classification and resolution.
type Options struct {
	// Strict turns unresolved references and untagged unknown opcodes
	// into errors.
	Strict bool

	// ReversibleDefault is the class given to untagged unknown opcodes.
	ReversibleDefault bool
}

// Resolver resolves canonical paths. *registry.Registry implements it.
type Resolver interface {
	Resolve(p path.CanonicalPath) (registry.Target, error)
}

// Observer receives every cell after it is appended.
type Observer interface {
	Observe(c ir.Cell)
}

// Emitter appends classified cells to one program.
// An Emitter is not safe for concurrent use.
type Emitter struct {
	resolver  Resolver
	program   *ir.Program
	opts      Options
	observers []Observer
	warnings  []string
}

// New creates an emitter writing to program.
func New(resolver Resolver, program *ir.Program, opts Options, observers ...Observer) *Emitter {
	return &Emitter{
		resolver:  resolver,
		program:   program,
		opts:      opts,
		observers: observers,
	}
}

// Emit classifies op, resolves its path arguments, appends the resulting
// cell to the program, and notifies observers.
//
// On error nothing is appended.
func (e *Emitter) Emit(op Operation) (ir.Cell, error) {
	code := Lookup(op.Opcode)
	if e.opts.Strict && !code.Known() && op.Tag == "" && !IsEffectTarget(op.Target) {
		return ir.Cell{}, &Error{
			Kind:      KindUnknownOpcode,
			Opcode:    op.Opcode,
			Token:     op.Opcode,
			Line:      op.Line,
			Statement: op.Statement,
		}
	}

	target, err := e.resolveToken(op, op.Target)
	if err != nil {
		return ir.Cell{}, err
	}

	args := make([]string, len(op.Args))
	for i, tok := range op.Args {
		args[i], err = e.resolveToken(op, tok)
		if err != nil {
			return ir.Cell{}, err
		}
	}

	reversible := Classify(op, e.opts.ReversibleDefault)
	cell := ir.Cell{
		Opcode:     op.Opcode,
		Args:       args,
		Reversible: reversible,
		Target:     target,
		Line:       op.Line,
	}
	if !reversible {
		cell.Tag = op.Tag
	} else if inv := code.Inverse(); inv.Known() {
		cell.Inverse = inv.String()
	}

	cell = e.program.Append(cell)
	for _, obs := range e.observers {
		obs.Observe(cell)
	}
	return cell, nil
}

// Warnings returns best-effort diagnostics collected so far.
func (e *Emitter) Warnings() []string {
	return append([]string(nil), e.warnings...)
}

// Classify reports whether op is reversible.
func Classify(op Operation, reversibleDefault bool) bool {
	if op.Tag != "" || IsEffectTarget(op.Target) {
		return false
	}
	switch Lookup(op.Opcode).Term() {
	case TermR:
		return true
	case TermD:
		return false
	default:
		return reversibleDefault
	}
}

// resolveToken returns tok unchanged unless it looks like a canonical path,
// in which case it is resolved to the defining prototype's path.
func (e *Emitter) resolveToken(op Operation, tok string) (string, error) {
	if !LooksLikePath(tok) {
		return tok, nil
	}

	p, err := path.Parse(tok)
	if err != nil {
		return "", &Error{
			Kind:      KindUnresolvableReference,
			Opcode:    op.Opcode,
			Token:     tok,
			Line:      op.Line,
			Statement: op.Statement,
			Err:       err,
		}
	}

	resolved, err := e.resolver.Resolve(p)
	if err != nil {
		if e.opts.Strict {
			return "", &Error{
				Kind:      KindUnresolvableReference,
				Opcode:    op.Opcode,
				Token:     tok,
				Line:      op.Line,
				Statement: op.Statement,
				Err:       err,
			}
		}
		e.warnings = append(e.warnings, fmt.Sprintf("line %d: unresolved reference %s kept as placeholder", op.Line, tok))
		return PlaceholderPrefix + tok, nil
	}
	return resolved.Path.String(), nil
}

// LooksLikePath reports whether tok should be treated as a canonical path
// reference: unquoted, dotted, and starting with a letter.
func LooksLikePath(tok string) bool {
	if tok == "" || !strings.Contains(tok, ".") {
		return false
	}
	first := rune(tok[0])
	return first < unicode.MaxASCII && unicode.IsLetter(first)
}
