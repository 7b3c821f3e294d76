package compiler

import (
	"errors"
	"fmt"

	"github.com/Moop-Lang/Moop-wasm/internal/emit"
	"github.com/Moop-Lang/Moop-wasm/internal/path"
	"github.com/Moop-Lang/Moop-wasm/internal/registry"
	"github.com/Moop-Lang/Moop-wasm/internal/surface"
)

// Result error codes. The numeric part is stable across releases.
const (
	ErrFileNotFound        = "E001" // source file missing (CLI only)
	ErrParseFailed         = "E002" // surface syntax error
	ErrCompilationFailed   = "E003" // internal failure or session misuse
	ErrInvalidOptions      = "E005" // options file rejected
	ErrInvalidPath         = "E006" // malformed canonical path
	ErrInheritanceCycle    = "E007" // edge would close a cycle
	ErrStrictModeViolation = "E008" // unresolved reference or unknown opcode under strict mode
)

// Error kinds not owned by a lower package.
const (
	KindSyntax       = "Syntax"
	KindSessionState = "SessionState"
	KindOptions      = "Options"
	KindInternal     = "Internal"
)

// ErrorInfo describes why a compilation failed.
type ErrorInfo struct {
	Code    string `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func (e *ErrorInfo) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", e.Code, e.Line, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// SessionError reports a compile request the session cannot accept.
type SessionError struct {
	State   State
	Message string
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %s", e.State, e.Message)
}

// OptionsError reports an options document that could not be loaded.
type OptionsError struct {
	Source  string
	Message string
	Err     error
}

func (e *OptionsError) Error() string {
	if e.Source == "" {
		return "options: " + e.Message
	}
	return fmt.Sprintf("options %s: %s", e.Source, e.Message)
}

func (e *OptionsError) Unwrap() error {
	return e.Err
}

// StatementError attributes a declaration failure to its source line.
type StatementError struct {
	Line      int
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Statement, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// Kind returns the innermost error kind carried by err.
func Kind(err error) string {
	var pe *path.Error
	if errors.As(err, &pe) {
		return string(pe.Kind)
	}
	var re *registry.Error
	if errors.As(err, &re) {
		return string(re.Kind)
	}
	var ee *emit.Error
	if errors.As(err, &ee) {
		return string(ee.Kind)
	}
	var se *surface.SyntaxError
	if errors.As(err, &se) {
		return KindSyntax
	}
	var sse *SessionError
	if errors.As(err, &sse) {
		return KindSessionState
	}
	var oe *OptionsError
	if errors.As(err, &oe) {
		return KindOptions
	}
	return KindInternal
}

// Code maps err onto the result error code taxonomy.
func Code(err error) string {
	var pe *path.Error
	if errors.As(err, &pe) {
		return ErrInvalidPath
	}
	if registry.IsCycle(err) {
		return ErrInheritanceCycle
	}
	if registry.IsUnresolved(err) || emit.IsUnknownOpcode(err) {
		return ErrStrictModeViolation
	}
	var se *surface.SyntaxError
	if errors.As(err, &se) {
		return ErrParseFailed
	}
	var oe *OptionsError
	if errors.As(err, &oe) {
		return ErrInvalidOptions
	}
	return ErrCompilationFailed
}

// Line returns the source line err is attributed to, or 0.
func Line(err error) int {
	var ee *emit.Error
	if errors.As(err, &ee) {
		return ee.Line
	}
	var ste *StatementError
	if errors.As(err, &ste) {
		return ste.Line
	}
	var se *surface.SyntaxError
	if errors.As(err, &se) {
		return se.Line
	}
	return 0
}

// Describe converts err into an ErrorInfo.
func Describe(err error) *ErrorInfo {
	return &ErrorInfo{
		Code:    Code(err),
		Kind:    Kind(err),
		Message: err.Error(),
		Line:    Line(err),
	}
}
