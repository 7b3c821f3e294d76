package compiler

import (
	"encoding/json"
	"time"

	"github.com/Moop-Lang/Moop-wasm/internal/ir"
	"github.com/Moop-Lang/Moop-wasm/internal/membrane"
)

// Stats are derived counters for one unit. They are computed once, after
// the unit finishes, and never change afterwards.
type Stats struct {
	CanonicalPaths    int
	InheritanceEdges  int
	RTermOps          int
	DTermOps          int
	MembraneCrossings int
	Statements        int

	// CompilationTime covers parsing, registration, and emission.
	CompilationTime time.Duration

	// ValidationTime covers the post-emission consistency checks.
	ValidationTime time.Duration
}

type statsJSON struct {
	CanonicalPathsCount    int     `json:"canonical_paths_count"`
	InheritanceEdgesCount  int     `json:"inheritance_edges_count"`
	RTermOpsCount          int     `json:"r_term_ops_count"`
	DTermOpsCount          int     `json:"d_term_ops_count"`
	MembraneCrossingsCount int     `json:"membrane_crossings_count"`
	StatementCount         int     `json:"statement_count"`
	CompilationTimeMS      float64 `json:"compilation_time_ms"`
	ValidationTimeMS       float64 `json:"validation_time_ms"`
}

// MarshalJSON renders durations as fractional milliseconds.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsJSON{
		CanonicalPathsCount:    s.CanonicalPaths,
		InheritanceEdgesCount:  s.InheritanceEdges,
		RTermOpsCount:          s.RTermOps,
		DTermOpsCount:          s.DTermOps,
		MembraneCrossingsCount: s.MembraneCrossings,
		StatementCount:         s.Statements,
		CompilationTimeMS:      milliseconds(s.CompilationTime),
		ValidationTimeMS:       milliseconds(s.ValidationTime),
	})
}

// UnmarshalJSON reverses MarshalJSON.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw statsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Stats{
		CanonicalPaths:    raw.CanonicalPathsCount,
		InheritanceEdges:  raw.InheritanceEdgesCount,
		RTermOps:          raw.RTermOpsCount,
		DTermOps:          raw.DTermOpsCount,
		MembraneCrossings: raw.MembraneCrossingsCount,
		Statements:        raw.StatementCount,
		CompilationTime:   time.Duration(raw.CompilationTimeMS * float64(time.Millisecond)),
		ValidationTime:    time.Duration(raw.ValidationTimeMS * float64(time.Millisecond)),
	}
	return nil
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Result is the terminal artifact of one compilation. It is owned by the
// caller and shares no mutable state with the session.
//
// A failed result carries Err, the inheritance relations accumulated so
// far, and stats; its HRIR and membrane fields are empty.
type Result struct {
	Success bool

	// SessionID and Seq locate the unit within its session.
	SessionID string
	Seq       int64

	// UnitID is content derived: session, seq, and program hash.
	UnitID string

	// Source is the unit text exactly as passed to Compile.
	Source string

	CanonicalCode string

	// HRIR is the serialized program (see ir.MarshalProgram).
	HRIR string

	// MembraneLog is the serialized crossing log (see membrane.MarshalLog).
	MembraneLog string

	// InheritanceRelations is the registry snapshot, "Child <- Parent"
	// per edge in declaration order.
	InheritanceRelations []string

	// JSON is the aggregated document, set only when Options.JSONOutput.
	JSON string

	// ReversibleIR is the human-readable program listing.
	ReversibleIR string

	Program      *ir.Program
	Crossings    []membrane.Crossing
	ProgramHash  string
	MembraneHash string

	Stats    Stats
	Warnings []string
	Err      *ErrorInfo
	Options  Options
}

// ErrorMessage returns the failure message, or "".
func (r *Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Message
}

// ErrorCode returns the failure code, or "".
func (r *Result) ErrorCode() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Code
}

// Document returns the aggregated JSON document, building it on demand
// when the unit was compiled without JSONOutput.
func (r *Result) Document() (string, error) {
	if r.JSON != "" {
		return r.JSON, nil
	}
	return buildDocument(r)
}

// UndoPlan returns the cells that roll back the unit's trailing reversible
// suffix. Empty for failed results.
func (r *Result) UndoPlan() []ir.Cell {
	if r.Program == nil {
		return []ir.Cell{}
	}
	return r.Program.UndoPlan()
}

// document is the aggregated JSON output.
type document struct {
	Success              bool            `json:"success"`
	Version              string          `json:"version"`
	CanonicalCode        string          `json:"canonical_code,omitempty"`
	HRIR                 json.RawMessage `json:"hrir,omitempty"`
	MembraneLog          json.RawMessage `json:"membrane_log,omitempty"`
	InheritanceRelations []string        `json:"inheritance_relations"`
	Stats                Stats           `json:"stats"`
	Warnings             []string        `json:"warnings"`
	Error                *ErrorInfo      `json:"error,omitempty"`
	Debug                *documentDebug  `json:"debug,omitempty"`
}

type documentDebug struct {
	SessionID    string `json:"session_id"`
	Seq          int64  `json:"seq"`
	UnitID       string `json:"unit_id,omitempty"`
	ProgramHash  string `json:"program_hash,omitempty"`
	MembraneHash string `json:"membrane_hash,omitempty"`
	ReversibleIR string `json:"reversible_ir,omitempty"`
}

// buildDocument renders r as the aggregated JSON document. The error kind
// is included only in debug mode.
func buildDocument(r *Result) (string, error) {
	doc := document{
		Success:              r.Success,
		Version:              ir.CompilerVersion,
		CanonicalCode:        r.CanonicalCode,
		InheritanceRelations: nonNilStrings(r.InheritanceRelations),
		Stats:                r.Stats,
		Warnings:             nonNilStrings(r.Warnings),
	}
	if r.HRIR != "" {
		doc.HRIR = json.RawMessage(r.HRIR)
	}
	if r.MembraneLog != "" {
		doc.MembraneLog = json.RawMessage(r.MembraneLog)
	}
	if r.Err != nil {
		info := *r.Err
		if !r.Options.DebugMode {
			info.Kind = ""
		}
		doc.Error = &info
	}
	if r.Options.DebugMode {
		doc.Debug = &documentDebug{
			SessionID:    r.SessionID,
			Seq:          r.Seq,
			UnitID:       r.UnitID,
			ProgramHash:  r.ProgramHash,
			MembraneHash: r.MembraneHash,
			ReversibleIR: r.ReversibleIR,
		}
	}

	data, err := ir.EncodeJSON(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nonNilStrings(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
