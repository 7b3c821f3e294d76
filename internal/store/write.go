package store

import (
	"context"
	"fmt"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
	"github.com/Moop-Lang/Moop-wasm/internal/ir"
	"github.com/Moop-Lang/Moop-wasm/internal/membrane"
)

// Unit is one stored compilation unit.
type Unit struct {
	ID              string
	SessionID       string
	Seq             int64
	Success         bool
	Source          string
	Options         compiler.Options
	ProgramHash     string
	MembraneHash    string
	CanonicalCode   string
	HRIR            string
	MembraneLog     string
	Graph           []string
	Warnings        []string
	ErrorCode       string
	ErrorMessage    string
	RTerms          int
	DTerms          int
	Crossings       int
	Statements      int
	CompilerVersion string
	HRIRVersion     string
}

// UnitFromResult converts a compile result into a storable unit.
// Failed results have no unit id of their own; one is derived from the
// session and seq with an empty program hash.
func UnitFromResult(res *compiler.Result) (Unit, error) {
	id := res.UnitID
	if id == "" {
		var err error
		id, err = ir.UnitID(res.SessionID, res.Seq, "")
		if err != nil {
			return Unit{}, fmt.Errorf("unit from result: %w", err)
		}
	}
	return Unit{
		ID:              id,
		SessionID:       res.SessionID,
		Seq:             res.Seq,
		Success:         res.Success,
		Source:          res.Source,
		Options:         res.Options,
		ProgramHash:     res.ProgramHash,
		MembraneHash:    res.MembraneHash,
		CanonicalCode:   res.CanonicalCode,
		HRIR:            res.HRIR,
		MembraneLog:     res.MembraneLog,
		Graph:           res.InheritanceRelations,
		Warnings:        res.Warnings,
		ErrorCode:       res.ErrorCode(),
		ErrorMessage:    res.ErrorMessage(),
		RTerms:          res.Stats.RTermOps,
		DTerms:          res.Stats.DTermOps,
		Crossings:       res.Stats.MembraneCrossings,
		Statements:      res.Stats.Statements,
		CompilerVersion: ir.CompilerVersion,
		HRIRVersion:     ir.HRIRVersion,
	}, nil
}

// WriteResult stores res and its crossing log. Returns the stored unit id.
func (s *Store) WriteResult(ctx context.Context, res *compiler.Result) (string, error) {
	u, err := UnitFromResult(res)
	if err != nil {
		return "", err
	}
	if err := s.WriteUnit(ctx, u, res.Crossings); err != nil {
		return "", err
	}
	return u.ID, nil
}

// WriteUnit inserts a unit and its crossings in one transaction.
// Uses ON CONFLICT DO NOTHING for idempotency: rewriting a stored unit is
// silently ignored.
func (s *Store) WriteUnit(ctx context.Context, u Unit, crossings []membrane.Crossing) error {
	graphJSON, err := marshalStrings(u.Graph)
	if err != nil {
		return fmt.Errorf("write unit: %w", err)
	}
	warningsJSON, err := marshalStrings(u.Warnings)
	if err != nil {
		return fmt.Errorf("write unit: %w", err)
	}
	optionsJSON, err := marshalOptions(u.Options)
	if err != nil {
		return fmt.Errorf("write unit: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write unit: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO units
		(id, session_id, seq, success, source, options, program_hash, membrane_hash,
		 canonical_code, hrir, membrane_log, graph, warnings, error_code, error_message,
		 r_term_count, d_term_count, crossing_count, statement_count,
		 compiler_version, hrir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		u.ID,
		u.SessionID,
		u.Seq,
		boolToInt(u.Success),
		u.Source,
		optionsJSON,
		u.ProgramHash,
		u.MembraneHash,
		u.CanonicalCode,
		u.HRIR,
		u.MembraneLog,
		graphJSON,
		warningsJSON,
		u.ErrorCode,
		u.ErrorMessage,
		u.RTerms,
		u.DTerms,
		u.Crossings,
		u.Statements,
		u.CompilerVersion,
		u.HRIRVersion,
	)
	if err != nil {
		return fmt.Errorf("write unit: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write unit: rows affected: %w", err)
	}
	if inserted == 0 {
		s.logger.Debug().Str("unit", u.ID).Msg("unit already stored")
		return nil
	}

	for _, c := range crossings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO crossings (unit_id, idx, cell_id, opcode, tag)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(unit_id, idx) DO NOTHING
		`, u.ID, c.Index, c.CellID, c.Opcode, c.Tag)
		if err != nil {
			return fmt.Errorf("write crossing %d: %w", c.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write unit: commit: %w", err)
	}

	s.logger.Debug().
		Str("unit", u.ID).
		Int64("seq", u.Seq).
		Bool("success", u.Success).
		Int("crossings", len(crossings)).
		Msg("unit stored")
	return nil
}
