package store

import (
	"context"
	"fmt"

	"github.com/Moop-Lang/Moop-wasm/internal/membrane"
)

const unitColumns = `id, session_id, seq, success, source, options, program_hash, membrane_hash,
	canonical_code, hrir, membrane_log, graph, warnings, error_code, error_message,
	r_term_count, d_term_count, crossing_count, statement_count,
	compiler_version, hrir_version`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ReadUnit retrieves a single unit by ID.
// Returns sql.ErrNoRows (wrapped) if not found.
func (s *Store) ReadUnit(ctx context.Context, id string) (Unit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM units WHERE id = ?`, id)
	return scanUnit(row)
}

// ListUnits returns the units of one session, or of every session when
// sessionID is empty. Results are ordered by seq ASC, id ASC.
//
// Returns an empty slice (not nil) if no units exist.
func (s *Store) ListUnits(ctx context.Context, sessionID string) ([]Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units`
	var args []any
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	units := []Unit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return units, nil
}

// ReadCrossings returns the membrane log of a unit ordered by index.
// Returns an empty slice (not nil) for failed or effect-free units.
func (s *Store) ReadCrossings(ctx context.Context, unitID string) ([]membrane.Crossing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, cell_id, opcode, tag
		FROM crossings
		WHERE unit_id = ?
		ORDER BY idx ASC
	`, unitID)
	if err != nil {
		return nil, fmt.Errorf("query crossings: %w", err)
	}
	defer rows.Close()

	crossings := []membrane.Crossing{}
	for rows.Next() {
		var c membrane.Crossing
		if err := rows.Scan(&c.Index, &c.CellID, &c.Opcode, &c.Tag); err != nil {
			return nil, fmt.Errorf("scan crossing: %w", err)
		}
		crossings = append(crossings, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crossings: %w", err)
	}
	return crossings, nil
}

func scanUnit(row scanner) (Unit, error) {
	var (
		u                                Unit
		success                          int
		optionsJSON, graphJSON, warnJSON string
	)
	if err := row.Scan(
		&u.ID, &u.SessionID, &u.Seq, &success, &u.Source, &optionsJSON,
		&u.ProgramHash, &u.MembraneHash, &u.CanonicalCode, &u.HRIR, &u.MembraneLog,
		&graphJSON, &warnJSON, &u.ErrorCode, &u.ErrorMessage,
		&u.RTerms, &u.DTerms, &u.Crossings, &u.Statements,
		&u.CompilerVersion, &u.HRIRVersion,
	); err != nil {
		return Unit{}, fmt.Errorf("scan unit: %w", err)
	}
	u.Success = success == 1

	var err error
	if u.Options, err = unmarshalOptions(optionsJSON); err != nil {
		return Unit{}, err
	}
	if u.Graph, err = unmarshalStrings(graphJSON); err != nil {
		return Unit{}, err
	}
	if u.Warnings, err = unmarshalStrings(warnJSON); err != nil {
		return Unit{}, err
	}
	return u, nil
}
