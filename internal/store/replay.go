package store

import (
	"context"
	"fmt"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
)

// Mismatch is one difference between a stored unit and its recompilation.
type Mismatch struct {
	Seq      int64  `json:"seq"`
	UnitID   string `json:"unit_id"`
	Field    string `json:"field"`
	Stored   string `json:"stored"`
	Replayed string `json:"replayed"`
}

// ReplayReport summarizes a replay of one session.
type ReplayReport struct {
	SessionID  string     `json:"session_id"`
	Units      int        `json:"units"`
	Mismatches []Mismatch `json:"mismatches"`
}

// Deterministic reports whether every unit reproduced its stored outcome.
func (r ReplayReport) Deterministic() bool {
	return len(r.Mismatches) == 0
}

// LastSeq returns the highest seq stored for a session, or 0.
// Used to resume a session's clock with compiler.NewClockAt.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM units WHERE session_id = ?
	`, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

// ListSessions returns all distinct session ids, ordered alphabetically.
// UUIDv7 ids therefore list in creation order.
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT session_id FROM units
		ORDER BY session_id COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		sessions = append(sessions, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Replay recompiles a stored session's units, in seq order, in a fresh
// session and compares outcome, program hash, and membrane hash.
//
// Units with seq 0 were rejected before compilation started and are
// skipped. Failed units are replayed too: declarations they applied before
// failing are part of the registry later units see.
func (s *Store) Replay(ctx context.Context, sessionID string) (ReplayReport, error) {
	units, err := s.ListUnits(ctx, sessionID)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay: %w", err)
	}

	report := ReplayReport{SessionID: sessionID, Mismatches: []Mismatch{}}
	session := compiler.NewSession(compiler.WithLogger(s.logger))
	defer session.Close()

	for _, u := range units {
		if u.Seq == 0 {
			continue
		}
		report.Units++
		res := session.Compile(u.Source, u.Options)

		check := func(field, stored, replayed string) {
			if stored != replayed {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Seq:      u.Seq,
					UnitID:   u.ID,
					Field:    field,
					Stored:   stored,
					Replayed: replayed,
				})
			}
		}
		check("success", fmt.Sprint(u.Success), fmt.Sprint(res.Success))
		check("program_hash", u.ProgramHash, res.ProgramHash)
		check("membrane_hash", u.MembraneHash, res.MembraneHash)
		check("error_code", u.ErrorCode, res.ErrorCode())
	}

	s.logger.Debug().
		Str("session", sessionID).
		Int("units", report.Units).
		Int("mismatches", len(report.Mismatches)).
		Msg("replay finished")
	return report, nil
}
