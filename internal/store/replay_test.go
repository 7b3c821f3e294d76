package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
)

func writeSession(t *testing.T, s *Store, sess *compiler.Session, sources ...string) []*compiler.Result {
	t.Helper()
	var out []*compiler.Result
	for _, src := range sources {
		res := sess.Compile(src, compiler.DefaultOptions())
		_, err := s.WriteResult(context.Background(), res)
		require.NoError(t, err)
		out = append(out, res)
	}
	return out
}

func TestLastSeq(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	seq, err := s.LastSeq(ctx, "session-l")
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	writeSession(t, s, createTestSession("session-l"), "A <- B", "math -> add 1 2", "A <- B")

	seq, err = s.LastSeq(ctx, "session-l")
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)
}

func TestLastSeqResumesClock(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	writeSession(t, s, createTestSession("session-c"), "A <- B", "B <- C")

	last, err := s.LastSeq(ctx, "session-c")
	require.NoError(t, err)

	resumed := compiler.NewSession(
		compiler.WithIDGenerator(fixedID("session-c")),
		compiler.WithClock(compiler.NewClockAt(last)),
	)
	res := resumed.Compile("C <- D", compiler.DefaultOptions())
	require.True(t, res.Success)
	assert.Equal(t, int64(3), res.Seq)
}

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	writeSession(t, s, createTestSession("s-b"), "A <- B")
	writeSession(t, s, createTestSession("s-a"), "A <- B", "B <- C")

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s-a", "s-b"}, sessions)
}

func TestReplayIsDeterministic(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	writeSession(t, s, createTestSession("session-p"),
		"Animal <- Base\ndef Animal.speak",
		"Dog <- Animal\n@io io -> output Dog.speak",
		"Dog <- Dog",
		"math -> add 1 2\n@file file -> write \"x\"",
	)

	report, err := s.Replay(ctx, "session-p")
	require.NoError(t, err)
	assert.Equal(t, 4, report.Units)
	assert.True(t, report.Deterministic(), "%+v", report.Mismatches)
}

func TestReplayDetectsTampering(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	results := writeSession(t, s, createTestSession("session-t"), "math -> add 1 2")
	_, err := s.db.ExecContext(ctx, `UPDATE units SET program_hash = 'bogus' WHERE id = ?`, results[0].UnitID)
	require.NoError(t, err)

	report, err := s.Replay(ctx, "session-t")
	require.NoError(t, err)
	require.False(t, report.Deterministic())
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, "program_hash", report.Mismatches[0].Field)
	assert.Equal(t, "bogus", report.Mismatches[0].Stored)
	assert.Equal(t, results[0].ProgramHash, report.Mismatches[0].Replayed)
}

func TestReplaySkipsRejectedRequests(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	sess := createTestSession("session-x")
	writeSession(t, s, sess, "A <- B")
	sess.Close()
	rejected := writeSession(t, s, sess, "B <- C")
	require.False(t, rejected[0].Success)
	assert.Equal(t, int64(0), rejected[0].Seq)

	report, err := s.Replay(ctx, "session-x")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Units)
	assert.True(t, report.Deterministic())
}
