package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
	"github.com/Moop-Lang/Moop-wasm/internal/testutil"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession creates a session with a fixed id and deterministic clocks.
func createTestSession(id string) *compiler.Session {
	return compiler.NewSession(
		compiler.WithIDGenerator(testutil.NewFixedIDGenerator(id)),
		compiler.WithClock(testutil.NewDeterministicClock()),
		compiler.WithNow(testutil.StepNow(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Millisecond)),
	)
}

func fixedID(id string) compiler.IDGenerator {
	return testutil.NewFixedIDGenerator(id)
}
