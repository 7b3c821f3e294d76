package cli

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
)

func TestWatchFileRecompilesInFreshSession(t *testing.T) {
	f := writeUnit(t, t.TempDir(), "w.rio", "Dog <- Animal\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan *compiler.Result, 16)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, f, compiler.DefaultOptions(), zerolog.Nop(), func(r *compiler.Result) {
			select {
			case results <- r:
			default:
			}
		})
	}()

	first := waitResult(t, results)
	require.True(t, first.Success, first.ErrorMessage())
	assert.Equal(t, []string{"Dog <- Animal"}, first.InheritanceRelations)

	require.NoError(t, os.WriteFile(f, []byte("Cat <- Animal\n"), 0o644))

	// A single write may surface as several events; take the first result
	// that reflects the new content.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-results:
			if len(r.InheritanceRelations) == 1 && r.InheritanceRelations[0] == "Cat <- Animal" {
				assert.NotEqual(t, first.SessionID, r.SessionID)
				assert.Equal(t, int64(1), r.Seq)
				cancel()
				require.NoError(t, <-done)
				return
			}
		case <-deadline:
			t.Fatal("no recompilation after write")
		}
	}
}

func TestCompileFreshMissingFile(t *testing.T) {
	res := compileFresh("/nonexistent/x.rio", compiler.DefaultOptions(), zerolog.Nop())
	assert.False(t, res.Success)
	assert.Equal(t, compiler.ErrFileNotFound, res.ErrorCode())
}

func TestWatchMissingFile(t *testing.T) {
	_, _, err := execute(t, "watch", "/nonexistent/x.rio")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func waitResult(t *testing.T, ch <-chan *compiler.Result) *compiler.Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for compile result")
		return nil
	}
}
