package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_NextAndReset(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())

	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock()
	const workers = 20
	const calls = 50

	var mu sync.Mutex
	seen := make(map[int64]bool)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				v := clock.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*calls, "every value must be unique")
	assert.Equal(t, int64(workers*calls), clock.Current())
}

func TestStepNow(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := StepNow(base, time.Millisecond)

	assert.Equal(t, base, now())
	assert.Equal(t, base.Add(time.Millisecond), now())
	assert.Equal(t, time.Millisecond, now().Sub(base.Add(time.Millisecond)))
}

func TestFixedIDGenerator(t *testing.T) {
	gen := NewFixedIDGenerator("s-1", "s-2")

	assert.Equal(t, "s-1", gen.Generate())
	assert.Equal(t, "s-2", gen.Generate())
	assert.Equal(t, "test-session-3", gen.Generate())
}
