package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns predetermined session ids for tests.
//
// Ids are handed out in order. Once the list is exhausted the generator
// falls back to "test-session-<n>" so long-running tests never panic.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator returning ids in order.
//
//	gen := NewFixedIDGenerator("s-1", "s-2")
//	gen.Generate() // "s-1"
//	gen.Generate() // "s-2"
//	gen.Generate() // "test-session-3"
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// Generate returns the next id.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.idx++
	if g.idx <= len(g.ids) {
		return g.ids[g.idx-1]
	}
	return fmt.Sprintf("test-session-%d", g.idx)
}
