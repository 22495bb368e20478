package testutil

import (
	"fmt"
	"sync"
)

// SequentialSessions generates deterministic session IDs: prefix-1, prefix-2, ...
//
// Unlike recognition.FixedGenerator, it never runs out, which suits scenarios
// that start an unknown number of sessions. The same scenario with a fresh
// SequentialSessions produces byte-identical traces.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialSessions struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialSessions creates a generator. An empty prefix defaults to "session".
func NewSequentialSessions(prefix string) *SequentialSessions {
	if prefix == "" {
		prefix = "session"
	}
	return &SequentialSessions{prefix: prefix}
}

// Generate implements recognition.SessionIDGenerator.
func (g *SequentialSessions) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Count returns how many IDs were generated.
func (g *SequentialSessions) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
