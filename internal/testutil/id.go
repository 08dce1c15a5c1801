package testutil

import (
	"fmt"
	"sync"
)

// IDSequence generates deterministic identifiers for tests: prefix-1,
// prefix-2, and so on.
//
// Production code draws random UUIDs; tests that compare rendered output
// byte-for-byte need identifiers that repeat across runs.
//
// Thread-safety: Next is safe for concurrent use via internal mutex.
type IDSequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewIDSequence creates a new sequence with the given prefix.
//
// If prefix is empty, identifiers start with "test".
func NewIDSequence(prefix string) *IDSequence {
	if prefix == "" {
		prefix = "test"
	}
	return &IDSequence{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDSequence) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
