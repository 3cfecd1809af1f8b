package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator hands out node ids "node-0001", "node-0002", ...
//
// Stores created with it assign byte-identical ids on every run, which keeps
// golden output stable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialIDGenerator creates a generator. An empty prefix defaults to
// "node".
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "node"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next id. Implements store.IDGenerator.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%04d", g.prefix, g.seq)
}

// Reset restarts the sequence. After Reset, Generate returns id 0001 again.
func (g *SequentialIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
