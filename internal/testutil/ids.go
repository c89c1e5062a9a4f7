package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates "s-0001", "s-0002", ... session IDs.
//
// The zero padding keeps byte-wise order equal to assignment order, which is
// what the queue relies on to break CreatedAt ties.
//
// Thread-safety: SequentialIDs is safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequentialIDs creates a generator whose IDs start with prefix.
// If prefix is empty, "s-" is used.
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "s-"
	}
	return &SequentialIDs{prefix: prefix}
}

// NewID returns the next ID.
//
// Implements queue.IDGenerator.
func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s%04d", g.prefix, g.next)
}
