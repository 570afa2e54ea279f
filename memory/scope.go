package memory

import (
	"github.com/pavanmanishd/arenakit/arena"
	"github.com/pavanmanishd/arenakit/internal/assert"
)

// Scope selects an arena for the lifetime between Context.Scope and Close
// and records the arena's accounting at entry.
type Scope struct {
	ctx       *Context
	id        ID
	previous  ID
	depth     int
	prevCount int
	prevBytes int
	mark      arena.Mark
	closed    bool
}

// Close restores the previous arena. Closing a temporary-stack scope
// rewinds the stack to its state at entry; in checked builds any
// allocation made inside the scope and not freed is reported as a leak.
func (s *Scope) Close() {
	c := s.ctx
	assert.Always(!s.closed, "memory: scope %s closed twice", s.id)
	assert.Always(len(c.scopes) == s.depth+1 && c.scopes[s.depth] == s,
		"memory: scope %s closed out of order (depth %d of %d)", s.id, s.depth, len(c.scopes))

	if s.id == TemporaryStack {
		leaked := c.temp.Count() - s.prevCount
		assert.Check(leaked == 0, "memory: %s leaked %d allocations", s.id, leaked)
		c.dropCharges(s.mark)
		c.temp.Rewind(s.mark)
		c.m.noteTempHighWater(c.temp.HighWater())
	}
	c.scopes[s.depth] = nil
	c.scopes = c.scopes[:s.depth]
	s.closed = true
	c.m.log.Debug("memory scope exit", "arena", s.id, "restored", s.previous, "depth", s.depth)
}

// ID returns the arena this scope selected.
func (s *Scope) ID() ID { return s.id }

// Previous returns the arena that was current before the scope opened.
func (s *Scope) Previous() ID { return s.previous }

// PreviousAllocationCount returns the arena's live allocations at entry.
func (s *Scope) PreviousAllocationCount() int { return s.prevCount }

// PreviousBytesAllocated returns the arena's bytes in use at entry.
func (s *Scope) PreviousBytesAllocated() int { return s.prevBytes }

// TotalAllocationCount returns the arena's live allocations now.
func (s *Scope) TotalAllocationCount() int { return s.ctx.Stats(s.id).Count }

// TotalBytesAllocated returns the arena's bytes in use now.
func (s *Scope) TotalBytesAllocated() int { return s.ctx.Stats(s.id).Bytes }

// ScopeAllocationCount returns the allocations made since entry and not freed.
func (s *Scope) ScopeAllocationCount() int {
	return s.TotalAllocationCount() - s.prevCount
}

// ScopeBytesAllocated returns the bytes taken since entry.
func (s *Scope) ScopeBytesAllocated() int {
	return s.TotalBytesAllocated() - s.prevBytes
}
