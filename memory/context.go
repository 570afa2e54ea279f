package memory

import (
	"unsafe"

	"github.com/pavanmanishd/arenakit/arena"
	"github.com/pavanmanishd/arenakit/internal/assert"
	"github.com/pavanmanishd/arenakit/internal/region"
)

// Context is one goroutine's view of a Manager: its scope stack and its
// private temporary stack. A Context is not safe for concurrent use.
type Context struct {
	m      *Manager
	scopes []*Scope

	tempRegion *region.Region
	temp       *arena.Stack

	// tempCharges maps Go-allocated objects to the temporary bytes they
	// are accounted against.
	tempCharges map[unsafe.Pointer]unsafe.Pointer
}

// Manager returns the manager that created c.
func (c *Context) Manager() *Manager {
	return c.m
}

// Current returns the arena selected by the innermost open scope, or Heap.
func (c *Context) Current() ID {
	if n := len(c.scopes); n > 0 {
		return c.scopes[n-1].id
	}
	return Heap
}

func (c *Context) resolve(id ID) ID {
	if id == Current {
		return c.Current()
	}
	assert.Check(id.valid(), "memory: bad arena %s", id)
	return id
}

// tempStack returns the context's temporary stack, reserving it on first use.
func (c *Context) tempStack() *arena.Stack {
	if c.temp == nil {
		r, err := region.Reserve(c.m.cfg.TemporaryBudget)
		assert.Always(err == nil, "memory: reserve temporary stack: %v", err)
		c.tempRegion = r
		// Report reads c.temp of every context under ctxMu.
		c.m.ctxMu.Lock()
		c.temp = arena.NewStack(TemporaryStack.String(), r.Data)
		c.m.ctxMu.Unlock()
	}
	return c.temp
}

// Allocate returns size bytes from the current arena.
func (c *Context) Allocate(size int) []byte {
	return c.AllocateExt(size, Current, 0)
}

// AllocateExt returns size bytes from arena id aligned to align (at least
// arena.DefaultAlignment). A size of 0 is treated as 1. The result is never
// nil: exhaustion either overflows to the heap or fails.
func (c *Context) AllocateExt(size int, id ID, align uintptr) []byte {
	assert.Check(size >= 0, "memory: negative allocation %d", size)
	assert.Check(align&(align-1) == 0, "memory: alignment %d not a power of two", align)
	size = max(size, 1)
	id = c.resolve(id)
	if id != TemporaryStack {
		return c.m.allocateShared(id, size, align)
	}
	if b := c.tempStack().AllocBytes(size, align); b != nil {
		return b
	}
	return c.m.overflow(id, size, align)
}

// Free releases b, which must have been returned by an allocation through
// this context or the shared arenas. A nil or empty slice is a no-op.
func (c *Context) Free(b []byte) {
	if cap(b) == 0 {
		return
	}
	c.FreePointer(unsafe.Pointer(unsafe.SliceData(b)))
}

// FreePointer releases the allocation starting at p. nil is a no-op.
func (c *Context) FreePointer(p unsafe.Pointer) {
	if p == nil {
		return
	}
	if c.temp != nil && c.temp.Contains(p) {
		c.temp.Free(p)
		return
	}
	c.m.freeShared(p)
}

// DuplicateString copies s plus a terminating zero byte into arena id and
// returns a string backed by that copy. Release it with FreeString.
func (c *Context) DuplicateString(s string, id ID) string {
	b := c.AllocateExt(len(s)+1, id, 1)
	copy(b, s)
	b[len(s)] = 0
	return unsafe.String(&b[0], len(s))
}

// FreeString releases a string returned by DuplicateString.
func (c *Context) FreeString(s string) {
	c.FreePointer(unsafe.Pointer(unsafe.StringData(s)))
}

// Stats returns the accounting of arena id as seen from this context.
func (c *Context) Stats(id ID) Stats {
	id = c.resolve(id)
	if id != TemporaryStack {
		return c.m.Stats(id)
	}
	s := c.tempStack()
	return Stats{Count: s.Count(), Bytes: s.SizeInUse(), HighWater: s.HighWater(), Capacity: s.Capacity()}
}

// Scope makes id the current arena until the returned scope is closed.
// Scopes must be closed in reverse order of creation:
//
//	defer mc.Scope(memory.TemporaryStack).Close()
func (c *Context) Scope(id ID) *Scope {
	id = c.resolve(id)
	st := c.Stats(id)
	s := &Scope{
		ctx:       c,
		id:        id,
		previous:  c.Current(),
		depth:     len(c.scopes),
		prevCount: st.Count,
		prevBytes: st.Bytes,
	}
	if id == TemporaryStack {
		s.mark = c.temp.Mark()
	}
	c.scopes = append(c.scopes, s)
	c.m.log.Debug("memory scope enter", "arena", id, "previous", s.previous, "depth", s.depth)
	return s
}

func (c *Context) addCharge(obj, charge unsafe.Pointer) {
	if c.temp != nil && c.temp.Contains(charge) {
		if c.tempCharges == nil {
			c.tempCharges = make(map[unsafe.Pointer]unsafe.Pointer)
		}
		c.tempCharges[obj] = charge
		return
	}
	c.m.addCharge(obj, charge)
}

func (c *Context) takeCharge(obj unsafe.Pointer) (unsafe.Pointer, bool) {
	if charge, ok := c.tempCharges[obj]; ok {
		delete(c.tempCharges, obj)
		return charge, true
	}
	return c.m.takeCharge(obj)
}

// dropCharges forgets temporary charges made at or after m.
func (c *Context) dropCharges(m arena.Mark) {
	for obj, charge := range c.tempCharges {
		if c.temp.OffsetOf(charge) >= m.Offset {
			delete(c.tempCharges, obj)
		}
	}
}

func (c *Context) release() error {
	if c.temp == nil {
		return nil
	}
	c.temp.Release()
	c.temp = nil
	c.tempCharges = nil
	return c.tempRegion.Release()
}
