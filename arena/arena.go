// Package arena implements a fixed-budget bump allocator (stack arena).
// A Stack hands out aligned slices of one pre-reserved region. Allocations
// are released in bulk by rewinding to an earlier Mark, or all at once with
// Reset; individual frees only update accounting.
package arena

import (
	"unsafe"

	"github.com/kelindar/bitmap"

	"github.com/pavanmanishd/arenakit/internal/assert"
)

// DefaultAlignment is the minimum alignment of every allocation.
const DefaultAlignment = unsafe.Sizeof(uintptr(0))

// Debug byte markings, written only when checks are enabled.
const (
	PoisonAllocated = 0xab // handed to client code
	PoisonReleased  = 0xdd // belongs to the arena
)

// Mark is a rewind point returned by Stack.Mark.
type Mark struct {
	Offset uintptr
	Count  int
}

// Stack is a bump allocator over one fixed region. Not goroutine-safe.
// Use SafeStack for concurrent access.
type Stack struct {
	label     string
	buf       []byte
	base      uintptr
	offset    uintptr
	count     int
	highWater uintptr

	// live has one bit per alignment granule marking live allocation
	// starts. Maintained only when checks are enabled.
	live bitmap.Bitmap
}

// NewStack creates a Stack that allocates from buf. The Stack does not own
// buf; releasing the backing memory is the caller's job.
func NewStack(label string, buf []byte) *Stack {
	assert.Always(len(buf) > 0, "arena %s: empty region", label)
	s := &Stack{
		label: label,
		buf:   buf,
		base:  uintptr(unsafe.Pointer(&buf[0])),
	}
	if assert.Enabled {
		fill(buf, PoisonReleased)
	}
	return s
}

// Label returns the name the stack was created with.
func (s *Stack) Label() string {
	return s.label
}

// AllocBytes returns n bytes aligned to align (rounded up to
// DefaultAlignment). Returns nil if n <= 0 or the region is exhausted;
// the caller decides whether exhaustion is fatal.
func (s *Stack) AllocBytes(n int, align uintptr) []byte {
	s.panicIfReleased()
	if n <= 0 {
		return nil
	}
	if align < DefaultAlignment {
		align = DefaultAlignment
	}
	assert.Check(align&(align-1) == 0, "arena %s: alignment %d not a power of two", s.label, align)

	mask := align - 1
	off := ((s.base + s.offset + mask) &^ mask) - s.base
	if off+uintptr(n) > uintptr(len(s.buf)) {
		return nil
	}

	s.offset = off + uintptr(n)
	s.count++
	if s.offset > s.highWater {
		s.highWater = s.offset
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s.buf[off])), n)
	if assert.Enabled {
		s.live.Set(uint32(off / DefaultAlignment))
		fill(b, PoisonAllocated)
	}
	return b
}

// Contains reports whether p points into the stack's region.
func (s *Stack) Contains(p unsafe.Pointer) bool {
	addr := uintptr(p)
	return s.buf != nil && addr >= s.base && addr < s.base+uintptr(len(s.buf))
}

// OffsetOf returns the distance of p from the start of the region.
func (s *Stack) OffsetOf(p unsafe.Pointer) uintptr {
	return uintptr(p) - s.base
}

// Free records that the allocation starting at p is no longer used. Bytes
// are only reclaimed by Rewind or Reset.
func (s *Stack) Free(p unsafe.Pointer) {
	s.panicIfReleased()
	off := uintptr(p) - s.base
	assert.Check(s.count > 0 && s.Contains(p) && off < s.offset,
		"arena %s: unexpected free at offset %d (in use %d)", s.label, off, s.offset)
	if assert.Enabled {
		g := uint32(off / DefaultAlignment)
		assert.Check(off%DefaultAlignment == 0 && s.live.Contains(g),
			"arena %s: free of non-allocation or double free at offset %d", s.label, off)
		s.live.Remove(g)
	}
	if off < s.offset {
		s.count--
	}
}

// Mark returns the current position for a later Rewind.
func (s *Stack) Mark() Mark {
	return Mark{Offset: s.offset, Count: s.count}
}

// Rewind returns the stack to m, invalidating every allocation made since.
func (s *Stack) Rewind(m Mark) {
	s.panicIfReleased()
	assert.Always(m.Offset <= s.offset, "arena %s: rewind forward from %d to %d", s.label, s.offset, m.Offset)
	if assert.Enabled {
		fill(s.buf[m.Offset:s.offset], PoisonReleased)
		first := uint32(m.Offset / DefaultAlignment)
		var dead []uint32
		s.live.Range(func(x uint32) {
			if x >= first {
				dead = append(dead, x)
			}
		})
		for _, x := range dead {
			s.live.Remove(x)
		}
	}
	s.offset = m.Offset
	s.count = m.Count
}

// Reset rewinds to an empty stack. The high-water mark is kept.
func (s *Stack) Reset() {
	if s.buf == nil {
		panic("arena: use after Release()")
	}
	s.Rewind(Mark{})
}

// Release drops the region and makes the stack unusable.
// Any subsequent allocating operation will panic.
func (s *Stack) Release() {
	s.buf = nil
	s.base = 0
	s.offset = 0
	s.count = 0
	s.live.Clear()
}

// panicIfReleased panics if the stack has been released.
func (s *Stack) panicIfReleased() {
	if s.buf == nil {
		panic("arena: use after Release()")
	}
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
