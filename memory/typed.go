package memory

import (
	"unsafe"

	"github.com/pavanmanishd/arenakit/arena"
	"github.com/pavanmanishd/arenakit/internal/assert"
)

// New returns a zeroed *T allocated from arena id.
//
// Pointer-free types live inside the arena. Types holding Go pointers are
// allocated by the Go runtime, since the collector does not scan arena
// memory, and their size is charged to the arena so budgets, scope
// accounting and leak checks still apply. Either way, release with Delete.
func New[T any](c *Context, id ID) *T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	align := max(unsafe.Alignof(zero), arena.DefaultAlignment)
	b := c.AllocateExt(size, id, align)
	if arena.PointerFree[T]() {
		clear(b)
		return (*T)(unsafe.Pointer(&b[0]))
	}
	p := new(T)
	c.addCharge(unsafe.Pointer(p), unsafe.Pointer(&b[0]))
	return p
}

// Delete releases an object returned by New. nil is a no-op.
func Delete[T any](c *Context, p *T) {
	if p == nil {
		return
	}
	release(c, unsafe.Pointer(p), arena.PointerFree[T]())
}

// MakeSlice returns n zeroed elements of T from arena id. The capacity is
// exactly n. Returns nil for n <= 0.
func MakeSlice[T any](c *Context, n int, id ID) []T {
	return MakeSliceExt[T](c, n, id, 0)
}

// MakeSliceExt is MakeSlice with an explicit minimum alignment.
func MakeSliceExt[T any](c *Context, n int, id ID, align uintptr) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	align = max(align, unsafe.Alignof(zero), arena.DefaultAlignment)
	b := c.AllocateExt(int(unsafe.Sizeof(zero))*n, id, align)
	if arena.PointerFree[T]() {
		clear(b)
		return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
	}
	s := make([]T, n)
	c.addCharge(unsafe.Pointer(unsafe.SliceData(s)), unsafe.Pointer(&b[0]))
	return s
}

// FreeSlice releases a slice returned by MakeSlice. Reslicing is allowed
// as long as the first element is kept.
func FreeSlice[T any](c *Context, s []T) {
	if cap(s) == 0 {
		return
	}
	release(c, unsafe.Pointer(unsafe.SliceData(s)), arena.PointerFree[T]())
}

func release(c *Context, p unsafe.Pointer, pointerFree bool) {
	if charge, ok := c.takeCharge(p); ok {
		c.FreePointer(charge)
		return
	}
	assert.Check(pointerFree, "memory: delete of untracked object %p", p)
	c.FreePointer(p)
}
