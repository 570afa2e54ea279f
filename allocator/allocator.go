// Package allocator provides the storage that containers are built on.
//
// Capacity never grows by reallocation. A Fixed storage has its capacity
// set at construction; a Dynamic storage takes its capacity from the first
// Reserve and keeps it for life.
package allocator

import (
	"github.com/pavanmanishd/arenakit/internal/assert"
	"github.com/pavanmanishd/arenakit/memory"
)

// Storage is a buffer of T with a capacity that never changes once set.
type Storage[T any] interface {
	// Capacity returns the number of elements Data can hold.
	Capacity() int
	// Data returns the buffer, of length Capacity.
	Data() []T
	// Reserve ensures room for n elements. It fails if n cannot be served
	// without reallocating.
	Reserve(n int)
	// Release gives back any memory the storage owns.
	Release()
}

// Fixed is storage whose capacity is set at construction and allocated
// with the Go runtime, like an inline array.
type Fixed[T any] struct {
	data []T
}

// NewFixed returns fixed storage for capacity elements.
func NewFixed[T any](capacity int) *Fixed[T] {
	assert.Always(capacity >= 0, "allocator: negative capacity %d", capacity)
	return &Fixed[T]{data: make([]T, capacity)}
}

// Capacity returns the element count fixed at construction.
func (f *Fixed[T]) Capacity() int { return len(f.data) }
// Data returns the whole storage, Capacity elements long.
func (f *Fixed[T]) Data() []T     { return f.data }

// Reserve is a no-op for n <= Capacity and a violation otherwise.
func (f *Fixed[T]) Reserve(n int) {
	assert.Always(n <= len(f.data), "allocator: reserve %d exceeds fixed capacity %d", n, len(f.data))
}

// Release does nothing; fixed storage is collected with its owner.
func (f *Fixed[T]) Release() {}

// Dynamic is storage reserved exactly once from a memory context.
type Dynamic[T any] struct {
	mc   *memory.Context
	data []T
}

// NewDynamic returns empty storage that reserves from mc's arenas.
func NewDynamic[T any](mc *memory.Context) *Dynamic[T] {
	return &Dynamic[T]{mc: mc}
}

// Capacity returns 0 until Reserve, then the reserved count.
func (d *Dynamic[T]) Capacity() int { return len(d.data) }
// Data returns the reserved storage, or nil before Reserve.
func (d *Dynamic[T]) Data() []T     { return d.data }

// Context returns the memory context the storage allocates from.
func (d *Dynamic[T]) Context() *memory.Context { return d.mc }

// Reserve allocates n elements from the current arena on first use.
func (d *Dynamic[T]) Reserve(n int) {
	d.ReserveExt(n, memory.Current, 0)
}

// ReserveExt allocates n elements from arena id with the given alignment
// on the first call with n > 0. Later calls for n <= Capacity are no-ops;
// asking for more is a violation.
func (d *Dynamic[T]) ReserveExt(n int, id memory.ID, align uintptr) {
	if n <= len(d.data) {
		return
	}
	assert.Always(d.data == nil, "allocator reallocation disallowed (capacity %d, requested %d)", len(d.data), n)
	d.data = memory.MakeSliceExt[T](d.mc, n, id, align)
}

// Release frees the buffer through the memory context. The storage can
// reserve again afterwards.
func (d *Dynamic[T]) Release() {
	if d.data == nil {
		return
	}
	memory.FreeSlice(d.mc, d.data)
	d.data = nil
}
