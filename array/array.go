// Package array implements a sequence with a capacity that never grows by
// reallocation.
//
// Elements are constructed and destructed explicitly as the size changes.
// If *T implements Constructor, Resize calls Construct on every new
// element; if *T implements Destructor, every element leaving the array
// through PopBack, Resize, Clear, EraseUnordered, Assign or Release is
// destructed first.
package array

import (
	"iter"
	"slices"
	"unsafe"

	"github.com/pavanmanishd/arenakit/allocator"
	"github.com/pavanmanishd/arenakit/internal/assert"
	"github.com/pavanmanishd/arenakit/memory"
)

// Constructor is implemented by element pointers that need initialization
// beyond the zero value.
type Constructor interface {
	Construct()
}

// Destructor is implemented by element pointers that release resources.
type Destructor interface {
	Destruct()
}

// Array is a sequence of T over a Storage. It is not safe for concurrent use.
type Array[T any] struct {
	store allocator.Storage[T]
	size  int
}

// New returns an empty array over store.
func New[T any](store allocator.Storage[T]) *Array[T] {
	return &Array[T]{store: store}
}

// NewFixed returns an empty array with fixed storage for capacity elements.
func NewFixed[T any](capacity int) *Array[T] {
	return New[T](allocator.NewFixed[T](capacity))
}

// NewDynamic returns an empty array whose storage is reserved once from mc.
func NewDynamic[T any](mc *memory.Context) *Array[T] {
	return New[T](allocator.NewDynamic[T](mc))
}

// Len returns the number of live elements.
func (a *Array[T]) Len() int    { return a.size }
// Cap returns the storage capacity.
func (a *Array[T]) Cap() int    { return a.store.Capacity() }
// Empty reports whether Len is 0.
func (a *Array[T]) Empty() bool { return a.size == 0 }
// Full reports whether Len equals Cap.
func (a *Array[T]) Full() bool  { return a.size == a.store.Capacity() }

// At returns a pointer to element i.
func (a *Array[T]) At(i int) *T {
	assert.Check(i >= 0 && i < a.size, "array: index %d out of range [0,%d)", i, a.size)
	return &a.store.Data()[i]
}

// Set replaces element i.
func (a *Array[T]) Set(i int, v T) {
	*a.At(i) = v
}

// Front returns the first element.
func (a *Array[T]) Front() *T {
	assert.Check(a.size > 0, "array: front of empty array")
	return &a.store.Data()[0]
}

// Back returns the last element.
func (a *Array[T]) Back() *T {
	assert.Check(a.size > 0, "array: back of empty array")
	return &a.store.Data()[a.size-1]
}

// Slice returns the live elements. The slice aliases the array.
func (a *Array[T]) Slice() []T {
	return a.store.Data()[:a.size]
}

// Data returns the whole storage, including unused capacity.
func (a *Array[T]) Data() []T {
	return a.store.Data()
}

// All iterates over index and element pointer pairs.
func (a *Array[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		data := a.store.Data()
		for i := 0; i < a.size; i++ {
			if !yield(i, &data[i]) {
				return
			}
		}
	}
}

// Values iterates over element values.
func (a *Array[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		data := a.store.Data()
		for i := 0; i < a.size; i++ {
			if !yield(data[i]) {
				return
			}
		}
	}
}

// Reserve ensures capacity for n elements without moving existing ones.
func (a *Array[T]) Reserve(n int) {
	a.store.Reserve(n)
}

// PushBack appends a copy of v. The array must not be full.
func (a *Array[T]) PushBack(v T) {
	assert.Always(a.size < a.store.Capacity(), "array: push past capacity %d", a.store.Capacity())
	a.store.Data()[a.size] = v
	a.size++
}

// EmplaceBackUnconstructed appends a zero element without calling its
// constructor and returns a pointer for the caller to fill in.
func (a *Array[T]) EmplaceBackUnconstructed() *T {
	assert.Always(a.size < a.store.Capacity(), "array: emplace past capacity %d", a.store.Capacity())
	a.size++
	return &a.store.Data()[a.size-1]
}

// PopBack destructs and removes the last element.
func (a *Array[T]) PopBack() {
	assert.Check(a.size > 0, "array: pop of empty array")
	a.size--
	destruct(a.store.Data()[a.size : a.size+1])
}

// Resize grows by constructing elements or shrinks by destructing them.
// Dynamic storage reserves n on first use.
func (a *Array[T]) Resize(n int) {
	assert.Check(n >= 0, "array: negative size %d", n)
	a.store.Reserve(n)
	data := a.store.Data()
	if n >= a.size {
		construct(data[a.size:n])
	} else {
		destruct(data[n:a.size])
	}
	a.size = n
}

// Clear destructs every element.
func (a *Array[T]) Clear() {
	destruct(a.store.Data()[:a.size])
	a.size = 0
}

// Assign replaces the contents with copies of src, which may be a view
// of the array itself. Dynamic storage reserves exactly len(src) on first
// use; an empty src never allocates.
func (a *Array[T]) Assign(src []T) {
	a.store.Reserve(len(src))
	if overlaps(a.store.Data(), src) {
		src = slices.Clone(src)
	}
	a.Clear()
	a.size = copy(a.store.Data(), src)
}

// AssignSeq replaces the contents with the values of seq. The array must
// already have room for all of them, and seq must not read the array.
func (a *Array[T]) AssignSeq(seq iter.Seq[T]) {
	a.Clear()
	for v := range seq {
		a.PushBack(v)
	}
}

// EraseUnordered destructs element i and moves the last element into its
// place. Order is not preserved.
func (a *Array[T]) EraseUnordered(i int) {
	assert.Check(i >= 0 && i < a.size, "array: erase index %d out of range [0,%d)", i, a.size)
	data := a.store.Data()
	destruct(data[i : i+1])
	a.size--
	if i != a.size {
		data[i] = data[a.size]
		var zero T
		data[a.size] = zero
	}
}

// Sort orders the live elements by cmp.
func (a *Array[T]) Sort(cmp func(x, y T) int) {
	slices.SortFunc(a.Slice(), cmp)
}

// Release destructs every element and frees the storage.
func (a *Array[T]) Release() {
	a.Clear()
	a.store.Release()
}

func construct[T any](s []T) {
	for i := range s {
		var zero T
		s[i] = zero
		if c, ok := any(&s[i]).(Constructor); ok {
			c.Construct()
		}
	}
}

// destruct runs destructors and zeroes the slots so the collector can
// reclaim anything they referenced.
func destruct[T any](s []T) {
	for i := range s {
		if d, ok := any(&s[i]).(Destructor); ok {
			d.Destruct()
		}
	}
	clear(s)
}

func overlaps[T any](x, y []T) bool {
	if len(x) == 0 || len(y) == 0 {
		return false
	}
	size := unsafe.Sizeof(x[0])
	if size == 0 {
		return false
	}
	x0 := uintptr(unsafe.Pointer(&x[0]))
	y0 := uintptr(unsafe.Pointer(&y[0]))
	return x0 < y0+uintptr(len(y))*size && y0 < x0+uintptr(len(x))*size
}
