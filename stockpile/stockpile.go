// Package stockpile collects results from many goroutines into storage of
// fixed capacity.
//
// PushBack and EmplaceBack claim a slot with one atomic add and never
// block. Requests past the capacity fail. Reading the elements is only
// safe once every producer has finished, for example after
// taskqueue.Queue.WaitForAll.
package stockpile

import (
	"iter"
	"sync/atomic"

	"github.com/pavanmanishd/arenakit/allocator"
	"github.com/pavanmanishd/arenakit/array"
	"github.com/pavanmanishd/arenakit/internal/assert"
)

// Stockpile is an append-only set of slots over a Storage.
type Stockpile[T any] struct {
	store allocator.Storage[T]
	// claimed counts slot requests and may run past the capacity.
	claimed atomic.Int64
}

// New returns a stockpile over store, which must already have capacity.
func New[T any](store allocator.Storage[T]) *Stockpile[T] {
	assert.Always(store.Capacity() > 0, "stockpile: storage has no capacity")
	return &Stockpile[T]{store: store}
}

// NewFixed returns a stockpile of capacity slots.
func NewFixed[T any](capacity int) *Stockpile[T] {
	return New[T](allocator.NewFixed[T](capacity))
}

// Cap returns the number of slots.
func (s *Stockpile[T]) Cap() int { return s.store.Capacity() }

// Len returns the number of filled slots.
func (s *Stockpile[T]) Len() int {
	return int(min(s.claimed.Load(), int64(s.store.Capacity())))
}

// Empty reports whether no slot has been claimed.
func (s *Stockpile[T]) Empty() bool { return s.claimed.Load() == 0 }

// Full reports whether every slot has been claimed.
func (s *Stockpile[T]) Full() bool { return s.claimed.Load() >= int64(s.store.Capacity()) }

// PushBack stores a copy of v and reports whether there was room.
func (s *Stockpile[T]) PushBack(v T) bool {
	p := s.EmplaceBack()
	if p == nil {
		return false
	}
	*p = v
	return true
}

// EmplaceBack claims a zeroed slot for the caller to fill in, or returns
// nil when the stockpile is full.
func (s *Stockpile[T]) EmplaceBack() *T {
	i := s.claimed.Add(1) - 1
	if i >= int64(s.store.Capacity()) {
		return nil
	}
	return &s.store.Data()[i]
}

// At returns a pointer to slot i.
func (s *Stockpile[T]) At(i int) *T {
	assert.Check(i >= 0 && i < s.Len(), "stockpile: index %d out of range [0,%d)", i, s.Len())
	return &s.store.Data()[i]
}

// Slice returns the filled slots.
func (s *Stockpile[T]) Slice() []T {
	return s.store.Data()[:s.Len()]
}

// All iterates over the filled slots.
func (s *Stockpile[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		data := s.Slice()
		for i := range data {
			if !yield(i, &data[i]) {
				return
			}
		}
	}
}

// Clear destructs the filled slots and makes them available again. It
// must not run concurrently with producers.
func (s *Stockpile[T]) Clear() {
	data := s.Slice()
	for i := range data {
		if d, ok := any(&data[i]).(array.Destructor); ok {
			d.Destruct()
		}
	}
	clear(data)
	s.claimed.Store(0)
}

// Release clears the stockpile and gives back its storage.
func (s *Stockpile[T]) Release() {
	s.Clear()
	s.store.Release()
}
