package arena

import (
	"sync"
	"unsafe"
)

// SafeStack is a mutex-protected wrapper around Stack for concurrent access.
type SafeStack struct {
	mu sync.Mutex
	s  *Stack
}

// NewSafeStack creates a thread-safe stack over buf.
func NewSafeStack(label string, buf []byte) *SafeStack {
	return &SafeStack{s: NewStack(label, buf)}
}

// Label returns the name the stack was created with.
func (s *SafeStack) Label() string {
	return s.s.Label()
}

// AllocBytes thread-safely allocates n aligned bytes. Returns nil when exhausted.
func (s *SafeStack) AllocBytes(n int, align uintptr) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.AllocBytes(n, align)
}

// Contains thread-safely reports whether p points into the region.
func (s *SafeStack) Contains(p unsafe.Pointer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.Contains(p)
}

// Free thread-safely records a free.
func (s *SafeStack) Free(p unsafe.Pointer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Free(p)
}

// Mark thread-safely returns the current position.
func (s *SafeStack) Mark() Mark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.Mark()
}

// Rewind thread-safely returns the stack to m.
func (s *SafeStack) Rewind(m Mark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Rewind(m)
}

// Reset thread-safely empties the stack.
func (s *SafeStack) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Reset()
}

// Release thread-safely drops the region.
func (s *SafeStack) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Release()
}

// SafeAlloc thread-safely returns a zeroed *T from the stack, or nil when exhausted.
func SafeAlloc[T any](s *SafeStack) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Alloc[T](s.s)
}

// SafeAllocSlice thread-safely allocates n uninitialized elements of T.
func SafeAllocSlice[T any](s *SafeStack, n int) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllocSlice[T](s.s, n)
}
