// Package arena implements a fixed-budget bump allocator for Go.
//
// # Overview
//
// A Stack owns no memory of its own. It is handed one region up front and
// bump-allocates from it until the region is exhausted, at which point
// AllocBytes returns nil and the caller applies its own overflow policy.
// This matches targets where every byte is budgeted before startup.
//
// # Basic Usage
//
//	s := arena.NewStack("scratch", make([]byte, 64<<10))
//
//	m := s.Mark()
//	buf := s.AllocBytes(1024, arena.DefaultAlignment)
//	v := arena.Alloc[MyPlainStruct](s)
//	s.Rewind(m) // buf and v are invalid from here on
//
// # Thread Safety
//
// Stack is not thread-safe. SafeStack wraps it with a mutex.
//
// # Debug Checks
//
// Unless built with the arenakit_release tag, a Stack poisons memory
// (0xab when allocated, 0xdd when released) and keeps a bitmap of live
// allocation starts so that double frees, interior frees and frees of
// rewound memory are reported as contract violations.
//
// # Important Notes
//
//   - Only pointer-free types may be placed in a Stack (see PointerFree)
//   - Free does not reclaim bytes; only Rewind and Reset do
//   - Alignment is at least the pointer size
package arena
