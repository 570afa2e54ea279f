// Package memory implements budgeted arenas selected through scopes.
//
// A Manager owns three arenas: a tracked heap, a permanent bump arena and
// one temporary stack per Context. Each goroutine allocates through its own
// Context, whose innermost Scope decides which arena "current" means.
// Closing a temporary-stack Scope rewinds the stack, invalidating every
// allocation made inside it.
//
// Allocation never returns nil. Exhausting a fixed budget is a contract
// violation unless the arena is configured to overflow to the heap.
package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/pavanmanishd/arenakit/arena"
	"github.com/pavanmanishd/arenakit/internal/assert"
	"github.com/pavanmanishd/arenakit/internal/region"
)

// Stats is a snapshot of one arena's accounting.
type Stats struct {
	Count     int // live allocations
	Bytes     int // bytes in use
	HighWater int // peak bytes in use
	Capacity  int // budget, 0 for the heap
}

// Manager owns the arenas shared by every Context created from it.
type Manager struct {
	cfg  Config
	log  *slog.Logger
	heap *heapArena

	permRegion *region.Region
	perm       *arena.SafeStack

	// charges maps Go-allocated objects to the heap or permanent bytes
	// they are accounted against.
	chargeMu sync.Mutex
	charges  map[unsafe.Pointer]unsafe.Pointer

	ctxMu    sync.Mutex
	contexts []*Context
	idle     []*Context

	tempHighWater atomic.Int64
	shuttingDown  atomic.Bool
}

// NewManager reserves the permanent budget and returns a ready Manager.
// Temporary stacks are reserved lazily, one per Context.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.PermanentBudget <= 0 || cfg.TemporaryBudget <= 0 {
		return nil, fmt.Errorf("memory: budgets must be positive (perm %d, temp %d)", cfg.PermanentBudget, cfg.TemporaryBudget)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	r, err := region.Reserve(cfg.PermanentBudget)
	if err != nil {
		return nil, fmt.Errorf("memory: reserve permanent arena: %w", err)
	}
	m := &Manager{
		cfg:        cfg,
		log:        log,
		heap:       newHeapArena(log),
		permRegion: r,
		perm:       arena.NewSafeStack(Permanent.String(), r.Data),
		charges:    make(map[unsafe.Pointer]unsafe.Pointer),
	}
	return m, nil
}

// Config returns the configuration the manager was created with.
func (m *Manager) Config() Config {
	return m.cfg
}

// Logger returns the manager's logger.
func (m *Manager) Logger() *slog.Logger {
	return m.log
}

// NewContext creates a Context owned by the caller. Contexts must not be
// shared between goroutines.
func (m *Manager) NewContext() *Context {
	c := &Context{m: m}
	m.ctxMu.Lock()
	m.contexts = append(m.contexts, c)
	m.ctxMu.Unlock()
	return c
}

// AcquireContext returns an idle Context, creating one if none is free.
// Give it back with ReleaseContext.
func (m *Manager) AcquireContext() *Context {
	m.ctxMu.Lock()
	if n := len(m.idle); n > 0 {
		c := m.idle[n-1]
		m.idle = m.idle[:n-1]
		m.ctxMu.Unlock()
		return c
	}
	m.ctxMu.Unlock()
	return m.NewContext()
}

// ReleaseContext returns c to the idle list. c must have no open scopes
// and no live temporary allocations.
func (m *Manager) ReleaseContext(c *Context) {
	assert.Always(c.m == m, "memory: context released to a foreign manager")
	assert.Always(len(c.scopes) == 0, "memory: context released with %d open scopes", len(c.scopes))
	if c.temp != nil {
		assert.Check(c.temp.Count() == 0, "memory: context released with %d temporary allocations", c.temp.Count())
		m.noteTempHighWater(c.temp.HighWater())
		c.temp.Reset()
		clear(c.tempCharges)
	}
	m.ctxMu.Lock()
	m.idle = append(m.idle, c)
	m.ctxMu.Unlock()
}

// Stats returns the accounting of a shared arena. Temporary stacks are
// per Context; use Context.Stats for those.
func (m *Manager) Stats(id ID) Stats {
	switch id {
	case Heap:
		return m.heap.stats()
	case Permanent:
		ms := m.perm.Metrics()
		return Stats{Count: ms.Count, Bytes: ms.SizeInUse, HighWater: ms.HighWater, Capacity: ms.Capacity}
	}
	assert.Fail("memory: no shared arena %s", id)
	return Stats{}
}

// AllocationCount returns the live allocations in the heap and permanent
// arenas and logs a line per arena.
func (m *Manager) AllocationCount() int {
	total := 0
	for _, id := range []ID{Heap, Permanent} {
		st := m.Stats(id)
		m.log.Info("allocation count", "arena", id, "count", st.Count, "bytes", st.Bytes)
		total += st.Count
	}
	return total
}

// Shutdown checks for leaks and gives back every reserved region. The
// permanent arena is released in bulk; heap and temporary allocations that
// are still live are reported as leaks.
func (m *Manager) Shutdown() error {
	m.shuttingDown.Store(true)

	m.ctxMu.Lock()
	contexts := m.contexts
	m.contexts, m.idle = nil, nil
	m.ctxMu.Unlock()

	var errs []error
	leaked := 0
	for _, c := range contexts {
		if c.temp != nil {
			leaked += c.temp.Count()
		}
		errs = append(errs, c.release())
	}
	assert.Check(leaked == 0, "memory: leaked %d temporary allocations", leaked)

	heap := m.heap.stats()
	assert.Check(heap.Count == 0, "memory: leaked %d heap allocations (%d bytes)", heap.Count, heap.Bytes)

	if perm := m.perm.Count(); perm != 0 {
		m.log.Info("releasing permanent arena", "count", perm, "bytes", m.perm.SizeInUse())
	}
	m.perm.Release()
	errs = append(errs, m.permRegion.Release())
	return errors.Join(errs...)
}

func (m *Manager) noteTempHighWater(n int) {
	for {
		cur := m.tempHighWater.Load()
		if int64(n) <= cur || m.tempHighWater.CompareAndSwap(cur, int64(n)) {
			return
		}
	}
}

// allocateShared serves the heap and permanent arenas.
func (m *Manager) allocateShared(id ID, size int, align uintptr) []byte {
	if id == Permanent {
		if b := m.perm.AllocBytes(size, align); b != nil {
			return b
		}
		return m.overflow(id, size, align)
	}
	return m.heap.allocate(size, align)
}

// overflow applies the exhaustion policy of a fixed arena.
func (m *Manager) overflow(id ID, size int, align uintptr) []byte {
	assert.Always(m.cfg.fallback(id), "memory: %s exhausted allocating %d bytes", id, size)
	m.log.Warn("arena is overflowing to heap", "arena", id, "size", size)
	return m.heap.allocate(size, align)
}

// freeShared frees memory owned by the permanent arena or the heap.
func (m *Manager) freeShared(p unsafe.Pointer) {
	if m.perm.Contains(p) {
		m.perm.Free(p)
		if !m.shuttingDown.Load() {
			m.log.Warn("illegal free", "arena", Permanent)
		}
		return
	}
	ok := m.heap.free(p)
	assert.Always(ok, "memory: free of unknown pointer %p", p)
}

func (m *Manager) addCharge(obj, charge unsafe.Pointer) {
	m.chargeMu.Lock()
	m.charges[obj] = charge
	m.chargeMu.Unlock()
}

func (m *Manager) takeCharge(obj unsafe.Pointer) (unsafe.Pointer, bool) {
	m.chargeMu.Lock()
	defer m.chargeMu.Unlock()
	charge, ok := m.charges[obj]
	if ok {
		delete(m.charges, obj)
	}
	return charge, ok
}
