package memory

import (
	"log/slog"
	"sync"
	"unsafe"

	"github.com/pavanmanishd/arenakit/arena"
	"github.com/pavanmanishd/arenakit/internal/assert"
)

// poisonHeapFreed marks bytes handed back to the heap in checked builds.
const poisonHeapFreed = 0xfe

type heapBlock struct {
	buf  []byte // keeps the allocation reachable until freed
	size int
}

// heapArena is the tracked general-purpose arena. It is shared by every
// context of a Manager.
type heapArena struct {
	log *slog.Logger

	mu        sync.Mutex
	blocks    map[uintptr]heapBlock
	count     int
	bytes     int
	highWater int
}

func newHeapArena(log *slog.Logger) *heapArena {
	return &heapArena{log: log, blocks: make(map[uintptr]heapBlock)}
}

func (h *heapArena) allocate(size int, align uintptr) []byte {
	if align < arena.DefaultAlignment {
		align = arena.DefaultAlignment
	}
	buf := make([]byte, size+int(align)-1)
	base := uintptr(unsafe.Pointer(&buf[0]))
	off := int(((base + align - 1) &^ (align - 1)) - base)
	b := buf[off : off+size : off+size]

	h.mu.Lock()
	h.blocks[base+uintptr(off)] = heapBlock{buf: buf, size: size}
	h.count++
	h.bytes += size
	h.highWater = max(h.highWater, h.bytes)
	h.mu.Unlock()

	if assert.Enabled {
		for i := range b {
			b[i] = arena.PoisonAllocated
		}
	}
	h.log.Debug("heap allocate", "size", size, "align", align)
	return b
}

// free releases the block starting at p. It reports false if p was not
// allocated by this heap.
func (h *heapArena) free(p unsafe.Pointer) bool {
	h.mu.Lock()
	blk, ok := h.blocks[uintptr(p)]
	if ok {
		delete(h.blocks, uintptr(p))
		h.count--
		h.bytes -= blk.size
	}
	h.mu.Unlock()

	if ok && assert.Enabled {
		b := unsafe.Slice((*byte)(p), blk.size)
		for i := range b {
			b[i] = poisonHeapFreed
		}
	}
	return ok
}

func (h *heapArena) stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{Count: h.count, Bytes: h.bytes, HighWater: h.highWater}
}
