package allocator

import (
	"log/slog"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/arenakit/memory"
)

func newContext(t *testing.T) *memory.Context {
	t.Helper()
	cfg := memory.DefaultConfig()
	cfg.Logger = slog.New(slog.DiscardHandler)
	m, err := memory.NewManager(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown() })
	return m.NewContext()
}

var (
	_ Storage[int] = (*Fixed[int])(nil)
	_ Storage[int] = (*Dynamic[int])(nil)
)

func TestFixed(t *testing.T) {
	f := NewFixed[int](8)
	assert.Equal(t, 8, f.Capacity())
	data := f.Data()
	require.Len(t, data, 8)

	for _, n := range []int{0, 1, 8} {
		f.Reserve(n)
		assert.Same(t, &data[0], &f.Data()[0], "reserve %d moved the buffer", n)
	}
	f.Release()
	assert.Equal(t, 8, f.Capacity())
}

func TestFixedZeroCapacity(t *testing.T) {
	f := NewFixed[int](0)
	assert.Zero(t, f.Capacity())
	f.Reserve(0)
}

func TestDynamicReservesOnce(t *testing.T) {
	mc := newContext(t)
	d := NewDynamic[uint64](mc)
	assert.Zero(t, d.Capacity())
	assert.Nil(t, d.Data())

	d.Reserve(0)
	assert.Zero(t, d.Capacity())

	d.Reserve(10)
	require.Equal(t, 10, d.Capacity())
	first := &d.Data()[0]

	for _, n := range []int{0, 5, 10} {
		d.Reserve(n)
		assert.Same(t, first, &d.Data()[0])
		assert.Equal(t, 10, d.Capacity())
	}

	d.Release()
	assert.Zero(t, d.Capacity())
	assert.Zero(t, mc.Stats(memory.Heap).Count)
}

func TestDynamicArenaAndAlignment(t *testing.T) {
	mc := newContext(t)
	s := mc.Scope(memory.TemporaryStack)
	defer s.Close()

	d := NewDynamic[byte](mc)
	d.ReserveExt(100, memory.Current, 64)
	assert.Zero(t, uintptr(unsafe.Pointer(&d.Data()[0]))%64)
	assert.Equal(t, 1, s.ScopeAllocationCount())
	assert.Same(t, mc, d.Context())
	d.Release()
}

func TestDynamicPointerElements(t *testing.T) {
	mc := newContext(t)
	d := NewDynamic[string](mc)
	d.ReserveExt(4, memory.Heap, 0)
	d.Data()[0] = "kept"
	assert.Equal(t, 1, mc.Stats(memory.Heap).Count)
	d.Release()
	assert.Zero(t, mc.Stats(memory.Heap).Count)
}

func TestReserveBeyondCapacity(t *testing.T) {
	t.Run("fixed", func(t *testing.T) {
		f := NewFixed[int](2)
		assert.Panics(t, func() { f.Reserve(3) })
	})
	t.Run("dynamic", func(t *testing.T) {
		mc := newContext(t)
		d := NewDynamic[int](mc)
		d.Reserve(2)
		assert.Panics(t, func() { d.Reserve(3) })
		d.Release()
	})
}
