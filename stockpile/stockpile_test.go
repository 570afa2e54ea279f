package stockpile

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/arenakit/allocator"
	"github.com/pavanmanishd/arenakit/memory"
)

func TestPushBackUntilFull(t *testing.T) {
	s := NewFixed[int](3)
	assert.True(t, s.Empty())
	assert.Equal(t, 3, s.Cap())

	for i := range 3 {
		require.True(t, s.PushBack(i*10))
	}
	assert.True(t, s.Full())
	assert.False(t, s.PushBack(99))
	assert.Nil(t, s.EmplaceBack())
	assert.Equal(t, 3, s.Len(), "failed requests do not count")
	assert.Equal(t, []int{0, 10, 20}, s.Slice())
	assert.Equal(t, 20, *s.At(2))
}

func TestEmplaceBack(t *testing.T) {
	type pair struct{ a, b int }
	s := NewFixed[pair](2)
	p := s.EmplaceBack()
	require.NotNil(t, p)
	assert.Equal(t, pair{}, *p)
	p.a, p.b = 1, 2
	assert.Equal(t, pair{1, 2}, *s.At(0))
}

func TestConcurrentProducers(t *testing.T) {
	const producers, each, capacity = 8, 200, 1000
	s := NewFixed[int](capacity)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for g := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := 0
			for i := range each {
				if s.PushBack(g*each + i) {
					n++
				}
			}
			mu.Lock()
			accepted += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity, accepted)
	assert.Equal(t, capacity, s.Len())
	seen := make(map[int]bool, capacity)
	for _, v := range s.All() {
		assert.False(t, seen[*v], "value %d stored twice", *v)
		seen[*v] = true
	}
	assert.Len(t, seen, capacity)
}

type tracked struct {
	destructs *int
}

func (x *tracked) Destruct() { *x.destructs++ }

func TestClearDestructs(t *testing.T) {
	n := 0
	s := NewFixed[tracked](4)
	s.PushBack(tracked{&n})
	s.PushBack(tracked{&n})
	s.Clear()
	assert.Equal(t, 2, n)
	assert.True(t, s.Empty())
	assert.True(t, s.PushBack(tracked{&n}))
	assert.Equal(t, 1, s.Len())
}

func TestDynamicStorage(t *testing.T) {
	cfg := memory.DefaultConfig()
	cfg.Logger = slog.New(slog.DiscardHandler)
	m, err := memory.NewManager(cfg)
	require.NoError(t, err)
	mc := m.NewContext()

	store := allocator.NewDynamic[uint64](mc)
	store.ReserveExt(16, memory.Permanent, 0)
	s := New[uint64](store)
	for i := range 20 {
		s.PushBack(uint64(i))
	}
	assert.Equal(t, 16, s.Len())
	assert.Equal(t, 1, m.Stats(memory.Permanent).Count)

	s.Release()
	assert.Zero(t, m.Stats(memory.Permanent).Count)
	require.NoError(t, m.Shutdown())
}

func TestNewRejectsEmptyStorage(t *testing.T) {
	assert.Panics(t, func() { NewFixed[int](0) })
}
