package arena

import (
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/arenakit/internal/region"
)

func TestNoOverlap(t *testing.T) {
	s := newTestStack(8 * 1024)

	ptrs := make([]*[64]byte, 100)
	for i := range ptrs {
		ptrs[i] = Alloc[[64]byte](s)
		require.NotNil(t, ptrs[i])
		for j := range ptrs[i] {
			ptrs[i][j] = byte(i)
		}
	}

	for i, ptr := range ptrs {
		for j, b := range ptr {
			if b != byte(i) {
				t.Fatalf("corruption at ptr[%d][%d]: got %d, want %d", i, j, b, byte(i))
			}
		}
	}
}

func TestBoundaryConditions(t *testing.T) {
	t.Run("ExactCapacity", func(t *testing.T) {
		s := newTestStack(1024)
		buf := s.AllocBytes(1024, 0)
		assert.Len(t, buf, 1024)
		assert.Nil(t, s.AllocBytes(1, 0))
		assert.Equal(t, 1.0, s.Utilization())
	})

	t.Run("AlignmentBoundaries", func(t *testing.T) {
		s := newTestStack(1024)
		for _, size := range []int{1, 2, 3, 4, 5, 7, 8, 9, 15, 16, 17} {
			buf := s.AllocBytes(size, 0)
			require.Len(t, buf, size)
			addr := uintptr(unsafe.Pointer(&buf[0]))
			assert.Zero(t, addr%DefaultAlignment, "size %d at %x", size, addr)
		}
	})

	t.Run("ZeroSizedType", func(t *testing.T) {
		s := newTestStack(64)
		a := Alloc[struct{}](s)
		b := Alloc[struct{}](s)
		assert.NotNil(t, a)
		assert.NotEqual(t, unsafe.Pointer(a), unsafe.Pointer(b))
	})
}

func TestStackOverRegion(t *testing.T) {
	r, err := region.Reserve(64 << 10)
	require.NoError(t, err)
	defer r.Release()

	s := NewStack("mapped", r.Data)
	for i := 0; i < 1000; i++ {
		p := Alloc[int64](s)
		require.NotNil(t, p)
		*p = int64(i)
	}
	assert.Equal(t, 8000, s.SizeInUse())
	s.Reset()
	assert.Zero(t, s.Count())
}

func TestConcurrencyStress(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	s := NewSafeStack("stress", make([]byte, 1<<20))
	const goroutines = 50
	const allocsPerGoroutine = 200

	var wg sync.WaitGroup
	errs := make(chan string, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < allocsPerGoroutine; j++ {
				switch j % 3 {
				case 0:
					if buf := s.AllocBytes(32, 0); len(buf) != 32 {
						errs <- "AllocBytes"
						return
					}
				case 1:
					if p := SafeAlloc[int32](s); p == nil {
						errs <- "SafeAlloc"
						return
					}
				case 2:
					if sl := SafeAllocSlice[uint16](s, 4); len(sl) != 4 {
						errs <- "SafeAllocSlice"
						return
					}
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("concurrent %s failed", e)
	}
	assert.Equal(t, goroutines*allocsPerGoroutine, s.Count())
}

func TestSafeStackDeadlock(t *testing.T) {
	s := NewSafeStack("deadlock", make([]byte, 64<<10))
	done := make(chan struct{})

	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					m := s.Mark()
					s.AllocBytes(8, 0)
					_ = s.Metrics()
					_ = m
				}
			}()
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("SafeStack operations deadlocked")
	}
}
