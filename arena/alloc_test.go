package arena

import (
	"fmt"
	"testing"
	"unsafe"
)

type testStruct struct {
	a int64
	b int32
	c int16
	d int8
}

func TestAlloc(t *testing.T) {
	s := newTestStack(1024)

	ptr := Alloc[int](s)
	if ptr == nil {
		t.Fatal("Alloc[int] returned nil")
	}
	if *ptr != 0 {
		t.Errorf("Alloc[int] value = %d, want 0 (zeroed)", *ptr)
	}

	st := Alloc[testStruct](s)
	if st == nil {
		t.Fatal("Alloc[testStruct] returned nil")
	}
	if st.a != 0 || st.b != 0 || st.c != 0 || st.d != 0 {
		t.Errorf("Alloc[testStruct] not properly zeroed: %+v", *st)
	}

	*ptr = 42
	st.a = 100
	if *ptr != 42 || st.a != 100 {
		t.Error("Could not write to allocated memory")
	}
}

func TestAllocExhausted(t *testing.T) {
	s := newTestStack(16)
	if Alloc[[8]int64](s) != nil {
		t.Error("Alloc larger than region should return nil")
	}
}

func TestAllocSlice(t *testing.T) {
	s := newTestStack(1024)

	slice := AllocSlice[int](s, 10)
	if len(slice) != 10 || cap(slice) != 10 {
		t.Errorf("AllocSlice[int](10) len/cap = %d/%d, want 10/10", len(slice), cap(slice))
	}

	if empty := AllocSlice[int](s, 0); empty != nil {
		t.Errorf("AllocSlice[int](0) = %v, want nil", empty)
	}
	if negative := AllocSlice[int](s, -1); negative != nil {
		t.Errorf("AllocSlice[int](-1) = %v, want nil", negative)
	}

	for i := range slice {
		slice[i] = i * 2
	}
	for i := range slice {
		if slice[i] != i*2 {
			t.Errorf("slice[%d] = %d, want %d", i, slice[i], i*2)
		}
	}
}

func TestAllocSliceZeroed(t *testing.T) {
	s := newTestStack(1024)
	slice := AllocSliceZeroed[int](s, 5)

	if len(slice) != 5 {
		t.Errorf("AllocSliceZeroed[int](5) length = %d, want 5", len(slice))
	}
	for i, v := range slice {
		if v != 0 {
			t.Errorf("slice[%d] = %d, want 0 (zeroed)", i, v)
		}
	}
}

func TestAllocAlignment(t *testing.T) {
	s := newTestStack(1024)
	s.AllocBytes(1, 0)

	type wide struct {
		_ [2]complex128
	}
	for i := 0; i < 10; i++ {
		p := Alloc[int64](s)
		if addr := uintptr(unsafe.Pointer(p)); addr%unsafe.Alignof(int64(0)) != 0 {
			t.Errorf("Pointer %d not properly aligned: %x", i, addr)
		}
		w := Alloc[wide](s)
		if addr := uintptr(unsafe.Pointer(w)); addr%unsafe.Alignof(*w) != 0 {
			t.Errorf("wide %d not properly aligned: %x", i, addr)
		}
	}
}

func TestPointerFree(t *testing.T) {
	type plain struct {
		a [4]int32
		b float64
	}
	type withString struct {
		n int
		s string
	}
	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"int", PointerFree[int](), true},
		{"array", PointerFree[[3]uint8](), true},
		{"plain struct", PointerFree[plain](), true},
		{"empty array of pointers", PointerFree[[0]*int](), true},
		{"pointer", PointerFree[*int](), false},
		{"string", PointerFree[string](), false},
		{"slice", PointerFree[[]byte](), false},
		{"struct with string", PointerFree[withString](), false},
		{"interface", PointerFree[any](), false},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("PointerFree[%s] = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func BenchmarkAlloc(b *testing.B) {
	s := newTestStack(1024 * 1024)
	m := s.Mark()

	b.Run("Alloc[int]", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			Alloc[int](s)
			if i%1000 == 999 {
				s.Rewind(m)
			}
		}
	})
}

func BenchmarkAllocSlice(b *testing.B) {
	s := newTestStack(1024 * 1024)
	m := s.Mark()
	sizes := []int{10, 100, 1000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("AllocSlice-%d", size), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				AllocSlice[int](s, size)
				if i%100 == 99 {
					s.Rewind(m)
				}
			}
		})
	}
}
