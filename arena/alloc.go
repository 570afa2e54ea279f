package arena

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/pavanmanishd/arenakit/internal/assert"
)

// Alloc returns a pointer to a zeroed T stored inside the stack, or nil if
// the stack is exhausted. T must be pointer-free (see PointerFree): the
// garbage collector does not scan arena memory.
func Alloc[T any](s *Stack) *T {
	var zero T
	assert.Check(PointerFree[T](), "arena: Alloc of %T which contains pointers", zero)
	b := s.AllocBytes(max(int(unsafe.Sizeof(zero)), 1), alignOf[T]())
	if b == nil {
		return nil
	}
	clear(b)
	return (*T)(unsafe.Pointer(&b[0]))
}

// AllocSlice allocates n elements of T inside the stack. The elements are
// not initialized. Returns nil if n <= 0 or the stack is exhausted.
func AllocSlice[T any](s *Stack, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	assert.Check(PointerFree[T](), "arena: AllocSlice of %T which contains pointers", zero)
	b := s.AllocBytes(max(int(unsafe.Sizeof(zero))*n, 1), alignOf[T]())
	if b == nil {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}

// AllocSliceZeroed is AllocSlice with zeroed memory.
func AllocSliceZeroed[T any](s *Stack, n int) []T {
	out := AllocSlice[T](s, n)
	clear(out)
	return out
}

func alignOf[T any]() uintptr {
	var zero T
	return max(unsafe.Alignof(zero), DefaultAlignment)
}

var pointerFree sync.Map // reflect.Type -> bool

// PointerFree reports whether values of T contain no Go pointers and can
// therefore live in memory the garbage collector does not scan.
func PointerFree[T any]() bool {
	t := reflect.TypeFor[T]()
	if v, ok := pointerFree.Load(t); ok {
		return v.(bool)
	}
	free := typePointerFree(t)
	pointerFree.Store(t, free)
	return free
}

func typePointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || typePointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !typePointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
