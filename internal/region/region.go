// Package region reserves the fixed memory regions that back arena budgets.
//
// Regions hold only pointer-free data: the garbage collector does not scan
// mapped memory.
package region

import "errors"

// ErrBadSize is returned for a non-positive region size.
var ErrBadSize = errors.New("region: size must be positive")

// Region is a reserved block of memory and the function that gives it back.
type Region struct {
	Data    []byte
	release func() error
}

// Release returns the memory. It is safe to call more than once.
func (r *Region) Release() error {
	if r.release == nil {
		return nil
	}
	err := r.release()
	r.release = nil
	r.Data = nil
	return err
}

// Reserve maps size bytes of zeroed, private, anonymous memory.
func Reserve(size int) (*Region, error) {
	if size <= 0 {
		return nil, ErrBadSize
	}
	return reserve(size)
}
