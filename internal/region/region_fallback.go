//go:build !unix

package region

// reserve uses the Go heap where anonymous mappings are not available.
func reserve(size int) (*Region, error) {
	return &Region{
		Data:    make([]byte, size),
		release: func() error { return nil },
	}, nil
}
