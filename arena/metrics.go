package arena

// SizeInUse returns the bytes between the region start and the bump
// pointer, including alignment padding.
func (s *Stack) SizeInUse() int {
	return int(s.offset)
}

// Count returns the number of allocations not yet freed or rewound.
func (s *Stack) Count() int {
	return s.count
}

// Capacity returns the region size in bytes.
func (s *Stack) Capacity() int {
	return len(s.buf)
}

// HighWater returns the largest SizeInUse ever observed.
func (s *Stack) HighWater() int {
	return int(s.highWater)
}

// Utilization returns the ratio of bytes in use to capacity (0.0 to 1.0).
func (s *Stack) Utilization() float64 {
	capacity := s.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(s.SizeInUse()) / float64(capacity)
}

// Metrics returns a snapshot of stack statistics.
func (s *Stack) Metrics() Metrics {
	return Metrics{
		Label:       s.label,
		SizeInUse:   s.SizeInUse(),
		Count:       s.Count(),
		Capacity:    s.Capacity(),
		HighWater:   s.HighWater(),
		Utilization: s.Utilization(),
	}
}

// Metrics contains statistical information about a stack.
type Metrics struct {
	Label       string
	SizeInUse   int     // Bytes between region start and bump pointer
	Count       int     // Live allocations
	Capacity    int     // Region size in bytes
	HighWater   int     // Peak SizeInUse
	Utilization float64 // Ratio of used to total capacity (0.0-1.0)
}

// Thread-safe metrics for SafeStack

// SizeInUse thread-safely returns the bytes in use.
func (s *SafeStack) SizeInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.SizeInUse()
}

// Count thread-safely returns the number of live allocations.
func (s *SafeStack) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.Count()
}

// Capacity thread-safely returns the region size.
func (s *SafeStack) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.Capacity()
}

// Metrics thread-safely returns a snapshot of stack statistics.
func (s *SafeStack) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.Metrics()
}
