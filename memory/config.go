package memory

import "log/slog"

// Config sets the arena budgets and overflow policy of a Manager.
type Config struct {
	// PermanentBudget is the size of the permanent arena in bytes.
	PermanentBudget int

	// TemporaryBudget is the size of each context's temporary stack in bytes.
	TemporaryBudget int

	// PermanentFallback and TemporaryFallback make an exhausted arena
	// overflow to the heap with a warning instead of failing.
	PermanentFallback bool
	TemporaryFallback bool

	// Logger receives diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns 1 MiB budgets with overflow disabled.
func DefaultConfig() Config {
	return Config{
		PermanentBudget: 1 << 20,
		TemporaryBudget: 1 << 20,
	}
}

func (c Config) fallback(id ID) bool {
	switch id {
	case Permanent:
		return c.PermanentFallback
	case TemporaryStack:
		return c.TemporaryFallback
	}
	return false
}
