//go:build !arenakit_release

package assert

// Enabled reports whether debug checks are compiled in.
const Enabled = true

// Check panics with a *Violation if cond is false.
func Check(cond bool, format string, args ...any) {
	if !cond {
		fail(2, format, args...)
	}
}
