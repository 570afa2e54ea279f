//go:build arenakit_release

package assert

// Enabled reports whether debug checks are compiled in.
const Enabled = false

// Check is a no-op in release builds. Violating the checked contract is
// undefined behavior.
func Check(cond bool, format string, args ...any) {}
