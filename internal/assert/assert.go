// Package assert implements the contract checks used across arenakit.
//
// Two levels exist. Check is a debug check and compiles to nothing when the
// module is built with the arenakit_release tag. Always is never stripped and
// guards conditions that would corrupt memory if ignored (capacity overflow,
// exhausted budgets). A failed check logs the caller's file:line and panics
// with a *Violation.
package assert

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync/atomic"
)

// Violation is the panic value of a failed check.
type Violation struct {
	File string
	Line int
	Msg  string
}

// Error returns "file:line: message".
func (v *Violation) Error() string {
	return fmt.Sprintf("%s:%d: %s", v.File, v.Line, v.Msg)
}

var logger atomic.Pointer[slog.Logger]

// SetLogger sets the logger failed checks are reported to. nil restores slog.Default.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Always panics with a *Violation if cond is false, in every build.
func Always(cond bool, format string, args ...any) {
	if !cond {
		fail(2, format, args...)
	}
}

// Fail unconditionally reports a violation.
func Fail(format string, args ...any) {
	fail(2, format, args...)
}

func fail(skip int, format string, args ...any) {
	v := &Violation{File: "?", Msg: fmt.Sprintf(format, args...)}
	if _, file, line, ok := runtime.Caller(skip); ok {
		v.File, v.Line = filepath.Base(file), line
	}
	l := logger.Load()
	if l == nil {
		l = slog.Default()
	}
	l.Error("contract violation", "at", fmt.Sprintf("%s:%d", v.File, v.Line), "msg", v.Msg)
	panic(v)
}
