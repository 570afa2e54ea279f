// Package pflagx implements extensions to pflag.
package pflagx

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/spf13/pflag"
)

// FlagSet is a pflag.FlagSet with the extension methods.
type FlagSet pflag.FlagSet

// FlagSetExt views fs as a *FlagSet.
func FlagSetExt(fs *pflag.FlagSet) *FlagSet {
	return (*FlagSet)(fs)
}

// FlagSet returns the underlying pflag.FlagSet.
func (fs *FlagSet) FlagSet() *pflag.FlagSet {
	return (*pflag.FlagSet)(fs)
}

// LevelP defines a slog.Level flag accepting the names slog.Level parses
// (debug, info, warn, error, optionally with an offset like info+2).
func (fs *FlagSet) LevelP(name, shorthand string, value slog.Level, usage string) *slog.LevelVar {
	level := new(slog.LevelVar)
	def := new(slog.LevelVar)
	def.Set(value)
	fs.FlagSet().TextVarP(level, name, shorthand, def, usage)
	return level
}

// ParseEnv sets flags from environment entries named prefix followed by
// the flag name in upper case with dashes as underscores, so
// ARENAKIT_LOG_LEVEL sets --log-level. Flags given on the command line
// win. Entries naming unknown flags are reported to the flag set's output
// and skipped.
func (fs *FlagSet) ParseEnv(prefix string, environ []string) error {
	var errs []error
	for _, env := range environ {
		k, v, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		s, ok := strings.CutPrefix(k, prefix)
		if !ok {
			continue
		}
		n := strings.Map(func(r rune) rune {
			switch r {
			case '_':
				return '-'
			}
			return unicode.ToLower(r)
		}, s)
		f := fs.FlagSet().Lookup(n)
		if f == nil {
			fmt.Fprintf(fs.FlagSet().Output(), "env %s: unknown flag --%s\n", k, n)
			continue
		}
		if f.Changed {
			continue
		}
		if err := fs.FlagSet().Set(n, v); err != nil {
			errs = append(errs, fmt.Errorf("env %s: flag --%s: invalid argument: %w", k, n, err))
		}
	}
	return errors.Join(errs...)
}
