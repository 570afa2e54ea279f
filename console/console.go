// Package console is a registry of named commands and variables that can be
// driven by text: one command per line, the name followed by
// whitespace-separated arguments. '#' starts a comment line.
package console

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/pavanmanishd/arenakit/array"
	"github.com/pavanmanishd/arenakit/hashtable"
	"github.com/pavanmanishd/arenakit/internal/assert"
	"github.com/pavanmanishd/arenakit/memory"
)

var (
	// ErrUnknownCommand is wrapped by ExecLine for names not registered.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrBadArgs is returned by commands given the wrong arguments.
	ErrBadArgs = errors.New("bad arguments")
)

// tableBits sizes the symbol table at 64 buckets.
const tableBits = 6

// Command is something the console can execute.
type Command interface {
	// Execute runs the command with the arguments that followed its name.
	Execute(args []string) error
	// Describe returns a one-line description for help output, such as a
	// usage string or a variable's value.
	Describe() string
}

// entry is a symbol table node.
type entry struct {
	hashtable.Link[*entry]
	name string
	hash uint32
	cmd  Command
}

func (e *entry) Key() string  { return e.name }
func (e *entry) Hash() uint32 { return e.hash }

// Registry maps names to commands. It is not safe for concurrent use.
type Registry struct {
	mc    *memory.Context
	table *hashtable.Table[string, *entry]
	out   io.Writer
	log   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithOutput sets where help and variable values are printed.
func WithOutput(w io.Writer) Option {
	return func(r *Registry) { r.out = w }
}

// WithLogger sets the logger for executed lines and failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// New returns a registry whose symbols are allocated on the heap of mc,
// with the built-in help and exec commands registered.
func New(mc *memory.Context, opts ...Option) *Registry {
	r := &Registry{out: os.Stdout, log: slog.Default(), mc: mc}
	for _, opt := range opts {
		opt(r)
	}
	kind := hashtable.Kind[string, *entry]{
		New: func(mc *memory.Context, key string, hash uint32, id memory.ID) *entry {
			e := memory.New[entry](mc, id)
			e.name, e.hash = key, hash
			return e
		},
		Delete: hashtable.DeleteNode[entry],
	}
	r.table = hashtable.NewFixed[string](tableBits, mc, hashtable.StringHasher{}, kind)

	r.Func("help", "lists commands and variables", func(args []string) error {
		if len(args) != 0 {
			return ErrBadArgs
		}
		return r.Help(r.out)
	})
	r.Func("exec", "exec <file>: runs each line of a file", func(args []string) error {
		if len(args) != 1 {
			return ErrBadArgs
		}
		return r.ExecFile(args[0])
	})
	return r
}

// Register adds cmd under name. Names must be non-empty, contain no
// whitespace and not already be registered.
func (r *Registry) Register(name string, cmd Command) {
	assert.Always(cmd != nil && name != "", "console: bad registration %q", name)
	assert.Always(strings.IndexFunc(name, unicode.IsSpace) < 0, "console: symbol contains delimiter: %q", name)
	e := r.table.InsertUnique(name, memory.Heap)
	assert.Always(e.cmd == nil, "console: command already registered: %s", name)
	e.cmd = cmd
}

// Deregister removes name and reports whether it was registered.
func (r *Registry) Deregister(name string) bool {
	return r.table.Erase(name) > 0
}

// DeregisterAll removes every command, including the built-ins.
func (r *Registry) DeregisterAll() {
	r.table.Clear()
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	e := r.table.Find(name)
	if e == nil {
		return nil, false
	}
	return e.cmd, true
}

// Len returns the number of registered symbols.
func (r *Registry) Len() int {
	return r.table.Len()
}

// ExecLine runs one line. Blank lines and comments succeed.
func (r *Registry) ExecLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	e := r.table.Find(fields[0])
	if e == nil {
		r.log.Warn("command not found", "line", line)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
	if v, ok := e.cmd.(interface{ Value() string }); ok && len(fields) == 1 {
		_, err := fmt.Fprintf(r.out, "%s %s\n", fields[0], v.Value())
		return err
	}
	if err := e.cmd.Execute(fields[1:]); err != nil {
		r.log.Warn("cannot execute", "line", line, "error", err)
		return fmt.Errorf("%s: %w", fields[0], err)
	}
	return nil
}

// Exec runs every line of rd. A failing line does not stop the rest; the
// errors are joined.
func (r *Registry) Exec(rd io.Reader) error {
	var errs []error
	sc := bufio.NewScanner(rd)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		r.log.Debug("console", "line", line)
		if err := r.ExecLine(line); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", n, err))
		}
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ExecFile runs every line of the named file.
func (r *Registry) ExecFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	defer f.Close()
	if err := r.Exec(f); err != nil {
		return fmt.Errorf("exec %s: %w", name, err)
	}
	return nil
}

// Help writes every symbol and its description in name order.
func (r *Registry) Help(w io.Writer) error {
	s := r.mc.Scope(memory.Heap)
	defer s.Close()

	symbols := array.NewDynamic[*entry](r.mc)
	defer symbols.Release()
	symbols.Reserve(r.table.Len())
	for e := range r.table.All() {
		symbols.PushBack(e)
	}
	symbols.Sort(func(a, b *entry) int { return cmp.Compare(a.name, b.name) })

	if _, err := io.WriteString(w, "console symbols:\n"); err != nil {
		return err
	}
	for e := range symbols.Values() {
		if _, err := fmt.Fprintf(w, "  %-20s %s\n", e.name, e.cmd.Describe()); err != nil {
			return err
		}
	}
	return nil
}

// Release deregisters everything and frees the symbol storage.
func (r *Registry) Release() {
	r.table.Release()
}
