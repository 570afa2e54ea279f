package console

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/arenakit/memory"
)

func newRegistry(t *testing.T) (*Registry, *bytes.Buffer, *memory.Context) {
	t.Helper()
	cfg := memory.DefaultConfig()
	cfg.Logger = slog.New(slog.DiscardHandler)
	m, err := memory.NewManager(cfg)
	require.NoError(t, err)
	mc := m.NewContext()
	var out bytes.Buffer
	r := New(mc, WithOutput(&out), WithLogger(cfg.Logger))
	t.Cleanup(func() {
		r.Release()
		require.NoError(t, m.Shutdown())
	})
	return r, &out, mc
}

func TestBuiltins(t *testing.T) {
	r, out, _ := newRegistry(t)
	assert.Equal(t, 2, r.Len())

	require.NoError(t, r.ExecLine("help"))
	text := out.String()
	assert.Contains(t, text, "help")
	assert.Contains(t, text, "exec")
	assert.Less(t, strings.Index(text, "exec"), strings.Index(text, "help"))

	assert.ErrorIs(t, r.ExecLine("help extra"), ErrBadArgs)
	assert.ErrorIs(t, r.ExecLine("exec"), ErrBadArgs)
}

func TestExecLine(t *testing.T) {
	r, _, _ := newRegistry(t)

	var got [][]string
	r.Func("record", "record <args...>", func(args []string) error {
		got = append(got, args)
		return nil
	})

	tests := []struct {
		line string
		err  error
	}{
		{"", nil},
		{"   \t ", nil},
		{"# record not-run", nil},
		{"record", nil},
		{"  record a  b\tc ", nil},
		{"missing 1", ErrUnknownCommand},
	}
	for _, tt := range tests {
		err := r.ExecLine(tt.line)
		if tt.err == nil {
			assert.NoError(t, err, tt.line)
		} else {
			assert.ErrorIs(t, err, tt.err, tt.line)
		}
	}
	assert.Equal(t, [][]string{{}, {"a", "b", "c"}}, got)
}

func TestVariables(t *testing.T) {
	r, out, _ := newRegistry(t)

	var (
		enabled bool
		count   int
		big     int64
		size    uint
		ratio   float64
		name    string
	)
	Var(r, "enabled", &enabled)
	Var(r, "count", &count)
	Var(r, "big", &big)
	Var(r, "size", &size)
	Var(r, "ratio", &ratio)
	Var(r, "name", &name)

	require.NoError(t, r.Exec(strings.NewReader(`
# settings
enabled true
count -3
big 0x10
size 42
ratio 0.5
name arena
`)))
	assert.True(t, enabled)
	assert.Equal(t, -3, count)
	assert.Equal(t, int64(16), big)
	assert.Equal(t, uint(42), size)
	assert.Equal(t, 0.5, ratio)
	assert.Equal(t, "arena", name)

	require.NoError(t, r.ExecLine("count"))
	assert.Equal(t, "count -3\n", out.String())

	assert.ErrorIs(t, r.ExecLine("size -1"), ErrBadArgs)
	assert.ErrorIs(t, r.ExecLine("count 1 2"), ErrBadArgs)
	assert.Equal(t, -3, count)
}

func TestExecContinuesAfterErrors(t *testing.T) {
	r, _, _ := newRegistry(t)
	n := 0
	r.Func("inc", "", func([]string) error { n++; return nil })
	r.Func("fail", "", func([]string) error { return errors.New("boom") })

	err := r.Exec(strings.NewReader("inc\nfail\nnope\ninc\n"))
	require.Error(t, err)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "boom")
}

func TestExecFile(t *testing.T) {
	r, _, _ := newRegistry(t)
	var level int
	Var(r, "level", &level)

	dir := t.TempDir()
	inner := filepath.Join(dir, "inner.cfg")
	outer := filepath.Join(dir, "outer.cfg")
	require.NoError(t, os.WriteFile(inner, []byte("level 7\n"), 0o644))
	require.NoError(t, os.WriteFile(outer, []byte("level 1\nexec "+inner+"\n"), 0o644))

	require.NoError(t, r.ExecLine("exec "+outer))
	assert.Equal(t, 7, level)

	assert.Error(t, r.ExecFile(filepath.Join(dir, "missing.cfg")))
}

func TestDeregister(t *testing.T) {
	r, _, mc := newRegistry(t)
	before := mc.Stats(memory.Heap).Count

	r.Func("tmp", "", func([]string) error { return nil })
	assert.Equal(t, before+1, mc.Stats(memory.Heap).Count)
	_, ok := r.Lookup("tmp")
	assert.True(t, ok)

	assert.True(t, r.Deregister("tmp"))
	assert.False(t, r.Deregister("tmp"))
	assert.Equal(t, before, mc.Stats(memory.Heap).Count)
	assert.ErrorIs(t, r.ExecLine("tmp"), ErrUnknownCommand)

	r.DeregisterAll()
	assert.Zero(t, r.Len())
	assert.Zero(t, mc.Stats(memory.Heap).Count)
}

func TestRegisterContract(t *testing.T) {
	r, _, _ := newRegistry(t)
	noop := func([]string) error { return nil }
	assert.Panics(t, func() { r.Func("help", "", noop) })
	assert.Panics(t, func() { r.Func("two words", "", noop) })
	assert.Panics(t, func() { r.Func("", "", noop) })
}
