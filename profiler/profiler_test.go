package profiler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/arenakit/console"
	"github.com/pavanmanishd/arenakit/memory"
)

func newProfiler(opts ...Option) *Profiler {
	return New(append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)...)
}

func TestRecordsOnlyWhileEnabled(t *testing.T) {
	p := newProfiler()
	p.Begin("before", 0).End()
	assert.Zero(t, p.Len())
	assert.False(t, p.Enabled())

	p.Start()
	assert.True(t, p.Enabled())
	s := p.Begin("work", 3)
	time.Sleep(time.Millisecond)
	s.End()

	records := p.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "work", records[0].Label)
	assert.Equal(t, 3, records[0].Thread)
	assert.GreaterOrEqual(t, records[0].Duration(), time.Millisecond)

	p.Stop()
	assert.Zero(t, p.Len())
	p.Begin("after", 0).End()
	assert.Zero(t, p.Len())
}

func TestNilProfiler(t *testing.T) {
	var p *Profiler
	assert.False(t, p.Enabled())
	p.Begin("nothing", 0).End()
}

func TestCapacityAndCutoff(t *testing.T) {
	p := newProfiler(WithCapacity(2))
	p.Start()
	for range 5 {
		p.Begin("x", 0).End()
	}
	assert.Equal(t, 2, p.Len())

	p = newProfiler(WithMinDuration(time.Hour))
	p.Start()
	p.Begin("short", 0).End()
	assert.Zero(t, p.Len())
}

func TestStartClears(t *testing.T) {
	p := newProfiler()
	p.Start()
	p.Begin("a", 0).End()
	p.Start()
	assert.Zero(t, p.Len())
}

func TestConcurrentSamples(t *testing.T) {
	p := newProfiler(WithCapacity(1000))
	p.Start()
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				p.Begin("sample", g).End()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 400, p.Len())
}

func TestLogClears(t *testing.T) {
	var logs bytes.Buffer
	p := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	p.Log()
	assert.Contains(t, logs.String(), "no samples")

	p.Start()
	p.Begin("logged", 1).End()
	p.Log()
	assert.Contains(t, logs.String(), "label=logged")
	assert.Zero(t, p.Len())
}

type event struct {
	Name  string `json:"name"`
	Cat   string `json:"cat"`
	Phase string `json:"ph"`
	PID   int    `json:"pid"`
	TID   int    `json:"tid"`
	TS    int64  `json:"ts"`
}

func TestWriteChromeTracing(t *testing.T) {
	p := newProfiler()
	p.Start()
	p.Begin("outer", 0).End()
	p.Begin("inner", 2).End()

	var buf bytes.Buffer
	require.NoError(t, p.WriteChromeTracing(&buf))
	var events []event
	require.NoError(t, json.Unmarshal(buf.Bytes(), &events))
	require.Len(t, events, 4)
	assert.Equal(t, event{Name: "outer", Cat: "PERF", Phase: "B", TS: events[0].TS}, events[0])
	assert.Equal(t, "E", events[1].Phase)
	assert.LessOrEqual(t, events[0].TS, events[1].TS)
	assert.Equal(t, 2, events[3].TID)
	assert.Zero(t, p.Len())

	buf.Reset()
	require.NoError(t, p.WriteChromeTracing(&buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteChromeTracingFileGzip(t *testing.T) {
	p := newProfiler()
	p.Start()
	p.Begin("zipped", 0).End()

	name := filepath.Join(t.TempDir(), "trace.json.gz")
	require.NoError(t, p.WriteChromeTracingFile(name))

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)

	var events []event
	require.NoError(t, json.Unmarshal(raw, &events))
	require.Len(t, events, 2)
	assert.Equal(t, "zipped", events[0].Name)
}

func TestConsoleCommands(t *testing.T) {
	cfg := memory.DefaultConfig()
	cfg.Logger = slog.New(slog.DiscardHandler)
	m, err := memory.NewManager(cfg)
	require.NoError(t, err)
	r := console.New(m.NewContext(), console.WithLogger(cfg.Logger), console.WithOutput(io.Discard))
	defer func() {
		r.Release()
		require.NoError(t, m.Shutdown())
	}()

	p := newProfiler()
	p.RegisterCommands(r)

	require.NoError(t, r.ExecLine("profileStart"))
	assert.True(t, p.Enabled())
	p.Begin("cmd", 0).End()

	name := filepath.Join(t.TempDir(), "trace.json")
	require.NoError(t, r.ExecLine("profileToChrome "+name))
	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"name":"cmd"`)

	assert.ErrorIs(t, r.ExecLine("profileToChrome"), console.ErrBadArgs)
	assert.ErrorIs(t, r.ExecLine("profileLog now"), console.ErrBadArgs)
	require.NoError(t, r.ExecLine("profileLog"))
	require.NoError(t, r.ExecLine("profileStop"))
	assert.False(t, p.Enabled())
}
