package memory

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ArenaReport is one row of a Report.
type ArenaReport struct {
	ID ID
	Stats
}

// Report summarizes a Manager's arenas.
type Report struct {
	Arenas   []ArenaReport
	Contexts int // contexts holding a temporary stack
	Idle     int // contexts waiting in the pool
}

// Report snapshots the shared arenas. The temporary-stack row carries the
// per-context budget and the highest usage seen at scope exit.
func (m *Manager) Report() Report {
	r := Report{
		Arenas: []ArenaReport{
			{ID: Heap, Stats: m.Stats(Heap)},
			{ID: Permanent, Stats: m.Stats(Permanent)},
			{ID: TemporaryStack, Stats: Stats{
				HighWater: int(m.tempHighWater.Load()),
				Capacity:  m.cfg.TemporaryBudget,
			}},
		},
	}
	m.ctxMu.Lock()
	for _, c := range m.contexts {
		if c.temp != nil {
			r.Contexts++
		}
	}
	r.Idle = len(m.idle)
	m.ctxMu.Unlock()
	return r
}

// Format writes the report as a table with digit grouping for tag.
func (r Report) Format(w io.Writer, tag language.Tag) error {
	p := message.NewPrinter(tag)
	if _, err := fmt.Fprintf(w, "%-6s %10s %14s %14s %14s\n", "ARENA", "COUNT", "BYTES", "HIGH WATER", "CAPACITY"); err != nil {
		return err
	}
	for _, a := range r.Arenas {
		capacity := "-"
		if a.Capacity > 0 {
			capacity = p.Sprintf("%d", a.Capacity)
		}
		line := p.Sprintf("%-6s %10d %14d %14d %14s\n", a.ID, a.Count, a.Bytes, a.HighWater, capacity)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	_, err := p.Fprintf(w, "contexts: %d with temporary stacks, %d idle\n", r.Contexts, r.Idle)
	return err
}
