package profiler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/sugawarayuuta/sonnet"
)

// traceEvent is one entry of the Chrome tracing JSON array format.
type traceEvent struct {
	Name  string `json:"name"`
	Cat   string `json:"cat"`
	Phase string `json:"ph"`
	PID   int    `json:"pid"`
	TID   int    `json:"tid"`
	TS    int64  `json:"ts"` // microseconds
}

// WriteChromeTracing writes the records as a begin/end event pair each
// and clears them. The output loads in chrome://tracing and Perfetto.
func (p *Profiler) WriteChromeTracing(w io.Writer) error {
	records := p.take()
	events := make([]traceEvent, 0, 2*len(records))
	for _, r := range records {
		events = append(events,
			traceEvent{Name: r.Label, Cat: "PERF", Phase: "B", TID: r.Thread, TS: r.Begin.Microseconds()},
			traceEvent{Name: r.Label, Cat: "PERF", Phase: "E", TID: r.Thread, TS: r.End.Microseconds()},
		)
	}
	buf, err := sonnet.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}

// WriteChromeTracingFile writes the trace to name, gzip compressed if the
// name ends in ".gz".
func (p *Profiler) WriteChromeTracingFile(name string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create trace: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close trace: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	var w io.Writer = bw
	var zw *gzip.Writer
	if strings.HasSuffix(name, ".gz") {
		zw = gzip.NewWriter(bw)
		w = zw
	}
	n := p.Len()
	if err := p.WriteChromeTracing(w); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compress trace: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	p.log.Info("wrote trace", "file", name, "records", n)
	return nil
}
