// Package profiler records labelled timing samples into a fixed-capacity
// array and exports them as log lines or Chrome tracing JSON.
//
// Recording is off until Start. When the array is full further samples
// are dropped. Begin on a nil *Profiler returns a Sample that records
// nothing.
package profiler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pavanmanishd/arenakit/array"
)

// DefaultCapacity is the number of records kept when WithCapacity is not used.
const DefaultCapacity = 4096

// Record is one completed sample.
type Record struct {
	Label  string
	Thread int
	Begin  time.Duration // since Start
	End    time.Duration
}

// Duration returns End - Begin.
func (r Record) Duration() time.Duration {
	return r.End - r.Begin
}

// Profiler collects samples from any number of goroutines.
type Profiler struct {
	log         *slog.Logger
	minDuration time.Duration

	mu      sync.Mutex
	enabled bool
	start   time.Time
	records *array.Array[Record]
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithCapacity sets the maximum number of records.
func WithCapacity(n int) Option {
	return func(p *Profiler) {
		p.records = array.NewFixed[Record](n)
	}
}

// WithMinDuration drops samples shorter than d.
func WithMinDuration(d time.Duration) Option {
	return func(p *Profiler) {
		p.minDuration = d
	}
}

// WithLogger sets the logger used by Log and the export functions.
func WithLogger(l *slog.Logger) Option {
	return func(p *Profiler) {
		p.log = l
	}
}

// New returns a stopped profiler.
func New(opts ...Option) *Profiler {
	p := &Profiler{log: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.records == nil {
		p.records = array.NewFixed[Record](DefaultCapacity)
	}
	return p
}

// Start enables recording and discards any previous records.
func (p *Profiler) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		p.enabled = true
		p.start = time.Now()
		p.log.Info("profiler started", "capacity", p.records.Cap())
	}
	p.records.Clear()
}

// Stop disables recording and discards the records.
func (p *Profiler) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		p.log.Info("profiler stopped", "records", p.records.Len())
	}
	p.enabled = false
	p.records.Clear()
}

// Enabled reports whether samples are being recorded.
func (p *Profiler) Enabled() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Sample is an open timing scope returned by Begin.
type Sample struct {
	p      *Profiler
	label  string
	thread int
	begin  time.Time
}

// Begin opens a sample for label on the given thread id. Close it with End:
//
//	defer p.Begin("load", 0).End()
func (p *Profiler) Begin(label string, thread int) Sample {
	if p == nil {
		return Sample{}
	}
	return Sample{p: p, label: label, thread: thread, begin: time.Now()}
}

// End records the sample if the profiler is enabled, has room and the
// sample is at least the minimum duration.
func (s Sample) End() {
	p := s.p
	if p == nil {
		return
	}
	end := time.Now()
	if end.Sub(s.begin) < p.minDuration {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || p.records.Full() {
		return
	}
	p.records.PushBack(Record{
		Label:  s.label,
		Thread: s.thread,
		Begin:  s.begin.Sub(p.start),
		End:    end.Sub(p.start),
	})
}

// Len returns the number of records held.
func (p *Profiler) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.records.Len()
}

// Records returns a copy of the records.
func (p *Profiler) Records() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Record, p.records.Len())
	copy(out, p.records.Slice())
	return out
}

// Clear discards the records.
func (p *Profiler) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records.Clear()
}

// take returns the records and clears them.
func (p *Profiler) take() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Record, p.records.Len())
	copy(out, p.records.Slice())
	p.records.Clear()
	return out
}

// Log writes one line per record and clears them.
func (p *Profiler) Log() {
	records := p.take()
	if len(records) == 0 {
		p.log.Info("profiler has no samples")
		return
	}
	for _, r := range records {
		p.log.Info("profiler sample", "label", r.Label, "thread", r.Thread, "duration", r.Duration())
	}
}
