// Package taskqueue runs tasks on a fixed pool of worker goroutines.
//
// Pending tasks form a LIFO list; no order between tasks is promised.
// WaitForAll and Close make the calling goroutine execute tasks alongside
// the pool until nothing is pending or executing, so a pool of size 0
// runs everything synchronously on the caller.
//
// Every executing goroutine allocates through its own memory.Context.
// Worker contexts live as long as the queue; callers of WaitForAll and
// Close borrow one from the manager for the duration of the call.
package taskqueue

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/pavanmanishd/arenakit/internal/assert"
	"github.com/pavanmanishd/arenakit/memory"
	"github.com/pavanmanishd/arenakit/profiler"
)

type mode int

const (
	modePool mode = iota
	modeWaiting
	modeStopping
)

// Queue is safe for concurrent use, including Enqueue from inside Execute.
type Queue struct {
	log         *slog.Logger
	prof        *profiler.Profiler
	m           *memory.Manager
	ownsManager bool
	poolSize    int

	mu        sync.Mutex
	work      *sync.Cond // a task was pushed or the queue stopped
	idle      *sync.Cond // the list changed or the last executing task finished
	head      Task
	executing int
	running   bool

	workers sync.WaitGroup
}

// Option configures a Queue.
type Option func(*Queue)

// WithManager makes the queue allocate contexts from m. Without it the
// queue creates and shuts down a manager with memory.DefaultConfig.
func WithManager(m *memory.Manager) Option {
	return func(q *Queue) {
		q.m = m
	}
}

// WithProfiler records one sample per task execution, labelled with
// Task.Label. Thread 0 is the caller, workers are 1..PoolSize.
func WithProfiler(p *profiler.Profiler) Option {
	return func(q *Queue) {
		q.prof = p
	}
}

// WithLogger sets the queue's logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) {
		q.log = l
	}
}

// New starts a queue with poolSize workers. A negative poolSize means one
// fewer than the number of CPUs.
func New(poolSize int, opts ...Option) (*Queue, error) {
	q := &Queue{log: slog.Default(), running: true}
	for _, opt := range opts {
		opt(q)
	}
	if q.m == nil {
		cfg := memory.DefaultConfig()
		cfg.Logger = q.log
		m, err := memory.NewManager(cfg)
		if err != nil {
			return nil, fmt.Errorf("taskqueue: %w", err)
		}
		q.m, q.ownsManager = m, true
	}
	if poolSize < 0 {
		poolSize = max(runtime.NumCPU()-1, 0)
	}
	q.poolSize = poolSize
	q.work = sync.NewCond(&q.mu)
	q.idle = sync.NewCond(&q.mu)

	for i := range poolSize {
		q.workers.Add(1)
		go q.worker(i + 1)
	}
	q.log.Debug("task queue started", "pool", poolSize)
	return q, nil
}

// PoolSize returns the number of worker goroutines.
func (q *Queue) PoolSize() int {
	return q.poolSize
}

// Manager returns the manager the queue's contexts come from.
func (q *Queue) Manager() *memory.Manager {
	return q.m
}

// Enqueue adds t to the pending list. t must not already be queued, and
// the queue must not be closed.
func (q *Queue) Enqueue(t Task) {
	b := t.base()
	q.mu.Lock()
	defer q.mu.Unlock()
	assert.Always(q.running, "taskqueue: enqueue to stopped queue")
	assert.Always(b.queue == nil && b.next == nil, "taskqueue: task %q is already queued", t.Label())
	b.queue = q
	b.next = q.head
	q.head = t
	q.work.Signal()
	// Goroutines in WaitForAll help with new work.
	q.idle.Broadcast()
}

// WaitForAll executes tasks on the calling goroutine until none are
// pending or executing.
func (q *Queue) WaitForAll() {
	mc := q.m.AcquireContext()
	defer q.m.ReleaseContext(mc)
	q.drain(modeWaiting, mc, 0)
}

// Close drains the queue like WaitForAll, stops the workers and waits for
// them to exit. Enqueue panics afterwards. Close shuts down the manager if
// the queue created it.
func (q *Queue) Close() error {
	q.mu.Lock()
	running := q.running
	q.mu.Unlock()
	if !running {
		return nil
	}

	mc := q.m.AcquireContext()
	q.drain(modeStopping, mc, 0)
	q.m.ReleaseContext(mc)
	q.workers.Wait()
	q.log.Debug("task queue stopped", "pool", q.poolSize)

	if q.ownsManager {
		return q.m.Shutdown()
	}
	return nil
}

func (q *Queue) worker(thread int) {
	defer q.workers.Done()
	mc := q.m.AcquireContext()
	defer q.m.ReleaseContext(mc)
	q.drain(modePool, mc, thread)
}

// drain executes tasks until the mode's exit condition holds. Workers
// return once the queue stops; waiters return when nothing is pending or
// executing.
func (q *Queue) drain(mode mode, mc *memory.Context, thread int) {
	q.mu.Lock()
	for {
		if mode == modePool {
			for q.head == nil && q.running {
				q.work.Wait()
			}
		}

		if t := q.pop(); t != nil {
			q.executing++
			q.mu.Unlock()

			q.execute(t, mc, thread)

			q.mu.Lock()
			q.executing--
			if q.executing == 0 && q.head == nil {
				q.idle.Broadcast()
			}
			continue
		}

		if mode == modePool {
			break
		}
		if q.executing == 0 {
			if mode == modeStopping && q.running {
				q.running = false
				q.work.Broadcast()
			}
			break
		}
		q.idle.Wait()
	}
	q.mu.Unlock()
}

// pop detaches the first pending task. q.mu must be held.
func (q *Queue) pop() Task {
	t := q.head
	if t == nil {
		return nil
	}
	b := t.base()
	q.head = b.next
	b.next = nil
	b.queue = nil
	return t
}

// execute is the last place the queue touches t.
func (q *Queue) execute(t Task, mc *memory.Context, thread int) {
	s := q.prof.Begin(t.Label(), thread)
	t.Execute(q, mc)
	s.End()
}
