package taskqueue

import (
	"github.com/pavanmanishd/arenakit/internal/assert"
	"github.com/pavanmanishd/arenakit/memory"
)

// Task is a unit of work run by a Queue. Implementations embed TaskBase.
//
// The queue clears its bookkeeping before calling Execute and never
// touches the task afterwards, so Execute may enqueue the task again or
// destroy it.
type Task interface {
	// Execute runs the task on the goroutine that owns mc.
	Execute(q *Queue, mc *memory.Context)
	// Label names the task in profiler samples.
	Label() string

	base() *TaskBase
}

// TaskBase holds the queue's link and owner for one task.
type TaskBase struct {
	queue *Queue
	next  Task
}

func (b *TaskBase) base() *TaskBase { return b }

// Label returns "task". Embedders usually override it.
func (b *TaskBase) Label() string { return "task" }

// Destroy checks that the task is not waiting in a queue. Call it before
// dropping or reusing a task's memory.
func (b *TaskBase) Destroy() {
	assert.Always(b.queue == nil, "taskqueue: task destroyed while queued")
}

// FuncTask adapts a function to Task.
type FuncTask struct {
	TaskBase
	label string
	fn    func(q *Queue, mc *memory.Context)
}

// Func returns a task that calls fn.
func Func(label string, fn func(q *Queue, mc *memory.Context)) *FuncTask {
	return &FuncTask{label: label, fn: fn}
}

// Label returns the label given to Func.
func (t *FuncTask) Label() string { return t.label }

// Execute calls the wrapped function.
func (t *FuncTask) Execute(q *Queue, mc *memory.Context) { t.fn(q, mc) }
