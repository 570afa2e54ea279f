package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavanmanishd/arenakit/array"
	"github.com/pavanmanishd/arenakit/hashtable"
	"github.com/pavanmanishd/arenakit/memory"
	"github.com/pavanmanishd/arenakit/profiler"
	"github.com/pavanmanishd/arenakit/stockpile"
	"github.com/pavanmanishd/arenakit/taskqueue"
)

const stressTableBits = 8

var (
	stressPool   int
	stressTasks  int
	stressRepeat int
	stressKeys   int
	stressTrace  string
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressPool, "pool", "p", -1, "worker goroutines (-1 for one fewer than the CPU count, 0 to run on the caller)")
	cmd.Flags().IntVarP(&stressTasks, "tasks", "n", 64, "number of tasks")
	cmd.Flags().IntVarP(&stressRepeat, "repeat", "r", 4, "times each task enqueues itself again")
	cmd.Flags().IntVarP(&stressKeys, "keys", "k", 512, "keys inserted per execution")
	cmd.Flags().StringVar(&stressTrace, "trace", "", "write a Chrome trace to this file (.gz to compress)")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Run a concurrent workload on temporary stacks",
		Long: `The stress command enqueues tasks that each open a temporary-stack
scope, fill an array and an integer hash table, check the result, rewind the
scope and enqueue themselves again. The memory report is printed at the end.

Example:
  arenakit stress --pool 4 --tasks 1000 --repeat 8
  arenakit stress --pool 0 --trace stress.json.gz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.OutOrStdout())
		},
	}
}

// stressResult is what one execution of a stressTask reports.
type stressResult struct {
	task     int
	run      int
	distinct int // keys found in the table
	sum      uint64
}

// stressTask is only touched by the goroutine executing it and by the
// caller after WaitForAll.
type stressTask struct {
	taskqueue.TaskBase
	id      int
	keys    int
	repeat  int
	results *stockpile.Stockpile[stressResult]

	runs int
}

func (t *stressTask) Label() string { return "stress" }

func (t *stressTask) Execute(q *taskqueue.Queue, mc *memory.Context) {
	s := mc.Scope(memory.TemporaryStack)

	// Every key appears twice.
	distinct := (t.keys + 1) / 2
	keys := array.NewDynamic[uint32](mc)
	keys.Reserve(t.keys)
	for i := range t.keys {
		keys.PushBack(uint32(t.id<<16 + i%distinct))
	}

	table := hashtable.NewInteger[uint32](mc, stressTableBits)
	for k := range keys.Values() {
		table.Get(k)
	}
	r := stressResult{task: t.id, run: t.runs, distinct: table.Len()}
	for n := range table.All() {
		r.sum += uint64(n.Key())
	}
	t.results.PushBack(r)

	table.Release()
	keys.Release()
	s.Close()

	t.runs++
	if t.runs <= t.repeat {
		q.Enqueue(t)
	}
}

func runStress(out io.Writer) error {
	if stressTasks < 0 || stressRepeat < 0 || stressKeys < 1 {
		return fmt.Errorf("--tasks and --repeat must not be negative and --keys must be positive")
	}
	tag, err := reportTag()
	if err != nil {
		return err
	}
	m, err := newManager()
	if err != nil {
		return err
	}

	var prof *profiler.Profiler
	if stressTrace != "" {
		prof = profiler.New(
			profiler.WithLogger(logger),
			profiler.WithCapacity(max(profiler.DefaultCapacity, stressTasks*(stressRepeat+1))),
		)
		prof.Start()
	}

	q, err := taskqueue.New(stressPool,
		taskqueue.WithManager(m),
		taskqueue.WithProfiler(prof),
		taskqueue.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	executions := stressTasks * (stressRepeat + 1)
	results := stockpile.NewFixed[stressResult](max(executions, 1))
	tasks := make([]*stressTask, stressTasks)
	start := time.Now()
	for i := range tasks {
		tasks[i] = &stressTask{id: i, keys: stressKeys, repeat: stressRepeat, results: results}
		q.Enqueue(tasks[i])
	}
	q.WaitForAll()
	elapsed := time.Since(start)
	if err := q.Close(); err != nil {
		return err
	}

	var errs []error
	runs := make([]int, stressTasks)
	distinct := (stressKeys + 1) / 2
	var checksum uint64
	for _, r := range results.All() {
		runs[r.task]++
		checksum += r.sum
		if r.distinct != distinct {
			errs = append(errs, fmt.Errorf("task %d run %d: table holds %d keys, want %d", r.task, r.run, r.distinct, distinct))
		}
	}
	if results.Len() != executions {
		errs = append(errs, fmt.Errorf("%d results, want %d", results.Len(), executions))
	}
	for _, t := range tasks {
		t.Destroy()
		if t.runs != stressRepeat+1 || runs[t.id] != t.runs {
			errs = append(errs, fmt.Errorf("task %d ran %d times with %d results, want %d", t.id, t.runs, runs[t.id], stressRepeat+1))
		}
	}
	logger.Info("stress finished",
		"pool", q.PoolSize(),
		"tasks", stressTasks,
		"executions", results.Len(),
		"checksum", checksum,
		"elapsed", elapsed,
	)

	if err := m.Report().Format(out, tag); err != nil {
		errs = append(errs, err)
	}
	if prof != nil {
		if err := prof.WriteChromeTracingFile(stressTrace); err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
