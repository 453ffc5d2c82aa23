package actor

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Executor is the abstract "drive this on some concurrency substrate"
// dependency a Dispatcher is built on (spec §4.E: inline, threaded, tokio).
type Executor interface {
	// Submit runs task, synchronously or asynchronously depending on the
	// implementation. Blocking reports whether Submit may block the caller
	// until task finishes (used by the build-time Block-mailbox check).
	Submit(task func())
	Blocking() bool
}

// InlineExecutor runs every task synchronously on the calling goroutine.
type InlineExecutor struct{}

func (InlineExecutor) Submit(task func()) { task() }
func (InlineExecutor) Blocking() bool     { return true }

// GoroutineExecutor submits each task onto its own goroutine. With a limit
// set, a weighted semaphore (golang.org/x/sync/semaphore) bounds how many
// tasks run at once; every submission still starts a goroutine, which waits
// on the semaphore before running its task.
type GoroutineExecutor struct {
	sem *semaphore.Weighted
}

// NewGoroutineExecutor builds a threaded executor allowing up to
// maxConcurrency tasks to run at once. maxConcurrency <= 0 means unbounded.
func NewGoroutineExecutor(maxConcurrency int64) *GoroutineExecutor {
	if maxConcurrency <= 0 {
		return &GoroutineExecutor{}
	}
	return &GoroutineExecutor{sem: semaphore.NewWeighted(maxConcurrency)}
}

func (e *GoroutineExecutor) Submit(task func()) {
	if e.sem == nil {
		go task()
		return
	}
	go func() {
		_ = e.sem.Acquire(context.Background(), 1)
		defer e.sem.Release(1)
		task()
	}()
}

func (e *GoroutineExecutor) Blocking() bool { return false }

// DispatchExecutorRunner wraps an Executor so re-entrant submissions (a
// message handler that itself tells into the same dispatcher) never block
// the caller or deadlock: only one pump goroutine drains the task queue at a
// time, and a trailing check re-drains if new work arrived while the pump
// was finishing up (spec §4.E).
type DispatchExecutorRunner struct {
	underlying Executor
	sched      scheduleFlag
	mu         chan struct{} // binary semaphore guarding the queue slice
	queue      []func()
}

// NewDispatchExecutorRunner wraps underlying.
func NewDispatchExecutorRunner(underlying Executor) *DispatchExecutorRunner {
	r := &DispatchExecutorRunner{underlying: underlying, mu: make(chan struct{}, 1)}
	r.mu <- struct{}{}
	return r
}

func (r *DispatchExecutorRunner) Blocking() bool { return r.underlying.Blocking() }

func (r *DispatchExecutorRunner) Submit(task func()) {
	r.enqueue(task)
	if r.sched.request() {
		r.underlying.Submit(r.pump)
	}
}

func (r *DispatchExecutorRunner) enqueue(task func()) {
	<-r.mu
	r.queue = append(r.queue, task)
	r.mu <- struct{}{}
}

func (r *DispatchExecutorRunner) drainOne() (func(), bool) {
	<-r.mu
	defer func() { r.mu <- struct{}{} }()
	if len(r.queue) == 0 {
		return nil, false
	}
	task := r.queue[0]
	r.queue = r.queue[1:]
	return task, true
}

func (r *DispatchExecutorRunner) pump() {
	for {
		for {
			task, ok := r.drainOne()
			if !ok {
				break
			}
			task()
		}
		if !r.sched.release() {
			return
		}
	}
}
