package actor

import (
	"context"
	"sync"
	"time"
)

// Future is the one-shot Ask pattern of spec §4.K: RequestFuture spawns one
// of these as a tiny process registered under its own PID; the recipient
// Responds to that PID the same way it would to any other Ref.
type Future struct {
	mu        sync.Mutex
	sys       *System
	ref       Ref
	done      chan struct{}
	completed bool
	result    interface{}
	err       error

	timer *time.Timer
}

// newFuture allocates a Future, registers it as a process under sys so a
// Respond() aimed at its Ref routes back here, and arms the timeout.
func newFuture(sys *System, timeout time.Duration) *Future {
	f := &Future{sys: sys, done: make(chan struct{})}
	pid := PID{ID: sys.pids.allocate(), Incarnation: 1}
	f.ref = newRef(pid, f, sys)
	sys.registerProcess(pid, f.ref)

	if timeout > 0 {
		f.timer = time.AfterFunc(timeout, func() {
			f.complete(nil, SendErrTimeout)
		})
	}
	return f
}

// PID identifies this Future's process, the address a sender Responds to.
func (f *Future) PID() PID { return f.ref.pid }

// Ref returns the Future's own Ref, usable as the Sender of a Request.
func (f *Future) Ref() Ref { return f.ref }

// sendUserMessage implements process: the first message delivered completes
// the future. Anything after that is a late/duplicate response and is
// dropped to dead letters with DeadLetterAlreadyResponded (spec §4.K:
// "idempotent completion").
func (f *Future) sendUserMessage(messageOrEnvelope interface{}) {
	if !f.complete(UnwrapEnvelopeMessage(messageOrEnvelope), nil) {
		recordDeadLetter(f.sys, messageOrEnvelope, DeadLetterAlreadyResponded, f.ref)
	}
}

func (f *Future) sendSystemMessage(SystemMessage) {}
func (f *Future) stop(Ref)                        {}

// complete resolves the future with result/err, reporting whether this call
// was the one that actually completed it (false for a second/late call).
func (f *Future) complete(result interface{}, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.result = result
	f.err = err
	if f.timer != nil {
		f.timer.Stop()
	}
	f.mu.Unlock()
	f.sys.unregisterProcess(f.ref.pid)
	close(f.done)
	return true
}

// Wait blocks until the future completes, ctx is cancelled, or the future's
// own timeout elapses, whichever comes first.
func (f *Future) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done reports whether the future has already resolved, used by
// Context.AwaitFuture's wake-after-unlock continuation scheduling.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the resolved value without blocking; callers must only
// call this after Done() has fired.
func (f *Future) Result() (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}
