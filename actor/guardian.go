package actor

import (
	"errors"
	"sync"
)

// ErrGuardianTerminating is returned by RegisterTerminationHook once the
// guardian has left Running: spec §4.G requires a Stopped/Terminating
// guardian to reject new hook registrations rather than race them against
// (or silently drop them from) the snapshot beginTermination already took.
var ErrGuardianTerminating = errors.New("actor: guardian is terminating, hook rejected")

// guardianState is the system guardian's own termination-hook state machine
// (spec component G's root processes): Running while new termination hooks
// are accepted, Terminating while registered hooks drain, Stopped once every
// hook has reported done (or the wait was forced).
type guardianState int32

const (
	guardianRunning guardianState = iota
	guardianTerminating
	guardianStopped
)

// terminationHook is a registered callback the system guardian waits on
// before it reports itself Stopped (e.g. a remoting extension flushing
// in-flight work). TerminationHookDone marks it complete; repeated calls are
// no-ops.
type terminationHook struct {
	name string
	done chan struct{}
}

// systemGuardian stands for the "/system" root: it owns the termination-hook
// bookkeeping spec §4.G's guardian design calls for. It is a plain struct,
// not an actorCell; it has no mailbox and no children.
type systemGuardian struct {
	mu    sync.Mutex
	state guardianState
	hooks []*terminationHook
	ref   Ref
}

func newSystemGuardian() *systemGuardian {
	return &systemGuardian{}
}

// RegisterTerminationHook adds a hook that must complete before shutdown can
// report Stopped. Returns a token to pass to TerminationHookDone, or
// ErrGuardianTerminating once the guardian has left Running.
func (g *systemGuardian) RegisterTerminationHook(name string) (*terminationHook, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != guardianRunning {
		return nil, ErrGuardianTerminating
	}
	h := &terminationHook{name: name, done: make(chan struct{})}
	g.hooks = append(g.hooks, h)
	return h, nil
}

// TerminationHookDone marks h complete.
func (g *systemGuardian) TerminationHookDone(h *terminationHook) {
	select {
	case <-h.done:
		// already closed; idempotent.
	default:
		close(h.done)
	}
}

// beginTermination flips the guardian into Terminating and returns the
// hooks to wait on, so the caller (System.shutdown) can wait outside the
// lock.
func (g *systemGuardian) beginTermination() []*terminationHook {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == guardianRunning {
		g.state = guardianTerminating
	}
	hooks := make([]*terminationHook, len(g.hooks))
	copy(hooks, g.hooks)
	return hooks
}

// awaitHooks blocks until every hook is done, then marks the guardian
// Stopped. force is a channel whose closing short-circuits the wait
// (ForceTerminateHooks).
func (g *systemGuardian) awaitHooks(hooks []*terminationHook, force <-chan struct{}) {
	for _, h := range hooks {
		select {
		case <-h.done:
		case <-force:
		}
	}
	g.mu.Lock()
	g.state = guardianStopped
	g.mu.Unlock()
}

func (g *systemGuardian) currentState() guardianState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
