package behavior

import "github.com/asynkron/actorcore/actor"

// Signal is the typed layer's lifecycle-and-failure notification union
// (spec §4.L): Started | PreRestart | PostStop | Terminated | ChildFailed |
// MessageAdaptionFailure.
type Signal interface{ isSignal() }

// Started is dispatched once, before the actor's Behavior sees any message.
type Started struct{}

func (Started) isSignal() {}

// PreRestart is dispatched when the actor is about to restart. Runner
// dispatches it with a nil Reason: the untyped Restarting hint carries no
// cause.
type PreRestart struct{ Reason *actor.ActorError }

func (PreRestart) isSignal() {}

// PostStop is dispatched once the actor has fully stopped.
type PostStop struct{}

func (PostStop) isSignal() {}

// Terminated reports a watched peer's termination.
type Terminated struct{ Who actor.Ref }

func (Terminated) isSignal() {}

// ChildFailed describes a child's failure. Runner never dispatches it: child
// failures are handled by the cell's SupervisorStrategy and are not surfaced
// to Behavior code.
type ChildFailed struct {
	Who actor.Ref
	Err *actor.ActorError
}

func (ChildFailed) isSignal() {}

// MessageAdaptionFailure reports that an Adapter failed to convert an
// untyped message into M.
type MessageAdaptionFailure struct{ Failure AdapterFailure }

func (MessageAdaptionFailure) isSignal() {}
