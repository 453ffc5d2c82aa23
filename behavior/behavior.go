package behavior

import "github.com/asynkron/actorcore/actor"

// Directive is the outcome a Behavior's handler reports back to the runner
// (spec §4.L).
type Directive int

const (
	// DirectiveActive installs the returned Behavior as current.
	DirectiveActive Directive = iota
	// DirectiveSame keeps the current behavior unchanged.
	DirectiveSame
	// DirectiveUnhandled keeps the current behavior and publishes an
	// UnhandledMessageEvent, a hint for composite/delegating behaviors.
	DirectiveUnhandled
	// DirectiveStopped requests the actor stop (once) and installs the
	// Stopped behavior, which has no handlers: messages delivered before the
	// stop completes are reported as unhandled, signals leave it in place.
	DirectiveStopped
	// DirectiveEmpty behaves like Unhandled for the current message but
	// *stays* Empty indefinitely, emitting UnhandledMessageEvent on every
	// message that follows until something explicitly changes behavior.
	DirectiveEmpty
	// DirectiveIgnore silently keeps the current behavior, no event
	// published.
	DirectiveIgnore
)

// MessageHandler reacts to a typed message and returns the next Behavior.
type MessageHandler[M any] func(ctx TypedContext[M], msg M) (Behavior[M], *actor.ActorError)

// SignalHandler reacts to a lifecycle/failure Signal and returns the next
// Behavior.
type SignalHandler[M any] func(ctx TypedContext[M], signal Signal) (Behavior[M], *actor.ActorError)

// Behavior is spec §4.L's Behavior: an optional message handler, an
// optional signal handler, an optional supervisor-strategy override, and
// (for the terminal Same/Unhandled/Stopped/Empty/Ignore values built by the
// package-level helpers below) a directive to apply immediately.
type Behavior[M any] struct {
	directive          Directive
	onMessage          MessageHandler[M]
	onSignal           SignalHandler[M]
	supervisorOverride *actor.SupervisorStrategy
}

// Same keeps whatever behavior is currently installed.
func Same[M any]() Behavior[M] { return Behavior[M]{directive: DirectiveSame} }

// Ignore silently discards the current message.
func Ignore[M any]() Behavior[M] { return Behavior[M]{directive: DirectiveIgnore} }

// Unhandled keeps the current behavior but reports the message as unhandled.
func Unhandled[M any]() Behavior[M] { return Behavior[M]{directive: DirectiveUnhandled} }

// Stopped requests the actor stop after this message.
func Stopped[M any]() Behavior[M] { return Behavior[M]{directive: DirectiveStopped} }

// Empty installs a behavior that treats every future message as unhandled
// until something else replaces it.
func Empty[M any]() Behavior[M] { return Behavior[M]{directive: DirectiveEmpty} }

// ReceiveMessage builds a Behavior whose directive is Active and whose
// message handler is fn; fn's own return value decides the next transition.
func ReceiveMessage[M any](fn MessageHandler[M]) Behavior[M] {
	return Behavior[M]{directive: DirectiveActive, onMessage: fn}
}

// ReceiveSignal builds a Behavior that only reacts to signals, passing
// every message through as Unhandled.
func ReceiveSignal[M any](fn SignalHandler[M]) Behavior[M] {
	return Behavior[M]{directive: DirectiveActive, onSignal: fn}
}

// Setup defers Behavior construction until Started, giving the factory
// access to ctx (e.g. to spawn children before the first real message
// arrives).
func Setup[M any](factory func(ctx TypedContext[M]) Behavior[M]) Behavior[M] {
	return ReceiveSignal(func(ctx TypedContext[M], signal Signal) (Behavior[M], *actor.ActorError) {
		if _, ok := signal.(Started); ok {
			return factory(ctx), nil
		}
		return Same[M](), nil
	})
}

// Supervise wraps behavior with a supervisor-strategy override governing
// this actor's own children, the Go rendering of the original's
// Behaviors::supervise wrapper.
func Supervise[M any](behavior Behavior[M], strategy actor.SupervisorStrategy) Behavior[M] {
	behavior.supervisorOverride = &strategy
	return behavior
}

func (b Behavior[M]) directiveOf() Directive { return b.directive }

func (b Behavior[M]) hasSignalHandler() bool { return b.onSignal != nil }

func (b Behavior[M]) handleMessage(ctx TypedContext[M], msg M) (Behavior[M], *actor.ActorError) {
	if b.onMessage == nil {
		return Unhandled[M](), nil
	}
	return b.onMessage(ctx, msg)
}

func (b Behavior[M]) handleSignal(ctx TypedContext[M], signal Signal) (Behavior[M], *actor.ActorError) {
	if b.onSignal == nil {
		return Same[M](), nil
	}
	return b.onSignal(ctx, signal)
}
