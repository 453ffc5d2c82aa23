package behavior

import (
	"reflect"

	"github.com/asynkron/actorcore/actor"
)

// Runner bridges a Behavior[M] with the untyped actor.Actor lifecycle (spec
// §4.L BehaviorRunner): it is itself an actor.Actor, translating the
// untyped lifecycle hints (actor.Started/Restarting/Stopped/Terminated)
// into Signal dispatch and every other message into handleMessage, then
// applies whatever Directive the Behavior returns. actor.Stopping is
// consumed without dispatching any Signal.
type Runner[M any] struct {
	current  Behavior[M]
	override *actor.SupervisorStrategy
	stopping bool
}

// New builds a Runner around initial, adopting its supervisor override (if
// any) as the starting strategy; it is applied to the cell when Started
// arrives.
func New[M any](initial Behavior[M]) *Runner[M] {
	return &Runner[M]{current: initial, override: initial.supervisorOverride}
}

// Receive implements actor.Actor.
func (r *Runner[M]) Receive(ctx actor.Context) *actor.ActorError {
	tctx := TypedContext[M]{Context: ctx}

	switch msg := ctx.Message().(type) {
	case *actor.Started:
		if r.override != nil {
			ctx.OverrideSupervisorStrategy(*r.override)
		}
		return r.dispatchSignal(tctx, Started{})
	case *actor.Restarting:
		return r.dispatchSignal(tctx, PreRestart{})
	case *actor.Stopping:
		return nil
	case *actor.Stopped:
		return r.dispatchSignal(tctx, PostStop{})
	case *actor.Terminated:
		return r.dispatchSignal(tctx, Terminated{Who: msg.Who})
	case *adapterFailureMessage[M]:
		hadSignalHandler := r.current.hasSignalHandler()
		if err := r.dispatchSignal(tctx, MessageAdaptionFailure{Failure: msg.failure}); err != nil {
			return err
		}
		if !hadSignalHandler {
			return actor.Recoverable("message adapter failure")
		}
		return nil
	default:
		typed, ok := ctx.Message().(M)
		if !ok {
			return r.applyTransition(tctx, Unhandled[M]())
		}
		next, err := r.current.handleMessage(tctx, typed)
		if err != nil {
			return err
		}
		return r.applyTransition(tctx, next)
	}
}

func (r *Runner[M]) dispatchSignal(ctx TypedContext[M], signal Signal) *actor.ActorError {
	if failure, ok := signal.(MessageAdaptionFailure); ok {
		ctx.System().EventStream().Publish(actor.AdapterFailureEvent{
			Who:       ctx.Self(),
			Failure:   failure.Failure,
			Timestamp: ctx.System().Now(),
		})
	}
	next, err := r.current.handleSignal(ctx, signal)
	if err != nil {
		return err
	}
	return r.applyTransition(ctx, next)
}

func (r *Runner[M]) applyTransition(ctx TypedContext[M], next Behavior[M]) *actor.ActorError {
	switch next.directiveOf() {
	case DirectiveSame, DirectiveIgnore:
		// keep current
	case DirectiveUnhandled:
		r.publishUnhandled(ctx)
	case DirectiveEmpty:
		r.publishUnhandled(ctx)
		r.current = Empty[M]()
	case DirectiveStopped:
		if !r.stopping {
			ctx.Self().Stop()
			r.stopping = true
		}
		r.current = Stopped[M]()
	case DirectiveActive:
		r.current = next
	}
	if next.supervisorOverride != nil {
		r.override = next.supervisorOverride
		ctx.OverrideSupervisorStrategy(*next.supervisorOverride)
	}
	return nil
}

func (r *Runner[M]) publishUnhandled(ctx TypedContext[M]) {
	ctx.System().EventStream().Publish(actor.UnhandledMessageEvent{
		Who:             ctx.Self(),
		MessageTypeName: messageTypeName[M](),
		Timestamp:       ctx.System().Now(),
	})
}

func messageTypeName[M any]() string {
	return reflect.TypeOf((*M)(nil)).Elem().String()
}

// Props builds actor.Props that spawn a Runner[M] seeded with initial,
// the typed-actor equivalent of actor.PropsFromProducer.
func Props[M any](initial func() Behavior[M], opts ...actor.PropsOption) *actor.Props {
	return actor.PropsFromProducer(func() actor.Actor { return New(initial()) }, opts...)
}
