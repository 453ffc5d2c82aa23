package actor

import "time"

// Context is what user Actor code receives on every Receive call: access to
// the current message, identity, children, and the spawn/watch/ask
// operations (spec §4.G, teacher's actorContext interface, generalized).
type Context interface {
	Actor() Actor
	Self() Ref
	Parent() Ref
	Sender() Ref
	Message() interface{}
	MessageHeader() ReadonlyMessageHeader

	// System exposes the owning System, mainly so layers built on top of
	// Context (the typed Behavior runner) can publish onto the shared event
	// stream without every such layer threading its own System reference.
	System() *System

	Send(to Ref, message interface{})
	Request(to Ref, message interface{})
	RequestFuture(to Ref, message interface{}, timeout time.Duration) *Future
	Forward(to Ref)
	Respond(response interface{})

	Children() []Ref
	Spawn(props *Props) Ref
	SpawnPrefix(props *Props, prefix string) Ref
	SpawnNamed(props *Props, name string) (Ref, error)

	Watch(who Ref)
	Unwatch(who Ref)

	SetReceiveTimeout(d time.Duration)
	ReceiveTimeout() time.Duration

	Stash()

	EscalateFailure(reason *ActorError, message interface{})
	AwaitFuture(f *Future, cont func(res interface{}, err error))

	RestartChildren(refs ...Ref)
	StopChildren(refs ...Ref)
	ResumeChildren(refs ...Ref)

	// OverrideSupervisorStrategy replaces the strategy governing this
	// actor's own children, the hook the typed Behavior runner uses to
	// apply a Behavior's supervisor-override.
	OverrideSupervisorStrategy(s SupervisorStrategy)
}
