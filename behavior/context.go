package behavior

import "github.com/asynkron/actorcore/actor"

// TypedContext narrows actor.Context to the typed view a Behavior[M]
// handler receives: every untyped operation is still reachable (spawn,
// watch, ask, ...), plus a typed Message accessor.
type TypedContext[M any] struct {
	actor.Context
}

// Message returns the current message as M. Only meaningful inside a
// MessageHandler call, where the runner has already confirmed the
// underlying message's dynamic type satisfies M.
func (c TypedContext[M]) Message() M {
	m, _ := c.Context.Message().(M)
	return m
}
