package actor

// MessageInvoker is spec component F's receiving side: the dispatcher hands
// every popped message to one of these two methods. actorCell (the
// per-cell state, spec component G) is the production implementation.
type MessageInvoker interface {
	InvokeSystemMessage(msg SystemMessage)
	InvokeUserMessage(messageOrEnvelope interface{})
	EscalateFailure(reason *ActorError, message interface{})
}

// Middleware wraps user-message invocation with before/after hooks, e.g. for
// reply-to scoping or metrics. System messages bypass middleware entirely
// (spec §4.F).
type Middleware interface {
	BeforeUser(ctx Context, messageOrEnvelope interface{})
	AfterUser(ctx Context, messageOrEnvelope interface{})
}

// MiddlewareFunc pair adapts two plain functions into a Middleware.
type MiddlewareFunc struct {
	Before func(ctx Context, messageOrEnvelope interface{})
	After  func(ctx Context, messageOrEnvelope interface{})
}

func (m MiddlewareFunc) BeforeUser(ctx Context, messageOrEnvelope interface{}) {
	if m.Before != nil {
		m.Before(ctx, messageOrEnvelope)
	}
}
func (m MiddlewareFunc) AfterUser(ctx Context, messageOrEnvelope interface{}) {
	if m.After != nil {
		m.After(ctx, messageOrEnvelope)
	}
}

// pipeline runs before/after middleware around a receive call; the
// AfterUser hooks run in reverse order even if receive panics. It keeps no
// reply-to scope of its own: nothing is saved before receive or restored
// after it.
type pipeline struct {
	middleware []Middleware
}

func (p *pipeline) invoke(ctx Context, messageOrEnvelope interface{}, receive func()) {
	for _, mw := range p.middleware {
		mw.BeforeUser(ctx, messageOrEnvelope)
	}
	defer func() {
		for i := len(p.middleware) - 1; i >= 0; i-- {
			p.middleware[i].AfterUser(ctx, messageOrEnvelope)
		}
	}()
	receive()
}
