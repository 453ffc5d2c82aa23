package actor

import "time"

// Producer constructs a fresh Actor instance; Props.Factory calls it once
// per incarnation (spec §6: "Factory returns a fresh actor instance per
// cell").
type Producer func() Actor

// Actor is the user-supplied receive function. It has no separate lifecycle
// hooks: lifecycle stages arrive through Receive as the Started, Stopping,
// Stopped and Restarting messages.
type Actor interface {
	Receive(ctx Context) *ActorError
}

// BaseActor gives user actors a zero-cost way to satisfy Actor without
// declaring a Receive method they don't need yet (mirrors the teacher's
// convention of small composable actor building blocks).
type BaseActor struct{}

func (BaseActor) Receive(Context) *ActorError { return nil }

// DispatcherConfig configures the Dispatcher a cell's mailbox is drained by
// (spec §6 DispatcherConfig).
type DispatcherConfig struct {
	Executor           Executor
	ThroughputDeadline time.Duration
	StarvationDeadline time.Duration
}

func (c DispatcherConfig) executorOrDefault() Executor {
	if c.Executor == nil {
		return NewGoroutineExecutor(0)
	}
	return c.Executor
}

// Props is spec §6's construction contract: a factory, optional name,
// mailbox policy, middleware chain, dispatcher config, and (child-only)
// supervisor strategy. A root Props additionally carries a guardian
// strategy governing the guardian's own direct children.
type Props struct {
	factory          Producer
	name             string
	mailboxPolicy    MailboxPolicy
	middleware       []Middleware
	dispatcherConfig DispatcherConfig
	supervisor       SupervisorStrategy
	guardianStrategy *SupervisorStrategy
}

// PropsOption configures a Props via functional options.
type PropsOption func(*Props)

// PropsFromProducer builds Props around factory, matching the teacher's
// `actor.PropsFromProducer` idiom.
func PropsFromProducer(factory Producer, opts ...PropsOption) *Props {
	p := &Props{
		factory:    factory,
		supervisor: defaultSupervisorStrategy,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func WithName(name string) PropsOption { return func(p *Props) { p.name = name } }

func WithMailbox(policy MailboxPolicy) PropsOption {
	return func(p *Props) { p.mailboxPolicy = policy }
}

func WithMiddleware(mw ...Middleware) PropsOption {
	return func(p *Props) { p.middleware = append(p.middleware, mw...) }
}

func WithDispatcherConfig(cfg DispatcherConfig) PropsOption {
	return func(p *Props) { p.dispatcherConfig = cfg }
}

func WithSupervisorStrategy(s SupervisorStrategy) PropsOption {
	return func(p *Props) { p.supervisor = s }
}

// withGuardianStrategy is internal: only the System may spawn a Props that
// carries one, mirroring the teacher's panic on user-supplied guardian
// strategies (actor_context.go: "Props used to spawn child cannot have
// GuardianStrategy").
func withGuardianStrategy(s SupervisorStrategy) PropsOption {
	return func(p *Props) { p.guardianStrategy = &s }
}

// validate implements the structural-error checks spec §6/§7 call for at
// spawn/build time.
func (p *Props) validate() error {
	if p.factory == nil {
		return SpawnErrInvalidProps
	}
	if p.mailboxPolicy.Capacity < 0 {
		return SpawnErrInvalidMailboxConfig
	}
	executor := p.dispatcherConfig.executorOrDefault()
	if p.mailboxPolicy.Overflow == OverflowBlock && executor.Blocking() {
		// A Block-policy mailbox relies on the dispatcher draining
		// concurrently with a blocked sender; a synchronous executor would
		// deadlock against itself.
		return SpawnErrInvalidMailboxConfig
	}
	return nil
}
