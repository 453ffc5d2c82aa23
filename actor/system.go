package actor

import (
	"sync"
	"time"

	"github.com/asynkron/actorcore/eventstream"
	"github.com/asynkron/actorcore/log"
	"github.com/asynkron/actorcore/toolbox"
)

// Startable is satisfied by the scheduler and tick-driver components
// (spec components M/N): NewSystem and Shutdown call these without actor
// importing either package, avoiding an import cycle (scheduler/tickdriver
// depend on actor.Ref via a narrow MessageSender interface, not the other
// way around).
type Startable interface {
	Start()
	Stop()
}

// ActorSystemConfig collects the functional options ActorSystemConfig
// accepts (spec §6's System::builder style, generalized to Go's
// functional-options idiom).
type ActorSystemConfig struct {
	name             string
	scheme           string
	guardianStrategy SupervisorStrategy
	replayCapacity   int
	deadLetterCap    int
	toolbox          toolbox.RuntimeToolbox
	logger           *log.Logger
	extensions       []ExtensionInstaller
	tickDriver       Startable
	scheduler        Startable
}

// ActorSystemOption configures an ActorSystemConfig.
type ActorSystemOption func(*ActorSystemConfig)

// WithSystemName sets the system name embedded in every ActorPath.
func WithSystemName(name string) ActorSystemOption {
	return func(c *ActorSystemConfig) { c.name = name }
}

// WithGuardianStrategy overrides the default OneForOne/10-within-10s
// strategy governing direct children of the user guardian.
func WithGuardianStrategy(s SupervisorStrategy) ActorSystemOption {
	return func(c *ActorSystemConfig) { c.guardianStrategy = s }
}

// WithEventStreamReplay sets how many past events new EventStream
// subscribers are replayed (spec component K).
func WithEventStreamReplay(n int) ActorSystemOption {
	return func(c *ActorSystemConfig) { c.replayCapacity = n }
}

// WithDeadLetterCapacity bounds the dead-letter recent-history cache
// (spec §7 DeadLetters).
func WithDeadLetterCapacity(n int) ActorSystemOption {
	return func(c *ActorSystemConfig) { c.deadLetterCap = n }
}

// WithToolbox swaps the RuntimeToolbox every synchronized structure in the
// system is built against (spec component Q).
func WithToolbox(tb toolbox.RuntimeToolbox) ActorSystemOption {
	return func(c *ActorSystemConfig) { c.toolbox = tb }
}

// WithTickDriver installs the Scheduler's pulse source (spec component N).
// NewSystem with a Scheduler but no TickDriver fails fast with
// ErrMissingTickDriver.
func WithTickDriver(d Startable) ActorSystemOption {
	return func(c *ActorSystemConfig) { c.tickDriver = d }
}

// WithScheduler installs the Timer Wheel scheduler (spec component M).
func WithScheduler(s Startable) ActorSystemOption {
	return func(c *ActorSystemConfig) { c.scheduler = s }
}

// WithExtensions installs one or more extensions at system-build time
// (spec §6 Extension trait).
func WithExtensions(installers ...ExtensionInstaller) ActorSystemOption {
	return func(c *ActorSystemConfig) { c.extensions = append(c.extensions, installers...) }
}

func defaultConfig() ActorSystemConfig {
	return ActorSystemConfig{
		name:             "actorcore",
		scheme:           "actor",
		guardianStrategy: defaultSupervisorStrategy,
		replayCapacity:   256,
		deadLetterCap:    256,
		toolbox:          toolbox.Default,
	}
}

// System is the ActorSystem of spec §3: the shared registries (PID
// allocator, name registry, extension registry, dead letters, event
// stream), the user/system guardian roots, and the optional
// scheduler/tick-driver pair.
type System struct {
	config ActorSystemConfig

	toolbox  toolbox.RuntimeToolbox
	logger   *log.Logger
	events   *eventstream.Stream
	pids     pidAllocator
	names    *nameRegistry
	ext      *extensionRegistry
	deadL    *deadLetters
	deadProc *deadLetterProcess

	userRootPath   Path
	systemRootPath Path

	userGuardianCell   *actorCell
	systemGuardianMeta *systemGuardian

	mu        sync.RWMutex
	processes map[PID]Ref

	shutdownOnce sync.Once
	terminated   chan struct{}
}

// NewSystem builds and starts a System. Start order: build the registries
// and the system guardian, install extensions, build the user guardian, then
// start the tick driver and after it the scheduler (which requires a tick
// driver to be configured).
func NewSystem(opts ...ActorSystemOption) (*System, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.scheduler != nil && cfg.tickDriver == nil {
		return nil, ErrMissingTickDriver
	}

	sys := &System{
		config:             cfg,
		toolbox:            cfg.toolbox,
		logger:             cfg.logger,
		events:             eventstream.NewWithToolbox(cfg.replayCapacity, cfg.toolbox),
		names:              newNameRegistry(),
		ext:                newExtensionRegistry(),
		userRootPath:       NewRootPath(cfg.scheme, cfg.name, GuardianUser),
		systemRootPath:     NewRootPath(cfg.scheme, cfg.name, GuardianSystem),
		systemGuardianMeta: newSystemGuardian(),
		processes:          map[PID]Ref{},
		terminated:         make(chan struct{}),
	}
	if sys.logger == nil {
		sys.logger = log.New(cfg.name)
	}
	sys.deadL = newDeadLetters(sys.events, cfg.deadLetterCap)
	sys.deadProc = &deadLetterProcess{sys: sys}

	for _, install := range cfg.extensions {
		install(sys)
	}

	root := PropsFromProducer(func() Actor { return BaseActor{} }, withGuardianStrategy(cfg.guardianStrategy))
	cell, err := newRootCell(sys, root, sys.userRootPath)
	if err != nil {
		return nil, err
	}
	sys.userGuardianCell = cell

	if cfg.tickDriver != nil {
		cfg.tickDriver.Start()
	}
	if cfg.scheduler != nil {
		cfg.scheduler.Start()
	}
	return sys, nil
}

// EventStream exposes the shared pub/sub bus (spec component K).
func (s *System) EventStream() *eventstream.Stream { return s.events }

// Now returns the toolbox-sourced current time, so layers built atop
// Context (the typed Behavior runner) can timestamp events they publish
// without holding their own toolbox reference.
func (s *System) Now() time.Time { return s.toolbox.Now() }

// DeadLetters exposes the recent-history query surface (spec §7).
func (s *System) DeadLetters() *deadLetters { return s.deadL }

// Root returns the Ref of the "/user" guardian; Spawn on it to create a
// top-level actor.
func (s *System) Root() Ref { return s.userGuardianCell.self }

// Spawn creates a top-level actor as a child of the "/user" guardian.
func (s *System) Spawn(props *Props) Ref { return s.userGuardianCell.Spawn(props) }

// SpawnNamed creates a named top-level actor, failing with
// SpawnErrDuplicateName if the name is already taken under "/user".
func (s *System) SpawnNamed(props *Props, name string) (Ref, error) {
	return s.userGuardianCell.SpawnNamed(props, name)
}

// DeadLetterRef returns the well-known addressable Ref that routes any send
// straight to dead letters (spec §4.F), usable e.g. as a placeholder Sender.
func (s *System) DeadLetterRef() Ref { return newRef(PID{}, s.deadProc, s) }

func (s *System) registerProcess(pid PID, ref Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processes[pid] = ref
}

func (s *System) unregisterProcess(pid PID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processes, pid)
}

func (s *System) lookupProcess(pid PID) (Ref, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.processes[pid]
	return ref, ok
}

// cancelPendingFutures resolves every still-registered Ask future with
// SendErrCanceled, so a Shutdown doesn't leave in-flight asks to discover
// the system is gone only once their own timeout eventually fires.
func (s *System) cancelPendingFutures() {
	s.mu.RLock()
	pending := make([]*Future, 0, len(s.processes))
	for _, ref := range s.processes {
		if f, ok := ref.p.(*Future); ok {
			pending = append(pending, f)
		}
	}
	s.mu.RUnlock()

	for _, f := range pending {
		f.complete(nil, SendErrCanceled)
	}
}

// publishLifecycle emits a LifecycleEvent onto the shared stream (spec
// component K / §4.G lifecycle hints).
func (s *System) publishLifecycle(who, parent Ref, stage LifecycleStage) {
	s.events.Publish(LifecycleEvent{
		Who:       who,
		Parent:    parent,
		Name:      who.pid.String(),
		Stage:     stage,
		Timestamp: s.toolbox.Now(),
	})
}

// RegisterExtension installs ext under id if nothing beat it there
// (first-writer-wins), returning whichever instance owns id.
func (s *System) RegisterExtension(id ExtensionID, ext Extension) Extension {
	return s.ext.Register(id, ext)
}

// Extension looks up a previously registered extension.
func (s *System) Extension(id ExtensionID) (Extension, bool) { return s.ext.Get(id) }

// RegisterTerminationHook is the system guardian's shutdown-coordination
// surface (spec §4.G). Returns ErrGuardianTerminating once Shutdown has
// begun draining hooks.
func (s *System) RegisterTerminationHook(name string) (*terminationHook, error) {
	return s.systemGuardianMeta.RegisterTerminationHook(name)
}

// TerminationHookDone marks a previously registered hook complete.
func (s *System) TerminationHookDone(h *terminationHook) {
	s.systemGuardianMeta.TerminationHookDone(h)
}

// Shutdown stops the root guardian, drains registered termination hooks (or
// force-terminates them after forceAfter elapses), stops the
// scheduler/tick-driver, and resolves WhenTerminated.
func (s *System) Shutdown(forceAfter time.Duration) {
	s.shutdownOnce.Do(func() {
		hooks := s.systemGuardianMeta.beginTermination()

		force := make(chan struct{})
		if forceAfter > 0 {
			time.AfterFunc(forceAfter, func() { close(force) })
		}

		s.userGuardianCell.self.Stop()
		s.systemGuardianMeta.awaitHooks(hooks, force)
		s.cancelPendingFutures()

		if s.config.scheduler != nil {
			s.config.scheduler.Stop()
		}
		if s.config.tickDriver != nil {
			s.config.tickDriver.Stop()
		}
		close(s.terminated)
	})
}

// WhenTerminated returns a channel closed once Shutdown has drained (or
// forced) the termination hooks, cancelled pending futures and stopped the
// scheduler/tick driver. It does not wait for the user guardian's Stop to
// finish processing.
func (s *System) WhenTerminated() <-chan struct{} { return s.terminated }
