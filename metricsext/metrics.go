// Package metricsext is an optional built-in Extension (spec §6's Extension
// trait) that republishes the shared event stream's lifecycle, dead-letter,
// mailbox-pressure, and unhandled-message events as OpenTelemetry
// instruments, so an operator can point any otel-compatible backend at an
// actorcore System without the core itself depending on a specific metrics
// backend.
package metricsext

import (
	"context"
	"sync"

	"github.com/asynkron/actorcore/actor"
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

var extensionID = actor.NewExtensionID()

// Extension is the installed metrics bridge; it satisfies actor.Extension
// (a marker interface) so it can live in the System's extension registry
// and be looked up later (e.g. by an admin HTTP handler).
type Extension struct {
	instanceID uuid.UUID

	lifecycleCount     metric.Int64Counter
	deadLetterCount    metric.Int64Counter
	unhandledCount     metric.Int64Counter
	adapterFailureCount metric.Int64Counter
	mailboxDepth       metric.Int64UpDownCounter

	mu       sync.Mutex
	tracked  *linkedhashmap.Map // actor path (string) -> last known mailbox depth (int), insertion order preserved for diagnostics dumps
	subs     []*subscription
}

type subscription struct{ unsubscribe func() }

// New builds an Extension's instruments concurrently against meter,
// aggregating the first creation error (mirrors the teacher pack's
// errgroup-based "both or neither" concurrent setup idiom).
func New(ctx context.Context, meter metric.Meter) (*Extension, error) {
	ext := &Extension{
		instanceID: uuid.New(),
		tracked:    linkedhashmap.New(),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ext.lifecycleCount, err = meter.Int64Counter("actorcore.lifecycle.events")
		return err
	})
	g.Go(func() (err error) {
		ext.deadLetterCount, err = meter.Int64Counter("actorcore.dead_letters")
		return err
	})
	g.Go(func() (err error) {
		ext.unhandledCount, err = meter.Int64Counter("actorcore.unhandled_messages")
		return err
	})
	g.Go(func() (err error) {
		ext.adapterFailureCount, err = meter.Int64Counter("actorcore.adapter_failures")
		return err
	})
	g.Go(func() (err error) {
		ext.mailboxDepth, err = meter.Int64UpDownCounter("actorcore.mailbox.depth")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ext, nil
}

// InstanceID identifies this Extension instance, useful when a process runs
// more than one System and each needs a distinguishable metrics identity.
func (e *Extension) InstanceID() uuid.UUID { return e.instanceID }

// Installer returns an actor.ExtensionInstaller that registers ext under
// its well-known ExtensionID and wires its event-stream subscriptions, the
// shape WithExtensions expects at System build time.
func Installer(ext *Extension) actor.ExtensionInstaller {
	return func(sys *actor.System) {
		sys.RegisterExtension(extensionID, ext)
		ext.subscribe(sys)
	}
}

func (e *Extension) subscribe(sys *actor.System) {
	stream := sys.EventStream()
	ctx := context.Background()

	e.subs = append(e.subs, &subscription{unsubscribe: stream.Subscribe(func(event interface{}) {
		if evt, ok := event.(actor.LifecycleEvent); ok {
			e.lifecycleCount.Add(ctx, 1, metric.WithAttributes(
				attribute.String("stage", lifecycleStageName(evt.Stage)),
			))
		}
	}).Unsubscribe})

	e.subs = append(e.subs, &subscription{unsubscribe: stream.Subscribe(func(event interface{}) {
		if evt, ok := event.(actor.DeadLetterEvent); ok {
			e.deadLetterCount.Add(ctx, 1, metric.WithAttributes(
				attribute.Int("reason", int(evt.Reason)),
			))
		}
	}).Unsubscribe})

	e.subs = append(e.subs, &subscription{unsubscribe: stream.Subscribe(func(event interface{}) {
		if evt, ok := event.(actor.UnhandledMessageEvent); ok {
			e.unhandledCount.Add(ctx, 1, metric.WithAttributes(
				attribute.String("message_type", evt.MessageTypeName),
			))
		}
	}).Unsubscribe})

	e.subs = append(e.subs, &subscription{unsubscribe: stream.Subscribe(func(event interface{}) {
		if _, ok := event.(actor.AdapterFailureEvent); ok {
			e.adapterFailureCount.Add(ctx, 1)
		}
	}).Unsubscribe})

	e.subs = append(e.subs, &subscription{unsubscribe: stream.Subscribe(func(event interface{}) {
		if evt, ok := event.(actor.MailboxEvent); ok {
			e.recordMailboxDepth(ctx, evt)
		}
	}).Unsubscribe})
}

func (e *Extension) recordMailboxDepth(ctx context.Context, evt actor.MailboxEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	path := evt.Who.String()
	previous := 0
	if v, ok := e.tracked.Get(path); ok {
		previous = v.(int)
	}
	e.tracked.Put(path, evt.UserLen)
	e.mailboxDepth.Add(ctx, int64(evt.UserLen-previous), metric.WithAttributes(attribute.String("actor", path)))
}

// TrackedActors returns every actor path observed so far, in first-seen
// order, with its last known mailbox depth — a lightweight debug dump,
// e.g. for an admin endpoint.
func (e *Extension) TrackedActors() []ActorDepth {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := e.tracked.Keys()
	out := make([]ActorDepth, 0, len(keys))
	for _, k := range keys {
		v, _ := e.tracked.Get(k)
		out = append(out, ActorDepth{Path: k.(string), Depth: v.(int)})
	}
	return out
}

// ActorDepth is one row of TrackedActors' dump.
type ActorDepth struct {
	Path  string
	Depth int
}

// Close unsubscribes every stream subscription this Extension installed.
func (e *Extension) Close() {
	e.mu.Lock()
	subs := e.subs
	e.subs = nil
	e.mu.Unlock()
	for _, s := range subs {
		s.unsubscribe()
	}
}

func lifecycleStageName(stage actor.LifecycleStage) string {
	switch stage {
	case actor.LifecycleStarted:
		return "started"
	case actor.LifecycleStopped:
		return "stopped"
	case actor.LifecycleRestarted:
		return "restarted"
	default:
		return "unknown"
	}
}
