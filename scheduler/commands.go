package scheduler

import "time"

// MessageSender is the narrow slice of actor.Ref the scheduler depends on,
// kept here instead of importing the actor package so scheduler -> actor is
// the only edge (avoids a cycle with the future actor -> scheduler wiring
// spec §6 describes for ActorSystemConfig.scheduler_config).
type MessageSender interface {
	Tell(message interface{})
}

// RecurrenceKind selects the re-scheduling rule a SchedulerCommand follows
// once its wheel entry fires (spec §4.M).
type RecurrenceKind int

const (
	// Once fires a single time and is never re-armed.
	Once RecurrenceKind = iota
	// FixedRate re-arms at the original cadence regardless of how long the
	// previous firing took to observe, clamped by BacklogLimit so a stalled
	// consumer cannot make the wheel schedule an unbounded catch-up burst.
	FixedRate
	// FixedDelay re-arms Interval after the firing is actually collected.
	FixedDelay
)

// HandleID identifies a live (or already-cancelled) wheel entry.
type HandleID uint64

// Tick is a monotonically increasing wheel slot index; the wheel itself is
// agnostic to what real time a tick corresponds to (the tick driver owns
// that mapping).
type Tick uint64

// Command is what a wheel/scheduler entry delivers once its deadline tick is
// reached: Target.Tell(Message).
type Command struct {
	Target  MessageSender
	Message interface{}
}

// ScheduleRequest is the input to Scheduler.Schedule: a Command plus its
// recurrence rule.
type ScheduleRequest struct {
	Command Command
	Delay   time.Duration
	Kind    RecurrenceKind

	// Interval governs re-arming for FixedRate/FixedDelay; ignored for Once.
	Interval time.Duration

	// BacklogLimit caps how many missed FixedRate firings are collapsed into
	// a single burst when the consumer falls behind (spec §4.M
	// burst_threshold). Zero means "use the scheduler default".
	BacklogLimit int
}

// recurrence is the scheduler-side bookkeeping kept alongside each live
// wheel entry so CollectExpired's caller can decide whether/how to re-arm.
type recurrence struct {
	kind         RecurrenceKind
	interval     time.Duration
	backlogLimit int
	nextDeadline Tick
}
