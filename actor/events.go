package actor

import "time"

// LifecycleStage tags a LifecycleEvent.
type LifecycleStage int

const (
	LifecycleStarted LifecycleStage = iota
	LifecycleStopped
	LifecycleRestarted
)

// LifecycleEvent is the Lifecycle variant of EventStreamEvent (spec §6).
type LifecycleEvent struct {
	Who       Ref
	Parent    Ref
	Name      string
	Stage     LifecycleStage
	Timestamp time.Time
}

// DeadLetterReason is the unified taxonomy resolving spec §9's
// deadletter/dead_letter spelling ambiguity: DeadLetterEvent and every
// exported identifier use "DeadLetter".
type DeadLetterReason int

const (
	DeadLetterRecipientUnavailable DeadLetterReason = iota
	DeadLetterMailboxFull
	DeadLetterMailboxSuspended
	DeadLetterClosed
	DeadLetterAlreadyResponded
)

// DeadLetterEvent is the DeadLetter variant of EventStreamEvent.
type DeadLetterEvent struct {
	Message   interface{}
	Reason    DeadLetterReason
	Recipient Ref
	Sender    Ref
	Timestamp time.Time
}

// LogLevel mirrors spec §6's Log variant levels.
type LogLevel int

const (
	LogTrace LogLevel = iota
	LogDebug
	LogInfo
	LogWarn
	LogError
)

// LogEvent is the Log variant of EventStreamEvent.
type LogEvent struct {
	Level     LogLevel
	Message   string
	Origin    string
	Timestamp time.Time
}

// MailboxEvent is the Mailbox variant: a point-in-time depth snapshot
// emitted on every dequeue boundary (spec §4.C instrumentation).
type MailboxEvent struct {
	Who        Ref
	UserLen    int
	SystemLen  int
	Capacity   int // 0 = unbounded
	Throughput int
	Timestamp  time.Time
}

// MailboxPressureEvent is emitted when user_len/capacity crosses 75%.
type MailboxPressureEvent struct {
	Who               Ref
	UserLen           int
	Capacity          int
	UtilizationPercent int
	WarnThreshold     int
	Timestamp         time.Time
}

// MailboxStarvationEvent is published when a dequeued message's wait-to-run
// latency reaches DispatcherConfig.StarvationDeadline (spec §4.E): a
// diagnostic warning, distinct from ThroughputDeadline's per-batch
// wall-clock cap.
type MailboxStarvationEvent struct {
	Who       Ref
	Waited    time.Duration
	Timestamp time.Time
}

// UnhandledMessageEvent is published whenever a Behavior returns Unhandled
// or Empty (spec §4.L).
type UnhandledMessageEvent struct {
	Who             Ref
	MessageTypeName string
	Timestamp       time.Time
}

// TickDriverEvent announces which tick driver mode is active and at what
// resolution (spec component N).
type TickDriverEvent struct {
	Kind       string
	Resolution time.Duration
	Metadata   map[string]string
	Timestamp  time.Time
}

// AdapterFailure describes why a message Adapter's conversion function
// could not produce a typed message (spec §4.L message adapters).
type AdapterFailure struct {
	SourceTypeName string
	Reason         interface{}
}

// AdapterFailureEvent is the AdapterFailure variant of EventStreamEvent.
type AdapterFailureEvent struct {
	Who       Ref
	Failure   AdapterFailure
	Timestamp time.Time
}

// ExtensionEvent is the namespace escape hatch for cluster/remote-style
// extensions to publish their own payloads onto the shared stream.
type ExtensionEvent struct {
	Name      string
	Payload   interface{}
	Timestamp time.Time
}
