package actor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Workiva/go-datastructures/queue"

	"github.com/asynkron/actorcore/eventstream"
	"github.com/asynkron/actorcore/toolbox"
)

// OverflowPolicy selects what happens when a bounded mailbox's user queue is
// full (spec §3 MailboxPolicy).
type OverflowPolicy int

const (
	OverflowDropNewest OverflowPolicy = iota
	OverflowDropOldest
	OverflowGrow
	OverflowBlock
)

// DefaultThroughput is the dispatcher batch size used when a MailboxPolicy
// leaves Throughput unset (spec §4.E).
const DefaultThroughput = 300

// MailboxPolicy configures a Mailbox's capacity, overflow behavior,
// dispatcher throughput and pressure-warning threshold (spec §3).
// Capacity == 0 means unbounded.
type MailboxPolicy struct {
	Capacity      int
	Overflow      OverflowPolicy
	Throughput    int
	WarnThreshold int
}

func (p MailboxPolicy) throughput() int {
	if p.Throughput <= 0 {
		return DefaultThroughput
	}
	return p.Throughput
}

// EnqueueOutcome is the result of enqueueUser: either the message is queued
// immediately, or (Block policy only) a cancellable Wait is returned that
// resolves once the mailbox makes room.
type EnqueueOutcome struct {
	Wait *BlockWait
}

func (o EnqueueOutcome) IsPending() bool { return o.Wait != nil }

// BlockWait is the future produced by a Block-policy enqueue under pressure.
// Per SPEC_FULL's resolution of the open question in spec §9: the wait is
// cancellable; cancelling before the mailbox drains drops the message from
// its reserved slot rather than delivering it late.
type BlockWait struct {
	done      chan error
	cancelled atomic.Bool
}

// Wait blocks until the message is enqueued, ctx is cancelled, or the
// mailbox is closed first.
func (w *BlockWait) Wait(ctx context.Context) error {
	select {
	case err := <-w.done:
		return err
	case <-ctx.Done():
		w.cancelled.Store(true)
		return SendErrTimeout
	}
}

type blockWaiter struct {
	envelope   interface{}
	enqueuedAt time.Time
	done       chan error
	cancelled  *atomic.Bool
}

// queuedUserMessage wraps a user-queue payload with the instant it was
// accepted, so the dispatcher can later measure wait-to-run latency (spec
// §4.E starvation tracking) without the ring backend itself needing to know
// about timestamps.
type queuedUserMessage struct {
	payload    interface{}
	enqueuedAt time.Time
}

// MailboxMessage is what dequeue() returns: a system or user message, tagged
// so the dispatcher can route it without a second type switch. EnqueuedAt is
// when the message was accepted, used to measure wait-to-run latency.
type MailboxMessage struct {
	System     SystemMessage
	User       interface{}
	IsUser     bool
	EnqueuedAt time.Time
}

// Mailbox is the dual-queue component of spec §4.C: a lock-free system
// queue that always drains first, and a pluggable bounded/unbounded user
// queue with DropNewest/DropOldest/Grow/Block overflow handling.
type Mailbox struct {
	policy MailboxPolicy
	owner  Ref
	clock  toolbox.Clock
	events *eventstream.Stream

	sysQ systemQueue

	mu       toolbox.Mutex
	backend  *ringBackend
	waiters  []*blockWaiter
	capacity int // current capacity; grows under OverflowGrow/unbounded

	suspended atomic.Bool
	closed    atomic.Bool
	sched     scheduleFlag

	warnCrossed atomic.Bool

	wake func()
}

// setWake installs the callback invoked whenever an enqueue transitions the
// schedule-state from Idle, i.e. "wakes the dispatcher" per spec §4.C.
func (m *Mailbox) setWake(wake func()) { m.wake = wake }

func (m *Mailbox) requestScheduleAndWake() {
	if m.requestSchedule() && m.wake != nil {
		m.wake()
	}
}

// NewMailbox builds a Mailbox. events/clock may be nil (no instrumentation /
// wall clock respectively); owner is attached once the cell assigns a PID.
func NewMailbox(policy MailboxPolicy, events *eventstream.Stream, clock toolbox.Clock) *Mailbox {
	if clock == nil {
		clock = toolbox.Std{}
	}
	initialCap := policy.Capacity
	if initialCap <= 0 {
		initialCap = 64 // unbounded mailboxes still back onto a growable ring
	}
	return &Mailbox{
		policy:   policy,
		clock:    clock,
		events:   events,
		mu:       toolbox.Default.NewMutex(),
		backend:  newRingBackend(initialCap),
		capacity: initialCap,
	}
}

func (m *Mailbox) setOwner(owner Ref) { m.owner = owner }

func (m *Mailbox) isUnbounded() bool { return m.policy.Capacity <= 0 }

// enqueueSystem always succeeds unless the mailbox is closed.
func (m *Mailbox) enqueueSystem(msg SystemMessage) error {
	if m.closed.Load() {
		return SendErrClosed
	}
	m.sysQ.push(msg, m.clock.Now())
	m.requestScheduleAndWake()
	return nil
}

// enqueueUser implements spec §4.C's enqueue_user state machine.
func (m *Mailbox) enqueueUser(messageOrEnvelope interface{}) (EnqueueOutcome, error) {
	if m.closed.Load() {
		return EnqueueOutcome{}, SendErrClosed
	}
	if m.suspended.Load() {
		return EnqueueOutcome{}, SendErrMailboxSuspended
	}

	item := queuedUserMessage{payload: messageOrEnvelope, enqueuedAt: m.clock.Now()}

	if m.isUnbounded() {
		m.pushGrowing(item)
		m.requestScheduleAndWake()
		m.emitPressureIfNeeded()
		return EnqueueOutcome{}, nil
	}

	m.mu.Lock()
	if m.backend.tryPush(item) {
		m.mu.Unlock()
		m.requestScheduleAndWake()
		m.emitPressureIfNeeded()
		return EnqueueOutcome{}, nil
	}

	switch m.policy.Overflow {
	case OverflowDropNewest:
		m.mu.Unlock()
		return EnqueueOutcome{}, SendErrMailboxFull
	case OverflowDropOldest:
		m.backend.tryPop() // evict oldest; FIFO of the remainder is preserved
		m.backend.tryPush(item)
		m.mu.Unlock()
		m.requestScheduleAndWake()
		m.emitPressureIfNeeded()
		return EnqueueOutcome{}, nil
	case OverflowGrow:
		m.growLocked()
		m.backend.tryPush(item)
		m.mu.Unlock()
		m.requestScheduleAndWake()
		m.emitPressureIfNeeded()
		return EnqueueOutcome{}, nil
	case OverflowBlock:
		done := make(chan error, 1)
		wait := &BlockWait{done: done}
		w := &blockWaiter{envelope: messageOrEnvelope, enqueuedAt: item.enqueuedAt, done: done, cancelled: &wait.cancelled}
		m.waiters = append(m.waiters, w)
		m.mu.Unlock()
		return EnqueueOutcome{Wait: wait}, nil
	default:
		m.mu.Unlock()
		return EnqueueOutcome{}, SendErrMailboxFull
	}
}

func (m *Mailbox) pushGrowing(item queuedUserMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.backend.tryPush(item) {
		m.growLocked()
		m.backend.tryPush(item)
	}
}

// growLocked doubles capacity. Caller holds m.mu.
func (m *Mailbox) growLocked() {
	newCap := m.capacity * 2
	if newCap <= m.capacity {
		newCap = m.capacity + 1
	}
	m.backend = m.backend.grown(newCap)
	m.capacity = newCap
}

// dequeue returns the next system message if any is queued, else the next
// user message unless suspended, matching spec §4.C's ordering invariant.
func (m *Mailbox) dequeue() (MailboxMessage, bool) {
	if msg, enqueuedAt, ok := m.sysQ.pop(); ok {
		m.emitMailboxEvent()
		return MailboxMessage{System: msg, EnqueuedAt: enqueuedAt}, true
	}
	if m.suspended.Load() {
		return MailboxMessage{}, false
	}

	m.mu.Lock()
	raw, ok := m.backend.tryPop()
	if !ok {
		m.mu.Unlock()
		return MailboxMessage{}, false
	}
	m.serveOneWaiterLocked()
	m.mu.Unlock()

	item := raw.(queuedUserMessage)
	m.emitMailboxEvent()
	return MailboxMessage{User: item.payload, IsUser: true, EnqueuedAt: item.enqueuedAt}, true
}

// serveOneWaiterLocked moves the oldest still-live Block waiter's message
// into the freed slot. Caller holds m.mu.
func (m *Mailbox) serveOneWaiterLocked() {
	for len(m.waiters) > 0 {
		w := m.waiters[0]
		m.waiters = m.waiters[1:]
		if w.cancelled.Load() {
			continue
		}
		if m.backend.tryPush(queuedUserMessage{payload: w.envelope, enqueuedAt: w.enqueuedAt}) {
			w.done <- nil
		}
		return
	}
}

// hasPendingUserWork is a best-effort hint for the dispatcher; only used to
// decide whether to keep draining, never for correctness.
func (m *Mailbox) hasPendingUserWork() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.len() > 0
}

func (m *Mailbox) systemLen() int {
	// best-effort, non-linearizable: used only for instrumentation.
	if m.sysQ.isEmpty() {
		return 0
	}
	return 1
}

func (m *Mailbox) userLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.len()
}

func (m *Mailbox) capacityHint() int {
	if m.isUnbounded() {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.capacity
}

// suspend/resume/isSuspended implement spec §4.C.
func (m *Mailbox) suspend()        { m.suspended.Store(true) }
func (m *Mailbox) resume()         { m.suspended.Store(false) }
func (m *Mailbox) isSuspended() bool { return m.suspended.Load() }

// close marks the mailbox closed; further enqueues fail with SendErrClosed
// and any still-pending Block waiters are failed with SendErrClosed.
func (m *Mailbox) close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.mu.Lock()
	waiters := m.waiters
	m.waiters = nil
	m.mu.Unlock()
	for _, w := range waiters {
		if !w.cancelled.Load() {
			w.done <- SendErrClosed
		}
	}
}

// requestSchedule implements the three-state CAS described in spec §4.C:
// returns true exactly once (Idle -> Running) until the dispatcher's drain
// loop releases ownership again.
func (m *Mailbox) requestSchedule() bool { return m.sched.request() }

// continueOrExit is called by the dispatcher after draining a batch: if a
// producer observed Running and marked Pending meanwhile, it reclaims
// Running and the drive loop continues; otherwise it goes Idle and the
// drive loop exits.
func (m *Mailbox) continueOrExit() (shouldContinue bool) { return m.sched.release() }

func (m *Mailbox) emitMailboxEvent() {
	if m.events == nil {
		return
	}
	m.events.Publish(MailboxEvent{
		Who:        m.owner,
		UserLen:    m.userLen(),
		SystemLen:  m.systemLen(),
		Capacity:   m.capacityHint(),
		Throughput: m.policy.throughput(),
		Timestamp:  m.clock.Now(),
	})
}

// emitStarvation reports a message whose wait-to-run latency exceeded the
// dispatcher's StarvationDeadline (spec §4.E): a warning, not a flow-control
// signal, so it never influences enqueue/dequeue behavior.
func (m *Mailbox) emitStarvation(waited time.Duration) {
	if m.events == nil {
		return
	}
	m.events.Publish(MailboxStarvationEvent{
		Who:       m.owner,
		Waited:    waited,
		Timestamp: m.clock.Now(),
	})
}

func (m *Mailbox) emitPressureIfNeeded() {
	if m.events == nil || m.isUnbounded() {
		return
	}
	cap := m.capacityHint()
	if cap == 0 {
		return
	}
	userLen := m.userLen()
	utilization := (userLen * 100) / cap
	if utilization >= 75 {
		m.events.Publish(MailboxPressureEvent{
			Who:                m.owner,
			UserLen:            userLen,
			Capacity:           cap,
			UtilizationPercent: utilization,
			WarnThreshold:      m.policy.WarnThreshold,
			Timestamp:          m.clock.Now(),
		})
	}
	if m.policy.WarnThreshold > 0 && userLen >= m.policy.WarnThreshold {
		if m.warnCrossed.CompareAndSwap(false, true) {
			m.events.Publish(LogEvent{
				Level:     LogWarn,
				Message:   "mailbox warn threshold crossed",
				Origin:    m.owner.String(),
				Timestamp: m.clock.Now(),
			})
		}
	} else {
		m.warnCrossed.Store(false)
	}
}

// ringBackend wraps a Workiva go-datastructures RingBuffer so Mailbox can
// treat bounded and (internally growable) unbounded user queues uniformly.
type ringBackend struct {
	rb *queue.RingBuffer
}

func newRingBackend(capacity int) *ringBackend {
	return &ringBackend{rb: queue.NewRingBuffer(uint64(capacity))}
}

func (b *ringBackend) tryPush(item interface{}) bool {
	ok, err := b.rb.Offer(item)
	return err == nil && ok
}

func (b *ringBackend) tryPop() (interface{}, bool) {
	// Poll blocks while the ring is empty, so emptiness is checked first;
	// every caller holds Mailbox.mu, so no other consumer can race the check.
	if b.rb.Len() == 0 {
		return nil, false
	}
	item, err := b.rb.Poll(0)
	if err != nil || item == nil {
		return nil, false
	}
	return item, true
}

func (b *ringBackend) len() int { return int(b.rb.Len()) }

// grown returns a new backend of the requested capacity with every pending
// item migrated over, preserving FIFO order (spec §4.C "Grow never reduces
// capacity").
func (b *ringBackend) grown(newCapacity int) *ringBackend {
	next := newRingBackend(newCapacity)
	for {
		item, ok := b.tryPop()
		if !ok {
			break
		}
		next.tryPush(item)
	}
	return next
}
