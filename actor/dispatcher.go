package actor

import (
	"time"

	"github.com/asynkron/actorcore/toolbox"
)

// Dispatcher is spec component F/§4.E: it drains a single Mailbox through a
// MessageInvoker in batches of up to Throughput messages, yielding back to
// the Executor once a batch runs past ThroughputDeadline so one busy cell
// cannot monopolize a shared thread pool. StarvationDeadline is a separate,
// non-flow-controlling concern: any dequeued message that waited at least
// that long before being run is reported via MailboxStarvationEvent.
type Dispatcher struct {
	mailbox  *Mailbox
	invoker  MessageInvoker
	executor *DispatchExecutorRunner
	clock    toolbox.Clock

	throughput         int
	throughputDeadline time.Duration
	starvationDeadline time.Duration
}

// NewDispatcher wires mailbox to invoker through cfg's executor (wrapped for
// reentrant-submit safety), and installs the mailbox's wake callback so the
// first enqueue after Idle schedules a drive loop iteration.
func NewDispatcher(mailbox *Mailbox, invoker MessageInvoker, cfg DispatcherConfig, clock toolbox.Clock) *Dispatcher {
	if clock == nil {
		clock = toolbox.Std{}
	}
	d := &Dispatcher{
		mailbox:            mailbox,
		invoker:            invoker,
		executor:           NewDispatchExecutorRunner(cfg.executorOrDefault()),
		clock:              clock,
		throughput:         mailbox.policy.throughput(),
		throughputDeadline: cfg.ThroughputDeadline,
		starvationDeadline: cfg.StarvationDeadline,
	}
	mailbox.setWake(d.schedule)
	return d
}

func (d *Dispatcher) schedule() {
	d.executor.Submit(d.run)
}

// run drains one batch and, if the mailbox's schedule flag says more work
// arrived while draining, keeps going. If the batch stopped early (throughput
// or ThroughputDeadline) with work still queued, it reclaims the schedule
// flag and resubmits itself to the executor; otherwise it returns and the
// mailbox goes Idle until the next enqueue wakes it again.
func (d *Dispatcher) run() {
	for {
		d.drainBatch()
		if d.mailbox.continueOrExit() {
			continue
		}
		pending := !d.mailbox.sysQ.isEmpty() ||
			(!d.mailbox.isSuspended() && d.mailbox.hasPendingUserWork())
		if pending && d.mailbox.requestSchedule() {
			d.schedule()
		}
		return
	}
}

func (d *Dispatcher) drainBatch() {
	start := d.clock.Now()
	for i := 0; i < d.throughput; i++ {
		msg, ok := d.mailbox.dequeue()
		if !ok {
			return
		}

		if d.starvationDeadline > 0 {
			if waited := d.clock.Now().Sub(msg.EnqueuedAt); waited >= d.starvationDeadline {
				d.mailbox.emitStarvation(waited)
			}
		}

		if msg.IsUser {
			d.invoker.InvokeUserMessage(msg.User)
		} else {
			d.invoker.InvokeSystemMessage(msg.System)
		}

		if d.throughputDeadline > 0 && d.clock.Now().Sub(start) >= d.throughputDeadline {
			return
		}
	}
}
