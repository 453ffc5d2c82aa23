package actor

import (
	"context"
	"time"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/emirpasic/gods/stacks/linkedliststack"
)

// cellState is the lifecycle phase of spec component G's ActorCell:
// Starting while pre_start runs, Running while serving user messages,
// Restarting/Stopping while its children drain, Stopped once finalized.
type cellState int32

const (
	cellStarting cellState = iota
	cellRunning
	cellRestarting
	cellStopping
	cellStopped
)

// actorCellExtras lazily holds the bookkeeping most cells never touch:
// children, watchers, the receive-timeout timer and the Stash buffer
// (teacher's actorContextExtras, generalized to Ref-keyed gods sets).
type actorCellExtras struct {
	children            *linkedhashset.Set
	watchers            *linkedhashset.Set
	stash               *linkedliststack.Stack
	receiveTimeoutTimer *time.Timer
	restartStats        *RestartStatistics
}

func newActorCellExtras() *actorCellExtras {
	return &actorCellExtras{
		children: linkedhashset.New(),
		watchers: linkedhashset.New(),
	}
}

func (e *actorCellExtras) restartStatistics() *RestartStatistics {
	if e.restartStats == nil {
		e.restartStats = NewRestartStatistics()
	}
	return e.restartStats
}

func (e *actorCellExtras) addChild(ref Ref)    { e.children.Add(ref) }
func (e *actorCellExtras) removeChild(ref Ref) { e.children.Remove(ref) }
func (e *actorCellExtras) watch(ref Ref)       { e.watchers.Add(ref) }
func (e *actorCellExtras) unwatch(ref Ref)     { e.watchers.Remove(ref) }

func (e *actorCellExtras) childRefs() []Ref {
	values := e.children.Values()
	out := make([]Ref, len(values))
	for i, v := range values {
		out[i] = v.(Ref)
	}
	return out
}

func (e *actorCellExtras) watcherRefs() []Ref {
	values := e.watchers.Values()
	out := make([]Ref, len(values))
	for i, v := range values {
		out[i] = v.(Ref)
	}
	return out
}

// actorCell is spec components F/G fused: the per-actor state (identity,
// mailbox, dispatcher, supervision bookkeeping) plus the Context the user
// Actor's Receive sees on every invocation. It implements Context,
// MessageInvoker and process.
type actorCell struct {
	sys    *System
	props  *Props
	self   Ref
	parent Ref
	path   Path

	actor      Actor
	mailbox    *Mailbox
	dispatcher *Dispatcher
	pipeline   *pipeline
	supervisor SupervisorStrategy

	state             cellState
	receiveTimeout    time.Duration
	messageOrEnvelope interface{}
	extras            *actorCellExtras
}

// newCell builds and starts a child cell of parent under parentPath/name.
func newCell(sys *System, props *Props, parent Ref, parentPath Path, name string) (*actorCell, error) {
	if err := props.validate(); err != nil {
		return nil, err
	}
	childPath, err := parentPath.WithChild(name)
	if err != nil {
		return nil, err
	}
	return buildCell(sys, props, parent, childPath, props.supervisor)
}

// newRootCell builds a guardian cell directly at rootPath, governed by the
// guardian strategy carried in props (spec §4.G root guardians).
func newRootCell(sys *System, props *Props, rootPath Path) (*actorCell, error) {
	if err := props.validate(); err != nil {
		return nil, err
	}
	strategy := defaultSupervisorStrategy
	if props.guardianStrategy != nil {
		strategy = *props.guardianStrategy
	}
	return buildCell(sys, props, Ref{}, rootPath, strategy)
}

func buildCell(sys *System, props *Props, parent Ref, path Path, supervisor SupervisorStrategy) (*actorCell, error) {
	pid := PID{ID: sys.pids.allocate(), Incarnation: 1}
	path = path.WithUID(uint32(pid.ID))

	cell := &actorCell{
		sys:        sys,
		props:      props,
		parent:     parent,
		path:       path,
		supervisor: supervisor,
		state:      cellStarting,
	}
	cell.mailbox = NewMailbox(props.mailboxPolicy, sys.events, sys.toolbox)
	cell.self = newRef(pid, cell, sys)
	cell.mailbox.setOwner(cell.self)
	cell.pipeline = &pipeline{middleware: props.middleware}
	cell.dispatcher = NewDispatcher(cell.mailbox, cell, props.dispatcherConfig, sys.toolbox)
	cell.incarnateActor()

	if !cell.parent.IsNull() {
		sys.publishLifecycle(cell.self, cell.parent, LifecycleStarted)
	}
	_ = cell.mailbox.enqueueSystem(createMessage)
	return cell, nil
}

func (c *actorCell) ensureExtras() *actorCellExtras {
	if c.extras == nil {
		c.extras = newActorCellExtras()
	}
	return c.extras
}

func (c *actorCell) incarnateActor() {
	c.state = cellStarting
	c.actor = c.props.factory()
}

// --- Context -------------------------------------------------------------

func (c *actorCell) Actor() Actor    { return c.actor }
func (c *actorCell) Self() Ref       { return c.self }
func (c *actorCell) Parent() Ref     { return c.parent }
func (c *actorCell) System() *System { return c.sys }

func (c *actorCell) Message() interface{} { return UnwrapEnvelopeMessage(c.messageOrEnvelope) }
func (c *actorCell) Sender() Ref          { return UnwrapEnvelopeSender(c.messageOrEnvelope) }
func (c *actorCell) MessageHeader() ReadonlyMessageHeader {
	return UnwrapEnvelopeHeader(c.messageOrEnvelope)
}

func (c *actorCell) Send(to Ref, message interface{}) {
	c.sendUserMessageTo(to, message)
}

func (c *actorCell) Forward(to Ref) {
	if _, ok := c.messageOrEnvelope.(SystemMessage); ok {
		return
	}
	c.sendUserMessageTo(to, c.messageOrEnvelope)
}

func (c *actorCell) sendUserMessageTo(to Ref, message interface{}) {
	if to.IsNull() {
		recordDeadLetter(c.sys, message, DeadLetterRecipientUnavailable, to)
		return
	}
	to.p.sendUserMessage(message)
}

func (c *actorCell) Request(to Ref, message interface{}) {
	c.sendUserMessageTo(to, &Envelope{Message: message, Sender: c.self})
}

func (c *actorCell) RequestFuture(to Ref, message interface{}, timeout time.Duration) *Future {
	f := newFuture(c.sys, timeout)
	c.sendUserMessageTo(to, &Envelope{Message: message, Sender: f.Ref()})
	return f
}

func (c *actorCell) Stash() {
	extras := c.ensureExtras()
	if extras.stash == nil {
		extras.stash = linkedliststack.New()
	}
	extras.stash.Push(c.Message())
}

func (c *actorCell) cancelReceiveTimeoutTimer() {
	if c.extras == nil || c.extras.receiveTimeoutTimer == nil {
		return
	}
	c.extras.receiveTimeoutTimer.Stop()
	c.extras.receiveTimeoutTimer = nil
	c.receiveTimeout = 0
}

func (c *actorCell) receiveTimeoutFired() {
	if c.extras == nil || c.extras.receiveTimeoutTimer == nil {
		return
	}
	c.cancelReceiveTimeoutTimer()
	c.self.Tell(receiveTimeoutMessage)
}

func (c *actorCell) SetReceiveTimeout(d time.Duration) {
	if d <= 0 {
		panic("actor: receive timeout must be greater than zero")
	}
	if d == c.receiveTimeout {
		return
	}
	if d < time.Millisecond {
		d = 0
	}
	c.receiveTimeout = d

	extras := c.ensureExtras()
	if extras.receiveTimeoutTimer != nil {
		extras.receiveTimeoutTimer.Stop()
	}
	if d > 0 {
		if extras.receiveTimeoutTimer == nil {
			extras.receiveTimeoutTimer = time.AfterFunc(d, c.receiveTimeoutFired)
		} else {
			extras.receiveTimeoutTimer.Reset(d)
		}
	}
}

func (c *actorCell) ReceiveTimeout() time.Duration { return c.receiveTimeout }

func (c *actorCell) Children() []Ref {
	if c.extras == nil {
		return nil
	}
	return c.extras.childRefs()
}

func (c *actorCell) Spawn(props *Props) Ref {
	ref, _ := c.SpawnNamed(props, c.sys.names.nextID())
	return ref
}

func (c *actorCell) SpawnPrefix(props *Props, prefix string) Ref {
	ref, _ := c.SpawnNamed(props, prefix+c.sys.names.nextID())
	return ref
}

func (c *actorCell) SpawnNamed(props *Props, name string) (Ref, error) {
	if props.guardianStrategy != nil {
		panic("actor: props used to spawn a child cannot carry a guardian strategy")
	}
	parentKey := c.path.String()
	if err := c.sys.names.reserve(parentKey, name); err != nil {
		return Ref{}, err
	}
	child, err := newCell(c.sys, props, c.self, c.path, name)
	if err != nil {
		c.sys.names.release(parentKey, name)
		return Ref{}, err
	}
	c.ensureExtras().addChild(child.self)
	return child.self, nil
}

func (c *actorCell) Watch(who Ref) {
	who.sendSystemMessage(&Watch{Watcher: c.self})
}

func (c *actorCell) Unwatch(who Ref) {
	who.sendSystemMessage(&Unwatch{Watcher: c.self})
}

func (c *actorCell) Respond(response interface{}) {
	sender := c.Sender()
	if sender.IsNull() {
		recordDeadLetter(c.sys, response, DeadLetterRecipientUnavailable, sender)
		return
	}
	c.Send(sender, response)
}

func (c *actorCell) EscalateFailure(reason *ActorError, message interface{}) {
	failure := &Failure{
		Who:          c.self,
		RestartStats: c.ensureExtras().restartStatistics(),
		Reason:       reason,
		Message:      message,
	}
	c.self.sendSystemMessage(suspendMailboxMessage)
	if c.parent.IsNull() {
		c.handleFailure(failure)
		return
	}
	c.parent.sendSystemMessage(failure)
}

func (c *actorCell) AwaitFuture(f *Future, cont func(res interface{}, err error)) {
	pending := c.messageOrEnvelope
	self := c.self
	go func() {
		<-f.Done()
		res, err := f.Result()
		self.sendSystemMessage(&continuation{
			f:       func() { cont(res, err) },
			message: pending,
		})
	}()
}

func (c *actorCell) RestartChildren(refs ...Ref) {
	for _, ref := range refs {
		ref.sendSystemMessage(restartMessage)
	}
}

func (c *actorCell) StopChildren(refs ...Ref) {
	for _, ref := range refs {
		ref.Stop()
	}
}

func (c *actorCell) ResumeChildren(refs ...Ref) {
	for _, ref := range refs {
		ref.sendSystemMessage(resumeMailboxMessage)
	}
}

func (c *actorCell) OverrideSupervisorStrategy(s SupervisorStrategy) { c.supervisor = s }

// --- process ---------------------------------------------------------------

func (c *actorCell) sendUserMessage(messageOrEnvelope interface{}) {
	outcome, err := c.mailbox.enqueueUser(messageOrEnvelope)
	if err != nil {
		recordDeadLetter(c.sys, messageOrEnvelope, deadLetterReasonFor(err), c.self)
		return
	}
	if outcome.IsPending() {
		// Block policy: synchronously await the mailbox making room, the
		// same way the original's enqueue_user polls its pending future
		// before returning (spec §4.C, §5) rather than completing the send
		// immediately and leaving backpressure unobserved by the caller.
		// Props.validate() already refuses to pair OverflowBlock with a
		// synchronous executor, so this can only block a caller outside the
		// mailbox's own dispatcher loop.
		if waitErr := outcome.Wait.Wait(context.Background()); waitErr != nil {
			recordDeadLetter(c.sys, messageOrEnvelope, deadLetterReasonFor(waitErr), c.self)
		}
	}
}

func (c *actorCell) sendSystemMessage(msg SystemMessage) {
	if err := c.mailbox.enqueueSystem(msg); err != nil {
		recordDeadLetter(c.sys, msg, deadLetterReasonFor(err), c.self)
	}
}

func (c *actorCell) stop(Ref) {
	c.sendSystemMessage(stopMessage)
}

func deadLetterReasonFor(err error) DeadLetterReason {
	switch err {
	case SendErrMailboxFull:
		return DeadLetterMailboxFull
	case SendErrMailboxSuspended:
		return DeadLetterMailboxSuspended
	case SendErrClosed:
		return DeadLetterClosed
	default:
		return DeadLetterRecipientUnavailable
	}
}

// --- MessageInvoker ----------------------------------------------------

func (c *actorCell) InvokeUserMessage(messageOrEnvelope interface{}) {
	if c.state == cellStopped {
		recordDeadLetter(c.sys, messageOrEnvelope, DeadLetterClosed, c.self)
		return
	}

	influencesTimeout := true
	if c.receiveTimeout > 0 {
		if _, ok := messageOrEnvelope.(NotInfluenceReceiveTimeout); ok {
			influencesTimeout = false
		}
		if influencesTimeout && c.extras != nil && c.extras.receiveTimeoutTimer != nil {
			c.extras.receiveTimeoutTimer.Stop()
		}
	}

	c.processMessage(messageOrEnvelope)

	if c.receiveTimeout > 0 && influencesTimeout && c.extras != nil && c.extras.receiveTimeoutTimer != nil {
		c.extras.receiveTimeoutTimer.Reset(c.receiveTimeout)
	}
}

func (c *actorCell) processMessage(m interface{}) {
	c.messageOrEnvelope = m
	defer func() { c.messageOrEnvelope = nil }()

	if _, ok := m.(*PoisonPill); ok {
		c.self.Stop()
		return
	}

	c.pipeline.invoke(c, m, func() {
		if err := c.actor.Receive(c); err != nil {
			c.EscalateFailure(err, m)
		}
	})
}

func (c *actorCell) InvokeSystemMessage(msg SystemMessage) {
	switch m := msg.(type) {
	case *Create:
		c.InvokeUserMessage(startedMessage)
	case *continuation:
		c.messageOrEnvelope = m.message
		m.f()
		c.messageOrEnvelope = nil
	case *SuspendMailbox:
		c.mailbox.suspend()
	case *ResumeMailbox:
		c.mailbox.resume()
	case *Watch:
		c.handleWatch(m)
	case *Unwatch:
		c.handleUnwatch(m)
	case *Stop:
		c.handleStop()
	case *Terminated:
		c.handleTerminated(m)
	case *Failure:
		c.handleFailure(m)
	case *Restart:
		c.handleRestart()
	}
}

func (c *actorCell) handleWatch(msg *Watch) {
	if c.state >= cellStopping {
		msg.Watcher.sendSystemMessage(&Terminated{Who: c.self})
		return
	}
	c.ensureExtras().watch(msg.Watcher)
}

func (c *actorCell) handleUnwatch(msg *Unwatch) {
	if c.extras == nil {
		return
	}
	c.extras.unwatch(msg.Watcher)
}

func (c *actorCell) handleRestart() {
	c.state = cellRestarting
	c.InvokeUserMessage(restartingMessage)
	c.stopAllChildren()
	c.tryRestartOrTerminate()
}

func (c *actorCell) handleStop() {
	if c.state >= cellStopping {
		return
	}
	c.state = cellStopping
	c.InvokeUserMessage(stoppingMessage)
	c.stopAllChildren()
	c.tryRestartOrTerminate()
}

func (c *actorCell) handleTerminated(msg *Terminated) {
	if c.extras != nil {
		c.extras.removeChild(msg.Who)
	}
	c.InvokeUserMessage(msg)
	c.tryRestartOrTerminate()
}

func (c *actorCell) handleFailure(msg *Failure) {
	directive := c.supervisor.HandleFailure(msg.RestartStats, msg.Reason, c.sys.toolbox.Now())
	switch directive {
	case DirectiveRestart:
		if c.supervisor.Kind == AllForOne {
			c.restartAllChildren()
		} else {
			msg.Who.sendSystemMessage(restartMessage)
		}
	case DirectiveStop:
		if c.supervisor.Kind == AllForOne {
			c.stopAllChildren()
		} else {
			msg.Who.Stop()
		}
	case DirectiveEscalate:
		c.EscalateFailure(msg.Reason, msg.Message)
	}
}

// restartAllChildren is AllForOne's restart fan-out (spec §4.H): a single
// child's failure restarts every sibling under this parent, not just the
// one that failed.
func (c *actorCell) restartAllChildren() {
	if c.extras == nil {
		return
	}
	for _, ref := range c.extras.childRefs() {
		ref.sendSystemMessage(restartMessage)
	}
}

func (c *actorCell) stopAllChildren() {
	if c.extras == nil {
		return
	}
	for _, ref := range c.extras.childRefs() {
		ref.Stop()
	}
}

func (c *actorCell) tryRestartOrTerminate() {
	if c.extras != nil && !c.extras.children.Empty() {
		return
	}
	c.cancelReceiveTimeoutTimer()

	switch c.state {
	case cellRestarting:
		c.restart()
	case cellStopping:
		c.finalizeStop()
	}
}

func (c *actorCell) restart() {
	c.incarnateActor()
	c.self.sendSystemMessage(resumeMailboxMessage)
	c.InvokeUserMessage(startedMessage)
	if c.extras != nil && c.extras.stash != nil {
		for !c.extras.stash.Empty() {
			msg, _ := c.extras.stash.Pop()
			c.InvokeUserMessage(msg)
		}
	}
	if !c.parent.IsNull() {
		c.sys.publishLifecycle(c.self, c.parent, LifecycleRestarted)
	}
}

func (c *actorCell) finalizeStop() {
	c.InvokeUserMessage(stoppedMessage)
	notice := &Terminated{Who: c.self}
	parentNotified := false
	if c.extras != nil {
		for _, watcher := range c.extras.watcherRefs() {
			watcher.sendSystemMessage(notice)
			if watcher.Equal(c.parent) {
				parentNotified = true
			}
		}
	}
	if !c.parent.IsNull() && !parentNotified {
		c.parent.sendSystemMessage(notice)
	}
	c.state = cellStopped
	c.mailbox.close()
	c.sys.publishLifecycle(c.self, c.parent, LifecycleStopped)
}
