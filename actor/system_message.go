package actor

// SystemMessage is the marker interface implemented by the closed set of
// system-priority messages (spec §3). System messages are always dequeued
// ahead of user traffic (spec §4.C/§4.D).
type SystemMessage interface {
	systemMessage()
}

type systemMessageBase struct{}

func (systemMessageBase) systemMessage() {}

// Create signals first-time construction; the cell runs pre_start.
type Create struct{ systemMessageBase }

// SuspendMailbox suspends user-message delivery until ResumeMailbox.
type SuspendMailbox struct{ systemMessageBase }

// ResumeMailbox resumes user-message delivery.
type ResumeMailbox struct{ systemMessageBase }

// Stop requests graceful shutdown of the cell.
type Stop struct{ systemMessageBase }

// Restart carries the failure that triggered a supervised restart.
type Restart struct {
	systemMessageBase
	Cause *ActorError
}

// Watch registers Watcher against the recipient.
type Watch struct {
	systemMessageBase
	Watcher Ref
}

// Unwatch removes a prior Watch registration.
type Unwatch struct {
	systemMessageBase
	Watcher Ref
}

// Terminated notifies a watcher (or parent) that Who has fully stopped.
type Terminated struct {
	systemMessageBase
	Who Ref
}

// Failure is the Failed(pid, error) system message: a child failure
// propagated to its parent for supervision.
type Failure struct {
	systemMessageBase
	Who          Ref
	RestartStats *RestartStatistics
	Reason       *ActorError
	Message      interface{}
}

// continuation is how AwaitFuture resumes a suspended receive (teacher's
// ctx.AwaitFuture pattern, kept verbatim in spirit).
type continuation struct {
	systemMessageBase
	f       func()
	message interface{}
}

var (
	createMessage  SystemMessage = &Create{}
	stopMessage    SystemMessage = &Stop{}
	restartMessage SystemMessage = &Restart{}
	suspendMailboxMessage SystemMessage = &SuspendMailbox{}
	resumeMailboxMessage  SystemMessage = &ResumeMailbox{}
)

// lifecycle "hint" messages delivered through the user pipeline (teacher's
// startedMessage/stoppingMessage/stoppedMessage/restartingMessage), distinct
// from the SystemMessage union because actor code handles them as ordinary
// Receive() messages.
type Started struct{}
type Stopping struct{}
type Stopped struct{}
type Restarting struct{}

var (
	startedMessage    = &Started{}
	stoppingMessage   = &Stopping{}
	stoppedMessage    = &Stopped{}
	restartingMessage = &Restarting{}
)

// PoisonPill stops the recipient after processing any messages ahead of it.
type PoisonPill struct{}

// NotInfluenceReceiveTimeout is implemented by messages that should not
// reset an actor's receive-timeout timer.
type NotInfluenceReceiveTimeout interface {
	notInfluenceReceiveTimeout()
}

type receiveTimeout struct{}

func (receiveTimeout) notInfluenceReceiveTimeout() {}

var receiveTimeoutMessage = &receiveTimeout{}
