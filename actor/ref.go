package actor

// process is the internal sender trait object a Ref wraps: anything that can
// accept user and system messages and be asked to stop. actorCell, Future and
// deadLetterProcess implement it.
type process interface {
	sendUserMessage(messageOrEnvelope interface{})
	sendSystemMessage(msg SystemMessage)
	stop(who Ref)
}

// Ref is the opaque handle of spec §3 ActorRef: (pid, process, weak system).
// Equality and hashing are by PID. The zero Ref is "null" and rejects all
// sends, routing them to dead letters via whichever system observes the
// attempt (or silently, if none is reachable).
type Ref struct {
	pid PID
	p   process
	sys *System
}

// newRef builds a non-null Ref. Internal: only the actorCell, Future and
// dead-letter Ref construction paths call this.
func newRef(pid PID, p process, sys *System) Ref {
	return Ref{pid: pid, p: p, sys: sys}
}

// PID returns the wrapped identity.
func (r Ref) PID() PID { return r.pid }

// IsNull reports whether r is the zero Ref (no sendable target).
func (r Ref) IsNull() bool { return r.p == nil }

// Equal compares by PID, per spec §3.
func (r Ref) Equal(other Ref) bool { return r.pid == other.pid }

func (r Ref) String() string {
	if r.IsNull() {
		return "Ref(null)"
	}
	return "Ref(" + r.pid.String() + ")"
}

// Tell sends message as a fire-and-forget user message. A null ref records a
// DeadLetter with reason RecipientUnavailable when it carries a System; the
// zero Ref carries none, so a Tell on it is dropped silently.
func (r Ref) Tell(message interface{}) {
	if r.IsNull() {
		recordDeadLetter(r.sys, message, DeadLetterRecipientUnavailable, r)
		return
	}
	r.p.sendUserMessage(message)
}

// Request is Tell plus an explicit sender, so the recipient can Respond.
func (r Ref) Request(message interface{}, sender Ref) {
	r.Tell(&Envelope{Message: message, Sender: sender})
}

// Stop requests graceful shutdown of the referenced actor.
func (r Ref) Stop() {
	if r.IsNull() {
		return
	}
	r.p.sendSystemMessage(stopMessage)
}

func (r Ref) sendSystemMessage(msg SystemMessage) {
	if r.IsNull() {
		return
	}
	r.p.sendSystemMessage(msg)
}
