package actor

import "sync/atomic"

// scheduleFlag is the {Idle, Running, Pending} three-state atomic spec §3
// requires of the Mailbox, and which the dispatcher's executor runner reuses
// to coalesce re-entrant submissions without ever losing a wakeup.
type scheduleFlag struct {
	state atomic.Int32
}

const (
	flagIdle int32 = iota
	flagRunning
	flagPending
)

// request returns true exactly once (Idle -> Running) until release() lets
// the flag go back to Idle.
func (f *scheduleFlag) request() bool {
	for {
		switch f.state.Load() {
		case flagIdle:
			if f.state.CompareAndSwap(flagIdle, flagRunning) {
				return true
			}
		case flagRunning:
			if f.state.CompareAndSwap(flagRunning, flagPending) {
				return false
			}
		case flagPending:
			return false
		}
	}
}

// release is called by the current owner once it believes it has drained
// all available work. If a requester marked Pending meanwhile, release
// reclaims Running and tells the caller to keep draining; otherwise it goes
// Idle and tells the caller to stop.
func (f *scheduleFlag) release() (shouldContinue bool) {
	for {
		if f.state.CompareAndSwap(flagPending, flagRunning) {
			return true
		}
		if f.state.CompareAndSwap(flagRunning, flagIdle) {
			return false
		}
	}
}
