package actor

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/asynkron/actorcore/eventstream"
)

// deadLetterProcess is the well-known process a Ref points at once its real
// target is gone (spec §4.F / component "DeadLetters"). Sending to it never
// blocks and never fails; it only records and republishes.
type deadLetterProcess struct {
	sys *System
}

func (p *deadLetterProcess) sendUserMessage(messageOrEnvelope interface{}) {
	recordDeadLetter(p.sys, messageOrEnvelope, DeadLetterRecipientUnavailable, Ref{})
}

func (p *deadLetterProcess) sendSystemMessage(msg SystemMessage) {
	recordDeadLetter(p.sys, msg, DeadLetterRecipientUnavailable, Ref{})
}

func (p *deadLetterProcess) stop(Ref) {}

// deadLetters is the bounded recent-history view spec §7's
// "DeadLetters: recent-history query" external interface requires, backed
// by an LRU so a storm of undeliverable messages can't grow unbounded.
type deadLetters struct {
	stream *eventstream.Stream
	recent *lru.Cache[uint64, DeadLetterEvent]
	seq    uint64
}

func newDeadLetters(stream *eventstream.Stream, capacity int) *deadLetters {
	if capacity <= 0 {
		capacity = 256
	}
	cache, err := lru.New[uint64, DeadLetterEvent](capacity)
	if err != nil {
		// Only non-positive sizes make New fail, and capacity is normalized
		// above, so this path is unreachable in practice.
		panic(err)
	}
	return &deadLetters{stream: stream, recent: cache}
}

func (d *deadLetters) record(evt DeadLetterEvent, now time.Time) {
	evt.Timestamp = now
	d.seq++
	d.recent.Add(d.seq, evt)
	d.stream.Publish(evt)
}

// Recent returns up to n of the most recently recorded dead letters, oldest
// first, satisfying the "recent-history query" surface without exposing the
// LRU's internal ordering.
func (d *deadLetters) Recent(n int) []DeadLetterEvent {
	keys := d.recent.Keys()
	if n > 0 && n < len(keys) {
		keys = keys[len(keys)-n:]
	}
	out := make([]DeadLetterEvent, 0, len(keys))
	for _, k := range keys {
		if evt, ok := d.recent.Peek(k); ok {
			out = append(out, evt)
		}
	}
	return out
}

// recordDeadLetter is the single funnel every undeliverable send passes
// through (Ref.Tell on a null ref, a stopped process, etc).
func recordDeadLetter(sys *System, message interface{}, reason DeadLetterReason, recipient Ref) {
	if sys == nil {
		return
	}
	sys.deadL.record(DeadLetterEvent{
		Recipient: recipient,
		Message:   message,
		Reason:    reason,
	}, sys.toolbox.Now())
}
