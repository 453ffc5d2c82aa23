// Package eventstream implements the generic pub/sub event bus component
// (spec component K): a dynamic subscriber list plus a bounded ring of past
// events replayed to new subscribers in insertion order. It carries no
// knowledge of actor types — actorcore's concrete event shapes (lifecycle,
// dead letter, mailbox pressure, ...) are defined by the actor package and
// published as plain interface{} values.
package eventstream

import (
	"github.com/asynkron/actorcore/toolbox"
)

// Subscription is a handle returned by Subscribe; call Unsubscribe to stop
// receiving events.
type Subscription struct {
	id     uint64
	stream *Stream
}

// Unsubscribe removes the subscriber. Idempotent.
func (s *Subscription) Unsubscribe() {
	s.stream.unsubscribe(s.id)
}

type subscriber struct {
	id     uint64
	handle func(event interface{})
}

// Stream is a bounded-replay pub/sub bus.
type Stream struct {
	mu          toolbox.RWMutex
	subscribers []subscriber
	ring        []interface{}
	ringCap     int
	ringPos     int
	ringLen     int
	nextID      uint64
}

// New creates a Stream whose replay ring holds up to replayCapacity past
// events. replayCapacity <= 0 disables replay (subscribers only see events
// published after they subscribe).
func New(replayCapacity int) *Stream {
	return NewWithToolbox(replayCapacity, toolbox.Default)
}

// NewWithToolbox is New with an explicit RuntimeToolbox (spec component Q).
func NewWithToolbox(replayCapacity int, tb toolbox.RWMutexFamily) *Stream {
	if replayCapacity < 0 {
		replayCapacity = 0
	}
	return &Stream{
		mu:      tb.NewRWMutex(),
		ring:    make([]interface{}, replayCapacity),
		ringCap: replayCapacity,
	}
}

// Subscribe registers handle and immediately replays buffered events, in
// insertion order, on the calling goroutine before returning.
func (s *Stream) Subscribe(handle func(event interface{})) *Subscription {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subscribers = append(s.subscribers, subscriber{id: id, handle: handle})
	replay := s.snapshotLocked()
	s.mu.Unlock()

	for _, evt := range replay {
		handle(evt)
	}
	return &Subscription{id: id, stream: s}
}

func (s *Stream) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subscribers {
		if sub.id == id {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			return
		}
	}
}

// Publish snapshots the subscriber list under the read lock, calls every
// handler after releasing it, then appends event to the replay ring (oldest
// drops) under the exclusive lock.
func (s *Stream) Publish(event interface{}) {
	s.mu.RLock()
	handlers := make([]func(interface{}), len(s.subscribers))
	for i, sub := range s.subscribers {
		handlers[i] = sub.handle
	}
	s.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}

	if s.ringCap == 0 {
		return
	}
	s.mu.Lock()
	s.ring[s.ringPos] = event
	s.ringPos = (s.ringPos + 1) % s.ringCap
	if s.ringLen < s.ringCap {
		s.ringLen++
	}
	s.mu.Unlock()
}

// snapshotLocked returns buffered events in insertion order. Caller holds s.mu.
func (s *Stream) snapshotLocked() []interface{} {
	if s.ringLen == 0 {
		return nil
	}
	out := make([]interface{}, s.ringLen)
	start := (s.ringPos - s.ringLen + s.ringCap) % s.ringCap
	for i := 0; i < s.ringLen; i++ {
		out[i] = s.ring[(start+i)%s.ringCap]
	}
	return out
}

// SubscriberCount reports the current number of live subscriptions, mostly
// useful for tests and diagnostics extensions.
func (s *Stream) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
