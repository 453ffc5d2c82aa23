package eventstream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asynkron/actorcore/eventstream"
)

func TestPublishBroadcastsToSubscribers(t *testing.T) {
	s := eventstream.New(0)
	var got []interface{}
	s.Subscribe(func(e interface{}) { got = append(got, e) })

	s.Publish("a")
	s.Publish("b")

	assert.Equal(t, []interface{}{"a", "b"}, got)
}

func TestSubscribeReplaysBufferedEventsInOrder(t *testing.T) {
	s := eventstream.New(2)
	s.Publish(1)
	s.Publish(2)
	s.Publish(3) // capacity 2: oldest (1) drops

	var replayed []interface{}
	s.Subscribe(func(e interface{}) { replayed = append(replayed, e) })

	assert.Equal(t, []interface{}{2, 3}, replayed)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := eventstream.New(0)
	count := 0
	sub := s.Subscribe(func(e interface{}) { count++ })

	s.Publish("x")
	sub.Unsubscribe()
	s.Publish("y")

	assert.Equal(t, 1, count)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	s := eventstream.New(0)
	sub := s.Subscribe(func(e interface{}) {})
	sub.Unsubscribe()
	assert.NotPanics(t, func() { sub.Unsubscribe() })
}
