package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	received []interface{}
}

func (r *recordingSender) Tell(message interface{}) { r.received = append(r.received, message) }

// spec §8 scenario 5: a cancelled one-shot timer never fires, even once its
// deadline tick has passed.
func TestScheduleOnceCancelledNeverFires(t *testing.T) {
	s := NewScheduler(time.Millisecond, 0, 4)
	s.Start()

	sender := &recordingSender{}
	handle, err := s.ScheduleOnce(5*time.Millisecond, Command{Target: sender, Message: "boom"})
	require.NoError(t, err)

	assert.True(t, s.Cancel(handle))
	assert.False(t, s.Cancel(handle), "cancelling twice reports the second as a no-op")

	s.DeliverFired(Tick(100))
	assert.Empty(t, sender.received)
}

func TestScheduleOnceFiresExactlyOnce(t *testing.T) {
	s := NewScheduler(time.Millisecond, 0, 4)
	s.Start()

	sender := &recordingSender{}
	_, err := s.ScheduleOnce(5*time.Millisecond, Command{Target: sender, Message: "ping"})
	require.NoError(t, err)

	s.DeliverFired(Tick(3))
	assert.Empty(t, sender.received)

	s.DeliverFired(Tick(5))
	assert.Equal(t, []interface{}{"ping"}, sender.received)

	s.DeliverFired(Tick(10))
	assert.Equal(t, []interface{}{"ping"}, sender.received, "a one-shot entry must not re-fire")
}

func TestScheduleAtFixedRateRearms(t *testing.T) {
	s := NewScheduler(time.Millisecond, 0, 4)
	s.Start()

	sender := &recordingSender{}
	_, err := s.ScheduleAtFixedRate(time.Millisecond, time.Millisecond, 4, Command{Target: sender, Message: "tick"})
	require.NoError(t, err)

	for tick := Tick(1); tick <= 4; tick++ {
		s.DeliverFired(tick)
	}
	assert.Len(t, sender.received, 4)
}

// A consumer that stalls for far longer than backlog_limit periods collapses
// the missed firings into a single resumption instead of bursting one
// delivery per missed tick (spec §4.M burst_threshold).
func TestScheduleAtFixedRateClampsBacklog(t *testing.T) {
	s := NewScheduler(time.Millisecond, 0, 2)
	s.Start()

	sender := &recordingSender{}
	_, err := s.ScheduleAtFixedRate(time.Millisecond, time.Millisecond, 2, Command{Target: sender, Message: "tick"})
	require.NoError(t, err)

	s.DeliverFired(Tick(1))
	assert.Len(t, sender.received, 1)

	s.DeliverFired(Tick(1000))
	assert.Len(t, sender.received, 2, "a stalled consumer should see one collapsed resumption, not a backlog burst")
}

func TestScheduleCapacityExceeded(t *testing.T) {
	s := NewScheduler(time.Millisecond, 1, 4)
	s.Start()

	sender := &recordingSender{}
	_, err := s.ScheduleOnce(time.Millisecond, Command{Target: sender, Message: "a"})
	require.NoError(t, err)

	_, err = s.ScheduleOnce(time.Millisecond, Command{Target: sender, Message: "b"})
	assert.Equal(t, SchedulerErrCapacityExceeded, err)
}
