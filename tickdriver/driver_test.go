package tickdriver

import (
	"testing"
	"time"

	"github.com/asynkron/actorcore/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sender struct{ received []interface{} }

func (s *sender) Tell(message interface{}) { s.received = append(s.received, message) }

// ManualTest mode drives the scheduler deterministically: no wall clock, no
// background goroutine, just InjectAndDrive advancing tick-by-tick.
func TestManualDriverInjectAndDrive(t *testing.T) {
	sched := scheduler.NewScheduler(time.Millisecond, 0, 4)
	sched.Start()

	snd := &sender{}
	_, err := sched.ScheduleOnce(3*time.Millisecond, scheduler.Command{Target: snd, Message: "fire"})
	require.NoError(t, err)

	driver := NewManualDriver(sched)

	require.NoError(t, driver.InjectAndDrive(2))
	assert.Empty(t, snd.received)

	require.NoError(t, driver.InjectAndDrive(1))
	assert.Equal(t, []interface{}{"fire"}, snd.received)
	assert.Equal(t, scheduler.Tick(3), driver.CurrentTick())
}

func TestManualDriverRejectsInjectOnOtherModes(t *testing.T) {
	sched := scheduler.NewScheduler(time.Millisecond, 0, 4)
	sched.Start()
	driver := NewHardwareDriver(8, sched)

	err := driver.InjectAndDrive(1)
	assert.Equal(t, DriverErrManualNotEnabled, err)
}

// A hardware driver coalesces bursts of Pulse calls that outrun the executor
// goroutine rather than growing the backlog unboundedly: with a feed capacity
// of 2, fifty pulses made before the executor starts advance exactly 2 ticks.
func TestHardwareDriverCoalescesOverflow(t *testing.T) {
	sched := scheduler.NewScheduler(time.Millisecond, 0, 4)
	sched.Start()
	driver := NewHardwareDriver(2, sched)

	for i := 0; i < 50; i++ {
		driver.Pulse()
	}

	driver.Start()
	defer driver.Stop()

	assert.Eventually(t, func() bool { return driver.CurrentTick() == 2 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return driver.CurrentTick() > 2 }, 20*time.Millisecond, time.Millisecond)
}
