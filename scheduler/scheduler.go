package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// TickConsumer is a tick sink that returns the fired Commands instead of
// delivering them: one call per elapsed tick. *Scheduler satisfies it; the
// tickdriver package drives its own TickExecutor (DeliverFired) instead.
type TickConsumer interface {
	Drive(now Tick) []Command
}

// Scheduler is spec component M: a TimerWheel plus the fixed-rate/
// fixed-delay re-scheduling rules layered on top of its one-shot entries.
// It never sends anything on its own goroutine; Drive is called by whatever
// pumps ticks (the tickdriver package) and returns the Commands to deliver,
// which the caller (or DeliverFired) then Tells.
type Scheduler struct {
	mu sync.Mutex

	wheel        *TimerWheel
	tickDuration time.Duration
	defaultBurst int

	recur map[HandleID]*recurrence

	currentTick atomic.Uint64
	running     atomic.Bool
}

// NewScheduler builds a Scheduler whose wheel ticks every tickDuration and
// can hold up to capacity live entries at once (0 = unbounded). defaultBurst
// is the backlog-limit applied to fixed-rate entries that don't specify
// their own (spec §4.M burst_threshold).
func NewScheduler(tickDuration time.Duration, capacity int, defaultBurst int) *Scheduler {
	if defaultBurst <= 0 {
		defaultBurst = 1
	}
	return &Scheduler{
		wheel:        NewTimerWheel(capacity),
		tickDuration: tickDuration,
		defaultBurst: defaultBurst,
		recur:        map[HandleID]*recurrence{},
	}
}

// Start marks the scheduler ready to accept Schedule calls and be driven.
// Satisfies the Startable contract the actor System holds its scheduler
// through.
func (s *Scheduler) Start() { s.running.Store(true) }

// Stop marks the scheduler no longer ready; Drive becomes a no-op.
func (s *Scheduler) Stop() { s.running.Store(false) }

func (s *Scheduler) ticksFor(d time.Duration) Tick {
	if s.tickDuration <= 0 {
		return 0
	}
	n := d / s.tickDuration
	if d%s.tickDuration != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return Tick(n)
}

// Schedule arms req, returning the handle Cancel later accepts.
func (s *Scheduler) Schedule(req ScheduleRequest) (HandleID, error) {
	if !s.running.Load() {
		return 0, SchedulerErrNotReady
	}
	if s.tickDuration <= 0 {
		return 0, SchedulerErrInvalidDuration
	}
	if req.Kind != Once && req.Interval <= 0 {
		return 0, SchedulerErrInvalidDuration
	}

	deadline := Tick(s.currentTick.Load()) + s.ticksFor(req.Delay)
	handle, err := s.wheel.Schedule(deadline, req.Command)
	if err != nil {
		return 0, translateWheelErr(err)
	}

	if req.Kind != Once {
		s.mu.Lock()
		s.recur[handle] = &recurrence{
			kind:         req.Kind,
			interval:     req.Interval,
			backlogLimit: req.BacklogLimit,
			nextDeadline: deadline,
		}
		s.mu.Unlock()
	}
	return handle, nil
}

// ScheduleOnce is the common case: fire command once after delay.
func (s *Scheduler) ScheduleOnce(delay time.Duration, command Command) (HandleID, error) {
	return s.Schedule(ScheduleRequest{Command: command, Delay: delay, Kind: Once})
}

// ScheduleAtFixedRate arms command to fire every interval, first firing
// after delay, clamping catch-up bursts to backlogLimit missed periods.
func (s *Scheduler) ScheduleAtFixedRate(delay, interval time.Duration, backlogLimit int, command Command) (HandleID, error) {
	return s.Schedule(ScheduleRequest{Command: command, Delay: delay, Kind: FixedRate, Interval: interval, BacklogLimit: backlogLimit})
}

// ScheduleWithFixedDelay arms command to fire interval after each firing is
// collected, first firing after delay.
func (s *Scheduler) ScheduleWithFixedDelay(delay, interval time.Duration, command Command) (HandleID, error) {
	return s.Schedule(ScheduleRequest{Command: command, Delay: delay, Kind: FixedDelay, Interval: interval})
}

// Cancel removes handle from both the wheel and the recurrence table.
func (s *Scheduler) Cancel(handle HandleID) bool {
	s.mu.Lock()
	delete(s.recur, handle)
	s.mu.Unlock()
	return s.wheel.Cancel(handle)
}

// Drive advances the scheduler's notion of "now" to now and returns every
// Command whose deadline elapsed, re-arming fixed-rate/fixed-delay entries
// along the way. The caller is responsible for actually delivering the
// returned Commands (DeliverFired does this for the common case).
func (s *Scheduler) Drive(now Tick) []Command {
	if !s.running.Load() {
		return nil
	}
	s.currentTick.Store(uint64(now))

	fired := s.wheel.CollectExpired(now)
	if len(fired) == 0 {
		return nil
	}

	commands := make([]Command, 0, len(fired))
	s.mu.Lock()
	for _, f := range fired {
		commands = append(commands, f.Command)
		rec, ok := s.recur[f.Handle]
		if !ok {
			continue
		}
		delete(s.recur, f.Handle)

		var next Tick
		if rec.kind == FixedRate {
			next = s.rearmFixedRate(rec, f.Deadline, now)
		} else {
			next = now + s.ticksFor(rec.interval)
		}

		newHandle, err := s.wheel.Schedule(next, f.Command)
		if err == nil {
			rec.nextDeadline = next
			s.recur[newHandle] = rec
		}
	}
	s.mu.Unlock()
	return commands
}

// rearmFixedRate computes the next deadline for a fixed-rate recurrence,
// collapsing any backlog beyond backlogLimit missed periods into a single
// resumption at now+interval rather than bursting every missed tick (spec
// §4.M burst_threshold).
func (s *Scheduler) rearmFixedRate(rec *recurrence, firedDeadline, now Tick) Tick {
	interval := s.ticksFor(rec.interval)
	next := firedDeadline + interval

	limit := rec.backlogLimit
	if limit <= 0 {
		limit = s.defaultBurst
	}
	maxBehind := interval * Tick(limit)
	if now > next+maxBehind {
		return now + interval
	}
	return next
}

// DeliverFired drives the scheduler and Tells every fired Command's Target,
// the convenience path a tick driver uses when it doesn't need to inspect
// the fired batch itself.
func (s *Scheduler) DeliverFired(now Tick) {
	for _, cmd := range s.Drive(now) {
		cmd.Target.Tell(cmd.Message)
	}
}

func translateWheelErr(err error) error {
	switch err {
	case TimerWheelErrCapacityExceeded:
		return SchedulerErrCapacityExceeded
	case TimerWheelErrResolutionMismatch:
		return SchedulerErrResolutionMismatch
	default:
		return err
	}
}
