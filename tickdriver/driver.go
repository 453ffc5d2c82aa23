package tickdriver

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/asynkron/actorcore/scheduler"
)

// Mode selects how a Driver's pulses are produced (spec §4.N).
type Mode int

const (
	// Auto drives itself off a time.Ticker at the configured resolution.
	Auto Mode = iota
	// Hardware expects an external caller to invoke Pulse, approximating the
	// spec's C-ABI function-pointer handler installed from an ISR context;
	// Go has no equivalent of no_std interrupt context, so Pulse is just a
	// plain exported method any external clock source can call.
	Hardware
	// ManualTest only accepts pulses via InjectAndDrive, for deterministic
	// tests that need to advance time without a real clock.
	ManualTest
)

// TickExecutor is what a Driver drives each accumulated pulse into; *scheduler.Scheduler
// satisfies it via DeliverFired.
type TickExecutor interface {
	DeliverFired(now scheduler.Tick)
}

// Driver is spec component N: a pulse source (TickPulseSource) feeding a
// bounded TickFeed, drained by a single executor goroutine that advances the
// scheduler's tick counter and delivers whatever fired.
type Driver struct {
	mode       Mode
	resolution time.Duration
	feed       *TickFeed
	executor   TickExecutor

	counter atomic.Uint64
	stopCh  chan struct{}
	wg      sync.WaitGroup
	started atomic.Bool
}

// NewAutoDriver builds a self-pulsing driver that ticks every resolution.
func NewAutoDriver(resolution time.Duration, bufferQuota int, executor TickExecutor) *Driver {
	return &Driver{mode: Auto, resolution: resolution, feed: NewTickFeed(bufferQuota), executor: executor, stopCh: make(chan struct{})}
}

// NewHardwareDriver builds a driver pulsed externally via Pulse.
func NewHardwareDriver(bufferQuota int, executor TickExecutor) *Driver {
	return &Driver{mode: Hardware, feed: NewTickFeed(bufferQuota), executor: executor, stopCh: make(chan struct{})}
}

// NewManualDriver builds a driver that only advances via InjectAndDrive,
// synchronously and without any background goroutine.
func NewManualDriver(executor TickExecutor) *Driver {
	return &Driver{mode: ManualTest, executor: executor}
}

// Mode reports which pulse source this driver was built with.
func (d *Driver) Mode() Mode { return d.mode }

// Pulse records one elapsed tick; only meaningful in Hardware mode, but
// harmless to call in Auto mode too (e.g. an auxiliary clock source).
func (d *Driver) Pulse() {
	if d.feed != nil {
		d.feed.Push()
	}
}

// Start launches the background ticker (Auto) and/or the executor goroutine
// (Auto/Hardware). ManualTest drivers have nothing to start.
func (d *Driver) Start() {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	if d.mode == ManualTest {
		return
	}

	d.wg.Add(1)
	go d.runExecutor()

	if d.mode == Auto {
		d.wg.Add(1)
		go d.runTicker()
	}
}

// Stop halts the background goroutines and waits for them to exit.
func (d *Driver) Stop() {
	if !d.started.CompareAndSwap(true, false) {
		return
	}
	if d.mode == ManualTest {
		return
	}
	close(d.stopCh)
	d.wg.Wait()
}

func (d *Driver) runTicker() {
	defer d.wg.Done()
	ticker := time.NewTicker(d.resolution)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.feed.Push()
		case <-d.stopCh:
			return
		}
	}
}

func (d *Driver) runExecutor() {
	defer d.wg.Done()
	for {
		select {
		case <-d.feed.Wake():
			n := d.feed.Drain()
			for i := 0; i < n; i++ {
				now := d.counter.Add(1)
				d.executor.DeliverFired(scheduler.Tick(now))
			}
		case <-d.stopCh:
			return
		}
	}
}

// InjectAndDrive synchronously advances n ticks and drives the executor
// inline, the deterministic replacement for a real clock in tests. Returns
// DriverErrManualNotEnabled on any driver not built with NewManualDriver.
func (d *Driver) InjectAndDrive(n int) error {
	if d.mode != ManualTest {
		return DriverErrManualNotEnabled
	}
	for i := 0; i < n; i++ {
		now := d.counter.Add(1)
		d.executor.DeliverFired(scheduler.Tick(now))
	}
	return nil
}

// CurrentTick reports the most recent tick delivered to the executor.
func (d *Driver) CurrentTick() scheduler.Tick { return scheduler.Tick(d.counter.Load()) }
