package scheduler

import (
	"sync"

	"github.com/emirpasic/gods/trees/binaryheap"
)

// wheelEntry is the (deadline_tick, insertion_seq, entry) tuple spec §4.M
// names explicitly; insertion_seq breaks ties between entries sharing a
// deadline tick so collection order is deterministic.
type wheelEntry struct {
	handle   HandleID
	deadline Tick
	seq      uint64
	command  Command
}

func entryLess(a, b interface{}) int {
	ea, eb := a.(*wheelEntry), b.(*wheelEntry)
	switch {
	case ea.deadline < eb.deadline:
		return -1
	case ea.deadline > eb.deadline:
		return 1
	case ea.seq < eb.seq:
		return -1
	case ea.seq > eb.seq:
		return 1
	default:
		return 0
	}
}

// TimerWheel is the min-heap-backed core of spec §4.M: a capacity-bounded
// priority queue of pending fires plus lazy cancellation via a tombstone
// set, so Cancel is O(log n) amortized instead of requiring a heap-wide scan.
type TimerWheel struct {
	mu sync.Mutex

	resolution Resolution
	capacity   int

	heap        *binaryheap.Heap
	cancelled   map[HandleID]struct{}
	live        map[HandleID]struct{}
	activeCount int

	nextHandle HandleID
	nextSeq    uint64
}

// Resolution is the wheel's tick granularity. NewTimerWheel leaves it zero
// and Schedule does not check it, so TimerWheelErrResolutionMismatch is never
// returned.
type Resolution struct {
	TickDuration Tick
}

// NewTimerWheel builds an empty wheel with room for capacity live entries.
func NewTimerWheel(capacity int) *TimerWheel {
	return &TimerWheel{
		capacity:  capacity,
		heap:      binaryheap.NewWith(entryLess),
		cancelled: map[HandleID]struct{}{},
		live:      map[HandleID]struct{}{},
	}
}

// Schedule inserts command to fire at deadline, returning its handle or
// TimerWheelErrCapacityExceeded once activeCount reaches capacity.
func (w *TimerWheel) Schedule(deadline Tick, command Command) (HandleID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capacity > 0 && w.activeCount >= w.capacity {
		return 0, TimerWheelErrCapacityExceeded
	}

	w.nextHandle++
	w.nextSeq++
	handle := w.nextHandle
	w.heap.Push(&wheelEntry{handle: handle, deadline: deadline, seq: w.nextSeq, command: command})
	w.live[handle] = struct{}{}
	w.activeCount++
	return handle, nil
}

// Cancel marks handle as dead. The entry is skipped lazily when it would
// otherwise fire; it is never removed from the heap directly. Returns false
// if handle is unknown (never scheduled, already fired, or already
// cancelled) — only a handle still present in the live set can be
// cancelled.
func (w *TimerWheel) Cancel(handle HandleID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.live[handle]; !ok {
		return false
	}
	delete(w.live, handle)
	w.cancelled[handle] = struct{}{}
	w.activeCount--
	return true
}

// CollectExpired pops every entry whose deadline is <= now, strictly in
// (deadline, seq) order, discarding cancelled ones along the way.
func (w *TimerWheel) CollectExpired(now Tick) []FiredEntry {
	w.mu.Lock()
	defer w.mu.Unlock()

	var fired []FiredEntry
	for {
		top, ok := w.heap.Peek()
		if !ok {
			break
		}
		entry := top.(*wheelEntry)
		if entry.deadline > now {
			break
		}
		w.heap.Pop()

		if _, dead := w.cancelled[entry.handle]; dead {
			delete(w.cancelled, entry.handle)
			continue
		}
		delete(w.live, entry.handle)
		w.activeCount--
		fired = append(fired, FiredEntry{Handle: entry.handle, Deadline: entry.deadline, Command: entry.command})
	}
	return fired
}

// ActiveCount reports the number of live (non-cancelled, not-yet-fired)
// entries, the count Schedule checks against capacity.
func (w *TimerWheel) ActiveCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeCount
}

// FiredEntry is one wheel entry that reached its deadline.
type FiredEntry struct {
	Handle   HandleID
	Deadline Tick
	Command  Command
}
