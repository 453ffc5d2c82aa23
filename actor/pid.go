package actor

import (
	"fmt"
	"sync/atomic"
)

// PID is the stable identity of an actor cell: a monotonic id plus the
// incarnation counter that distinguishes a restarted cell from its prior
// life (spec §3 Pid). PID is a small comparable value, safe as a map key.
type PID struct {
	ID          uint64
	Incarnation uint32
}

func (p PID) String() string {
	return fmt.Sprintf("%d#%d", p.ID, p.Incarnation)
}

// IsZero reports whether p is the zero PID (never allocated).
func (p PID) IsZero() bool { return p.ID == 0 }

// pidAllocator is the monotonic allocator referenced by spec §3 ("Created
// by monotonic allocator in SystemState").
type pidAllocator struct {
	next uint64
}

func (a *pidAllocator) allocate() uint64 {
	return atomic.AddUint64(&a.next, 1)
}
