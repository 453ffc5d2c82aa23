package actor

import (
	"sync/atomic"
	"time"
)

// systemQueueNode is a single push-stack/pending-list node (spec §4.D).
type systemQueueNode struct {
	value      SystemMessage
	enqueuedAt time.Time
	next       *systemQueueNode
}

// systemQueue is the lock-free FIFO used for system messages: a Treiber
// push-stack drained into a reversed pending-list so pops observe FIFO
// order across producers, wait-free on push and lock-free on pop.
type systemQueue struct {
	top     atomic.Pointer[systemQueueNode]
	pending atomic.Pointer[systemQueueNode]
}

// push is wait-free: CAS-loop onto the head of the push-stack. enqueuedAt is
// stamped by the caller so the dispatcher can later measure wait-to-run
// latency (spec §4.E starvation tracking).
func (q *systemQueue) push(msg SystemMessage, enqueuedAt time.Time) {
	node := &systemQueueNode{value: msg, enqueuedAt: enqueuedAt}
	for {
		old := q.top.Load()
		node.next = old
		if q.top.CompareAndSwap(old, node) {
			return
		}
	}
}

// pop is lock-free: serve from the pending (already-reversed) list first;
// once it is empty, swap the whole push-stack out, reverse it, and install
// it as the new pending list via a single CAS. If that install loses the
// race to a concurrent pop, the reversed nodes are pushed back (preserving
// their relative order) and the attempt retries.
func (q *systemQueue) pop() (SystemMessage, time.Time, bool) {
	for {
		if head := q.pending.Load(); head != nil {
			if q.pending.CompareAndSwap(head, head.next) {
				return head.value, head.enqueuedAt, true
			}
			continue
		}

		old := q.top.Load()
		if old == nil {
			return nil, time.Time{}, false
		}
		if !q.top.CompareAndSwap(old, nil) {
			continue
		}

		reversed := reverseSystemQueueNodes(old)
		if q.pending.CompareAndSwap(nil, reversed) {
			continue
		}
		// Lost the install race: another pop already populated pending
		// (it must have drained the stack itself in the meantime via a
		// fresh push+pop cycle). Re-push our reversed chain, preserving
		// FIFO order, and retry from the top.
		requeueSystemQueueNodes(q, reversed)
	}
}

// isEmpty is a best-effort, non-linearizable hint used for instrumentation
// only; callers needing a correctness guarantee must use pop().
func (q *systemQueue) isEmpty() bool {
	return q.pending.Load() == nil && q.top.Load() == nil
}

func reverseSystemQueueNodes(head *systemQueueNode) *systemQueueNode {
	var prev *systemQueueNode
	for head != nil {
		next := head.next
		head.next = prev
		prev = head
		head = next
	}
	return prev
}

// requeueSystemQueueNodes re-pushes a FIFO-ordered chain one at a time so
// the nodes end up in the same relative order once later reversed again.
func requeueSystemQueueNodes(q *systemQueue, head *systemQueueNode) {
	for head != nil {
		next := head.next
		q.push(head.value, head.enqueuedAt)
		head = next
	}
}
