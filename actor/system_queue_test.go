package actor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemQueueFIFOSingleProducer(t *testing.T) {
	q := &systemQueue{}
	q.push(&Stop{}, time.Time{})
	q.push(&SuspendMailbox{}, time.Time{})
	q.push(&ResumeMailbox{}, time.Time{})

	first, _, ok := q.pop()
	assert.True(t, ok)
	_, isStop := first.(*Stop)
	assert.True(t, isStop)

	second, _, _ := q.pop()
	_, isSuspend := second.(*SuspendMailbox)
	assert.True(t, isSuspend)

	third, _, _ := q.pop()
	_, isResume := third.(*ResumeMailbox)
	assert.True(t, isResume)

	_, _, ok = q.pop()
	assert.False(t, ok)
}

func TestSystemQueueEmptyPopReturnsFalse(t *testing.T) {
	q := &systemQueue{}
	_, _, ok := q.pop()
	assert.False(t, ok)
}

func TestSystemQueueFIFOAcrossConcurrentProducers(t *testing.T) {
	q := &systemQueue{}
	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.push(&Failure{Message: p*perProducer + i}, time.Time{})
			}
		}(p)
	}
	wg.Wait()

	seen := map[int]bool{}
	lastIndex := map[int]int{}
	count := 0
	for {
		v, _, ok := q.pop()
		if !ok {
			break
		}
		f := v.(*Failure)
		id := f.Message.(int)
		assert.False(t, seen[id], "duplicate delivery of %d", id)
		seen[id] = true
		producer, index := id/perProducer, id%perProducer
		if prev, ok := lastIndex[producer]; ok {
			assert.Less(t, prev, index, "producer %d delivered out of order", producer)
		}
		lastIndex[producer] = index
		count++
	}
	assert.Equal(t, producers*perProducer, count)
}
