package actor

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boomMessage struct{}

type crashOnceActor struct {
	started  *atomic.Int32
	crashed  *atomic.Bool
}

func (a *crashOnceActor) Receive(ctx Context) *ActorError {
	switch ctx.Message().(type) {
	case *Started:
		a.started.Add(1)
	case *boomMessage:
		if a.crashed.CompareAndSwap(false, true) {
			return Recoverable("boom")
		}
	}
	return nil
}

// A Recoverable failure restarts the actor in place: a fresh incarnation
// runs, observed here as a second Started hint.
func TestSupervisionRestartsActorOnRecoverableFailure(t *testing.T) {
	sys, err := NewSystem(WithSystemName("restart-test"))
	require.NoError(t, err)

	started := &atomic.Int32{}
	crashed := &atomic.Bool{}
	harness := sys.Root().p.(*actorCell)
	ref, err := harness.SpawnNamed(
		PropsFromProducer(func() Actor { return &crashOnceActor{started: started, crashed: crashed} }),
		"crasher",
	)
	require.NoError(t, err)

	ref.Tell(&boomMessage{})

	require.Eventually(t, func() bool { return started.Load() >= 2 }, time.Second, time.Millisecond)
	assert.True(t, crashed.Load())
}

type stashingActor struct {
	ready    *atomic.Bool
	stashed  chan struct{}
	received chan interface{}
}

func (a *stashingActor) Receive(ctx Context) *ActorError {
	switch ctx.Message().(type) {
	case *Started, *Restarting:
		return nil
	default:
		if !a.ready.Load() {
			ctx.Stash()
			a.ready.Store(true)
			a.stashed <- struct{}{}
			return nil
		}
		a.received <- ctx.Message()
	}
	return nil
}

// Stash defers a message by pushing it onto the per-cell stash; a restart
// replays stashed messages (the stash is a stack, so the most recently
// stashed comes first) ahead of whatever arrives afterward.
func TestStashReplaysOnRestart(t *testing.T) {
	sys, err := NewSystem(WithSystemName("stash-test"))
	require.NoError(t, err)

	stashed := make(chan struct{}, 1)
	received := make(chan interface{}, 4)
	ready := &atomic.Bool{}
	harness := sys.Root().p.(*actorCell)
	cellRef, err := harness.SpawnNamed(
		PropsFromProducer(func() Actor { return &stashingActor{ready: ready, stashed: stashed, received: received} }),
		"stasher",
	)
	require.NoError(t, err)

	cellRef.Tell("first")
	select {
	case <-stashed:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the message to be stashed")
	}

	cellRef.sendSystemMessage(restartMessage)
	cellRef.Tell("second")

	var seen []interface{}
	for len(seen) < 2 {
		select {
		case m := <-received:
			seen = append(seen, m)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for stashed replay")
		}
	}
	assert.Equal(t, []interface{}{"first", "second"}, seen)
}
