package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopActor struct{}

func (noopActor) Receive(Context) *ActorError { return nil }

type spawnAndWatch struct {
	childRefs chan Ref
}

type harnessActor struct {
	terminated chan Ref
}

func (a *harnessActor) Receive(ctx Context) *ActorError {
	switch msg := ctx.Message().(type) {
	case *spawnAndWatch:
		child := ctx.Spawn(PropsFromProducer(func() Actor { return noopActor{} }))
		ctx.Watch(child)
		msg.childRefs <- child
	case *Terminated:
		a.terminated <- msg.Who
	}
	return nil
}

// spec §8 scenario 4: spawn child C; watch C; send C Stop; the watcher
// receives exactly one Terminated(C).
func TestDeathWatchDeliversTerminatedExactlyOnce(t *testing.T) {
	sys, err := NewSystem(WithSystemName("deathwatch-test"))
	require.NoError(t, err)

	terminated := make(chan Ref, 4)
	harness := sys.Root().p.(*actorCell)
	harnessRef, err := harness.SpawnNamed(
		PropsFromProducer(func() Actor { return &harnessActor{terminated: terminated} }),
		"harness",
	)
	require.NoError(t, err)

	childRefs := make(chan Ref, 1)
	harnessRef.Tell(&spawnAndWatch{childRefs: childRefs})

	var child Ref
	select {
	case child = <-childRefs:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for spawned child ref")
	}

	child.Stop()

	select {
	case who := <-terminated:
		assert.True(t, who.Equal(child))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Terminated notification")
	}

	select {
	case <-terminated:
		t.Fatal("received a second Terminated notification")
	case <-time.After(50 * time.Millisecond):
	}
}
