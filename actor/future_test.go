package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingMessage struct{}
type pongMessage struct{}

type echoActor struct{}

func (echoActor) Receive(ctx Context) *ActorError {
	if _, ok := ctx.Message().(*pingMessage); ok {
		ctx.Respond(&pongMessage{})
	}
	return nil
}

// spec §8 scenario 6: ask(Ping) resolves Ready(Pong) once the actor replies.
func TestAskFutureResolvesOnReply(t *testing.T) {
	sys, err := NewSystem(WithSystemName("future-test"))
	require.NoError(t, err)

	harness := sys.Root().p.(*actorCell)
	echoRef, err := harness.SpawnNamed(PropsFromProducer(func() Actor { return echoActor{} }), "echo")
	require.NoError(t, err)

	f := newFuture(sys, time.Second)
	echoRef.Tell(&Envelope{Message: &pingMessage{}, Sender: f.Ref()})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := f.Wait(ctx)
	require.NoError(t, err)
	_, ok := result.(*pongMessage)
	assert.True(t, ok)
}

// A future that times out before any reply resolves with SendErrTimeout and
// completion is idempotent: a late reply after that is a no-op.
func TestAskFutureTimesOutAndIsIdempotent(t *testing.T) {
	sys, err := NewSystem(WithSystemName("future-timeout-test"))
	require.NoError(t, err)

	f := newFuture(sys, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = f.Wait(ctx)
	assert.Equal(t, SendErrTimeout, err)

	f.sendUserMessage(&pongMessage{})
	_, err = f.Wait(ctx)
	assert.Equal(t, SendErrTimeout, err, "late completion after timeout must not override the first result")
}
