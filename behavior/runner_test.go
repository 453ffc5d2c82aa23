package behavior

import (
	"testing"
	"time"

	"github.com/asynkron/actorcore/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Bump struct{}
type GetCount struct{ ReplyTo chan int }

// counterBehavior is the typed counterpart of a trivial counter actor:
// Bump increments, GetCount replies with the current total, anything else
// is unhandled.
func counterBehavior(count int) Behavior[any] {
	return ReceiveMessage(func(ctx TypedContext[any], msg any) (Behavior[any], *actor.ActorError) {
		switch m := msg.(type) {
		case *Bump:
			return counterBehavior(count + 1), nil
		case *GetCount:
			m.ReplyTo <- count
			return Same[any](), nil
		default:
			return Unhandled[any](), nil
		}
	})
}

func TestRunnerAppliesActiveTransitionsAndReplies(t *testing.T) {
	sys, err := NewTestSystem(t)
	require.NoError(t, err)

	ref := sys.Spawn(Props(func() Behavior[any] { return counterBehavior(0) }))

	ref.Tell(&Bump{})
	ref.Tell(&Bump{})

	reply := make(chan int, 1)
	ref.Tell(&GetCount{ReplyTo: reply})

	select {
	case n := <-reply:
		assert.Equal(t, 2, n)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for GetCount reply")
	}
}

// An Empty behavior keeps reporting every later message as unhandled
// instead of reverting, unlike Unhandled which would keep whatever behavior
// preceded it.
func TestRunnerEmptyStaysEmpty(t *testing.T) {
	sys, err := NewTestSystem(t)
	require.NoError(t, err)

	seen := make(chan string, 4)
	behaviorFn := func() Behavior[string] {
		return ReceiveMessage(func(ctx TypedContext[string], msg string) (Behavior[string], *actor.ActorError) {
			seen <- msg
			return Empty[string](), nil
		})
	}
	ref := sys.Spawn(Props(behaviorFn))

	ref.Tell("go-empty")

	select {
	case got := <-seen:
		assert.Equal(t, "go-empty", got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first message")
	}

	ref.Tell("after-empty")
	select {
	case <-seen:
		t.Fatal("an Empty behavior must not re-invoke the original message handler")
	case <-time.After(50 * time.Millisecond):
	}
}

// NewTestSystem builds a System scoped to the running test.
func NewTestSystem(t *testing.T) (*actor.System, error) {
	t.Helper()
	return actor.NewSystem(actor.WithSystemName("behavior-test-" + t.Name()))
}
