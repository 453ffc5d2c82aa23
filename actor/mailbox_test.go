package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailboxSuspendedScenario(t *testing.T) {
	// spec §8 scenario 1.
	m := NewMailbox(MailboxPolicy{}, nil, nil)

	_, err := m.enqueueUser("u1")
	require.NoError(t, err)

	m.suspend()
	require.NoError(t, m.enqueueSystem(&Stop{}))

	msg, ok := m.dequeue()
	require.True(t, ok)
	assert.True(t, func() bool { _, isStop := msg.System.(*Stop); return isStop }())

	_, ok = m.dequeue()
	assert.False(t, ok, "suspended mailbox yields no user messages")

	m.resume()
	msg, ok = m.dequeue()
	require.True(t, ok)
	assert.Equal(t, "u1", msg.User)
}

func TestMailboxDropOldestScenario(t *testing.T) {
	// spec §8 scenario 2.
	m := NewMailbox(MailboxPolicy{Capacity: 2, Overflow: OverflowDropOldest}, nil, nil)

	for _, v := range []int{10, 20, 30} {
		_, err := m.enqueueUser(v)
		require.NoError(t, err)
	}

	msg1, ok := m.dequeue()
	require.True(t, ok)
	assert.Equal(t, 20, msg1.User)

	msg2, ok := m.dequeue()
	require.True(t, ok)
	assert.Equal(t, 30, msg2.User)
}

func TestMailboxDropNewestRejectsWhenFull(t *testing.T) {
	m := NewMailbox(MailboxPolicy{Capacity: 1, Overflow: OverflowDropNewest}, nil, nil)
	_, err := m.enqueueUser("first")
	require.NoError(t, err)

	_, err = m.enqueueUser("second")
	assert.Equal(t, SendErrMailboxFull, err)

	msg, ok := m.dequeue()
	require.True(t, ok)
	assert.Equal(t, "first", msg.User)
}

func TestMailboxGrowNeverRejects(t *testing.T) {
	m := NewMailbox(MailboxPolicy{Capacity: 1, Overflow: OverflowGrow}, nil, nil)
	for i := 0; i < 10; i++ {
		_, err := m.enqueueUser(i)
		require.NoError(t, err)
	}
	for i := 0; i < 10; i++ {
		msg, ok := m.dequeue()
		require.True(t, ok)
		assert.Equal(t, i, msg.User)
	}
}

func TestMailboxBlockProducesPendingAndResolvesOnDequeue(t *testing.T) {
	m := NewMailbox(MailboxPolicy{Capacity: 1, Overflow: OverflowBlock}, nil, nil)
	_, err := m.enqueueUser("first")
	require.NoError(t, err)

	outcome, err := m.enqueueUser("second")
	require.NoError(t, err)
	require.True(t, outcome.IsPending())

	msg, ok := m.dequeue() // frees the slot and should serve the waiter
	require.True(t, ok)
	assert.Equal(t, "first", msg.User)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, outcome.Wait.Wait(ctx))

	msg, ok = m.dequeue()
	require.True(t, ok)
	assert.Equal(t, "second", msg.User)
}

func TestMailboxBlockWaitCancellationDropsMessage(t *testing.T) {
	m := NewMailbox(MailboxPolicy{Capacity: 1, Overflow: OverflowBlock}, nil, nil)
	_, err := m.enqueueUser("first")
	require.NoError(t, err)

	outcome, err := m.enqueueUser("second")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = outcome.Wait.Wait(ctx)
	assert.Equal(t, SendErrTimeout, err)

	msg, ok := m.dequeue()
	require.True(t, ok)
	assert.Equal(t, "first", msg.User)

	_, ok = m.dequeue()
	assert.False(t, ok, "a cancelled Block wait never delivers its message")
}

func TestMailboxSystemBeforeUserInvariant(t *testing.T) {
	m := NewMailbox(MailboxPolicy{}, nil, nil)
	_, _ = m.enqueueUser("u1")
	_, _ = m.enqueueUser("u2")
	require.NoError(t, m.enqueueSystem(&Stop{}))

	msg, ok := m.dequeue()
	require.True(t, ok)
	assert.False(t, msg.IsUser)
}

func TestMailboxRequestScheduleReturnsTrueExactlyOnce(t *testing.T) {
	m := NewMailbox(MailboxPolicy{}, nil, nil)
	assert.True(t, m.requestSchedule())
	assert.False(t, m.requestSchedule())
	assert.False(t, m.requestSchedule())
}
