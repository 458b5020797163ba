package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_AppendAndList(t *testing.T) {
	q := newQueue("agent_1")

	// Append assigns ID, timestamp and unread flag
	first := q.Append("scheduler", "run task 42")
	require.NotEmpty(t, first.ID)
	assert.Equal(t, "agent_1", first.Mailbox)
	assert.Equal(t, "scheduler", first.Sender)
	assert.Equal(t, "run task 42", first.Content)
	assert.False(t, first.Read)
	assert.False(t, first.CreatedAt.IsZero())

	second := q.Append("scheduler", "run task 43")
	assert.NotEqual(t, first.ID, second.ID)

	// Timestamps are non-decreasing within a queue
	assert.False(t, second.CreatedAt.Before(first.CreatedAt))

	// List preserves insertion order
	messages := q.List(false)
	require.Len(t, messages, 2)
	assert.Equal(t, first.ID, messages[0].ID)
	assert.Equal(t, second.ID, messages[1].ID)
}

func TestQueue_ListSnapshotIsolation(t *testing.T) {
	q := newQueue("agent_1")
	msg := q.Append("peer", "hello")

	snapshot := q.List(false)
	require.Len(t, snapshot, 1)

	// Mutating the snapshot must not affect the store
	snapshot[0].Read = true
	snapshot[0].Content = "tampered"

	fresh := q.List(false)
	require.Len(t, fresh, 1)
	assert.False(t, fresh[0].Read)
	assert.Equal(t, "hello", fresh[0].Content)

	// The value returned by Append is a copy as well
	msg.Content = "also tampered"
	fresh = q.List(false)
	assert.Equal(t, "hello", fresh[0].Content)
}

func TestQueue_UnreadFilter(t *testing.T) {
	q := newQueue("agent_1")
	first := q.Append("peer", "one")
	q.Append("peer", "two")

	require.NoError(t, q.Acknowledge(first.ID))

	all := q.List(false)
	assert.Len(t, all, 2)

	unread := q.List(true)
	require.Len(t, unread, 1)
	assert.Equal(t, "two", unread[0].Content)
}

func TestQueue_Acknowledge(t *testing.T) {
	q := newQueue("agent_1")
	msg := q.Append("peer", "one")

	t.Run("确认后消息标记为已读", func(t *testing.T) {
		require.NoError(t, q.Acknowledge(msg.ID))

		messages := q.List(false)
		require.Len(t, messages, 1)
		assert.True(t, messages[0].Read)
	})

	t.Run("重复确认幂等", func(t *testing.T) {
		require.NoError(t, q.Acknowledge(msg.ID))
		require.NoError(t, q.Acknowledge(msg.ID))

		mb := q.Snapshot()
		assert.Equal(t, 0, mb.Unread)
		assert.Equal(t, 1, mb.Total)
	})

	t.Run("未知消息返回错误", func(t *testing.T) {
		err := q.Acknowledge("no-such-id")
		assert.ErrorIs(t, err, ErrMessageNotFound)
	})
}

func TestQueue_Snapshot(t *testing.T) {
	q := newQueue("agent_1")

	mb := q.Snapshot()
	assert.Equal(t, "agent_1", mb.Name)
	assert.Equal(t, 0, mb.Total)
	assert.Equal(t, 0, mb.Unread)
	assert.Nil(t, mb.LastMessageAt)

	msg := q.Append("peer", "one")
	q.Append("peer", "two")
	require.NoError(t, q.Acknowledge(msg.ID))

	mb = q.Snapshot()
	assert.Equal(t, 2, mb.Total)
	assert.Equal(t, 1, mb.Unread)
	require.NotNil(t, mb.LastMessageAt)
}

func TestQueue_ConcurrentAppend(t *testing.T) {
	q := newQueue("agent_1")

	const goroutines = 20
	const perGoroutine = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				q.Append("peer", "payload")
			}
		}()
	}
	wg.Wait()

	messages := q.List(false)
	require.Len(t, messages, goroutines*perGoroutine)

	// All IDs are distinct
	seen := make(map[string]bool, len(messages))
	for _, msg := range messages {
		assert.False(t, seen[msg.ID])
		seen[msg.ID] = true
	}
}

func TestQueue_ConcurrentAcknowledgeAndList(t *testing.T) {
	q := newQueue("agent_1")

	ids := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		ids = append(ids, q.Append("peer", "payload").ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, q.Acknowledge(id))
		}(id)
	}

	// Concurrent readers must always see a consistent snapshot
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshot := q.List(false)
			assert.Len(t, snapshot, 100)
		}()
	}
	wg.Wait()

	assert.Empty(t, q.List(true))
	assert.Equal(t, 0, q.Snapshot().Unread)
}
