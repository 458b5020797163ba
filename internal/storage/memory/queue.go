package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"agentpost/backend/internal/domain"
)

// Queue 是单个信箱的内存消息队列。
// 消息只增不删，插入顺序即列举顺序。
type Queue struct {
	name string

	mu       sync.RWMutex
	messages []*domain.Message
	byID     map[string]*domain.Message
	unread   int

	createdAt time.Time
	lastStamp time.Time
}

func newQueue(name string) *Queue {
	return &Queue{
		name:      name,
		messages:  make([]*domain.Message, 0),
		byID:      make(map[string]*domain.Message),
		createdAt: time.Now().UTC(),
	}
}

// Append 入队一条消息并返回其副本。
// 时间戳取 UTC 当前时间，且保证同一队列内单调不减。
func (q *Queue) Append(sender, content string) *domain.Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now().UTC()
	if now.Before(q.lastStamp) {
		now = q.lastStamp
	}
	q.lastStamp = now

	msg := &domain.Message{
		ID:        uuid.NewString(),
		Mailbox:   q.name,
		Sender:    sender,
		Content:   content,
		CreatedAt: now,
		Read:      false,
	}
	q.messages = append(q.messages, msg)
	q.byID[msg.ID] = msg
	q.unread++

	clone := *msg
	return &clone
}

// List 返回消息的值拷贝快照，保持插入顺序。
func (q *Queue) List(unreadOnly bool) []domain.Message {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]domain.Message, 0, len(q.messages))
	for _, msg := range q.messages {
		if unreadOnly && msg.Read {
			continue
		}
		out = append(out, *msg)
	}
	return out
}

// Acknowledge 将消息标记为已读。重复确认返回成功且不改变状态。
func (q *Queue) Acknowledge(messageID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	msg, ok := q.byID[messageID]
	if !ok {
		return ErrMessageNotFound
	}
	if !msg.Read {
		msg.Read = true
		q.unread--
	}
	return nil
}

// Snapshot 返回该信箱的统计快照。
func (q *Queue) Snapshot() domain.Mailbox {
	q.mu.RLock()
	defer q.mu.RUnlock()

	mb := domain.Mailbox{
		Name:      q.name,
		Unread:    q.unread,
		Total:     len(q.messages),
		CreatedAt: q.createdAt,
	}
	if len(q.messages) > 0 {
		last := q.messages[len(q.messages)-1].CreatedAt
		mb.LastMessageAt = &last
	}
	return mb
}

func (q *Queue) stats() (total, unread int) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.messages), q.unread
}
