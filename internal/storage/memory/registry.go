package memory

import (
	"errors"
	"sort"
	"sync"

	"agentpost/backend/internal/domain"
	"agentpost/backend/internal/storage"
)

var (
	ErrMailboxNotFound = errors.New("mailbox not found")
	ErrMessageNotFound = errors.New("message not found")
)

// Registry 使用内存保存信箱与消息数据，进程重启后数据丢失。
type Registry struct {
	mu     sync.RWMutex
	queues map[string]*Queue
}

// NewRegistry 创建一个内存信箱注册表。
func NewRegistry() *Registry {
	return &Registry{
		queues: make(map[string]*Queue),
	}
}

// GetOrCreate 返回指定信箱的队列，不存在时创建一个空队列。
// 先走读锁快路径，未命中再加写锁并二次检查，保证并发创建至多生效一次。
func (r *Registry) GetOrCreate(name string) storage.MessageQueue {
	r.mu.RLock()
	q, ok := r.queues[name]
	r.mu.RUnlock()
	if ok {
		return q
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.queues[name]; ok {
		return q
	}
	q = newQueue(name)
	r.queues[name] = q
	return q
}

// Get 返回指定信箱的队列；信箱不存在时返回 ErrMailboxNotFound。
func (r *Registry) Get(name string) (storage.MessageQueue, error) {
	r.mu.RLock()
	q, ok := r.queues[name]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrMailboxNotFound
	}
	return q, nil
}

// Names 返回全部已知信箱标识，按字典序排序。
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.queues))
	for name := range r.queues {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// ListMailboxes 返回全部信箱的统计快照，按名称排序。
// 先在读锁内收集队列引用，再逐个取快照，避免持注册表锁做逐队列加锁。
func (r *Registry) ListMailboxes() []domain.Mailbox {
	r.mu.RLock()
	queues := make([]*Queue, 0, len(r.queues))
	for _, q := range r.queues {
		queues = append(queues, q)
	}
	r.mu.RUnlock()

	out := make([]domain.Mailbox, 0, len(queues))
	for _, q := range queues {
		out = append(out, q.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Stats 返回注册表级别的汇总计数，用于指标上报。
func (r *Registry) Stats() (mailboxes, messages, unread int) {
	r.mu.RLock()
	queues := make([]*Queue, 0, len(r.queues))
	for _, q := range r.queues {
		queues = append(queues, q)
	}
	r.mu.RUnlock()

	mailboxes = len(queues)
	for _, q := range queues {
		total, u := q.stats()
		messages += total
		unread += u
	}
	return mailboxes, messages, unread
}
