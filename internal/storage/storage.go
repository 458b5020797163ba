package storage

import "agentpost/backend/internal/domain"

// MessageQueue 定义单个信箱内消息序列的存取操作。
// 实现必须是并发安全的：同一队列上的变更彼此串行化。
type MessageQueue interface {
	// Append 入队一条消息，由存储层赋予 ID 与时间戳，返回消息副本。
	Append(sender, content string) *domain.Message

	// List 按插入顺序返回消息快照；unreadOnly 为真时过滤已读消息。
	// 返回的是值拷贝，后续变更不会影响快照。
	List(unreadOnly bool) []domain.Message

	// Acknowledge 将指定消息标记为已读。重复确认是幂等的成功；
	// 消息不存在时返回错误。
	Acknowledge(messageID string) error

	// Snapshot 返回该信箱的统计快照。
	Snapshot() domain.Mailbox
}

// MailboxRegistry 定义信箱命名空间的解析操作。
//
// GetOrCreate 与 Get 的不对称是刻意的契约：发送方隐式开通信箱，
// 而读取与确认把未知信箱视为调用方错误，二者不可互换。
type MailboxRegistry interface {
	// GetOrCreate 返回指定信箱的队列，不存在时原子地创建一个空队列。
	// 并发创建同一个未知信箱时创建至多生效一次。
	GetOrCreate(name string) MessageQueue

	// Get 返回指定信箱的队列；信箱不存在时返回错误，绝不隐式创建。
	Get(name string) (MessageQueue, error)

	// Names 返回全部已知信箱标识，按字典序排序。
	Names() []string

	// ListMailboxes 返回全部信箱的统计快照，按名称排序。
	ListMailboxes() []domain.Mailbox
}
