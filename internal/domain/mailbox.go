package domain

import "time"

// Mailbox 表示一个信箱在某个时间点的统计快照。
// 快照是值拷贝，修改它不会影响存储层内部状态。
type Mailbox struct {
	Name          string     `json:"name"`
	Unread        int        `json:"unread"`
	Total         int        `json:"total"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}
