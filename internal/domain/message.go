package domain

import "time"

// Message 表示投递到某个信箱的一条消息。
//
// ID 与 CreatedAt 由存储层在入队时赋值，之后不可变；
// Read 标志只会经由确认操作从 false 单向翻转为 true。
// Sender 与 Content 对存储层是不透明字符串，不做格式校验。
type Message struct {
	ID        string    `json:"id"`
	Mailbox   string    `json:"mailbox"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}
