package httptransport

import (
	"agentpost/backend/internal/storage/memory"
)

// 错误消息映射表（业务错误 -> 中文消息）
var errorMessages = map[error]string{
	// Mailbox 错误
	memory.ErrMailboxNotFound: "信箱不存在",

	// Message 错误
	memory.ErrMessageNotFound: "消息不存在",
}

// GetErrorMessage 获取错误的中文消息
func GetErrorMessage(err error) string {
	if msg, ok := errorMessages[err]; ok {
		return msg
	}
	return err.Error()
}

// 通用错误消息
const (
	// 请求相关
	MsgInvalidRequest   = "请求参数格式错误"
	MsgRequestBodyEmpty = "请求体不能为空"

	// 信箱相关
	MsgMailboxNotFound   = "信箱不存在"
	MsgMailboxNameEmpty  = "信箱名称不能为空"
	MsgMailboxListFailed = "获取信箱列表失败"

	// 消息相关
	MsgMessageNotFound   = "消息不存在"
	MsgMessageSendFailed = "投递消息失败"
	MsgMessageListFailed = "获取消息列表失败"
	MsgMessageAckFailed  = "确认消息失败"

	// 服务器错误
	MsgInternalError = "服务器内部错误，请稍后重试"
)
