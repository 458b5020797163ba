package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"agentpost/backend/internal/service"
	"agentpost/backend/internal/storage/memory"
)

// 注意：兼容API全部使用旧格式（直接返回数据，无统一封装）

// errorResponse 兼容API错误响应（旧格式）
type errorResponse struct {
	Error string `json:"error"`
}

// CompatHandler 兼容API处理器
type CompatHandler struct {
	mailboxes *service.MailboxService
	messages  *service.MessageService
}

// NewCompatHandler 创建兼容API处理器
func NewCompatHandler(
	mailboxService *service.MailboxService,
	messageService *service.MessageService,
) *CompatHandler {
	return &CompatHandler{
		mailboxes: mailboxService,
		messages:  messageService,
	}
}

// ========== 响应结构体 ==========

type compatSendResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}

type compatAckResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}

type compatMessageItem struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

type compatSendRequest struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// ========== API 处理器 ==========

// ListMailboxes 获取信箱名称列表
// @Summary 获取信箱名称列表
// @Description 返回全部已知信箱的名称数组，按字典序排序
// @Tags Compat
// @Produce json
// @Success 200 {array} string
// @Router /api/mailboxes [get]
func (h *CompatHandler) ListMailboxes(c *gin.Context) {
	c.JSON(http.StatusOK, h.mailboxes.Names())
}

// SendMessage 投递消息
// @Summary 投递消息
// @Description 向指定信箱投递一条消息，信箱不存在时自动创建
// @Tags Compat
// @Accept json
// @Produce json
// @Param mailbox path string true "信箱名称"
// @Param request body compatSendRequest true "消息内容"
// @Success 200 {object} compatSendResponse
// @Failure 400 {object} errorResponse
// @Router /api/mailboxes/{mailbox}/messages [post]
func (h *CompatHandler) SendMessage(c *gin.Context) {
	var req compatSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	msg := h.messages.Send(service.SendInput{
		Mailbox: c.Param("mailbox"),
		Sender:  req.Sender,
		Content: req.Content,
	})

	c.JSON(http.StatusOK, compatSendResponse{
		Status:    "sent",
		MessageID: msg.ID,
	})
}

// ListMessages 获取消息列表
// @Summary 获取消息列表
// @Description 返回信箱内的消息数组，按投递顺序排列
// @Tags Compat
// @Produce json
// @Param mailbox path string true "信箱名称"
// @Param unread_only query boolean false "只返回未读消息"
// @Success 200 {array} compatMessageItem
// @Failure 404 {object} errorResponse
// @Router /api/mailboxes/{mailbox}/messages [get]
func (h *CompatHandler) ListMessages(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))

	messages, err := h.messages.List(c.Param("mailbox"), unreadOnly)
	if err != nil {
		if err == memory.ErrMailboxNotFound {
			c.JSON(http.StatusNotFound, errorResponse{Error: "mailbox not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to list messages"})
		return
	}

	items := make([]compatMessageItem, 0, len(messages))
	for i := range messages {
		msg := &messages[i]
		items = append(items, compatMessageItem{
			ID:        msg.ID,
			Sender:    msg.Sender,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
			Read:      msg.Read,
		})
	}

	c.JSON(http.StatusOK, items)
}

// AcknowledgeMessage 确认消息
// @Summary 确认消息
// @Description 将指定消息标记为已读，重复确认幂等
// @Tags Compat
// @Produce json
// @Param mailbox path string true "信箱名称"
// @Param messageId path string true "消息ID"
// @Success 200 {object} compatAckResponse
// @Failure 404 {object} errorResponse
// @Router /api/mailboxes/{mailbox}/messages/{messageId}/ack [post]
func (h *CompatHandler) AcknowledgeMessage(c *gin.Context) {
	messageID := c.Param("messageId")

	err := h.messages.Acknowledge(c.Param("mailbox"), messageID)
	if err != nil {
		switch err {
		case memory.ErrMailboxNotFound:
			c.JSON(http.StatusNotFound, errorResponse{Error: "mailbox not found"})
		case memory.ErrMessageNotFound:
			c.JSON(http.StatusNotFound, errorResponse{Error: "message not found"})
		default:
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to acknowledge message"})
		}
		return
	}

	c.JSON(http.StatusOK, compatAckResponse{
		Status:    "acknowledged",
		MessageID: messageID,
	})
}
