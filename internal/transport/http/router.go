package httptransport

import (
	"strconv"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agentpost/backend/internal/config"
	"agentpost/backend/internal/domain"
	"agentpost/backend/internal/middleware"
	"agentpost/backend/internal/monitoring"
	"agentpost/backend/internal/service"
	"agentpost/backend/internal/storage/memory"
	"agentpost/backend/internal/websocket"
)

// Handler 聚合所有 HTTP 处理逻辑。
type Handler struct {
	mailboxes *service.MailboxService
	messages  *service.MessageService
}

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config         *config.Config
	MailboxService *service.MailboxService
	MessageService *service.MessageService
	WebSocketHub   *websocket.Hub      // WebSocket Hub（可选）
	Metrics        *monitoring.Metrics // 监控指标（可选）
	Logger         *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	// 使用自定义中间件替代默认中间件
	router.Use(middleware.RecoveryHandler(deps.Logger, deps.Metrics))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodySizeLimit(middleware.DefaultBodyLimit))

	if deps.Metrics != nil {
		mm := middleware.NewMonitoringMiddleware(deps.Metrics, deps.Logger)
		router.Use(mm.HTTPMetrics())
	}

	if deps.Config.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(deps.Config.RateLimit.RPS, deps.Config.RateLimit.Burst, deps.Logger, deps.Metrics)
		router.Use(rl.Handler())
	}

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 创建处理器
	handler := &Handler{
		mailboxes: deps.MailboxService,
		messages:  deps.MessageService,
	}

	compatHandler := NewCompatHandler(deps.MailboxService, deps.MessageService)

	// V1 API
	v1 := router.Group("/v1")
	{
		// ========== Mailbox Routes ==========
		mailboxRoutes := v1.Group("/mailboxes")
		{
			mailboxRoutes.GET("", handler.listMailboxes)
			mailboxRoutes.POST("", handler.createMailbox)
			mailboxRoutes.GET("/:name", handler.getMailbox)

			// 消息相关端点
			mailboxRoutes.POST("/:name/messages", handler.sendMessage)
			mailboxRoutes.GET("/:name/messages", handler.listMessages)
			mailboxRoutes.POST("/:name/messages/:messageId/ack", handler.acknowledgeMessage)
		}

		// ========== WebSocket Routes ==========
		if deps.WebSocketHub != nil {
			v1.GET("/ws", websocket.HandleWebSocket(deps.WebSocketHub))
		}
	}

	// ========== Compatibility API (兼容层) ==========
	// 提供旧格式（直接返回数据，无统一封装）的端点
	apiRoutes := router.Group("/api")
	{
		apiRoutes.GET("/mailboxes", compatHandler.ListMailboxes)
		apiRoutes.POST("/mailboxes/:mailbox/messages", compatHandler.SendMessage)
		apiRoutes.GET("/mailboxes/:mailbox/messages", compatHandler.ListMessages)
		apiRoutes.POST("/mailboxes/:mailbox/messages/:messageId/ack", compatHandler.AcknowledgeMessage)
	}

	return router
}

type createMailboxRequest struct {
	Name string `json:"name"`
}

type mailboxResponse struct {
	Name          string     `json:"name"`
	Unread        int        `json:"unread"`
	Total         int        `json:"total"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}

type mailboxListResponse struct {
	Items []mailboxResponse `json:"items"`
	Count int               `json:"count"`
}

// listMailboxes godoc
// @Summary 获取信箱列表
// @Description 返回全部已知信箱的统计信息，按名称排序
// @Tags Mailboxes
// @Produce json
// @Success 200 {object} mailboxListResponse
// @Router /v1/mailboxes [get]
func (h *Handler) listMailboxes(c *gin.Context) {
	mailboxes := h.mailboxes.List()

	responses := make([]mailboxResponse, 0, len(mailboxes))
	for i := range mailboxes {
		responses = append(responses, toMailboxResponse(&mailboxes[i]))
	}

	Success(c, mailboxListResponse{
		Items: responses,
		Count: len(responses),
	})
}

// createMailbox godoc
// @Summary 创建信箱
// @Description 显式创建一个信箱，已存在时幂等返回现有信箱
// @Tags Mailboxes
// @Accept json
// @Produce json
// @Param request body createMailboxRequest true "信箱参数"
// @Success 201 {object} mailboxResponse
// @Failure 400 {object} Response
// @Router /v1/mailboxes [post]
func (h *Handler) createMailbox(c *gin.Context) {
	var req createMailboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}
	if req.Name == "" {
		BadRequest(c, MsgMailboxNameEmpty)
		return
	}

	mailbox := h.mailboxes.Ensure(req.Name)
	Created(c, toMailboxResponse(&mailbox))
}

// getMailbox godoc
// @Summary 获取信箱详情
// @Description 根据名称查看信箱统计信息
// @Tags Mailboxes
// @Produce json
// @Param name path string true "信箱名称"
// @Success 200 {object} mailboxResponse
// @Failure 404 {object} Response
// @Router /v1/mailboxes/{name} [get]
func (h *Handler) getMailbox(c *gin.Context) {
	mailbox, err := h.mailboxes.Get(c.Param("name"))
	if err != nil {
		NotFound(c, MsgMailboxNotFound)
		return
	}
	Success(c, toMailboxResponse(&mailbox))
}

type sendMessageRequest struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

type sendMessageResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"messageId"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

type messageListResponse struct {
	Items []messageResponse `json:"items"`
	Count int               `json:"count"`
}

type acknowledgeResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"messageId"`
}

// sendMessage godoc
// @Summary 投递消息
// @Description 向指定信箱投递一条消息，信箱不存在时自动创建
// @Tags Messages
// @Accept json
// @Produce json
// @Param name path string true "信箱名称"
// @Param request body sendMessageRequest true "消息内容"
// @Success 201 {object} sendMessageResponse
// @Failure 400 {object} Response
// @Router /v1/mailboxes/{name}/messages [post]
func (h *Handler) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	msg := h.messages.Send(service.SendInput{
		Mailbox: c.Param("name"),
		Sender:  req.Sender,
		Content: req.Content,
	})

	Created(c, sendMessageResponse{
		Status:    "sent",
		MessageID: msg.ID,
	})
}

// listMessages godoc
// @Summary 获取消息列表
// @Description 返回信箱内的消息快照，按投递顺序排列
// @Tags Messages
// @Produce json
// @Param name path string true "信箱名称"
// @Param unread_only query boolean false "只返回未读消息"
// @Success 200 {object} messageListResponse
// @Failure 404 {object} Response
// @Router /v1/mailboxes/{name}/messages [get]
func (h *Handler) listMessages(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))

	messages, err := h.messages.List(c.Param("name"), unreadOnly)
	if err != nil {
		if err == memory.ErrMailboxNotFound {
			NotFound(c, MsgMailboxNotFound)
			return
		}
		InternalError(c, MsgMessageListFailed)
		return
	}

	responses := make([]messageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, toMessageResponse(&messages[i]))
	}

	Success(c, messageListResponse{
		Items: responses,
		Count: len(responses),
	})
}

// acknowledgeMessage godoc
// @Summary 确认消息
// @Description 将指定消息标记为已读，重复确认幂等
// @Tags Messages
// @Produce json
// @Param name path string true "信箱名称"
// @Param messageId path string true "消息ID"
// @Success 200 {object} acknowledgeResponse
// @Failure 404 {object} Response
// @Router /v1/mailboxes/{name}/messages/{messageId}/ack [post]
func (h *Handler) acknowledgeMessage(c *gin.Context) {
	messageID := c.Param("messageId")

	err := h.messages.Acknowledge(c.Param("name"), messageID)
	if err != nil {
		switch err {
		case memory.ErrMailboxNotFound, memory.ErrMessageNotFound:
			NotFound(c, GetErrorMessage(err))
		default:
			InternalError(c, MsgMessageAckFailed)
		}
		return
	}

	Success(c, acknowledgeResponse{
		Status:    "acknowledged",
		MessageID: messageID,
	})
}

// toMailboxResponse 转换实体为响应体。
func toMailboxResponse(mailbox *domain.Mailbox) mailboxResponse {
	return mailboxResponse{
		Name:          mailbox.Name,
		Unread:        mailbox.Unread,
		Total:         mailbox.Total,
		CreatedAt:     mailbox.CreatedAt,
		LastMessageAt: mailbox.LastMessageAt,
	}
}

// toMessageResponse 转换消息实体为响应体。
func toMessageResponse(message *domain.Message) messageResponse {
	return messageResponse{
		ID:        message.ID,
		Sender:    message.Sender,
		Content:   message.Content,
		Timestamp: message.CreatedAt,
		Read:      message.Read,
	}
}
