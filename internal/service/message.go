package service

import (
	"go.uber.org/zap"

	"agentpost/backend/internal/domain"
	"agentpost/backend/internal/monitoring"
	"agentpost/backend/internal/pool"
	"agentpost/backend/internal/storage"
)

// Notifier 向订阅方推送新消息事件。
type Notifier interface {
	NotifyNewMessage(mailbox string, message *domain.Message)
}

// MessageService 封装消息投递、列举与确认逻辑。
type MessageService struct {
	registry storage.MailboxRegistry
	notifier Notifier                // 推送通知（可选）
	workers  *pool.WorkerPool        // 异步派发通知（可选）
	metrics  *monitoring.Metrics     // 业务指标（可选）
	log      *zap.Logger
}

// NewMessageService 创建消息业务服务。
func NewMessageService(registry storage.MailboxRegistry, log *zap.Logger) *MessageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageService{registry: registry, log: log}
}

// SetNotifier 设置新消息推送器。
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetWorkerPool 设置通知派发用的工作池。
func (s *MessageService) SetWorkerPool(p *pool.WorkerPool) {
	s.workers = p
}

// SetMetrics 设置业务指标收集器。
func (s *MessageService) SetMetrics(m *monitoring.Metrics) {
	s.metrics = m
}

// SendInput 定义投递消息的输入。
type SendInput struct {
	Mailbox string
	Sender  string
	Content string
}

// Send 向目标信箱投递一条消息，信箱不存在时自动创建。
func (s *MessageService) Send(input SendInput) *domain.Message {
	queue := s.registry.GetOrCreate(input.Mailbox)
	msg := queue.Append(input.Sender, input.Content)

	s.log.Info("消息已投递",
		zap.String("mailbox", input.Mailbox),
		zap.String("messageId", msg.ID),
		zap.String("sender", input.Sender))

	if s.metrics != nil {
		s.metrics.RecordMessageSent()
	}
	s.dispatchNotification(input.Mailbox, msg)

	return msg
}

// List 列出指定信箱的消息快照；信箱不存在时返回错误。
func (s *MessageService) List(mailbox string, unreadOnly bool) ([]domain.Message, error) {
	queue, err := s.registry.Get(mailbox)
	if err != nil {
		return nil, err
	}
	return queue.List(unreadOnly), nil
}

// Acknowledge 将指定消息标记为已读；信箱或消息不存在时返回错误。
func (s *MessageService) Acknowledge(mailbox, messageID string) error {
	queue, err := s.registry.Get(mailbox)
	if err != nil {
		return err
	}
	if err := queue.Acknowledge(messageID); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordMessageAcknowledged()
	}
	return nil
}

// dispatchNotification 把新消息事件交给工作池异步推送，
// 没有工作池时同步推送。队列满则丢弃，投递路径不阻塞。
func (s *MessageService) dispatchNotification(mailbox string, msg *domain.Message) {
	if s.notifier == nil {
		return
	}
	if s.workers == nil {
		s.notifier.NotifyNewMessage(mailbox, msg)
		if s.metrics != nil {
			s.metrics.RecordNotificationSent()
		}
		return
	}
	submitted := s.workers.TrySubmit(func() {
		s.notifier.NotifyNewMessage(mailbox, msg)
	})
	if !submitted {
		s.log.Warn("通知队列已满，丢弃新消息通知",
			zap.String("mailbox", mailbox),
			zap.String("messageId", msg.ID))
		if s.metrics != nil {
			s.metrics.RecordNotificationDropped()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.RecordNotificationSent()
	}
}
