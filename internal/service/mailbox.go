package service

import (
	"go.uber.org/zap"

	"agentpost/backend/internal/domain"
	"agentpost/backend/internal/storage"
)

// MailboxService 封装信箱命名空间的业务逻辑。
type MailboxService struct {
	registry storage.MailboxRegistry
	log      *zap.Logger
}

// NewMailboxService 创建信箱业务服务。
func NewMailboxService(registry storage.MailboxRegistry, log *zap.Logger) *MailboxService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MailboxService{registry: registry, log: log}
}

// Seed 预创建一批空信箱，启动时调用。重复名称是幂等的。
func (s *MailboxService) Seed(names []string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		s.registry.GetOrCreate(name)
		s.log.Info("预创建信箱", zap.String("mailbox", name))
	}
}

// Ensure 确保指定信箱存在并返回其快照，不存在时创建。
func (s *MailboxService) Ensure(name string) domain.Mailbox {
	return s.registry.GetOrCreate(name).Snapshot()
}

// Get 获取单个信箱的快照；信箱不存在时返回错误。
func (s *MailboxService) Get(name string) (domain.Mailbox, error) {
	q, err := s.registry.Get(name)
	if err != nil {
		return domain.Mailbox{}, err
	}
	return q.Snapshot(), nil
}

// List 列出全部信箱的统计快照，按名称排序。
func (s *MailboxService) List() []domain.Mailbox {
	return s.registry.ListMailboxes()
}

// Names 列出全部信箱标识，按字典序排序。
func (s *MailboxService) Names() []string {
	return s.registry.Names()
}
