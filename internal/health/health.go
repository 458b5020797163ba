package health

import (
	"net/http"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"agentpost/backend/internal/storage"
)

// HealthChecker 健康检查器
type HealthChecker struct {
	health   healthcheck.Handler
	registry storage.MailboxRegistry
	logger   *zap.Logger
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(registry storage.MailboxRegistry, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{
		health:   healthcheck.NewHandler(),
		registry: registry,
		logger:   logger,
	}

	hc.addChecks()

	return hc
}

// addChecks 添加健康检查
func (hc *HealthChecker) addChecks() {
	// 协程数量检查，超限说明有泄漏
	hc.health.AddLivenessCheck("goroutine-count", healthcheck.GoroutineCountCheck(500))

	// 存储层可用性检查：能列举信箱即视为就绪
	hc.health.AddReadinessCheck("mailbox-store", func() error {
		hc.registry.Names()
		return nil
	})
}

// Live 返回存活探针处理函数，可直接挂到路由上。
func (hc *HealthChecker) Live() http.HandlerFunc {
	return hc.health.LiveEndpoint
}

// Ready 返回就绪探针处理函数。
func (hc *HealthChecker) Ready() http.HandlerFunc {
	return hc.health.ReadyEndpoint
}
