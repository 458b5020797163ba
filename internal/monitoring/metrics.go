package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
//
// 全部指标通过 promauto 注册到默认注册表，
// 因此进程内只能调用一次 NewMetrics。
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 信箱指标
	MailboxesActive prometheus.Gauge
	MessagesTotal   prometheus.Gauge
	MessagesUnread  prometheus.Gauge

	// 业务指标
	MessagesSent         prometheus.Counter
	MessagesAcknowledged prometheus.Counter
	NotificationsSent    prometheus.Counter
	NotificationsDropped prometheus.Counter

	// 错误指标
	ErrorsTotal      *prometheus.CounterVec
	PanicsTotal      prometheus.Counter
	RateLimitedTotal prometheus.Counter
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		// HTTP 请求指标
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentpost_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentpost_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		// 信箱指标
		MailboxesActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentpost_mailboxes_active",
				Help: "Number of known mailboxes",
			},
		),

		MessagesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentpost_messages_total",
				Help: "Total number of stored messages",
			},
		),

		MessagesUnread: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentpost_messages_unread",
				Help: "Number of unread messages",
			},
		),

		// 业务指标
		MessagesSent: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentpost_messages_sent_total",
				Help: "Total number of messages sent",
			},
		),

		MessagesAcknowledged: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentpost_messages_acknowledged_total",
				Help: "Total number of messages acknowledged",
			},
		),

		NotificationsSent: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentpost_notifications_sent_total",
				Help: "Total number of push notifications delivered",
			},
		),

		NotificationsDropped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentpost_notifications_dropped_total",
				Help: "Total number of push notifications dropped",
			},
		),

		// 错误指标
		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentpost_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentpost_panics_total",
				Help: "Total number of panics",
			},
		),

		RateLimitedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentpost_rate_limited_total",
				Help: "Total number of rate limited requests",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordMessageSent 记录消息投递
func (m *Metrics) RecordMessageSent() {
	m.MessagesSent.Inc()
}

// RecordMessageAcknowledged 记录消息确认
func (m *Metrics) RecordMessageAcknowledged() {
	m.MessagesAcknowledged.Inc()
}

// RecordNotificationSent 记录通知推送
func (m *Metrics) RecordNotificationSent() {
	m.NotificationsSent.Inc()
}

// RecordNotificationDropped 记录通知丢弃
func (m *Metrics) RecordNotificationDropped() {
	m.NotificationsDropped.Inc()
}

// RecordError 记录错误
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// RecordRateLimited 记录被限流的请求
func (m *Metrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}

// UpdateStoreStats 更新存储层汇总指标
func (m *Metrics) UpdateStoreStats(mailboxes, messages, unread int) {
	m.MailboxesActive.Set(float64(mailboxes))
	m.MessagesTotal.Set(float64(messages))
	m.MessagesUnread.Set(float64(unread))
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
