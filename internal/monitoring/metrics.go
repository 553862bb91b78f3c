package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 业务指标
	ClientsCreated         prometheus.Counter
	MailboxesAssigned      prometheus.Counter
	CorrespondenceReceived *prometheus.CounterVec
	CorrespondencePickedUp prometheus.Counter
	ContractsCreated       *prometheus.CounterVec

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter

	// 限流指标
	RateLimitBlocks prometheus.Counter
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailhub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mailhub_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		ClientsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailhub_clients_created_total",
				Help: "Total number of clients created",
			},
		),

		MailboxesAssigned: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailhub_mailboxes_assigned_total",
				Help: "Total number of mailboxes assigned",
			},
		),

		CorrespondenceReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailhub_correspondence_received_total",
				Help: "Total number of correspondence items registered",
			},
			[]string{"kind"},
		),

		CorrespondencePickedUp: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailhub_correspondence_picked_up_total",
				Help: "Total number of correspondence items picked up",
			},
		),

		ContractsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailhub_contracts_created_total",
				Help: "Total number of contracts created",
			},
			[]string{"plan"},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailhub_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailhub_panics_total",
				Help: "Total number of recovered panics",
			},
		),

		RateLimitBlocks: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailhub_rate_limit_blocks_total",
				Help: "Total number of requests blocked by rate limiting",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordError 记录错误
func (m *Metrics) RecordError(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// Handler 返回 Prometheus 指标的 HTTP 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
