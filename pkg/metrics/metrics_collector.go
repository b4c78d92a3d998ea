package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 数据库指标
	dbConnectionsActive prometheus.Gauge
	dbConnectionsIdle   prometheus.Gauge
	dbErrorsTotal       *prometheus.CounterVec

	// 业务指标
	ordersTotal      *prometheus.CounterVec
	returnsTotal     *prometheus.CounterVec
	stockAdjustments *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	notifications    *prometheus.CounterVec
}

// NewMetricsCollector 在指定 registerer 上创建指标收集器
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(reg)
	return &MetricsCollector{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		dbConnectionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_active",
				Help: "Number of active database connections",
			},
		),

		dbConnectionsIdle: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_idle",
				Help: "Number of idle database connections",
			},
		),

		dbErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_errors_total",
				Help: "Total number of database errors",
			},
			[]string{"operation", "error_type"},
		),

		ordersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_orders_total",
				Help: "Order lifecycle events",
			},
			[]string{"event"},
		),

		returnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_returns_total",
				Help: "Return workflow transitions by target status",
			},
			[]string{"status"},
		),

		stockAdjustments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_stock_adjustments_total",
				Help: "Stock adjustments by result",
			},
			[]string{"direction", "result"},
		),

		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_cache_lookups_total",
				Help: "Cache lookups by key prefix and result",
			},
			[]string{"prefix", "result"},
		),

		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_notifications_total",
				Help: "Notification deliveries by result",
			},
			[]string{"kind", "result"},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// UpdateDBConnections 更新数据库连接指标
func (m *MetricsCollector) UpdateDBConnections(active, idle int) {
	m.dbConnectionsActive.Set(float64(active))
	m.dbConnectionsIdle.Set(float64(idle))
}

// RecordDBError 记录数据库错误
func (m *MetricsCollector) RecordDBError(operation, errorType string) {
	m.dbErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordOrderEvent event: placed / cancelled / status_changed
func (m *MetricsCollector) RecordOrderEvent(event string) {
	m.ordersTotal.WithLabelValues(event).Inc()
}

// RecordReturnTransition 记录退货流转
func (m *MetricsCollector) RecordReturnTransition(status string) {
	m.returnsTotal.WithLabelValues(status).Inc()
}

// RecordStockAdjustment 记录库存调整结果
func (m *MetricsCollector) RecordStockAdjustment(delta int, err error) {
	direction := "restore"
	if delta < 0 {
		direction = "consume"
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.stockAdjustments.WithLabelValues(direction, result).Inc()
}

// RecordCacheLookup 记录缓存命中情况
func (m *MetricsCollector) RecordCacheLookup(prefix string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(prefix, result).Inc()
}

// RecordNotification 记录通知发送结果
func (m *MetricsCollector) RecordNotification(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}

// StatusCategory 获取状态分类
func StatusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

var (
	globalCollector *MetricsCollector
	initOnce        sync.Once
)

// GetGlobalCollector 获取注册在默认 registry 上的全局收集器
func GetGlobalCollector() *MetricsCollector {
	initOnce.Do(func() {
		globalCollector = NewMetricsCollector(prometheus.DefaultRegisterer)
	})
	return globalCollector
}
