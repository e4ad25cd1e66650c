// Package metrics 提供基于Prometheus的指标收集
//
// 指标分类：
// 1. Counter（计数器）：只增不减的累计值（如消费的消息总数）
// 2. Gauge（仪表盘）：可增可减的瞬时值（如待重试任务数）
// 3. Histogram（直方图）：观测值的分布（如消息处理耗时，自动计算P50/P90/P99）
//
// 指标通过 /metrics 端点暴露，由Prometheus Server定期抓取。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 库存事件消费指标
	// result标签取值：applied / missing_target / invariant_violation /
	// transient_error / decode_error / unknown_error
	StockEventsConsumedTotal   *prometheus.CounterVec
	StockEventDuration         prometheus.Histogram
	StockRetriesScheduledTotal prometheus.Counter
	StockRetriesExhaustedTotal prometheus.Counter
	StockRetryJobsPending      prometheus.Gauge

	// 消息发布指标
	MessagesPublishedTotal *prometheus.CounterVec
	MessagePublishFailures *prometheus.CounterVec

	initialized bool
)

// InitMetrics 初始化所有指标
// 必须在main()启动早期调用一次，重复调用会被忽略
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	StockEventsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_events_consumed_total",
			Help: "库存更新事件消费总数",
		},
		[]string{"result"},
	)

	StockEventDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stock_event_duration_seconds",
			Help:    "单条库存事件处理耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)

	StockRetriesScheduledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_retries_scheduled_total",
			Help: "延迟重试任务创建总数",
		},
	)

	StockRetriesExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_retries_exhausted_total",
			Help: "重试次数耗尽被放弃的任务总数",
		},
	)

	StockRetryJobsPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stock_retry_jobs_pending",
			Help: "当前待执行的重试任务数",
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)

	MessagePublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_publish_failures_total",
			Help: "消息发布失败总数",
		},
		[]string{"exchange", "routing_key"},
	)
}

// ObserveStockEvent 记录一次库存事件的处理结果与耗时
// 便捷函数：listener处收口，避免调用方到处判空
func ObserveStockEvent(result string, seconds float64) {
	if !initialized {
		return
	}
	StockEventsConsumedTotal.WithLabelValues(result).Inc()
	StockEventDuration.Observe(seconds)
}

// IncRetryScheduled 记录一次重试任务创建
func IncRetryScheduled() {
	if initialized {
		StockRetriesScheduledTotal.Inc()
	}
}

// IncRetryExhausted 记录一次重试耗尽放弃
func IncRetryExhausted() {
	if initialized {
		StockRetriesExhaustedTotal.Inc()
	}
}

// SetRetryJobsPending 更新待重试任务数
func SetRetryJobsPending(n int64) {
	if initialized {
		StockRetryJobsPending.Set(float64(n))
	}
}

// ObserveHTTP 记录一次HTTP请求的计数与耗时
func ObserveHTTP(method, path, status string, seconds float64) {
	if !initialized {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// IncMessagePublished 记录一次成功发布
func IncMessagePublished(exchange, routingKey string) {
	if initialized {
		MessagesPublishedTotal.WithLabelValues(exchange, routingKey).Inc()
	}
}

// IncMessagePublishFailure 记录一次发布失败
func IncMessagePublishFailure(exchange, routingKey string) {
	if initialized {
		MessagePublishFailures.WithLabelValues(exchange, routingKey).Inc()
	}
}
