// Package metrics 基于Prometheus的指标收集
//
// 指标类型选择：
//   - Counter：只增不减的累计值（请求数、失败数、重试次数）
//   - Gauge：可增可减的瞬时值（处理中的请求数、熔断器状态）
//   - Histogram：观测值的分布（请求耗时、订单流程耗时）
//
// 命名规范：Counter以`_total`结尾，Histogram以单位结尾（`_seconds`）。
// 标签只使用有限取值的维度（method、operation、result），不要用order_id、user_id。
//
// 使用方式：
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
// 业务代码调用Record*系列函数；未调用InitMetrics时这些函数不做任何事，
// 单元测试无需初始化指标。
package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method、path（路由模板，如/api/v1/orders/:id）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 订单流程指标

	// OrderWorkflowTotal 订单流程执行次数
	// 标签：operation（place/update/cancel）、result（success或失败时所处阶段）
	OrderWorkflowTotal *prometheus.CounterVec

	// OrderWorkflowDuration 订单流程耗时（含事务重试）
	OrderWorkflowDuration *prometheus.HistogramVec

	// TxRetriesTotal 因死锁/序列化失败而重试的事务次数
	TxRetriesTotal prometheus.Counter

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数（Counter）
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	// 标签：exchange、routing_key、result（success/failure）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标并注册到默认Registry
// 可重复调用，只有第一次生效
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP请求耗时（秒）",
				// 1ms、10ms、100ms、500ms、1s、5s、10s
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_progress",
				Help: "正在处理的HTTP请求数",
			},
		)

		OrderWorkflowTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_workflow_total",
				Help: "订单流程执行次数",
			},
			[]string{"operation", "result"},
		)

		OrderWorkflowDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "order_workflow_duration_seconds",
				Help: "订单流程耗时（秒）",
				// 行锁等待会拉长耗时：10ms、50ms、100ms、500ms、1s、5s、10s
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"operation"},
		)

		TxRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "db_tx_retries_total",
				Help: "因死锁或序列化失败重试的事务次数",
			},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
			},
			[]string{"name"},
		)

		CircuitBreakerRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuit_breaker_requests_total",
				Help: "熔断器请求总数",
			},
			[]string{"name", "result"},
		)

		MessagesPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_published_total",
				Help: "消息发布总数",
			},
			[]string{"exchange", "routing_key", "result"},
		)

		initialized.Store(true)
	})
}

// Enabled 指标是否已初始化
func Enabled() bool {
	return initialized.Load()
}

// RecordOrderWorkflow 记录一次订单流程
// result为success或失败时的阶段（VALIDATING/RESERVING/PERSISTING）
func RecordOrderWorkflow(operation, result string, seconds float64) {
	if !initialized.Load() {
		return
	}
	OrderWorkflowTotal.WithLabelValues(operation, result).Inc()
	OrderWorkflowDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordTxRetry 记录一次事务重试
func RecordTxRetry() {
	if !initialized.Load() {
		return
	}
	TxRetriesTotal.Inc()
}

// RecordHTTPRequest 记录一次HTTP请求
func RecordHTTPRequest(method, path, status string, seconds float64) {
	if !initialized.Load() {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// TrackInProgress 处理中请求数+1，返回的函数用于-1
func TrackInProgress() func() {
	if !initialized.Load() {
		return func() {}
	}
	HTTPRequestsInProgress.Inc()
	return HTTPRequestsInProgress.Dec
}

// RecordCircuitBreaker 记录熔断器请求结果与当前状态
func RecordCircuitBreaker(name, result string, state float64) {
	if !initialized.Load() {
		return
	}
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordMessagePublished 记录一次消息发布
func RecordMessagePublished(exchange, routingKey, result string) {
	if !initialized.Load() {
		return
	}
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey, result).Inc()
}
