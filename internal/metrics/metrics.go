// Package metrics 暴露账本与租户隔离相关的 Prometheus 指标。
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	paymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_payments_total",
		Help: "Payments finalized by the ledger, by resulting status",
	}, []string{"status"})

	refundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_refunds_total",
		Help: "Refund attempts, by result",
	}, []string{"result"})

	isolationViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenancy_isolation_violations_total",
		Help: "Rejected cross-tenant writes, by operation",
	}, []string{"operation"})

	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenancy_resolutions_total",
		Help: "Tenant context resolutions, by result",
	}, []string{"result"})

	rateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests rejected by a rate limit rule",
	}, []string{"rule"})

	webhookTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_webhook_tasks_total",
		Help: "Transaction webhook tasks handled by the worker, by outcome",
	}, []string{"result"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObservePayment 记录支付终态
func ObservePayment(status string) {
	paymentsTotal.WithLabelValues(status).Inc()
}

// ObserveRefund 记录退款结果
func ObserveRefund(result string) {
	refundsTotal.WithLabelValues(result).Inc()
}

// ObserveIsolationViolation 记录被拒绝的跨租户写入
func ObserveIsolationViolation(operation string) {
	isolationViolationsTotal.WithLabelValues(operation).Inc()
}

// ObserveResolution 记录租户解析结果（resolved/unresolved/cache_hit/error）
func ObserveResolution(result string) {
	resolutionsTotal.WithLabelValues(result).Inc()
}

// Middleware HTTP 请求耗时中间件
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics 处理器
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// ObserveRateLimited 记录被限流拒绝的请求
func ObserveRateLimited(rule string) {
	rateLimitedTotal.WithLabelValues(rule).Inc()
}

// ObserveWebhookTask 记录 webhook 任务处理结果（delivered / skipped / retry / exhausted）
func ObserveWebhookTask(result string) {
	webhookTasksTotal.WithLabelValues(result).Inc()
}
