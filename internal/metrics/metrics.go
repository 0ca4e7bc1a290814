// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアとアップストリームクライアントから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordUpstreamRequest(operation string, statusCode int)
	ObserveUpstreamLatency(operation string, duration time.Duration)
	RecordRateLimited()
	RecordSessionCreated()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	upstreamReqs    *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	rateLimited     prometheus.Counter
	sessionsCreated prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitdeck_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		upstreamReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitdeck_upstream_requests_total",
			Help: "GitHub API呼び出しの操作・ステータス別合計数",
		}, []string{"operation", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gitdeck_upstream_latency_seconds",
			Help:    "GitHub API呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitdeck_rate_limited_total",
			Help: "レート制限で拒否されたリクエストの合計数",
		}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitdeck_sessions_created_total",
			Help: "作成されたセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.upstreamReqs,
		c.upstreamLatency,
		c.rateLimited,
		c.sessionsCreated,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordUpstreamRequest はアップストリーム呼び出しの結果を記録する。
// statusCodeが0の場合はネットワーク障害を意味し "error" ラベルで記録する。
func (c *Collector) RecordUpstreamRequest(operation string, statusCode int) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	c.upstreamReqs.WithLabelValues(operation, status).Inc()
}

// ObserveUpstreamLatency はアップストリーム呼び出しのレイテンシを記録する。
func (c *Collector) ObserveUpstreamLatency(operation string, duration time.Duration) {
	c.upstreamLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRateLimited はレート制限による拒否を記録する。
func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// RecordSessionCreated はセッション作成を記録する。
func (c *Collector) RecordSessionCreated() {
	c.sessionsCreated.Inc()
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
