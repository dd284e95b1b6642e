// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// fortune.MetricsRecorderとmiddleware.StatusObserverを満たす。
type Collector struct {
	fortunesGenerated  *prometheus.CounterVec
	generationFailures prometheus.Counter
	generationLatency  prometheus.Histogram
	httpRequests       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fortunesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uranai_fortunes_generated_total",
			Help: "生成された占いのカード別合計数",
		}, []string{"card"}),
		generationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uranai_generation_failures_total",
			Help: "占い文生成失敗の合計数",
		}),
		generationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "uranai_generation_latency_seconds",
			Help:    "占い文生成のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uranai_http_requests_total",
			Help: "HTTPリクエストのメソッド・パス・ステータスコード別合計数",
		}, []string{"method", "path", "status_code"}),
	}

	reg.MustRegister(
		c.fortunesGenerated,
		c.generationFailures,
		c.generationLatency,
		c.httpRequests,
	)

	return c
}

// RecordFortuneGenerated は占い生成成功をカード別に記録する。
func (c *Collector) RecordFortuneGenerated(cardName string) {
	c.fortunesGenerated.WithLabelValues(cardName).Inc()
}

// RecordGenerationFailure は占い文生成の失敗を記録する。
func (c *Collector) RecordGenerationFailure() {
	c.generationFailures.Inc()
}

// RecordGenerationLatency は占い文生成のレイテンシを記録する。
func (c *Collector) RecordGenerationLatency(duration time.Duration) {
	c.generationLatency.Observe(duration.Seconds())
}

// RecordHTTPRequest はHTTPリクエストの結果を記録する。
func (c *Collector) RecordHTTPRequest(method, path string, statusCode int) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
