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
// サービス層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordLinkCreated()
	RecordLinkRejected()
	RecordSearch()
	RecordSaveLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	linksCreated  prometheus.Counter
	linksRejected prometheus.Counter
	searches      prometheus.Counter
	saveLatency   prometheus.Histogram
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		linksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knowledgelink_links_created_total",
			Help: "保存されたリンクの合計数",
		}),
		linksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knowledgelink_links_rejected_total",
			Help: "本文抽出不足で拒否されたリンクの合計数",
		}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knowledgelink_searches_total",
			Help: "実行されたセマンティック検索の合計数",
		}),
		saveLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "knowledgelink_save_latency_seconds",
			Help:    "リンク保存処理（抽出・要約・埋め込み込み）のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "knowledgelink_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.linksCreated,
		c.linksRejected,
		c.searches,
		c.saveLatency,
		c.httpStatus,
	)

	return c
}

// RecordLinkCreated はリンク保存成功を記録する。
func (c *Collector) RecordLinkCreated() {
	c.linksCreated.Inc()
}

// RecordLinkRejected は本文不足によるリンク拒否を記録する。
func (c *Collector) RecordLinkRejected() {
	c.linksRejected.Inc()
}

// RecordSearch は検索実行を記録する。
func (c *Collector) RecordSearch() {
	c.searches.Inc()
}

// RecordSaveLatency はリンク保存処理のレイテンシを記録する。
func (c *Collector) RecordSaveLatency(duration time.Duration) {
	c.saveLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
