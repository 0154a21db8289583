// Package metrics 定义推荐服务的 Prometheus 指标。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 推荐请求
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_recommend_requests_total",
			Help: "Total number of recommendation requests by result status",
		},
		[]string{"status"}, // ok / not_found / cached / error
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animerec_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	RecommendItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "animerec_recommend_items",
			Help:    "Number of items returned per recommendation",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	// 链路节点
	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animerec_pipeline_node_duration_seconds",
			Help:    "Duration of pipeline node execution in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"node"},
	)

	NodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_pipeline_node_errors_total",
			Help: "Total number of pipeline node errors",
		},
		[]string{"node"},
	)

	ContentExpansionSkips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "animerec_content_expansion_skips_total",
			Help: "Total number of candidates skipped during content expansion",
		},
	)

	// 推荐结果缓存
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
		[]string{"backend"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
		[]string{"backend"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_cache_errors_total",
			Help: "Total number of recommendation cache errors",
		},
		[]string{"backend", "operation"}, // operation: get / put
	)

	CacheBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "animerec_cache_breaker_state",
			Help: "Circuit breaker state of the recommendation cache (0=closed, 1=half-open, 2=open)",
		},
		[]string{"backend"},
	)

	// 模型快照
	SnapshotInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "animerec_snapshot_entities",
			Help: "Number of entities in the loaded model snapshot",
		},
		[]string{"entity"}, // users / animes / catalog / ratings
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animerec_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordRecommend 记录一次推荐请求
func RecordRecommend(status string, items int, duration time.Duration) {
	RecommendRequests.WithLabelValues(status).Inc()
	RecommendDuration.WithLabelValues(status).Observe(duration.Seconds())
	RecommendItems.Observe(float64(items))
}

// RecordNode 记录一次节点执行
func RecordNode(node string, duration time.Duration, err error) {
	NodeDuration.WithLabelValues(node).Observe(duration.Seconds())
	if err != nil {
		NodeErrors.WithLabelValues(node).Inc()
	}
}

// RecordCacheLookup 记录一次缓存读取结果
func RecordCacheLookup(backend string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(backend).Inc()
		return
	}
	CacheMisses.WithLabelValues(backend).Inc()
}

// RecordCacheError 记录一次缓存读写失败
func RecordCacheError(backend, operation string) {
	CacheErrors.WithLabelValues(backend, operation).Inc()
}

// RecordHTTPRequest 记录一次 HTTP 请求
func RecordHTTPRequest(method, route, statusCode string, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, statusCode).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// UpdateSnapshot 更新快照规模
func UpdateSnapshot(users, animes, catalog, ratings int) {
	SnapshotInfo.WithLabelValues("users").Set(float64(users))
	SnapshotInfo.WithLabelValues("animes").Set(float64(animes))
	SnapshotInfo.WithLabelValues("catalog").Set(float64(catalog))
	SnapshotInfo.WithLabelValues("ratings").Set(float64(ratings))
}
