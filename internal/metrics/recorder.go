package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// ResultLabel 上游调用结果
type ResultLabel string

const (
	ResultOK        ResultLabel = "ok"
	ResultNotFound  ResultLabel = "not_found"
	ResultError     ResultLabel = "error"
	ResultCancelled ResultLabel = "cancelled"
)

// Recorder 记录网关和目录查询的运行数据
type Recorder interface {
	ObserveUpstream(op string, result ResultLabel, d time.Duration)
	IncCache(op string, hit bool)
	IncFallback(flow string)
}

// NoopRecorder 不记录任何数据
type NoopRecorder struct{}

func (NoopRecorder) ObserveUpstream(string, ResultLabel, time.Duration) {}
func (NoopRecorder) IncCache(string, bool)                             {}
func (NoopRecorder) IncFallback(string)                                {}

// PrometheusRecorder 基于 Prometheus 的 Recorder 实现
type PrometheusRecorder struct {
	once             sync.Once
	upstreamDuration *prom.HistogramVec
	upstreamResults  *prom.CounterVec
	cacheLookups     *prom.CounterVec
	fallbacks        *prom.CounterVec
}

// NewPrometheusRecorder 创建并在 reg 上注册目录服务指标
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.upstreamDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "appforge",
			Name:      "github_request_duration_seconds",
			Help:      "Duration of GitHub API calls by operation",
			Buckets:   prom.DefBuckets,
		}, []string{"op"})
		pr.upstreamResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "appforge",
			Name:      "github_requests_total",
			Help:      "GitHub API calls by operation and result",
		}, []string{"op", "result"})
		pr.cacheLookups = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "appforge",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by operation and outcome",
		}, []string{"op", "outcome"})
		pr.fallbacks = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "appforge",
			Name:      "catalog_fallbacks_total",
			Help:      "Catalog flows that degraded to the curated listing",
		}, []string{"flow"})
		reg.MustRegister(pr.upstreamDuration, pr.upstreamResults, pr.cacheLookups, pr.fallbacks)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveUpstream(op string, result ResultLabel, d time.Duration) {
	if p == nil || p.upstreamDuration == nil {
		return
	}
	p.upstreamDuration.WithLabelValues(op).Observe(d.Seconds())
	p.upstreamResults.WithLabelValues(op, string(result)).Inc()
}

func (p *PrometheusRecorder) IncCache(op string, hit bool) {
	if p == nil || p.cacheLookups == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	p.cacheLookups.WithLabelValues(op, outcome).Inc()
}

func (p *PrometheusRecorder) IncFallback(flow string) {
	if p == nil || p.fallbacks == nil {
		return
	}
	p.fallbacks.WithLabelValues(flow).Inc()
}
