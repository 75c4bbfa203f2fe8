// Package metrics provides Prometheus metrics for the FPL query server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus instruments. A nil *Metrics is a no-op so
// internal packages can be exercised in tests without a registry.
type Metrics struct {
	FetchesTotal   *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	CacheHitsTotal *prometheus.CounterVec
	CacheMissTotal *prometheus.CounterVec
	StaleFallbacks prometheus.Counter
	ToolCallsTotal *prometheus.CounterVec
}

// New registers all instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fplquery_upstream_fetches_total",
				Help: "Upstream API fetches by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fplquery_upstream_fetch_duration_seconds",
				Help:    "Duration of upstream API fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fplquery_cache_hits_total",
				Help: "Cache hits by endpoint key",
			},
			[]string{"endpoint"},
		),
		CacheMissTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fplquery_cache_misses_total",
				Help: "Cache misses by endpoint key",
			},
			[]string{"endpoint"},
		),
		StaleFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fplquery_cache_stale_fallbacks_total",
				Help: "Times a stale cached payload was served after a fetch failure",
			},
		),
		ToolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fplquery_tool_calls_total",
				Help: "MCP tool invocations by tool and status",
			},
			[]string{"tool", "status"},
		),
	}
}

func (m *Metrics) ObserveFetch(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(endpoint, outcome).Inc()
	m.FetchDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) CacheHit(endpoint string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) CacheMiss(endpoint string) {
	if m == nil {
		return
	}
	m.CacheMissTotal.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) StaleFallback() {
	if m == nil {
		return
	}
	m.StaleFallbacks.Inc()
}

func (m *Metrics) ToolCall(tool, status string) {
	if m == nil {
		return
	}
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
}
