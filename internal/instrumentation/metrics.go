package instrumentation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dispatch layer. A nil
// *Metrics is valid and records nothing, so callers never need nil checks
// beyond the receiver.
type Metrics struct {
	registry *prometheus.Registry

	toolCalls        *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	probeDuration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a fresh private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcp_tool_calls_total",
			Help: "Tool calls by tool name, status and error kind.",
		}, []string{"tool", "status", "error_kind"}),
		toolCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mcp_tool_call_duration_seconds",
			Help:    "Tool call latency by tool name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcp_connection_cache_hits_total",
			Help: "Connection cache hits by cluster.",
		}, []string{"cluster"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcp_connection_cache_misses_total",
			Help: "Connection cache misses by cluster.",
		}, []string{"cluster"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mcp_version_probe_duration_seconds",
			Help:    "Version probe latency by cluster and outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"cluster", "status"}),
	}

	registry.MustRegister(
		m.toolCalls,
		m.toolCallDuration,
		m.cacheHits,
		m.cacheMisses,
		m.probeDuration,
	)
	return m
}

// Registry returns the registry backing these collectors, for the metrics
// HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordToolCall records one completed tool call. errorKind is empty on
// success.
func (m *Metrics) RecordToolCall(tool, status, errorKind string, d time.Duration) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, status, errorKind).Inc()
	m.toolCallDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// OnCacheHit implements opensearch.CacheMetrics.
func (m *Metrics) OnCacheHit(cluster string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(cluster).Inc()
}

// OnCacheMiss implements opensearch.CacheMetrics.
func (m *Metrics) OnCacheMiss(cluster string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(cluster).Inc()
}

// ObserveProbe implements opensearch.ProbeMetrics.
func (m *Metrics) ObserveProbe(cluster string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.probeDuration.WithLabelValues(cluster, status).Observe(d.Seconds())
}
