package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opensearch-tools/mcp-opensearch/internal/instrumentation"
)

const (
	// DefaultShutdownTimeout is the default timeout for graceful server shutdown
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultMetricsAddr is the default listen address for the metrics server
	DefaultMetricsAddr = ":9090"
)

// MetricsServerConfig holds the configuration for the dedicated metrics server.
type MetricsServerConfig struct {
	// Addr is the listen address, e.g. ":9090"
	Addr string
	// Metrics supplies the registry to expose
	Metrics *instrumentation.Metrics
}

// MetricsServer serves Prometheus metrics on a dedicated listener, separate
// from the MCP traffic.
type MetricsServer struct {
	httpServer *http.Server
}

// NewMetricsServer creates a metrics server exposing /metrics from the
// registry carried by the given Metrics.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.Metrics == nil {
		return nil, fmt.Errorf("metrics server requires a metrics registry")
	}
	if config.Addr == "" {
		config.Addr = DefaultMetricsAddr
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(config.Metrics.Registry(), promhttp.HandlerOpts{}))

	return &MetricsServer{
		httpServer: &http.Server{
			Addr:              config.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

// Addr returns the configured listen address.
func (m *MetricsServer) Addr() string {
	return m.httpServer.Addr
}

// Start begins serving metrics. It blocks until the server stops and returns
// http.ErrServerClosed after a graceful shutdown.
func (m *MetricsServer) Start() error {
	return m.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.httpServer.Shutdown(ctx)
}
