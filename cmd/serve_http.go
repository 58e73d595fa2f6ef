package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/opensearch-tools/mcp-opensearch/internal/instrumentation"
	"github.com/opensearch-tools/mcp-opensearch/internal/logging"
	"github.com/opensearch-tools/mcp-opensearch/internal/server"
)

// runStreamableHTTPServer runs the server with Streamable HTTP transport
func runStreamableHTTPServer(mcpSrv *mcpserver.MCPServer, config ServeConfig, ctx context.Context, logger *slog.Logger, sc *server.ServerContext, metrics *instrumentation.Metrics) error {
	mux := http.NewServeMux()

	// Create Streamable HTTP handler
	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(config.HTTPEndpoint),
	)
	mux.Handle(config.HTTPEndpoint, mcpHandler)

	// Add health check endpoints
	healthChecker := server.NewHealthChecker(sc, rootCmd.Version)
	healthChecker.RegisterHealthEndpoints(mux)

	logger.Info("streamable HTTP server starting",
		"addr", config.HTTPAddr,
		"endpoint", config.HTTPEndpoint,
		"health_endpoints", []string{"/healthz", "/readyz"})

	// Metrics are served on a separate listener so cluster internals never
	// share a port with MCP traffic.
	metricsServer, err := startMetricsServer(config.Metrics, metrics, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in goroutine
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	// Wait for either shutdown signal or server completion
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()

		// Shutdown metrics server first
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error shutting down metrics server", logging.Err(err))
			}
		}

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

// startMetricsServer starts the dedicated metrics server on a separate port.
// Returns nil without error when metrics are disabled.
func startMetricsServer(config MetricsServeConfig, metrics *instrumentation.Metrics, logger *slog.Logger) (*server.MetricsServer, error) {
	if !config.Enabled || metrics == nil {
		return nil, nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:    config.Addr,
		Metrics: metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Start metrics server in background
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", logging.Err(err))
		}
	}()

	logger.Info("metrics server started", "addr", config.Addr, "endpoint", "/metrics")
	return metricsServer, nil
}
