package cmd

import (
	"context"
	"fmt"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/opensearch-tools/mcp-opensearch/internal/instrumentation"
	"github.com/opensearch-tools/mcp-opensearch/internal/logging"
	"github.com/opensearch-tools/mcp-opensearch/internal/server"
)

// runSSEServer runs the server with SSE transport
func runSSEServer(mcpSrv *mcpserver.MCPServer, config ServeConfig, ctx context.Context, logger *slog.Logger, metrics *instrumentation.Metrics) error {
	// Create SSE server with custom endpoints
	sseServer := mcpserver.NewSSEServer(mcpSrv,
		mcpserver.WithSSEEndpoint(config.SSEEndpoint),
		mcpserver.WithMessageEndpoint(config.MessageEndpoint),
	)

	logger.Info("SSE server starting",
		"addr", config.HTTPAddr,
		"sse_endpoint", config.SSEEndpoint,
		"message_endpoint", config.MessageEndpoint)

	// Start metrics server if enabled
	metricsServer, err := startMetricsServer(config.Metrics, metrics, logger)
	if err != nil {
		return err
	}

	// Start server in goroutine
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := sseServer.Start(config.HTTPAddr); err != nil {
			serverDone <- err
		}
	}()

	// Wait for either shutdown signal or server completion
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping SSE server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error shutting down metrics server", logging.Err(err))
			}
		}

		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down SSE server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("SSE server stopped with error: %w", err)
		}
		logger.Info("SSE server stopped normally")
	}

	logger.Info("SSE server gracefully stopped")
	return nil
}
