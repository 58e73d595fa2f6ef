package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/opensearch-tools/mcp-opensearch/internal/instrumentation"
	"github.com/opensearch-tools/mcp-opensearch/internal/logging"
	"github.com/opensearch-tools/mcp-opensearch/internal/opensearch"
	"github.com/opensearch-tools/mcp-opensearch/internal/server"
	"github.com/opensearch-tools/mcp-opensearch/internal/tools"
	"github.com/opensearch-tools/mcp-opensearch/internal/tools/clusterops"
	"github.com/opensearch-tools/mcp-opensearch/internal/tools/index"
)

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var config ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP OpenSearch server",
		Long: `Start the MCP OpenSearch server to provide tools for querying
OpenSearch clusters via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Cluster modes:
  - single (default): one cluster, configured through OPENSEARCH_* and AWS_*
    environment variables
  - multi: many named clusters, declared in a YAML file given with --config;
    every tool call must name its target cluster

Authentication per cluster resolves in priority order: IAM role ARN, then
basic username/password, then AWS credentials (static keys or profile chain).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			return runServe(config)
		},
	}

	cmd.Flags().StringVar(&config.Mode, "mode", string(opensearch.ModeSingle), "Cluster mode: single or multi")
	cmd.Flags().StringVar(&config.ConfigPath, "config", "", "Path to the YAML cluster configuration file (multi mode)")
	cmd.Flags().StringVar(&config.Profile, "profile", "", "AWS profile used when a cluster does not set one")
	cmd.Flags().BoolVar(&config.DebugMode, "debug", false, "Enable debug logging (default: false)")

	// Transport flags
	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&config.SSEEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.MessageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.HTTPEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")

	// Tool catalog flags
	cmd.Flags().StringArrayVar(&config.ToolOverrides, "tool-override", nil, "Tool override entries of the form Tool.displayName=... or Tool.description=... (repeatable)")
	cmd.Flags().StringVar(&config.ToolOverridePath, "tool-config", "", "Path to a YAML file with tool display name and description overrides")
	cmd.Flags().StringVar(&config.ToolFilterPath, "filter-config", "", "Path to a YAML file with tool filter settings (overrides filter environment variables)")

	// Metrics flags
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "enable-metrics", false, "Serve Prometheus metrics on a dedicated listener")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Listen address for the metrics server")

	return cmd
}

// runServe contains the main server logic with support for multiple transports.
func runServe(config ServeConfig) error {
	level := slog.LevelInfo
	if config.DebugMode {
		level = slog.LevelDebug
	}
	// Logs go to stderr; stdout belongs to the MCP stream in stdio mode.
	logger := logging.New(os.Stderr, level)

	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	descriptors, mode, err := opensearch.LoadDescriptors(
		opensearch.Mode(config.Mode), config.ConfigPath, config.Profile, logger)
	if err != nil {
		return fmt.Errorf("loading cluster configuration: %w", err)
	}

	// Multi mode checks reachability up front and keeps serving the clusters
	// that respond. Single mode fails at catalog build instead, where the
	// version probe hits the same endpoint.
	if mode == opensearch.ModeMulti {
		descriptors = checkConnections(shutdownCtx, descriptors, logger)
	}

	var metrics *instrumentation.Metrics
	if config.Metrics.Enabled {
		metrics = instrumentation.NewMetrics()
	}

	serverContext, err := server.NewServerContext(shutdownCtx,
		server.WithMode(mode),
		server.WithDescriptors(descriptors),
		server.WithLogger(logger),
		server.WithMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	defs, err := buildDefinitions(config, logger)
	if err != nil {
		return err
	}

	view, err := tools.BuildView(shutdownCtx, serverContext, defs)
	if err != nil {
		return fmt.Errorf("failed to build tool catalog: %w", err)
	}

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("mcp-opensearch", rootCmd.Version,
		mcpserver.WithToolCapabilities(true),
	)
	tools.NewDispatcher(serverContext).Register(mcpSrv, view)

	logger.Info("tool catalog ready",
		"mode", string(mode), "tools", len(view), "clusters", len(descriptors))

	// Start the appropriate server based on transport type
	switch config.Transport {
	case transportStdio:
		// Don't print startup messages for stdio mode as it interferes with MCP communication
		return runStdioServer(mcpSrv)
	case transportSSE:
		return runSSEServer(mcpSrv, config, shutdownCtx, logger, metrics)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(mcpSrv, config, shutdownCtx, logger, serverContext, metrics)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", config.Transport)
	}
}

// buildDefinitions aggregates the tool definitions and applies overrides and
// filters in that order, so filters see the final tool names.
func buildDefinitions(config ServeConfig, logger *slog.Logger) ([]tools.Definition, error) {
	defs := append(index.Definitions(), clusterops.Definitions()...)

	var fileOverrides map[string]tools.ToolOverride
	if config.ToolOverridePath != "" {
		var err error
		fileOverrides, err = tools.LoadOverridesFromYAML(config.ToolOverridePath)
		if err != nil {
			return nil, err
		}
	}
	cliOverrides, err := tools.ParseCLIOverrides(config.ToolOverrides)
	if err != nil {
		return nil, err
	}
	defs = tools.ApplyOverrides(defs, fileOverrides, cliOverrides, logger)

	filter, err := tools.FilterFromEnv()
	if err != nil {
		return nil, err
	}
	if config.ToolFilterPath != "" {
		filter, err = tools.LoadFilterFromYAML(config.ToolFilterPath)
		if err != nil {
			return nil, err
		}
	}
	return tools.ApplyFilter(defs, filter, logger), nil
}

// checkConnections pings every configured cluster once and drops the ones
// that do not respond, logging each skip. Serverless collections are kept
// without a ping; they have no cluster-level endpoint to probe.
func checkConnections(ctx context.Context, descriptors map[string]opensearch.ClusterDescriptor, logger *slog.Logger) map[string]opensearch.ClusterDescriptor {
	reachable := make(map[string]opensearch.ClusterDescriptor, len(descriptors))
	for name, desc := range descriptors {
		if desc.Auth.Serverless {
			reachable[name] = desc
			continue
		}

		client, err := opensearch.NewClient(ctx, desc)
		if err == nil {
			err = client.Ping(ctx)
		}
		if err != nil {
			logger.Error("skipping unreachable cluster",
				logging.Cluster(name), logging.SanitizedErr(err))
			continue
		}
		reachable[name] = desc
	}
	return reachable
}
