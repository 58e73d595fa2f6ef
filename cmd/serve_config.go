package cmd

import (
	"fmt"
	"strings"

	"github.com/opensearch-tools/mcp-opensearch/internal/opensearch"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport string
	HTTPAddr  string

	// Endpoint paths
	SSEEndpoint     string
	MessageEndpoint string
	HTTPEndpoint    string

	// Cluster configuration
	Mode       string
	ConfigPath string
	Profile    string

	// Tool catalog adjustments
	ToolOverrides    []string
	ToolOverridePath string
	ToolFilterPath   string

	// Metrics
	Metrics MetricsServeConfig

	DebugMode bool
}

// MetricsServeConfig holds configuration for the dedicated metrics listener.
type MetricsServeConfig struct {
	Enabled bool
	Addr    string
}

// Validate checks the serve configuration for problems that would only
// surface after the server started.
func (c ServeConfig) Validate() error {
	switch c.Transport {
	case transportStdio, transportSSE, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s, %s)",
			c.Transport, transportStdio, transportSSE, transportStreamableHTTP)
	}

	switch opensearch.Mode(c.Mode) {
	case opensearch.ModeSingle, opensearch.ModeMulti:
	default:
		return fmt.Errorf("unsupported mode: %s (supported: %s, %s)",
			c.Mode, opensearch.ModeSingle, opensearch.ModeMulti)
	}

	if c.Transport != transportStdio {
		if c.HTTPAddr == "" {
			return fmt.Errorf("--http-addr is required for the %s transport", c.Transport)
		}
	}
	if c.Transport == transportSSE {
		if err := validateEndpointPath(c.SSEEndpoint, "--sse-endpoint"); err != nil {
			return err
		}
		if err := validateEndpointPath(c.MessageEndpoint, "--message-endpoint"); err != nil {
			return err
		}
	}
	if c.Transport == transportStreamableHTTP {
		if err := validateEndpointPath(c.HTTPEndpoint, "--http-endpoint"); err != nil {
			return err
		}
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("--metrics-addr is required when metrics are enabled")
	}

	return nil
}

func validateEndpointPath(path, flag string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%s must start with /, got %q", flag, path)
	}
	return nil
}
