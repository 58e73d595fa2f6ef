package server

import (
	"errors"
	"log/slog"

	"github.com/opensearch-tools/mcp-opensearch/internal/instrumentation"
	"github.com/opensearch-tools/mcp-opensearch/internal/opensearch"
)

var (
	// ErrMissingDescriptors is returned when no cluster descriptors were provided.
	ErrMissingDescriptors = errors.New("no cluster descriptors configured")

	// ErrMissingLogger is returned when the logger option cleared the logger.
	ErrMissingLogger = errors.New("logger is required")

	// ErrSingleModeDescriptors is returned when single mode is configured with
	// more than one cluster descriptor.
	ErrSingleModeDescriptors = errors.New("single mode requires exactly one cluster descriptor")
)

// Option configures a ServerContext during construction.
type Option func(*ServerContext) error

// WithMode sets the operating mode.
func WithMode(mode opensearch.Mode) Option {
	return func(sc *ServerContext) error {
		sc.mode = mode
		return nil
	}
}

// WithDescriptors sets the cluster descriptors the server will expose.
func WithDescriptors(descriptors map[string]opensearch.ClusterDescriptor) Option {
	return func(sc *ServerContext) error {
		sc.descriptors = descriptors
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) error {
		sc.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(sc *ServerContext) error {
		sc.metrics = metrics
		return nil
	}
}

// WithConnectionCache overrides the connection cache built from the
// descriptors. Used by tests to inject fake clients.
func WithConnectionCache(cache *opensearch.ConnectionCache) Option {
	return func(sc *ServerContext) error {
		sc.cache = cache
		return nil
	}
}

// WithVersionProber overrides the version prober built from the cache.
func WithVersionProber(prober *opensearch.VersionProber) Option {
	return func(sc *ServerContext) error {
		sc.prober = prober
		return nil
	}
}
