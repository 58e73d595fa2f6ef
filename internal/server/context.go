package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/opensearch-tools/mcp-opensearch/internal/instrumentation"
	"github.com/opensearch-tools/mcp-opensearch/internal/opensearch"
)

// ServerContext encapsulates the dependencies needed by the MCP server and
// provides lifecycle management. All fields are set at construction and read
// concurrently afterwards.
type ServerContext struct {
	mode        opensearch.Mode
	descriptors map[string]opensearch.ClusterDescriptor
	cache       *opensearch.ConnectionCache
	prober      *opensearch.VersionProber
	logger      *slog.Logger
	metrics     *instrumentation.Metrics

	// Context management
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a ServerContext from the given options. The
// connection cache and version prober are built from the loaded descriptors
// unless an option supplied them (tests do).
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		mode:   opensearch.ModeSingle,
		logger: slog.Default(),
		ctx:    serverCtx,
		cancel: cancel,
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	if sc.cache == nil {
		cacheOpts := []opensearch.CacheOption{opensearch.WithCacheLogger(sc.logger)}
		if sc.metrics != nil {
			cacheOpts = append(cacheOpts, opensearch.WithCacheMetrics(sc.metrics))
		}
		sc.cache = opensearch.NewConnectionCache(sc.descriptors, cacheOpts...)
	}
	if sc.prober == nil {
		proberOpts := []opensearch.ProberOption{opensearch.WithProberLogger(sc.logger)}
		if sc.metrics != nil {
			proberOpts = append(proberOpts, opensearch.WithProbeMetrics(sc.metrics))
		}
		sc.prober = opensearch.NewVersionProber(sc.cache, proberOpts...)
	}

	return sc, nil
}

// Context returns the server context for cancellation and deadlines.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Mode returns the effective operating mode.
func (sc *ServerContext) Mode() opensearch.Mode {
	return sc.mode
}

// MultiMode reports whether calls must name their target cluster.
func (sc *ServerContext) MultiMode() bool {
	return sc.mode == opensearch.ModeMulti
}

// Descriptors returns the loaded cluster descriptors.
func (sc *ServerContext) Descriptors() map[string]opensearch.ClusterDescriptor {
	return sc.descriptors
}

// DefaultClusterName returns the sole configured cluster name. Only
// meaningful in single mode, where exactly one descriptor is loaded.
func (sc *ServerContext) DefaultClusterName() string {
	for name := range sc.descriptors {
		return name
	}
	return opensearch.DefaultClusterName
}

// Cache returns the connection cache.
func (sc *ServerContext) Cache() *opensearch.ConnectionCache {
	return sc.cache
}

// Prober returns the version prober.
func (sc *ServerContext) Prober() *opensearch.VersionProber {
	return sc.prober
}

// Logger returns the logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics collectors; nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Shutdown cancels the server context. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.logger.Info("shutting down server context")
	if sc.cancel != nil {
		sc.cancel()
	}
	sc.shutdown = true
	return nil
}

// IsShutdown reports whether the server context has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// validate ensures the required dependencies are set.
func (sc *ServerContext) validate() error {
	if len(sc.descriptors) == 0 {
		return ErrMissingDescriptors
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.mode == opensearch.ModeSingle && len(sc.descriptors) != 1 {
		return ErrSingleModeDescriptors
	}
	return nil
}
