package opensearch

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ClientFactory constructs an authenticated client for one descriptor. The
// default is NewClient; tests substitute their own.
type ClientFactory func(ctx context.Context, desc ClusterDescriptor) (Client, error)

// ConnectionCache owns one authenticated client per configured cluster.
// Clients are created lazily on first use and reused for the lifetime of the
// process; there is no eviction, so the cache is bounded by the number of
// configured clusters.
//
// Concurrent first use of the same cluster name constructs exactly one
// client: construction is deduplicated per key with a singleflight group,
// and only the check-then-insert step takes the map lock. No lock is held
// across the network round-trip of client construction.
type ConnectionCache struct {
	descriptors map[string]ClusterDescriptor
	factory     ClientFactory
	logger      *slog.Logger
	metrics     CacheMetrics

	mu      sync.RWMutex
	clients map[string]Client
	group   singleflight.Group
}

// CacheMetrics is an optional callback for recording cache behavior without
// coupling the cache to the instrumentation package.
type CacheMetrics interface {
	OnCacheHit(cluster string)
	OnCacheMiss(cluster string)
}

// CacheOption customises a ConnectionCache.
type CacheOption func(*ConnectionCache)

// WithClientFactory overrides how clients are constructed. Used by tests.
func WithClientFactory(factory ClientFactory) CacheOption {
	return func(c *ConnectionCache) {
		c.factory = factory
	}
}

// WithCacheLogger sets the cache logger.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *ConnectionCache) {
		c.logger = logger
	}
}

// WithCacheMetrics sets the metrics callback.
func WithCacheMetrics(metrics CacheMetrics) CacheOption {
	return func(c *ConnectionCache) {
		c.metrics = metrics
	}
}

// NewConnectionCache creates a cache over the loaded descriptors.
func NewConnectionCache(descriptors map[string]ClusterDescriptor, opts ...CacheOption) *ConnectionCache {
	c := &ConnectionCache{
		descriptors: descriptors,
		factory:     NewClient,
		logger:      slog.Default(),
		clients:     make(map[string]Client, len(descriptors)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCreate returns the client for the named cluster, constructing it on
// first use. An undeclared name fails with ErrUnknownCluster before any
// network activity. Construction failures are not cached; a later call
// retries.
func (c *ConnectionCache) GetOrCreate(ctx context.Context, name string) (Client, error) {
	c.mu.RLock()
	client, ok := c.clients[name]
	c.mu.RUnlock()
	if ok {
		if c.metrics != nil {
			c.metrics.OnCacheHit(name)
		}
		return client, nil
	}

	desc, ok := c.descriptors[name]
	if !ok {
		return nil, &UnknownClusterError{Name: name, Known: c.Names()}
	}
	if c.metrics != nil {
		c.metrics.OnCacheMiss(name)
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		// Re-check under the group: a concurrent caller may have finished
		// construction between our read and this closure running.
		c.mu.RLock()
		existing, ok := c.clients[name]
		c.mu.RUnlock()
		if ok {
			return existing, nil
		}

		created, err := c.factory(ctx, desc)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.clients[name] = created
		c.mu.Unlock()

		c.logger.Info("opened connection to cluster",
			"cluster", name, "auth", variantName(desc.Auth))
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Client), nil
}

// Descriptor returns the configuration for the named cluster.
func (c *ConnectionCache) Descriptor(name string) (ClusterDescriptor, bool) {
	desc, ok := c.descriptors[name]
	return desc, ok
}

// Names returns the configured cluster names, sorted for stable messages.
func (c *ConnectionCache) Names() []string {
	names := make([]string, 0, len(c.descriptors))
	for name := range c.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of constructed clients.
func (c *ConnectionCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}

func variantName(auth AuthSpec) string {
	variant, err := auth.Variant()
	if err != nil {
		return "unknown"
	}
	return variant.String()
}
