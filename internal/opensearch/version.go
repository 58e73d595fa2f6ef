package opensearch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/singleflight"
)

// CapabilityInfo describes what a cluster can run. The engine version is
// fetched lazily and cached for the process lifetime; a version change during
// a server's run is accepted as staleness. Serverless collections have no
// probeable version and satisfy every requirement.
type CapabilityInfo struct {
	ClusterName string
	Version     *semver.Version
	Serverless  bool
}

// Satisfies reports whether the cluster can run a tool with the given
// minimum version. A nil minimum means the tool is version-agnostic.
func (ci CapabilityInfo) Satisfies(min *semver.Version) bool {
	if min == nil || ci.Serverless {
		return true
	}
	if ci.Version == nil {
		return false
	}
	return !ci.Version.LessThan(min)
}

// VersionProber determines the engine version of each cluster with a
// lightweight cluster-info call. Results are cached per cluster after first
// success; failures are surfaced to the caller and not cached, so a
// temporarily unreachable cluster can be probed again.
type VersionProber struct {
	cache   *ConnectionCache
	logger  *slog.Logger
	metrics ProbeMetrics

	mu       sync.RWMutex
	versions map[string]CapabilityInfo
	group    singleflight.Group
}

// ProbeMetrics is an optional callback for recording probe latency.
type ProbeMetrics interface {
	ObserveProbe(cluster string, d time.Duration, err error)
}

// ProberOption customises a VersionProber.
type ProberOption func(*VersionProber)

// WithProberLogger sets the prober logger.
func WithProberLogger(logger *slog.Logger) ProberOption {
	return func(p *VersionProber) {
		p.logger = logger
	}
}

// WithProbeMetrics sets the metrics callback.
func WithProbeMetrics(metrics ProbeMetrics) ProberOption {
	return func(p *VersionProber) {
		p.metrics = metrics
	}
}

// NewVersionProber creates a prober backed by the connection cache.
func NewVersionProber(cache *ConnectionCache, opts ...ProberOption) *VersionProber {
	p := &VersionProber{
		cache:    cache,
		logger:   slog.Default(),
		versions: make(map[string]CapabilityInfo),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Capability returns the cached capability info for the named cluster,
// probing it on first use. Serverless clusters never hit the network.
func (p *VersionProber) Capability(ctx context.Context, name string) (CapabilityInfo, error) {
	p.mu.RLock()
	info, ok := p.versions[name]
	p.mu.RUnlock()
	if ok {
		return info, nil
	}

	desc, ok := p.cache.Descriptor(name)
	if !ok {
		return CapabilityInfo{}, &UnknownClusterError{Name: name, Known: p.cache.Names()}
	}

	v, err, _ := p.group.Do(name, func() (any, error) {
		p.mu.RLock()
		cached, ok := p.versions[name]
		p.mu.RUnlock()
		if ok {
			return cached, nil
		}

		probed, err := p.probe(ctx, desc)
		if err != nil {
			return CapabilityInfo{}, err
		}

		p.mu.Lock()
		p.versions[name] = probed
		p.mu.Unlock()
		return probed, nil
	})
	if err != nil {
		return CapabilityInfo{}, err
	}
	return v.(CapabilityInfo), nil
}

func (p *VersionProber) probe(ctx context.Context, desc ClusterDescriptor) (CapabilityInfo, error) {
	if desc.Auth.Serverless {
		p.logger.Debug("serverless collection, skipping version probe", "cluster", desc.Name)
		return CapabilityInfo{ClusterName: desc.Name, Serverless: true}, nil
	}

	client, err := p.cache.GetOrCreate(ctx, desc.Name)
	if err != nil {
		return CapabilityInfo{}, err
	}

	start := time.Now()
	info, err := client.Info(ctx)
	if p.metrics != nil {
		p.metrics.ObserveProbe(desc.Name, time.Since(start), err)
	}
	if err != nil {
		return CapabilityInfo{}, err
	}

	version, err := semver.NewVersion(info.Version.Number)
	if err != nil {
		return CapabilityInfo{}, &UpstreamError{
			Cluster:   desc.Name,
			Operation: "version probe",
			Err:       fmt.Errorf("unparseable engine version %q: %w", info.Version.Number, err),
		}
	}

	p.logger.Info("probed cluster version",
		"cluster", desc.Name, "version", version.String(), "distribution", info.Version.Distribution)
	return CapabilityInfo{ClusterName: desc.Name, Version: version}, nil
}
