package opensearch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient implements Client for tests. Only the hooks a test sets are
// exercised; everything else returns empty results.
type fakeClient struct {
	cluster  string
	infoFunc func(ctx context.Context) (*InfoResponse, error)
	pingFunc func(ctx context.Context) error
}

func (f *fakeClient) Ping(ctx context.Context) error {
	if f.pingFunc != nil {
		return f.pingFunc(ctx)
	}
	return nil
}

func (f *fakeClient) Info(ctx context.Context) (*InfoResponse, error) {
	if f.infoFunc != nil {
		return f.infoFunc(ctx)
	}
	return &InfoResponse{}, nil
}

func (f *fakeClient) ListIndices(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (f *fakeClient) GetIndexMapping(ctx context.Context, index string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeClient) Search(ctx context.Context, index string, body any) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeClient) GetShards(ctx context.Context, index string) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (f *fakeClient) Count(ctx context.Context, index string, body any) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeClient) Msearch(ctx context.Context, index string, ndjsonBody string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeClient) Explain(ctx context.Context, index, documentID string, body any) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeClient) ClusterHealth(ctx context.Context, index string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func testDescriptors(names ...string) map[string]ClusterDescriptor {
	descriptors := make(map[string]ClusterDescriptor, len(names))
	for _, name := range names {
		descriptors[name] = ClusterDescriptor{
			Name: name,
			URL:  "https://" + name + ".example.com:9200",
			Auth: AuthSpec{Username: "admin", Password: "secret"},
		}
	}
	return descriptors
}

func TestGetOrCreateUnknownCluster(t *testing.T) {
	var constructions atomic.Int32
	cache := NewConnectionCache(testDescriptors("prod"),
		WithClientFactory(func(ctx context.Context, desc ClusterDescriptor) (Client, error) {
			constructions.Add(1)
			return &fakeClient{cluster: desc.Name}, nil
		}),
	)

	_, err := cache.GetOrCreate(context.Background(), "staging")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCluster)
	assert.Contains(t, err.Error(), "prod")
	assert.Zero(t, constructions.Load(), "factory must not run for undeclared names")
}

func TestGetOrCreateConstructsExactlyOnce(t *testing.T) {
	var constructions atomic.Int32
	cache := NewConnectionCache(testDescriptors("prod"),
		WithClientFactory(func(ctx context.Context, desc ClusterDescriptor) (Client, error) {
			constructions.Add(1)
			time.Sleep(10 * time.Millisecond) // widen the race window
			return &fakeClient{cluster: desc.Name}, nil
		}),
	)

	const callers = 50
	clients := make([]Client, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client, err := cache.GetOrCreate(context.Background(), "prod")
			assert.NoError(t, err)
			clients[i] = client
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), constructions.Load())
	for i := 1; i < callers; i++ {
		assert.Same(t, clients[0], clients[i])
	}
	assert.Equal(t, 1, cache.Size())
}

func TestGetOrCreateFailureIsRetried(t *testing.T) {
	var attempts atomic.Int32
	cache := NewConnectionCache(testDescriptors("prod"),
		WithClientFactory(func(ctx context.Context, desc ClusterDescriptor) (Client, error) {
			if attempts.Add(1) == 1 {
				return nil, &UpstreamError{Cluster: desc.Name, Operation: "connect", Err: errors.New("refused")}
			}
			return &fakeClient{cluster: desc.Name}, nil
		}),
	)

	_, err := cache.GetOrCreate(context.Background(), "prod")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Equal(t, 0, cache.Size(), "failed construction must not be cached")

	client, err := cache.GetOrCreate(context.Background(), "prod")
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestCacheMetricsCallbacks(t *testing.T) {
	recorder := &cacheRecorder{}
	cache := NewConnectionCache(testDescriptors("prod"),
		WithClientFactory(func(ctx context.Context, desc ClusterDescriptor) (Client, error) {
			return &fakeClient{cluster: desc.Name}, nil
		}),
		WithCacheMetrics(recorder),
	)

	_, err := cache.GetOrCreate(context.Background(), "prod")
	require.NoError(t, err)
	_, err = cache.GetOrCreate(context.Background(), "prod")
	require.NoError(t, err)

	assert.Equal(t, int32(1), recorder.misses.Load())
	assert.Equal(t, int32(1), recorder.hits.Load())
}

type cacheRecorder struct {
	hits   atomic.Int32
	misses atomic.Int32
}

func (r *cacheRecorder) OnCacheHit(cluster string)  { r.hits.Add(1) }
func (r *cacheRecorder) OnCacheMiss(cluster string) { r.misses.Add(1) }

func TestNamesAreSorted(t *testing.T) {
	cache := NewConnectionCache(testDescriptors("zeta", "alpha", "mid"))
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, cache.Names())
}
