package opensearch

import (
	"context"
	"encoding/json"
)

// Client is an opened, authenticated connection to one OpenSearch cluster.
// It is shared by all concurrent tool calls targeting that cluster and lives
// for the remainder of the process once created.
//
// Each method performs exactly one REST call and returns the raw response
// body; result shaping belongs to the tool handlers. Methods honor context
// cancellation and carry a bounded request timeout.
type Client interface {
	// Ping checks basic reachability and authentication.
	Ping(ctx context.Context) error

	// Info returns the cluster identity and engine version.
	Info(ctx context.Context) (*InfoResponse, error)

	// ListIndices returns the cat/indices listing in JSON format.
	ListIndices(ctx context.Context) (json.RawMessage, error)

	// GetIndexMapping returns mapping information for one index.
	GetIndexMapping(ctx context.Context, index string) (json.RawMessage, error)

	// Search runs a query-DSL search against one index.
	Search(ctx context.Context, index string, body any) (json.RawMessage, error)

	// GetShards returns the cat/shards listing for one index in JSON format.
	GetShards(ctx context.Context, index string) (json.RawMessage, error)

	// Count returns the document count for an index, optionally filtered by
	// a query body. An empty index counts across all indices.
	Count(ctx context.Context, index string, body any) (json.RawMessage, error)

	// Msearch runs a multi-search request. The body must be NDJSON.
	Msearch(ctx context.Context, index string, ndjsonBody string) (json.RawMessage, error)

	// Explain explains how one document scores against a query.
	Explain(ctx context.Context, index, documentID string, body any) (json.RawMessage, error)

	// ClusterHealth returns cluster health, optionally scoped to an index.
	ClusterHealth(ctx context.Context, index string) (json.RawMessage, error)
}

// InfoResponse is the subset of the root endpoint response the server needs.
type InfoResponse struct {
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number       string `json:"number"`
		Distribution string `json:"distribution"`
	} `json:"version"`
}
