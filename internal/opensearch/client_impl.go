package opensearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	opensearchclient "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// DefaultRequestTimeout bounds every REST call to OpenSearch. Network calls
// are the only blocking operations in the dispatch path and must not hang a
// tool call indefinitely.
const DefaultRequestTimeout = 30 * time.Second

// clusterClient implements Client on top of the official OpenSearch client.
type clusterClient struct {
	name    string
	os      *opensearchclient.Client
	timeout time.Duration
}

// NewClient builds an authenticated client for one cluster descriptor. It
// resolves the descriptor's credential capability and configures the
// transport; it does not touch the network, so a returned client may still
// fail on first use if the cluster is unreachable.
func NewClient(ctx context.Context, desc ClusterDescriptor) (Client, error) {
	cred, err := ResolveCredential(ctx, desc)
	if err != nil {
		return nil, err
	}

	cfg := opensearchclient.Config{
		Addresses: []string{desc.URL},
	}
	switch cred.Variant {
	case AuthBasic:
		cfg.Username = cred.Username
		cfg.Password = cred.Password
	default:
		cfg.Signer = cred.Signer
	}
	if desc.InsecureSkipTLSVerify {
		cfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	osClient, err := opensearchclient.NewClient(cfg)
	if err != nil {
		return nil, &UpstreamError{Cluster: desc.Name, Operation: "creating client", Err: err}
	}

	return &clusterClient{
		name:    desc.Name,
		os:      osClient,
		timeout: DefaultRequestTimeout,
	}, nil
}

// do executes one opensearchapi request with a bounded timeout and returns
// the raw response body. Error responses from the cluster and transport
// failures both surface as UpstreamError.
func (c *clusterClient) do(ctx context.Context, operation string, req opensearchRequest) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := req.Do(ctx, c.os)
	if err != nil {
		return nil, &UpstreamError{Cluster: c.name, Operation: operation, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &UpstreamError{Cluster: c.name, Operation: operation, Err: err}
	}
	if res.IsError() {
		return nil, &UpstreamError{
			Cluster:   c.name,
			Operation: operation,
			Err:       fmt.Errorf("status %s: %s", res.Status(), strings.TrimSpace(string(body))),
		}
	}
	return body, nil
}

// opensearchRequest is the shape shared by all opensearchapi request structs.
type opensearchRequest interface {
	Do(ctx context.Context, transport opensearchapi.Transport) (*opensearchapi.Response, error)
}

func (c *clusterClient) Ping(ctx context.Context) error {
	_, err := c.do(ctx, "ping", opensearchapi.PingRequest{})
	return err
}

func (c *clusterClient) Info(ctx context.Context) (*InfoResponse, error) {
	body, err := c.do(ctx, "cluster info", opensearchapi.InfoRequest{})
	if err != nil {
		return nil, err
	}
	var info InfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, &UpstreamError{Cluster: c.name, Operation: "cluster info", Err: fmt.Errorf("decoding response: %w", err)}
	}
	return &info, nil
}

func (c *clusterClient) ListIndices(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, "cat indices", opensearchapi.CatIndicesRequest{Format: "json"})
}

func (c *clusterClient) GetIndexMapping(ctx context.Context, index string) (json.RawMessage, error) {
	return c.do(ctx, "get mapping", opensearchapi.IndicesGetMappingRequest{Index: []string{index}})
}

func (c *clusterClient) Search(ctx context.Context, index string, body any) (json.RawMessage, error) {
	reader, err := bodyReader(body)
	if err != nil {
		return nil, &ArgumentError{Tool: "search", Argument: "query", Reason: err.Error()}
	}
	return c.do(ctx, "search", opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  reader,
	})
}

func (c *clusterClient) GetShards(ctx context.Context, index string) (json.RawMessage, error) {
	return c.do(ctx, "cat shards", opensearchapi.CatShardsRequest{
		Index:  []string{index},
		Format: "json",
	})
}

func (c *clusterClient) Count(ctx context.Context, index string, body any) (json.RawMessage, error) {
	reader, err := bodyReader(body)
	if err != nil {
		return nil, &ArgumentError{Tool: "count", Argument: "body", Reason: err.Error()}
	}
	req := opensearchapi.CountRequest{Body: reader}
	if index != "" {
		req.Index = []string{index}
	}
	return c.do(ctx, "count", req)
}

func (c *clusterClient) Msearch(ctx context.Context, index string, ndjsonBody string) (json.RawMessage, error) {
	req := opensearchapi.MsearchRequest{Body: strings.NewReader(ndjsonBody)}
	if index != "" {
		req.Index = []string{index}
	}
	return c.do(ctx, "msearch", req)
}

func (c *clusterClient) Explain(ctx context.Context, index, documentID string, body any) (json.RawMessage, error) {
	reader, err := bodyReader(body)
	if err != nil {
		return nil, &ArgumentError{Tool: "explain", Argument: "body", Reason: err.Error()}
	}
	return c.do(ctx, "explain", opensearchapi.ExplainRequest{
		Index:      index,
		DocumentID: documentID,
		Body:       reader,
	})
}

func (c *clusterClient) ClusterHealth(ctx context.Context, index string) (json.RawMessage, error) {
	req := opensearchapi.ClusterHealthRequest{}
	if index != "" {
		req.Index = []string{index}
	}
	return c.do(ctx, "cluster health", req)
}

// bodyReader converts a handler-supplied body into an io.Reader. Strings are
// sent verbatim; byte slices and raw JSON pass through; anything else is
// marshalled to JSON. A nil body yields a nil reader.
func bodyReader(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		if b == "" {
			return nil, nil
		}
		return strings.NewReader(b), nil
	case []byte:
		if len(b) == 0 {
			return nil, nil
		}
		return bytes.NewReader(b), nil
	case json.RawMessage:
		if len(b) == 0 {
			return nil, nil
		}
		return bytes.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("cannot encode body as JSON: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}
