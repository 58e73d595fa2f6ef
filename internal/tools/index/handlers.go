package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opensearch-tools/mcp-opensearch/internal/opensearch"
	"github.com/opensearch-tools/mcp-opensearch/internal/tools"
)

func handleListIndices(ctx context.Context, client opensearch.Client, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := client.ListIndices(ctx)
	if err != nil {
		return nil, err
	}

	var indices []struct {
		Index string `json:"index"`
	}
	if err := json.Unmarshal(raw, &indices); err != nil {
		return nil, fmt.Errorf("decoding index listing: %w", err)
	}

	names := make([]string, len(indices))
	for i, idx := range indices {
		names[i] = idx.Index
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func handleIndexMapping(ctx context.Context, client opensearch.Client, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, _ := tools.StringArg(request, "index")

	raw, err := client.GetIndexMapping(ctx, index)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Mapping for %s:\n%s", index, prettyJSON(raw))), nil
}

func handleSearchIndex(ctx context.Context, client opensearch.Client, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, _ := tools.StringArg(request, "index")
	query, _ := tools.AnyArg(request, "query")

	body := map[string]any{"query": query}
	args := request.GetArguments()
	for _, key := range []string{"size", "from", "sort", "aggs"} {
		if value, ok := args[key]; ok {
			body[key] = value
		}
	}

	raw, err := client.Search(ctx, index, body)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Search results from %s:\n%s", index, prettyJSON(raw))), nil
}

func handleGetShards(ctx context.Context, client opensearch.Client, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, _ := tools.StringArg(request, "index")

	raw, err := client.GetShards(ctx, index)
	if err != nil {
		return nil, err
	}

	var shards []struct {
		Index  string `json:"index"`
		Shard  string `json:"shard"`
		PriRep string `json:"prirep"`
		State  string `json:"state"`
		Docs   string `json:"docs"`
		Store  string `json:"store"`
		IP     string `json:"ip"`
		Node   string `json:"node"`
	}
	if err := json.Unmarshal(raw, &shards); err != nil {
		return nil, fmt.Errorf("decoding shard listing: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("index | shard | prirep | state | docs | store | ip | node\n")
	for _, s := range shards {
		fmt.Fprintf(&sb, "%s | %s | %s | %s | %s | %s | %s | %s\n",
			s.Index, s.Shard, s.PriRep, s.State, s.Docs, s.Store, s.IP, s.Node)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// prettyJSON indents a raw JSON document for display. The raw bytes are
// returned unchanged when they do not parse.
func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
