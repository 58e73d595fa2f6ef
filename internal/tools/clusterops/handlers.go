package clusterops

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

func handleClusterHealth(ctx context.Context, client opensearch.Client, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index := tools.OptionalStringArg(request, "index")

	raw, err := client.ClusterHealth(ctx, index)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(prettyJSON(raw)), nil
}

func handleCount(ctx context.Context, client opensearch.Client, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index := tools.OptionalStringArg(request, "index")

	var body any
	if value, ok := tools.AnyArg(request, "body"); ok {
		normalized, err := normalizeJSONBody(value)
		if err != nil {
			return nil, &opensearch.ArgumentError{Tool: "CountTool", Argument: "body", Reason: err.Error()}
		}
		body = normalized
	}

	raw, err := client.Count(ctx, index, body)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(prettyJSON(raw)), nil
}

func handleMsearch(ctx context.Context, client opensearch.Client, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index := tools.OptionalStringArg(request, "index")

	value, _ := tools.AnyArg(request, "body")
	ndjson, err := NormalizeMsearchBody(value)
	if err != nil {
		return nil, &opensearch.ArgumentError{Tool: "MsearchTool", Argument: "body", Reason: err.Error()}
	}

	raw, err := client.Msearch(ctx, index, ndjson)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(prettyJSON(raw)), nil
}

func handleExplain(ctx context.Context, client opensearch.Client, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, _ := tools.StringArg(request, "index")
	documentID, _ := tools.StringArg(request, "id")

	value, _ := tools.AnyArg(request, "body")
	body, err := normalizeJSONBody(value)
	if err != nil {
		return nil, &opensearch.ArgumentError{Tool: "ExplainTool", Argument: "body", Reason: err.Error()}
	}

	raw, err := client.Explain(ctx, index, documentID, body)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Explanation for document %s in %s:\n%s", documentID, index, prettyJSON(raw))), nil
}

// NormalizeMsearchBody converts the msearch body argument to NDJSON. A JSON
// array, given directly or as a string, becomes one serialized object per
// line; anything else is treated as NDJSON already and gains a trailing
// newline when missing.
func NormalizeMsearchBody(value any) (string, error) {
	switch body := value.(type) {
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(body), &parsed); err == nil {
			if items, ok := parsed.([]any); ok {
				return joinNDJSON(items)
			}
		}
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		return body, nil
	case []any:
		return joinNDJSON(body)
	default:
		return "", fmt.Errorf("must be an NDJSON string or a JSON array of header and query objects")
	}
}

func joinNDJSON(items []any) (string, error) {
	var sb strings.Builder
	for _, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return "", fmt.Errorf("contains an unserializable entry: %v", err)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// normalizeJSONBody decodes a string body into an object and passes through
// everything else unchanged.
func normalizeJSONBody(value any) (any, error) {
	body, isString := value.(string)
	if !isString {
		return value, nil
	}
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("is not valid JSON: %v", err)
	}
	return parsed, nil
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
