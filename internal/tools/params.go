package tools

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ClusterNameArg is the injected argument naming the target cluster in multi
// mode. It is absent from every tool schema in single mode.
const ClusterNameArg = "opensearch_cluster_name"

// ClusterParam returns the tool option declaring the cluster selector
// argument injected into every tool schema in multi mode.
func ClusterParam() mcp.ToolOption {
	return mcp.WithString(ClusterNameArg,
		mcp.Required(),
		mcp.Description("Name of the OpenSearch cluster to run this tool against, as declared in the cluster configuration"),
	)
}

// StringArg extracts a string argument from the request. The second return
// is false when the argument is absent, not a string, or blank.
func StringArg(request mcp.CallToolRequest, name string) (string, bool) {
	value, ok := request.GetArguments()[name].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// OptionalStringArg extracts a string argument, returning "" when absent.
func OptionalStringArg(request mcp.CallToolRequest, name string) string {
	value, _ := request.GetArguments()[name].(string)
	return value
}

// AnyArg extracts an argument of any type, typically a query body that may
// arrive as a JSON object or a pre-serialized string.
func AnyArg(request mcp.CallToolRequest, name string) (any, bool) {
	value, ok := request.GetArguments()[name]
	return value, ok
}
