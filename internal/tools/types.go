package tools

import (
	"context"

	"github.com/Masterminds/semver/v3"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opensearch-tools/mcp-opensearch/internal/opensearch"
)

// HandlerFunc executes one tool call against an already-resolved cluster
// client. Handlers never pick their target cluster; the dispatcher does.
type HandlerFunc func(ctx context.Context, client opensearch.Client, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Definition describes one tool independent of the operating mode. The
// catalog derives the mode-specific MCP schema from it.
type Definition struct {
	// Name is the tool name exposed to MCP clients.
	Name string

	// Description is the tool description exposed to MCP clients.
	Description string

	// Options declares the tool-specific schema parameters, without the
	// cluster selector. The catalog prepends it in multi mode.
	Options []mcp.ToolOption

	// Required lists argument names validated before any network call.
	Required []string

	// Handler executes the call against the resolved cluster client.
	Handler HandlerFunc

	// MinVersion is the minimum engine version the tool needs, or nil when
	// the tool is version-agnostic.
	MinVersion *semver.Version

	// HTTPMethods lists the HTTP verbs the tool issues upstream. Tools
	// without GET are dropped when write operations are disabled.
	HTTPMethods []string
}

// ReadOnly reports whether every upstream call the tool makes is a read.
// Tools declaring POST are still read-only when GET is also declared, since
// POST there only carries a request body.
func (d Definition) ReadOnly() bool {
	for _, m := range d.HTTPMethods {
		if m == "GET" {
			return true
		}
	}
	return false
}
