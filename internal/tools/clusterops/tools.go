// Package clusterops implements the cluster-level query tools: health, count,
// multi-search, and explain.
package clusterops

import (
	"github.com/Masterminds/semver/v3"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opensearch-tools/mcp-opensearch/internal/tools"
)

// Definitions returns the cluster operation tool definitions for catalog
// registration.
func Definitions() []tools.Definition {
	return []tools.Definition{
		{
			Name:        "ClusterHealthTool",
			Description: "Returns basic information about the health of the cluster, optionally scoped to one index",
			Options: []mcp.ToolOption{
				mcp.WithString("index",
					mcp.Description("Limit the health information to a specific index"),
				),
			},
			MinVersion:  semver.MustParse("1.0.0"),
			HTTPMethods: []string{"GET"},
			Handler:     handleClusterHealth,
		},
		{
			Name:        "CountTool",
			Description: "Returns the number of documents matching a query, across the cluster or within one index",
			Options: []mcp.ToolOption{
				mcp.WithString("index",
					mcp.Description("Limit the count to a specific index"),
				),
				mcp.WithObject("body",
					mcp.Description("Query in query DSL format restricting which documents are counted"),
				),
			},
			MinVersion:  semver.MustParse("1.0.0"),
			HTTPMethods: []string{"GET", "POST"},
			Handler:     handleCount,
		},
		{
			Name:        "MsearchTool",
			Description: "Runs multiple search operations in a single request",
			Options: []mcp.ToolOption{
				mcp.WithString("index",
					mcp.Description("Default index to search in for queries that do not name one"),
				),
				mcp.WithString("body",
					mcp.Required(),
					mcp.Description("Request body as NDJSON format: alternating lines of header and query objects ending with \\n. Alternatively, pass a JSON array [header, query, header, query, ...] and the tool will convert it to NDJSON for you."),
				),
			},
			Required:    []string{"body"},
			MinVersion:  semver.MustParse("1.0.0"),
			HTTPMethods: []string{"GET", "POST"},
			Handler:     handleMsearch,
		},
		{
			Name:        "ExplainTool",
			Description: "Explains how a specific document matches a query, returning the score calculation details",
			Options: []mcp.ToolOption{
				mcp.WithString("index",
					mcp.Required(),
					mcp.Description("The name of the index holding the document"),
				),
				mcp.WithString("id",
					mcp.Required(),
					mcp.Description("The document ID to explain"),
				),
				mcp.WithObject("body",
					mcp.Required(),
					mcp.Description("Request body containing the query to explain."),
				),
			},
			Required:    []string{"index", "id", "body"},
			MinVersion:  semver.MustParse("1.0.0"),
			HTTPMethods: []string{"GET", "POST"},
			Handler:     handleExplain,
		},
	}
}
