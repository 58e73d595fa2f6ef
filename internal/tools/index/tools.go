// Package index implements the index-level tools: listing indices, fetching
// mappings, searching, and inspecting shard placement.
package index

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opensearch-tools/mcp-opensearch/internal/tools"
)

// Definitions returns the index tool definitions for catalog registration.
func Definitions() []tools.Definition {
	return []tools.Definition{
		{
			Name:        "ListIndexTool",
			Description: "Lists all indices in the OpenSearch cluster",
			HTTPMethods: []string{"GET"},
			Handler:     handleListIndices,
		},
		{
			Name:        "IndexMappingTool",
			Description: "Retrieves index mapping and setting information for an index",
			Options: []mcp.ToolOption{
				mcp.WithString("index",
					mcp.Required(),
					mcp.Description("The name of the index to retrieve mappings for"),
				),
			},
			Required:    []string{"index"},
			HTTPMethods: []string{"GET"},
			Handler:     handleIndexMapping,
		},
		{
			Name:        "SearchIndexTool",
			Description: "Searches an index using a query written in query domain-specific language (DSL)",
			Options: []mcp.ToolOption{
				mcp.WithString("index",
					mcp.Required(),
					mcp.Description("The name of the index to search in"),
				),
				mcp.WithObject("query",
					mcp.Required(),
					mcp.Description("Query DSL describing which documents to match, placed in the query section of the search request body"),
				),
				mcp.WithNumber("size",
					mcp.Description("Maximum number of search hits to return (default 10)"),
				),
				mcp.WithNumber("from",
					mcp.Description("How many search hits to skip before returning results, for pagination"),
				),
				mcp.WithArray("sort",
					mcp.Description("List of sort directives for ordering search results"),
				),
				mcp.WithObject("aggs",
					mcp.Description("Aggregations to compute over the matched documents, keyed by aggregation name"),
				),
			},
			Required:    []string{"index", "query"},
			HTTPMethods: []string{"GET", "POST"},
			Handler:     handleSearchIndex,
		},
		{
			Name:        "GetShardsTool",
			Description: "Gets information about shards in the OpenSearch cluster",
			Options: []mcp.ToolOption{
				mcp.WithString("index",
					mcp.Required(),
					mcp.Description("The name of the index to get shard information for"),
				),
			},
			Required:    []string{"index"},
			HTTPMethods: []string{"GET"},
			Handler:     handleGetShards,
		},
	}
}
