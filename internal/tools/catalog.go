package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opensearch-tools/mcp-opensearch/internal/logging"
	"github.com/opensearch-tools/mcp-opensearch/internal/server"
)

// RegisteredTool pairs the MCP tool schema with the definition it was built
// from, ready for registration on the MCP server.
type RegisteredTool struct {
	Tool       mcp.Tool
	Definition Definition
}

// BuildView derives the mode-dependent tool list from the definitions.
//
// In single mode the sole configured cluster is probed once and tools whose
// minimum version it cannot satisfy are left out of the view entirely. A
// failed probe is fatal: a single-cluster server that cannot reach its
// cluster has nothing useful to serve.
//
// In multi mode every tool is listed regardless of version, because clusters
// are heterogeneous; the version gate moves to dispatch time. Each schema
// gains a required cluster selector argument.
func BuildView(ctx context.Context, sc *server.ServerContext, defs []Definition) ([]RegisteredTool, error) {
	if sc.MultiMode() {
		return buildMultiView(defs), nil
	}
	return buildSingleView(ctx, sc, defs)
}

func buildSingleView(ctx context.Context, sc *server.ServerContext, defs []Definition) ([]RegisteredTool, error) {
	cluster := sc.DefaultClusterName()
	capability, err := sc.Prober().Capability(ctx, cluster)
	if err != nil {
		return nil, fmt.Errorf("probing cluster %q: %w", cluster, err)
	}

	view := make([]RegisteredTool, 0, len(defs))
	for _, def := range defs {
		if !capability.Satisfies(def.MinVersion) {
			sc.Logger().Info("tool hidden, cluster version too old",
				logging.Tool(def.Name),
				logging.Cluster(cluster),
				"min_version", def.MinVersion.String(),
				"cluster_version", capability.Version.String())
			continue
		}
		view = append(view, RegisteredTool{
			Tool:       buildTool(def, nil),
			Definition: def,
		})
	}
	return view, nil
}

func buildMultiView(defs []Definition) []RegisteredTool {
	view := make([]RegisteredTool, 0, len(defs))
	for _, def := range defs {
		view = append(view, RegisteredTool{
			Tool:       buildTool(def, []mcp.ToolOption{ClusterParam()}),
			Definition: def,
		})
	}
	return view
}

func buildTool(def Definition, extra []mcp.ToolOption) mcp.Tool {
	opts := make([]mcp.ToolOption, 0, len(def.Options)+len(extra)+1)
	opts = append(opts, mcp.WithDescription(def.Description))
	opts = append(opts, extra...)
	opts = append(opts, def.Options...)
	return mcp.NewTool(def.Name, opts...)
}
