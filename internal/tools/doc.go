// Package tools defines the tool catalog and the dispatch pipeline shared by
// all MCP tool implementations.
//
// Tool packages contribute Definitions: the tool name, its MCP schema, a
// handler that talks to one cluster through the opensearch.Client interface,
// and an optional minimum engine version. The catalog turns definitions into
// the mode-dependent view the MCP server registers: in single mode the target
// cluster is implicit and tools the cluster cannot run are hidden; in multi
// mode every tool is listed and a required opensearch_cluster_name argument
// is injected into its schema.
//
// The Dispatcher binds a definition to a generic handler that validates the
// arguments, resolves the target cluster, enforces version gates, and
// normalizes every failure kind into an MCP error result.
package tools
