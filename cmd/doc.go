// Package cmd provides the command-line interface for mcp-opensearch.
//
// This package implements a Cobra-based CLI with multiple subcommands:
//   - serve: Starts the MCP server (default behavior when no subcommand is provided)
//   - version: Displays the application version
//   - self-update: Updates the binary to the latest version from GitHub releases
//
// The CLI runs the serve command when no subcommand is specified, so plain
// `mcp-opensearch` starts the server over stdio.
//
// Command Structure:
//
//	mcp-opensearch [flags]                 # Starts the MCP server (default)
//	mcp-opensearch serve [flags]           # Explicitly starts the MCP server
//	mcp-opensearch version                 # Shows version information
//	mcp-opensearch self-update             # Updates to latest release
//	mcp-opensearch help [command]          # Shows help information
//
// The serve command supports multiple transport options:
//   - stdio: Standard input/output (default) - for command-line integration
//   - sse: Server-Sent Events over HTTP - for web-based clients
//   - streamable-http: Streamable HTTP transport - for HTTP-based integration
//
// Transport Configuration Examples:
//
//	mcp-opensearch serve --transport stdio           # Default STDIO transport
//	mcp-opensearch serve --transport sse --http-addr :8080 --sse-endpoint /sse
//	mcp-opensearch serve --transport streamable-http --http-addr :9000 --http-endpoint /mcp
//
// The serve command also selects the cluster mode: single mode reads one
// cluster from OPENSEARCH_* environment variables, multi mode reads N named
// clusters from a YAML file given with --config.
package cmd
