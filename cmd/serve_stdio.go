package cmd

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// runStdioServer serves MCP over stdin/stdout. stdout carries the protocol
// stream, so this runner prints nothing and relies on the stderr logger set
// up in runServe.
func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	if err := <-serverDone; err != nil {
		return fmt.Errorf("stdio server stopped with error: %w", err)
	}
	return nil
}
