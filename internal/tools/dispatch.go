package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/opensearch-tools/mcp-opensearch/internal/logging"
	"github.com/opensearch-tools/mcp-opensearch/internal/opensearch"
	"github.com/opensearch-tools/mcp-opensearch/internal/server"
)

// Dispatcher binds tool definitions to the MCP server. Every bound handler
// runs the same pipeline: validate arguments, resolve the target cluster,
// enforce the version gate, invoke the handler, and normalize failures into
// structured error results. A failed call never takes the server down.
type Dispatcher struct {
	sc *server.ServerContext
}

// NewDispatcher creates a dispatcher over the server context.
func NewDispatcher(sc *server.ServerContext) *Dispatcher {
	return &Dispatcher{sc: sc}
}

// Register adds every tool in the view to the MCP server with a bound
// dispatch handler.
func (d *Dispatcher) Register(s *mcpserver.MCPServer, view []RegisteredTool) {
	for _, rt := range view {
		s.AddTool(rt.Tool, d.Bind(rt.Definition))
	}
}

// Bind wraps a definition's handler with the dispatch pipeline.
func (d *Dispatcher) Bind(def Definition) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		result, err := d.dispatch(ctx, def, request)
		d.record(def.Name, time.Since(start), err)
		if err != nil {
			return errorResult(err), nil
		}
		return result, nil
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, def Definition, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	cluster, err := d.resolveCluster(def, request)
	if err != nil {
		return nil, err
	}

	if err := validateRequired(def, request); err != nil {
		return nil, err
	}

	// Version gates are enforced per call in multi mode only. Single mode
	// already filtered incompatible tools out of the catalog at startup.
	if d.sc.MultiMode() && def.MinVersion != nil {
		capability, probeErr := d.sc.Prober().Capability(ctx, cluster)
		if probeErr != nil {
			return nil, probeErr
		}
		if !capability.Satisfies(def.MinVersion) {
			return nil, &opensearch.VersionIncompatibleError{
				Tool:       def.Name,
				Cluster:    cluster,
				MinVersion: def.MinVersion,
				Actual:     capability.Version,
			}
		}
	}

	client, err := d.sc.Cache().GetOrCreate(ctx, cluster)
	if err != nil {
		return nil, err
	}

	// A panicking handler must not take down the transport loop.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: tool %q panicked: %v", opensearch.ErrHandlerFault, def.Name, r)
		}
	}()

	return def.Handler(ctx, client, request)
}

// resolveCluster determines the target cluster for the call. Single mode has
// exactly one configured cluster and ignores any selector argument; multi
// mode requires one.
func (d *Dispatcher) resolveCluster(def Definition, request mcp.CallToolRequest) (string, error) {
	if !d.sc.MultiMode() {
		return d.sc.DefaultClusterName(), nil
	}

	cluster, ok := StringArg(request, ClusterNameArg)
	if !ok {
		return "", &opensearch.ArgumentError{
			Tool:     def.Name,
			Argument: ClusterNameArg,
			Reason:   "is required in multi-cluster mode",
		}
	}
	return cluster, nil
}

// validateRequired checks the declared required arguments before any network
// resource is resolved.
func validateRequired(def Definition, request mcp.CallToolRequest) error {
	args := request.GetArguments()
	for _, name := range def.Required {
		value, present := args[name]
		if !present {
			return &opensearch.ArgumentError{Tool: def.Name, Argument: name, Reason: "is required"}
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			return &opensearch.ArgumentError{Tool: def.Name, Argument: name, Reason: "must not be empty"}
		}
	}
	return nil
}

func (d *Dispatcher) record(tool string, elapsed time.Duration, err error) {
	status := logging.StatusSuccess
	kind := ""
	if err != nil {
		status = logging.StatusError
		kind = opensearch.KindOf(err)
		d.sc.Logger().Error("tool call failed",
			logging.Tool(tool),
			logging.Status(status),
			slog.String(logging.KeyKind, kind),
			logging.SanitizedErr(err),
			logging.Duration(elapsed))
	} else {
		d.sc.Logger().Info("tool call completed",
			logging.Tool(tool),
			logging.Status(status),
			logging.Duration(elapsed))
	}
	d.sc.Metrics().RecordToolCall(tool, status, kind, elapsed)
}

// errorResult renders an error as a structured MCP error result prefixed
// with its kind label so clients can branch without parsing prose.
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", opensearch.KindOf(err), err))
}
