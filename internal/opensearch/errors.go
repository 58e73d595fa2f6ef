package opensearch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Sentinel errors for the failure modes of the connection and dispatch layer.
// These can be checked with errors.Is() for programmatic handling. Only
// ErrConfigInvalid is fatal to the process; every other kind is returned to
// the caller as a structured error result and the server keeps serving.
var (
	// ErrConfigInvalid indicates a malformed or incomplete cluster
	// configuration. Raised at load time, never at first call.
	ErrConfigInvalid = errors.New("cluster configuration invalid")

	// ErrUnknownCluster indicates a tool call named a cluster that is not
	// declared in the loaded configuration.
	ErrUnknownCluster = errors.New("unknown cluster")

	// ErrVersionIncompatible indicates the target cluster's engine version
	// does not satisfy a tool's minimum version requirement.
	ErrVersionIncompatible = errors.New("tool not supported by cluster version")

	// ErrArgumentInvalid indicates the tool call arguments failed schema
	// validation before any network resource was touched.
	ErrArgumentInvalid = errors.New("invalid tool arguments")

	// ErrUpstreamUnavailable indicates a network or authentication failure
	// reaching the OpenSearch cluster.
	ErrUpstreamUnavailable = errors.New("opensearch cluster unavailable")

	// ErrHandlerFault indicates an unexpected failure inside a tool handler.
	ErrHandlerFault = errors.New("tool handler fault")
)

// Kind labels used in error results and metrics. They give callers a stable
// way to distinguish failure classes without parsing messages.
const (
	KindConfigInvalid       = "ConfigInvalid"
	KindUnknownCluster      = "UnknownCluster"
	KindVersionIncompatible = "VersionIncompatible"
	KindArgumentInvalid     = "ArgumentInvalid"
	KindUpstreamUnavailable = "UpstreamUnavailable"
	KindHandlerFault        = "HandlerFault"
)

// KindOf returns the kind label for err, or KindHandlerFault when the error
// does not match any sentinel. A nil error has no kind.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfigInvalid):
		return KindConfigInvalid
	case errors.Is(err, ErrUnknownCluster):
		return KindUnknownCluster
	case errors.Is(err, ErrVersionIncompatible):
		return KindVersionIncompatible
	case errors.Is(err, ErrArgumentInvalid):
		return KindArgumentInvalid
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstreamUnavailable
	default:
		return KindHandlerFault
	}
}

// ConfigError provides context about an invalid cluster configuration.
type ConfigError struct {
	Cluster string
	Reason  string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Cluster != "" {
		if e.Err != nil {
			return fmt.Sprintf("invalid configuration for cluster %q: %s: %v", e.Cluster, e.Reason, e.Err)
		}
		return fmt.Sprintf("invalid configuration for cluster %q: %s", e.Cluster, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports that a ConfigError matches ErrConfigInvalid.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfigInvalid
}

// UnknownClusterError reports a tool call against an undeclared cluster name.
type UnknownClusterError struct {
	Name  string
	Known []string
}

// Error implements the error interface.
func (e *UnknownClusterError) Error() string {
	if e.Name == "" {
		return "no cluster name provided and no default cluster configured"
	}
	if len(e.Known) > 0 {
		return fmt.Sprintf("cluster %q is not declared in the configuration (known clusters: %s)",
			e.Name, strings.Join(e.Known, ", "))
	}
	return fmt.Sprintf("cluster %q is not declared in the configuration", e.Name)
}

// Is reports that an UnknownClusterError matches ErrUnknownCluster.
func (e *UnknownClusterError) Is(target error) bool {
	return target == ErrUnknownCluster
}

// VersionIncompatibleError reports a min-version mismatch between a tool and
// the target cluster. It carries both versions so callers can render an
// actionable message.
type VersionIncompatibleError struct {
	Tool       string
	Cluster    string
	MinVersion *semver.Version
	Actual     *semver.Version
}

// Error implements the error interface.
func (e *VersionIncompatibleError) Error() string {
	return fmt.Sprintf("tool %q requires OpenSearch >= %s but cluster %q runs %s",
		e.Tool, e.MinVersion, e.Cluster, e.Actual)
}

// Is reports that a VersionIncompatibleError matches ErrVersionIncompatible.
func (e *VersionIncompatibleError) Is(target error) bool {
	return target == ErrVersionIncompatible
}

// ArgumentError reports a schema validation failure for one argument.
type ArgumentError struct {
	Tool     string
	Argument string
	Reason   string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("tool %q: argument %q %s", e.Tool, e.Argument, e.Reason)
}

// Is reports that an ArgumentError matches ErrArgumentInvalid.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrArgumentInvalid
}

// UpstreamError reports a failed REST call against a cluster.
type UpstreamError struct {
	Cluster   string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cluster %q: %s failed: %v", e.Cluster, e.Operation, e.Err)
	}
	return fmt.Sprintf("cluster %q: %s failed", e.Cluster, e.Operation)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is reports that an UpstreamError matches ErrUpstreamUnavailable.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}
