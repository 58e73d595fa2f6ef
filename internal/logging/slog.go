package logging

import (
	"io"
	"log/slog"
	"regexp"
	"time"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyTool     = "tool"
	KeyCluster  = "cluster"
	KeyDuration = "duration"
	KeyStatus   = "status"
	KeyError    = "error"
	KeyKind     = "error_kind"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ipv4Regex matches IPv4 addresses for sanitisation.
var ipv4Regex = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// New creates a text slog logger at the given level, writing to w. The stdio
// transport passes stderr here; anything on stdout would corrupt the MCP
// stream.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Tool returns a slog attribute for the tool name.
func Tool(name string) slog.Attr {
	return slog.String(KeyTool, name)
}

// Cluster returns a slog attribute for the cluster name.
func Cluster(name string) slog.Attr {
	return slog.String(KeyCluster, name)
}

// Status returns a slog attribute for the call status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Duration returns a slog attribute for an elapsed duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Err returns a slog attribute for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizedErr returns a slog attribute for an error with IP addresses
// redacted. Use it when logging errors that may embed cluster endpoint
// addresses.
func SanitizedErr(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, SanitizeHost(err.Error()))
}

// SanitizeHost redacts IPv4 addresses from a string.
func SanitizeHost(s string) string {
	return ipv4Regex.ReplaceAllString(s, "x.x.x.x")
}
