// Package server provides the ServerContext dependency container shared by
// all MCP tool handlers, plus the health and metrics HTTP endpoints used by
// the HTTP transports.
//
// A ServerContext owns the pieces of per-process state: the operating mode,
// the loaded cluster descriptors, the connection cache, the version prober
// and the logger. It is created once at startup from functional options and
// passed by reference into the dispatcher and the catalog view builder; none
// of its dependencies are mutated after initialization.
package server
