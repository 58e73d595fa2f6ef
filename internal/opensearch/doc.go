// Package opensearch provides the connection layer between the MCP server
// and OpenSearch clusters.
//
// It owns the pieces with real state and concurrency:
//
//   - ClusterDescriptor / AuthSpec: immutable per-cluster configuration,
//     loaded once from environment variables (single-cluster mode) or a YAML
//     document (multi-cluster mode). Incomplete authentication configuration
//     fails at load time, never at first call.
//   - Credential resolution: picks one authentication strategy per descriptor
//     with a fixed priority (IAM role, then basic auth, then raw AWS
//     credentials) and produces either basic-auth credentials or a SigV4
//     request signer backed by a refreshable credential provider.
//   - ConnectionCache: one authenticated client per cluster name, created
//     lazily and exactly once under concurrent first use, kept for the
//     lifetime of the process.
//   - VersionProber: lazily determines and caches each cluster's engine
//     version for tool compatibility checks. Serverless collections have no
//     probeable version and bypass version gating.
//
// All network operations take a context and carry a bounded timeout. No lock
// is held across a network round-trip; exactly-once construction is enforced
// with a per-key singleflight group plus a narrow critical section around map
// insertion.
package opensearch
