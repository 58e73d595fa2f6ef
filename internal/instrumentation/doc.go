// Package instrumentation exposes Prometheus metrics for the dispatch layer:
// tool call counts and latencies, connection cache hits and misses, and
// version probe durations. Metrics are registered on a private registry and
// served by the dedicated metrics server on HTTP transports.
package instrumentation
