// Package observability provides an OpenTelemetry metrics extension for
// triage. MetricsExtension implements the ext lifecycle hooks and records
// counters for ranked writes, retries, failures and re-scoring.
//
// For per-write tracing and latency metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
