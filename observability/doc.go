// Package observability provides OpenTelemetry-based metrics extensions
// for OBSCopilot. The MetricsExtension implements lifecycle hooks to
// record system-wide counters for workflow registration, trigger fires,
// run outcomes, action failures, and bus events.
//
// For per-action tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
