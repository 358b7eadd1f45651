// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the calendar-mcp server.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - http_requests_rate_limited_total: Counter of requests rejected by the per-client limiter
//
// Google Calendar API Metrics:
//   - google_api_operations_total: Counter of API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of API operation durations
//
// Query Metrics:
//   - calendar_query_intents_total: Counter of parsed queries by intent
//   - calendar_timezone_fallbacks_total: Counter of unknown timezone hints
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and Calendar API
// calls (google.calendar.<operation>).
//
// # Configuration
//
// Instrumentation is configured from the environment by DefaultConfig:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: calendar-mcp)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	m := provider.Metrics()
//	m.RecordQueryIntent(ctx, "date_range")
//	m.RecordToolInvocation(ctx, "query_calendar", instrumentation.StatusSuccess, time.Since(start))
//
// The stdout exporters write to stdout and must not be combined with the
// stdio transport.
package instrumentation
