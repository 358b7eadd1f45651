// Package server holds the runtime shared by the MCP tools and the HTTP
// transport.
//
// ServerContext owns the configuration, the query parser and a lazily
// created calendar client. Tools receive it at registration time, so a
// server without Google credentials still starts and can parse queries.
//
// HTTPServer serves the streamable HTTP transport on /mcp together with
// Kubernetes style health probes. Each client IP gets its own token bucket,
// and every request is tagged with an X-Request-ID.
//
// MetricsServer exposes Prometheus metrics on a dedicated port.
package server
