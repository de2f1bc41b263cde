// Package instrumentation provides OpenTelemetry metrics for mcp-gmail.
//
// Metrics are exported through the Prometheus exporter and served by the
// dedicated metrics server in internal/server. The provider is disabled for
// one-shot CLI commands; only the MCP serve mode records metrics.
package instrumentation
