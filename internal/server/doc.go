// Package server holds the shared state and auxiliary HTTP surfaces of the
// MCP server process: the per-process ServerContext that tool handlers pull
// their Gmail client from, and the optional Prometheus metrics endpoint.
package server
