// Package gmail_tools registers the read-only Gmail tools exposed over MCP:
// profile lookup, label listing, message search, and message retrieval.
package gmail_tools
