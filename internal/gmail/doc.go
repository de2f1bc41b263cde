// Package gmail wraps the Gmail API for mcp-gmail.
//
// It exposes the small read-only surface the application needs: the user's
// mailbox profile (used to verify authentication) and label/message lookups
// for the MCP tools. All wire-level concerns are handled by
// google.golang.org/api/gmail/v1.
package gmail
