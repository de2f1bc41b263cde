// Package cmd implements the command-line interface for mcp-gmail.
//
// This package provides the following commands:
//   - auth: Run the OAuth consent flow and store the token
//   - status: Show where credentials come from and whether a token is stored
//   - revoke: Delete the stored token
//   - serve: Start the MCP server over stdio
//
// The auth command is the default command when no subcommand is specified.
package cmd
