// Package logging provides structured logging utilities for mcp-gmail.
//
// It centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package:
// consistent attribute naming, and sanitization of sensitive data (user
// emails are hashed so log lines can be correlated without exposing PII,
// tokens are never logged directly).
package logging
