// Package config resolves the Google OAuth client credentials and the
// filesystem locations mcp-gmail uses to store them.
//
// Credentials are resolved with a strict precedence: the GOOGLE_CLIENT_ID and
// GOOGLE_CLIENT_SECRET environment variables win when both are set, otherwise
// a Google-issued credentials.json next to the installed binary is read.
// The two sources are never merged.
//
// All lookups go through an injectable Resolver so tests can run without
// mutating the process environment or the real filesystem.
package config
