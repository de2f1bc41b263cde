// Package google provides OAuth2 authentication and token management for
// the Gmail API.
//
// The Manager owns the oauth2.Config built from resolved client credentials
// and the token persisted under the .credentials directory. The OAuth 2.0
// protocol itself (authorization URL, code exchange, token refresh) is
// handled entirely by golang.org/x/oauth2; this package orchestrates the
// interactive browser consent flow around it and stores the resulting token.
package google
