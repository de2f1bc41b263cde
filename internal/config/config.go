package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted by the resolver.
const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvRedirectURI  = "GOOGLE_REDIRECT_URI"
)

// DefaultRedirectURI is used whenever no redirect URI is configured.
const DefaultRedirectURI = "http://localhost:3000/oauth2callback"

// Credentials is the normalized OAuth client credential record. ClientID and
// ClientSecret are non-empty once resolution succeeds; RedirectURI always has
// a value.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// ConfigError indicates a missing or invalid credential source. Its message
// is actionable: it tells the user both ways to configure credentials.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return e.msg
}

// credentialsFile mirrors the layout of a Google-issued OAuth client file.
// Google writes either an "installed" or a "web" shape depending on the
// application type selected in the Cloud console.
type credentialsFile struct {
	Installed *clientSection `json:"installed"`
	Web       *clientSection `json:"web"`
}

type clientSection struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURIs []string `json:"redirect_uris"`
}

// Resolver resolves OAuth client credentials. The zero value is not usable;
// call NewResolver.
type Resolver struct {
	// Getenv looks up an environment variable, returning "" when unset.
	Getenv func(string) string
	// ReadFile reads a file from disk.
	ReadFile func(string) ([]byte, error)
	// Paths locates the credentials file.
	Paths *Paths
}

// NewResolver returns a resolver backed by the process environment, the real
// filesystem, and the given paths.
func NewResolver(paths *Paths) *Resolver {
	return &Resolver{
		Getenv:   os.Getenv,
		ReadFile: os.ReadFile,
		Paths:    paths,
	}
}

// Resolve produces a credential record from the first usable source.
//
// Precedence is strict, with no merging between sources:
//
//  1. GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET, when both are non-empty,
//     are authoritative and the credentials file is never read.
//  2. Otherwise credentials.json next to the binary is parsed, preferring
//     the "installed" shape over "web".
//
// Values are whitespace-trimmed; an environment variable containing only
// whitespace counts as absent. A partially-set environment (one variable of
// the pair) is never an error by itself: resolution falls through to the
// file.
func (r *Resolver) Resolve() (*Credentials, error) {
	clientID := strings.TrimSpace(r.Getenv(EnvClientID))
	clientSecret := strings.TrimSpace(r.Getenv(EnvClientSecret))

	if clientID != "" && clientSecret != "" {
		redirectURI := strings.TrimSpace(r.Getenv(EnvRedirectURI))
		if redirectURI == "" {
			redirectURI = DefaultRedirectURI
		}
		return &Credentials{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURI:  redirectURI,
		}, nil
	}

	return r.resolveFromFile()
}

func (r *Resolver) resolveFromFile() (*Credentials, error) {
	path := r.Paths.CredentialsFile()

	data, err := r.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigError{msg: fmt.Sprintf(
				"no OAuth client credentials found. Either set the %s and %s environment variables, or place a credentials.json downloaded from the Google Cloud console at %s",
				EnvClientID, EnvClientSecret, path)}
		}
		// Permission and other I/O failures surface unchanged.
		return nil, err
	}

	var file credentialsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	// "installed" takes precedence when both shapes are present.
	section := file.Installed
	if section == nil {
		section = file.Web
	}
	if section == nil {
		return nil, &ConfigError{msg: fmt.Sprintf(
			"%s contains neither an \"installed\" nor a \"web\" OAuth client; re-download the file from the Google Cloud console", path)}
	}

	redirectURI := DefaultRedirectURI
	if len(section.RedirectURIs) > 0 {
		redirectURI = section.RedirectURIs[0]
	}

	return &Credentials{
		ClientID:     section.ClientID,
		ClientSecret: section.ClientSecret,
		RedirectURI:  redirectURI,
	}, nil
}
