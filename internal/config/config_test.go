package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource builds a Resolver over an in-memory environment and filesystem,
// counting file reads so precedence can be asserted.
type fakeSource struct {
	env   map[string]string
	files map[string][]byte
	reads int
}

func (f *fakeSource) resolver(t *testing.T) *Resolver {
	t.Helper()
	paths, err := NewPaths("/opt/mcp-gmail")
	require.NoError(t, err)
	return &Resolver{
		Getenv: func(key string) string { return f.env[key] },
		ReadFile: func(path string) ([]byte, error) {
			f.reads++
			data, ok := f.files[path]
			if !ok {
				return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
			}
			return data, nil
		},
		Paths: paths,
	}
}

func installedJSON(t *testing.T, clientID, clientSecret string, redirectURIs ...string) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"installed": map[string]any{
			"client_id":     clientID,
			"client_secret": clientSecret,
			"redirect_uris": redirectURIs,
		},
	})
	require.NoError(t, err)
	return data
}

func TestResolveFromEnvironment(t *testing.T) {
	src := &fakeSource{env: map[string]string{
		EnvClientID:     "a",
		EnvClientSecret: "b",
	}}

	creds, err := src.resolver(t).Resolve()
	require.NoError(t, err)
	assert.Equal(t, "a", creds.ClientID)
	assert.Equal(t, "b", creds.ClientSecret)
	assert.Equal(t, "http://localhost:3000/oauth2callback", creds.RedirectURI)
}

func TestResolveEnvironmentSkipsFile(t *testing.T) {
	// Even a malformed credentials file must stay untouched when the
	// environment is fully configured.
	src := &fakeSource{
		env: map[string]string{
			EnvClientID:     "env-id",
			EnvClientSecret: "env-secret",
		},
		files: map[string][]byte{
			"/opt/mcp-gmail/credentials.json": []byte("{not json"),
		},
	}

	creds, err := src.resolver(t).Resolve()
	require.NoError(t, err)
	assert.Equal(t, "env-id", creds.ClientID)
	assert.Zero(t, src.reads, "environment source must short-circuit file reads")
}

func TestResolveEnvironmentRedirectOverride(t *testing.T) {
	src := &fakeSource{env: map[string]string{
		EnvClientID:     "id",
		EnvClientSecret: "secret",
		EnvRedirectURI:  "http://localhost:9999/cb",
	}}

	creds, err := src.resolver(t).Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/cb", creds.RedirectURI)
}

func TestResolvePartialEnvironmentFallsThrough(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"only client id", map[string]string{EnvClientID: "id"}},
		{"only client secret", map[string]string{EnvClientSecret: "secret"}},
		{"empty client secret", map[string]string{EnvClientID: "id", EnvClientSecret: ""}},
		{"whitespace client id", map[string]string{EnvClientID: "   ", EnvClientSecret: "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{
				env: tt.env,
				files: map[string][]byte{
					"/opt/mcp-gmail/credentials.json": installedJSON(t, "file-id", "file-secret"),
				},
			}

			creds, err := src.resolver(t).Resolve()
			require.NoError(t, err)
			assert.Equal(t, "file-id", creds.ClientID, "partial environment must fall through to the file")
			assert.Equal(t, "file-secret", creds.ClientSecret)
			assert.Equal(t, 1, src.reads)
		})
	}
}

func TestResolveFromInstalledFile(t *testing.T) {
	src := &fakeSource{
		files: map[string][]byte{
			"/opt/mcp-gmail/credentials.json": installedJSON(t, "file-id", "file-secret", "http://localhost:3000/first", "http://localhost:3000/second"),
		},
	}

	creds, err := src.resolver(t).Resolve()
	require.NoError(t, err)
	assert.Equal(t, "file-id", creds.ClientID)
	assert.Equal(t, "file-secret", creds.ClientSecret)
	assert.Equal(t, "http://localhost:3000/first", creds.RedirectURI, "first redirect_uris entry wins")
}

func TestResolveInstalledTakesPrecedenceOverWeb(t *testing.T) {
	data, err := json.Marshal(map[string]any{
		"installed": map[string]any{
			"client_id":     "installed-id",
			"client_secret": "installed-secret",
			"redirect_uris": []string{},
		},
		"web": map[string]any{
			"client_id":     "web-id",
			"client_secret": "web-secret",
			"redirect_uris": []string{"http://example.com/cb"},
		},
	})
	require.NoError(t, err)

	src := &fakeSource{files: map[string][]byte{"/opt/mcp-gmail/credentials.json": data}}

	creds, err := src.resolver(t).Resolve()
	require.NoError(t, err)
	assert.Equal(t, "installed-id", creds.ClientID)
	assert.Equal(t, DefaultRedirectURI, creds.RedirectURI, "empty redirect_uris falls back to the default")
}

func TestResolveWebShape(t *testing.T) {
	data, err := json.Marshal(map[string]any{
		"web": map[string]any{
			"client_id":     "web-id",
			"client_secret": "web-secret",
			"redirect_uris": []string{"http://localhost:3000/oauth2callback"},
		},
	})
	require.NoError(t, err)

	src := &fakeSource{files: map[string][]byte{"/opt/mcp-gmail/credentials.json": data}}

	creds, err := src.resolver(t).Resolve()
	require.NoError(t, err)
	assert.Equal(t, "web-id", creds.ClientID)
}

func TestResolveMissingEverything(t *testing.T) {
	src := &fakeSource{}

	_, err := src.resolver(t).Resolve()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), EnvClientID)
	assert.Contains(t, err.Error(), "credentials.json")
}

func TestResolveFileWithoutKnownShape(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"/opt/mcp-gmail/credentials.json": []byte(`{"type": "service_account"}`),
	}}

	_, err := src.resolver(t).Resolve()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "installed")
	assert.Contains(t, err.Error(), "web")
}

func TestResolveMalformedJSONPropagates(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"/opt/mcp-gmail/credentials.json": []byte("{not json"),
	}}

	_, err := src.resolver(t).Resolve()
	require.Error(t, err)

	var cfgErr *ConfigError
	assert.False(t, errors.As(err, &cfgErr), "parse errors must propagate unchanged, not as ConfigError")
	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestResolvePermissionErrorPropagates(t *testing.T) {
	paths, err := NewPaths("/opt/mcp-gmail")
	require.NoError(t, err)

	wantErr := &fs.PathError{Op: "open", Path: paths.CredentialsFile(), Err: fs.ErrPermission}
	r := &Resolver{
		Getenv:   func(string) string { return "" },
		ReadFile: func(string) ([]byte, error) { return nil, wantErr },
		Paths:    paths,
	}

	_, err = r.Resolve()
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrPermission)

	var cfgErr *ConfigError
	assert.False(t, errors.As(err, &cfgErr), "non-ENOENT I/O errors must propagate unchanged")
}

func TestNewResolverUsesRealSources(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewPaths(dir)
	require.NoError(t, err)

	content := installedJSON(t, "disk-id", "disk-secret")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), content, 0o600))

	r := NewResolver(paths)
	// Keep the test hermetic regardless of the host environment.
	r.Getenv = func(string) string { return "" }

	creds, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "disk-id", creds.ClientID)
}
