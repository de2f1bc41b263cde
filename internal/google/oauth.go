package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/dennisonbertram/mcp-gmail/internal/config"
	"github.com/dennisonbertram/mcp-gmail/internal/instrumentation"
	"github.com/dennisonbertram/mcp-gmail/internal/logging"
)

// DefaultConsentTimeout bounds how long the interactive consent flow waits
// for the user to complete browser authorization.
const DefaultConsentTimeout = 5 * time.Minute

// Manager owns the OAuth2 configuration and the persisted token for a
// Google account.
type Manager struct {
	conf  *oauth2.Config
	paths *config.Paths

	// ConsentTimeout bounds the interactive browser flow.
	ConsentTimeout time.Duration

	// OpenBrowser launches the user's browser. Injectable for tests;
	// defaults to the platform opener.
	OpenBrowser func(url string) error

	// Metrics records authorization attempts. Nil disables recording.
	Metrics *instrumentation.Metrics
}

// NewManager creates a manager from resolved client credentials.
func NewManager(creds *config.Credentials, paths *config.Paths) *Manager {
	return &Manager{
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       DefaultOAuthScopes,
		},
		paths:          paths,
		ConsentTimeout: DefaultConsentTimeout,
		OpenBrowser:    OpenBrowser,
	}
}

// OAuthConfig returns the underlying oauth2 configuration.
func (m *Manager) OAuthConfig() *oauth2.Config {
	return m.conf
}

// TokenPath returns where the manager persists its token.
func (m *Manager) TokenPath() string {
	return m.paths.TokenPath()
}

// TokenSource returns an auto-refreshing token source for the stored token.
// Refresh is handled by the oauth2 library; a refreshed token is not written
// back here because the source token's refresh credential does not change.
func (m *Manager) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := m.loadToken()
	if err != nil {
		return nil, err
	}
	return m.conf.TokenSource(ctx, tok), nil
}

// Client returns an authenticated HTTP client, running the interactive
// consent flow first when no stored token exists.
func (m *Manager) Client(ctx context.Context) (*http.Client, error) {
	if !m.HasToken() {
		if _, err := m.Authorize(ctx); err != nil {
			return nil, err
		}
	}
	return m.AuthenticatedClient(ctx)
}

// AuthenticatedClient returns an HTTP client for the stored token. Unlike
// Client it never triggers the interactive flow: it fails when no token is
// stored.
func (m *Manager) AuthenticatedClient(ctx context.Context) (*http.Client, error) {
	ts, err := m.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

// Authorize runs the interactive browser consent flow: it starts a local
// callback server on the configured redirect URI, opens the browser to the
// Google consent page, waits for the authorization code, exchanges it for a
// token, and persists that token.
//
// The call blocks until the user completes or abandons consent, bounded by
// ConsentTimeout and the caller's context.
func (m *Manager) Authorize(ctx context.Context) (*oauth2.Token, error) {
	tok, err := m.consentFlow(ctx)
	if err != nil {
		m.Metrics.RecordOAuthAttempt(ctx, instrumentation.StatusError)
		return nil, err
	}
	m.Metrics.RecordOAuthAttempt(ctx, instrumentation.StatusSuccess)
	return tok, nil
}

func (m *Manager) consentFlow(ctx context.Context) (*oauth2.Token, error) {
	state, err := randomState()
	if err != nil {
		return nil, err
	}

	callback, err := NewCallbackServer(m.conf.RedirectURL, state)
	if err != nil {
		return nil, err
	}
	if err := callback.Start(); err != nil {
		return nil, err
	}
	defer func() {
		if err := callback.Stop(); err != nil {
			slog.Debug("failed to stop callback server", logging.Err(err))
		}
	}()

	// access_type=offline asks Google for a refresh token so the consent
	// flow only has to run once.
	authURL := m.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)

	slog.Info("opening browser for Google consent",
		logging.Operation("oauth.authorize"))
	if err := m.OpenBrowser(authURL); err != nil {
		// The flow still works if the user pastes the URL themselves.
		slog.Warn("failed to open browser, visit the URL manually",
			logging.Err(err))
		fmt.Printf("Open this URL in your browser to authorize access:\n\n%s\n\n", authURL)
	}

	timeout := m.ConsentTimeout
	if timeout <= 0 {
		timeout = DefaultConsentTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	code, err := callback.WaitForCode(waitCtx)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	tok, err := m.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	slog.Debug("exchanged authorization code",
		logging.Operation("oauth.authorize"),
		slog.String("access_token", logging.SanitizeToken(tok.AccessToken)),
		slog.Bool("has_refresh_token", tok.RefreshToken != ""))

	if err := m.SaveToken(tok); err != nil {
		return nil, err
	}

	slog.Info("authorization complete",
		logging.Operation("oauth.authorize"),
		logging.Status(logging.StatusSuccess))
	return tok, nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
