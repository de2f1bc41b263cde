package google

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"golang.org/x/oauth2"

	"github.com/dennisonbertram/mcp-gmail/internal/config"
	"github.com/dennisonbertram/mcp-gmail/internal/instrumentation"
)

// testMetrics builds a live metrics recorder over a manual reader so tests
// can assert on recorded counter values. The returned collect function sums
// oauth_auth_total by status attribute.
func testMetrics(t *testing.T) (*instrumentation.Metrics, func() map[string]int64) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			t.Errorf("meter provider shutdown error = %v", err)
		}
	})

	metrics, err := instrumentation.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	collect := func() map[string]int64 {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(context.Background(), &rm); err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		counts := map[string]int64{}
		for _, sm := range rm.ScopeMetrics {
			for _, md := range sm.Metrics {
				if md.Name != "oauth_auth_total" {
					continue
				}
				sum, ok := md.Data.(metricdata.Sum[int64])
				if !ok {
					t.Fatalf("oauth_auth_total data type = %T, want Sum[int64]", md.Data)
				}
				for _, dp := range sum.DataPoints {
					status, _ := dp.Attributes.Value(attribute.Key("status"))
					counts[status.AsString()] += dp.Value
				}
			}
		}
		return counts
	}
	return metrics, collect
}

// captureLogs routes the default logger into a buffer at debug level for the
// duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestNewManagerConfig(t *testing.T) {
	m := testManager(t)
	conf := m.OAuthConfig()

	if conf.ClientID != "client-id" {
		t.Errorf("ClientID = %v, want client-id", conf.ClientID)
	}
	if conf.ClientSecret != "client-secret" {
		t.Errorf("ClientSecret = %v, want client-secret", conf.ClientSecret)
	}
	if conf.RedirectURL != config.DefaultRedirectURI {
		t.Errorf("RedirectURL = %v, want %v", conf.RedirectURL, config.DefaultRedirectURI)
	}
	if len(conf.Scopes) == 0 {
		t.Error("Scopes is empty")
	}
}

func TestRandomStateUnique(t *testing.T) {
	a, err := randomState()
	if err != nil {
		t.Fatal(err)
	}
	b, err := randomState()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("randomState() returned identical values")
	}
	if len(a) < 32 {
		t.Errorf("state too short: %d chars", len(a))
	}
}

func TestTokenSourceWithoutToken(t *testing.T) {
	m := testManager(t)
	if _, err := m.TokenSource(context.Background()); err == nil {
		t.Error("TokenSource() expected error when no token is stored")
	}
}

// TestAuthorizeEndToEnd drives the whole consent flow against a fake token
// endpoint: the "browser" hits the local callback with the code, and the
// exchange posts to a test server instead of Google.
func TestAuthorizeEndToEnd(t *testing.T) {
	tokenEndpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("token endpoint form parse error = %v", err)
		}
		if got := r.Form.Get("code"); got != "fake-code" {
			t.Errorf("exchange code = %v, want fake-code", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fake-access","refresh_token":"fake-refresh","token_type":"Bearer","expires_in":3600}`)
	}))
	defer tokenEndpoint.Close()

	port := freePort(t)
	paths, err := config.NewPaths(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	creds := &config.Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  fmt.Sprintf("http://localhost:%d/oauth2callback", port),
	}

	m := NewManager(creds, paths)
	m.ConsentTimeout = 10 * time.Second
	m.conf.Endpoint = oauth2.Endpoint{
		AuthURL:  tokenEndpoint.URL + "/auth",
		TokenURL: tokenEndpoint.URL + "/token",
	}

	metrics, collect := testMetrics(t)
	m.Metrics = metrics
	logs := captureLogs(t)

	// Stand-in for the user's browser: follow the consent URL far enough to
	// extract the state, then hit the callback like Google would.
	m.OpenBrowser = func(authURL string) error {
		go func() {
			state := queryParam(t, authURL, "state")
			resp, err := http.Get(creds.RedirectURI + "?state=" + state + "&code=fake-code")
			if err != nil {
				t.Errorf("callback request error = %v", err)
				return
			}
			resp.Body.Close()
		}()
		return nil
	}

	tok, err := m.Authorize(context.Background())
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if tok.AccessToken != "fake-access" {
		t.Errorf("AccessToken = %v, want fake-access", tok.AccessToken)
	}
	if !m.HasToken() {
		t.Error("HasToken() = false after Authorize()")
	}

	// The persisted token must round-trip into a usable source.
	ts, err := m.TokenSource(context.Background())
	if err != nil {
		t.Fatalf("TokenSource() error = %v", err)
	}
	got, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got.RefreshToken != "fake-refresh" {
		t.Errorf("RefreshToken = %v, want fake-refresh", got.RefreshToken)
	}

	if counts := collect(); counts["success"] != 1 || counts["error"] != 0 {
		t.Errorf("oauth_auth_total = %v, want success=1 error=0", counts)
	}

	// Log hygiene: token material never appears in logs, only its mask.
	if logged := logs.String(); strings.Contains(logged, "fake-access") {
		t.Errorf("raw access token leaked into logs:\n%s", logged)
	} else if !strings.Contains(logged, "[token:") {
		t.Errorf("sanitized token marker missing from logs:\n%s", logged)
	}
}

func TestAuthorizeFailureRecordsError(t *testing.T) {
	port := freePort(t)
	paths, err := config.NewPaths(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	creds := &config.Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  fmt.Sprintf("http://localhost:%d/oauth2callback", port),
	}

	m := NewManager(creds, paths)
	m.ConsentTimeout = 50 * time.Millisecond
	m.OpenBrowser = func(string) error { return nil }

	metrics, collect := testMetrics(t)
	m.Metrics = metrics

	if _, err := m.Authorize(context.Background()); err == nil {
		t.Fatal("Authorize() expected timeout error")
	}
	if counts := collect(); counts["error"] != 1 || counts["success"] != 0 {
		t.Errorf("oauth_auth_total = %v, want error=1 success=0", counts)
	}
}

func queryParam(t *testing.T, rawURL, key string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("failed to parse URL %s: %v", rawURL, err)
	}
	return u.Query().Get(key)
}
