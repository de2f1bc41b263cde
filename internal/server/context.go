package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/dennisonbertram/mcp-gmail/internal/config"
	"github.com/dennisonbertram/mcp-gmail/internal/gmail"
	"github.com/dennisonbertram/mcp-gmail/internal/google"
	"github.com/dennisonbertram/mcp-gmail/internal/instrumentation"
)

// ServerContext carries the state shared by all tool handlers: the OAuth
// manager, a lazily constructed Gmail client, and the metrics recorder.
// It is safe for concurrent use.
type ServerContext struct {
	mu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	auth    *google.Manager
	paths   *config.Paths
	gmail   *gmail.Client
	metrics *instrumentation.Metrics
}

// NewServerContext creates a ServerContext bound to ctx. The Gmail client is
// not built until a tool first asks for it.
func NewServerContext(ctx context.Context, auth *google.Manager, paths *config.Paths) *ServerContext {
	ctx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:    ctx,
		cancel: cancel,
		auth:   auth,
		paths:  paths,
	}
}

// Context returns the server's base context. It is canceled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Paths returns the credential path layout the server was started with.
func (sc *ServerContext) Paths() *config.Paths {
	return sc.paths
}

// GmailClient returns the shared Gmail client, building it on first use.
// The server never runs the interactive consent flow; when no stored token
// exists the returned error tells the operator to authorize first.
func (sc *ServerContext) GmailClient() (*gmail.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.gmail != nil {
		return sc.gmail, nil
	}
	if !sc.auth.HasToken() {
		return nil, fmt.Errorf("no stored token at %s: run the auth command first", sc.auth.TokenPath())
	}

	httpClient, err := sc.auth.AuthenticatedClient(sc.ctx)
	if err != nil {
		sc.metrics.RecordOAuthAttempt(sc.ctx, instrumentation.StatusError)
		return nil, fmt.Errorf("creating authenticated client: %w", err)
	}
	client, err := gmail.NewClient(sc.ctx, httpClient)
	if err != nil {
		return nil, fmt.Errorf("creating Gmail client: %w", err)
	}
	sc.metrics.RecordOAuthAttempt(sc.ctx, instrumentation.StatusSuccess)
	sc.gmail = client
	return client, nil
}

// SetMetrics installs the metrics recorder used by instrumented handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the installed metrics recorder, which may be nil when
// instrumentation is disabled. The zero recorder is a no-op either way.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.metrics
}

// Shutdown cancels the server context and drops the cached client.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cancel()
	sc.gmail = nil
}
