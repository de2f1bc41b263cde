package google

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// CallbackServer handles the OAuth redirect callback. It binds a local HTTP
// server to the host, port and path of the configured redirect URI and waits
// for Google to deliver the authorization code.
type CallbackServer struct {
	mu            sync.Mutex
	addr          string
	path          string
	expectedState string
	codeChan      chan string
	errChan       chan error
	server        *http.Server
	listener      net.Listener
}

// NewCallbackServer creates a callback server for the given redirect URI.
// The expectedState is used to validate that the callback matches the
// authorization request.
func NewCallbackServer(redirectURI, expectedState string) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %s: %w", redirectURI, err)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("redirect URI %s has no host", redirectURI)
	}
	port := u.Port()
	if port == "" {
		return nil, fmt.Errorf("redirect URI %s must include an explicit port", redirectURI)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	return &CallbackServer{
		addr:          net.JoinHostPort(host, port),
		path:          path,
		expectedState: expectedState,
		codeChan:      make(chan string, 1),
		errChan:       make(chan error, 1),
	}, nil
}

// Start starts the callback server.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleCallback)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	return nil
}

// handleCallback processes the OAuth callback request.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	// Check for an error from the provider
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		errDesc := r.URL.Query().Get("error_description")
		s.deliverErr(fmt.Errorf("oauth error: %s - %s", errParam, errDesc))
		writePage(w, fmt.Sprintf("Authorization failed: %s", errParam), errDesc)
		return
	}

	// Validate state parameter
	if state := r.URL.Query().Get("state"); state != s.expectedState {
		s.deliverErr(fmt.Errorf("state mismatch in OAuth callback"))
		writePage(w, "Authorization failed", "Invalid state parameter.")
		return
	}

	// Extract authorization code
	code := r.URL.Query().Get("code")
	if code == "" {
		s.deliverErr(fmt.Errorf("no authorization code received"))
		writePage(w, "Authorization failed", "No code received.")
		return
	}

	select {
	case s.codeChan <- code:
	default:
	}

	writePage(w, "Authorization successful!", "You can close this window and return to the terminal.")
}

// deliverErr reports a callback failure without blocking the handler. Only
// the first outcome matters; repeated callback hits (stray requests, a stale
// consent URL retried) must not hold their handler goroutines open.
func (s *CallbackServer) deliverErr(err error) {
	select {
	case s.errChan <- err:
	default:
	}
}

// WaitForCode blocks until the authorization code is received, an error
// occurs, or the context is done.
func (s *CallbackServer) WaitForCode(ctx context.Context) (string, error) {
	select {
	case code := <-s.codeChan:
		return code, nil
	case err := <-s.errChan:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("timed out waiting for authorization callback")
	}
}

// Stop shuts down the callback server.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Addr returns the address the server listens on.
func (s *CallbackServer) Addr() string {
	return s.addr
}

func writePage(w http.ResponseWriter, title, message string) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>mcp-gmail - OAuth Callback</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: #FAFAFA;
        }
        .container {
            text-align: center;
            background: white;
            padding: 40px 60px;
            border-radius: 16px;
            box-shadow: 0 4px 24px rgba(0,0,0,0.08);
        }
        h1 { color: #333; margin-bottom: 10px; }
        p { color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}
