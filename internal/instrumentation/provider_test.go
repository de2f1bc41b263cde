package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProviderDisabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if provider.Enabled() {
		t.Error("Enabled() = true for disabled config")
	}
	if provider.Metrics() == nil {
		t.Fatal("Metrics() = nil, want no-op recorder")
	}

	// The no-op recorder must be safe to use.
	provider.Metrics().RecordToolInvocation(context.Background(), "tool", StatusSuccess, time.Second)
	provider.Metrics().RecordGoogleAPIOperation(context.Background(), "gmail", "get_profile", StatusSuccess, time.Second)
	provider.Metrics().RecordOAuthAttempt(context.Background(), StatusError)

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewProviderEnabled(t *testing.T) {
	config := DefaultConfig()
	config.ServiceVersion = "test"

	provider, err := NewProvider(context.Background(), config)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	}()

	if !provider.Enabled() {
		t.Error("Enabled() = false for enabled config")
	}

	// Recording must not panic with live instruments.
	provider.Metrics().RecordToolInvocation(context.Background(), "gmail_get_profile", StatusSuccess, 10*time.Millisecond)
	provider.Metrics().RecordGoogleAPIOperation(context.Background(), "gmail", "get_profile", StatusError, 10*time.Millisecond)
	provider.Metrics().RecordOAuthAttempt(context.Background(), StatusSuccess)
}

func TestZeroMetricsIsNoOp(t *testing.T) {
	var m Metrics
	m.RecordToolInvocation(context.Background(), "tool", StatusSuccess, time.Second)
	m.RecordGoogleAPIOperation(context.Background(), "gmail", "list", StatusSuccess, time.Second)
	m.RecordOAuthAttempt(context.Background(), StatusSuccess)
}
