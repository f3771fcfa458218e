package hermes

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/nats-io/nats.go"
)

func applyOptions(t *testing.T, opts []nats.Option) nats.Options {
	t.Helper()
	o := nats.GetDefaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			t.Fatalf("apply option: %v", err)
		}
	}
	return o
}

func TestConnectOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	o := applyOptions(t, connectOptions("s3cr3t", logger))
	if o.Name != "rehearse" {
		t.Errorf("expected connection name rehearse, got %q", o.Name)
	}
	if o.Token != "s3cr3t" {
		t.Errorf("expected token to be set, got %q", o.Token)
	}
	if !o.RetryOnFailedConnect || o.MaxReconnect != -1 {
		t.Errorf("expected unlimited retries, got retry=%v max=%d", o.RetryOnFailedConnect, o.MaxReconnect)
	}
	if o.DisconnectedErrCB == nil || o.ReconnectedCB == nil || o.AsyncErrorCB == nil {
		t.Error("expected connection callbacks to be installed")
	}

	anon := applyOptions(t, connectOptions("", logger))
	if anon.Token != "" {
		t.Errorf("expected no token, got %q", anon.Token)
	}
}

func TestNewClient_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewClient(ctx, "nats://127.0.0.1:4222", "", slog.Default()); err == nil {
		t.Error("expected an error for a canceled context")
	}
}
