//go:build integration

package hermes

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func TestIntegration_SessionCompletedRoundTrip(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	ctx := context.Background()
	logger := slog.Default()

	client, err := NewClient(ctx, natsURL, os.Getenv("NATS_TOKEN"), logger)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	received := make(chan SessionCompleted, 1)

	err = client.Subscribe(SubjectSessionCompleted, func(subject string, data []byte) {
		var evt SessionCompleted
		if err := json.Unmarshal(data, &evt); err != nil {
			t.Errorf("bad payload on %s: %v", subject, err)
			return
		}
		received <- evt
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Give subscription time to propagate
	time.Sleep(100 * time.Millisecond)

	sent := SessionCompleted{
		SessionID:   "integration-session",
		UserID:      "integration-user",
		Role:        "sales",
		CompletedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := client.Emit(sent); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := client.Subscribe(SubjectSessionCompleted, func(string, []byte) {}); err == nil {
		t.Error("expected duplicate subscription to fail")
	}

	select {
	case evt := <-received:
		if evt.SessionID != sent.SessionID || evt.Role != sent.Role {
			t.Errorf("expected %+v, got %+v", sent, evt)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
