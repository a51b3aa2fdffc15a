package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupWriterJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&buf, "warn", "json")
	slog.Info("hidden")
	slog.Default().With("component", "trie").Warn("shown", "terms", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if entry["msg"] != "shown" || entry["component"] != "trie" {
		t.Errorf("entry = %v", entry)
	}
}

func TestRequestIDFromContext(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&buf, "debug", "text")
	ctx := WithRequestID(context.Background(), "req-42")
	if RequestID(ctx) != "req-42" {
		t.Errorf("RequestID() = %q", RequestID(ctx))
	}
	if RequestID(context.Background()) != "" {
		t.Error("expected empty request id")
	}
	FromContext(ctx).Debug("hello")
	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Errorf("log output missing request id: %q", buf.String())
	}
}
