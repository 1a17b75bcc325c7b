//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"vacancy-export-bot/internal/config"
)

func TestWith_AddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := newWithWriter(&buf, config.LogConfig{Level: "info", Format: "json"}, false)

	ctx := WithTgID(WithTraceID(context.Background(), "trace-1"), 42)
	With(ctx, base).Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if entry["trace_id"] != "trace-1" {
		t.Errorf("expected trace_id, got %v", entry["trace_id"])
	}
	if entry["tg_id"] != float64(42) {
		t.Errorf("expected tg_id 42, got %v", entry["tg_id"])
	}
	if TraceID(ctx) != "trace-1" {
		t.Errorf("TraceID() = %q", TraceID(ctx))
	}
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, config.LogConfig{Level: "loud", Format: "json"}, false)
	l.Debug().Msg("hidden")
	l.Info().Msg("shown")
	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Error("debug line should be filtered at info level")
	}
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Error("info line missing")
	}
}
