package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewEmitsJSONByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Writer: &buf})
	logger.Info("hello", "key", "value")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if payload["msg"] != "hello" || payload["key"] != "value" {
		t.Fatalf("unexpected log payload: %v", payload)
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Writer: &buf, Format: "text"})
	logger.Info("hello")

	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("expected text format, got %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Writer: &buf, Level: "warn"})
	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(buf.String(), "dropped") {
		t.Fatalf("expected info line to be filtered, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected warn line to pass, got %q", buf.String())
	}
}

func TestWithComponentAnnotates(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(New(Config{Writer: &buf}), "audit")
	logger.Info("event")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if payload["component"] != "audit" {
		t.Fatalf("expected component field, got %v", payload)
	}
}

func TestRequestIDContextRoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	id, ok := RequestIDFromContext(ctx)
	if !ok || id != "req-1" {
		t.Fatalf("expected request id round trip, got %q ok=%v", id, ok)
	}

	if _, ok := RequestIDFromContext(context.Background()); ok {
		t.Fatal("expected empty context to carry no request id")
	}

	// blank ids are not stored
	ctx = ContextWithRequestID(context.Background(), "   ")
	if _, ok := RequestIDFromContext(ctx); ok {
		t.Fatal("expected blank request id to be dropped")
	}

	var buf bytes.Buffer
	logger := WithContext(ContextWithRequestID(context.Background(), "req-2"), New(Config{Writer: &buf}))
	logger.Info("event")
	if !strings.Contains(buf.String(), "req-2") {
		t.Fatalf("expected request id in log line, got %q", buf.String())
	}
}
