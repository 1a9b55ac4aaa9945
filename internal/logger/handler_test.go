package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestHandler(buf *bytes.Buffer, format logFormat) *orderedHandler {
	return newOrderedHandler(handlerConfig{
		level:    slog.LevelDebug,
		out:      newLockedWriter(buf),
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
}

func TestOrderedHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(newTestHandler(buf, formatKV)).With("component", "tg")

	ctx := WithRID(nil, "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)
	log.LogAttrs(ctx, slog.LevelInfo, "",
		slog.String("event", "handler.handled"),
		slog.String("status", "ok"),
		slog.Int64("order_id", 15),
	)

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=tg", "event=handler.handled", "status=ok", "rid=rid-123"}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
	if !strings.Contains(line, "order_id=15") {
		t.Fatalf("expected order_id in %s", line)
	}
}

func TestOrderedHandlerJSONOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(newTestHandler(buf, formatJSON)).With("component", "storage")

	ctx := WithRID(nil, "rid-json")
	log.LogAttrs(ctx, slog.LevelError, "",
		slog.String("event", "order.create"),
		slog.String("status", "fail"),
		slog.String("err", "boom"),
	)

	line := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"storage"`, `"event":"order.create"`, `"status":"fail"`, `"rid":"rid-json"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestOrderedHandlerDurationNormalized(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(newTestHandler(buf, formatKV))

	log.LogAttrs(context.Background(), slog.LevelInfo, "timing",
		slog.Duration("duration", 1499*time.Microsecond),
	)

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "duration_ms=1") {
		t.Fatalf("expected duration_ms=1 in %s", line)
	}
	if strings.Contains(line, "duration=") {
		t.Fatalf("raw duration key must be renamed: %s", line)
	}
}

func TestOrderedHandlerPrunesEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(newTestHandler(buf, formatKV))

	log.LogAttrs(context.Background(), slog.LevelInfo, "probe",
		slog.String("username", ""),
		slog.String("item", "Тирамису"),
	)

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "username=") {
		t.Fatalf("empty values must be pruned: %s", line)
	}
	if !strings.Contains(line, "item=Тирамису") {
		t.Fatalf("expected item field in %s", line)
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "hello\x00world\x1b[0m"
	got := SanitizeLimit(in, 8)
	if got != "hellowor" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
	if SanitizeLimit("anything", 0) != "" {
		t.Fatal("zero limit must yield empty string")
	}
}
