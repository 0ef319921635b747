package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newConsoleHandler(&buf, levelVar, false))

	logger = NewComponentLogger(logger, "acquisition")
	logger.Info("fetch complete", String(FieldTrackID, "abc123"), Int("bytes", 42))

	line := buf.String()
	if !strings.Contains(line, "INFO acquisition: fetch complete") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "track_id=abc123") {
		t.Fatalf("missing track_id attr: %q", line)
	}
	if !strings.Contains(line, "bytes=42") {
		t.Fatalf("missing bytes attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar, false))

	logger.Warn("skip", String(FieldReason, "content unavailable"))

	if !strings.Contains(buf.String(), `reason="content unavailable"`) {
		t.Fatalf("expected quoted reason, got %q", buf.String())
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar, false))

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be suppressed: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line should be emitted: %q", out)
	}
}

func TestErrorAttr(t *testing.T) {
	attr := Error(errors.New("boom"))
	if attr.Key != "error" {
		t.Fatalf("key: got %q", attr.Key)
	}
	attr = Error(nil)
	if attr.Value.String() != "<nil>" {
		t.Fatalf("nil error: got %q", attr.Value.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNoopHandlerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("noop logger should report disabled")
	}
}
