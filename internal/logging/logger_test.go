package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"clipforge/internal/services"
)

func TestConsoleHandlerFormatsRecord(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar, false))

	logger = NewComponentLogger(logger, "workflow")
	logger.Info("stage started", String("stage", "ingest"), Int("attempt", 1))

	line := buf.String()
	if !strings.Contains(line, "INFO workflow: stage started") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, "stage=ingest") || !strings.Contains(line, "attempt=1") {
		t.Fatalf("missing attrs in %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar, false))

	logger.Warn("note", String("message", "two words"))
	if !strings.Contains(buf.String(), `message="two words"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar, false))

	ctx := services.WithJobID(context.Background(), "job-7")
	ctx = services.WithStage(ctx, "render")

	WithContext(ctx, logger).Info("working")
	line := buf.String()
	if !strings.Contains(line, "job_id=job-7") || !strings.Contains(line, "stage=render") {
		t.Fatalf("context fields missing from %q", line)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if parseLevel("nonsense") != slog.LevelInfo {
		t.Fatal("unknown level should map to info")
	}
	if parseLevel("debug") != slog.LevelDebug {
		t.Fatal("debug should map to debug")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}
