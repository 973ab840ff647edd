package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return FromZap(zap.New(core)), logs
}

func TestLoggerPairsArguments(t *testing.T) {
	t.Parallel()

	logger, logs := observed(zapcore.InfoLevel)
	logger.Info("resolved", "series_ref", "ipl-2025", "hit", true)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["series_ref"] != "ipl-2025" {
		t.Fatalf("series_ref = %v", fields["series_ref"])
	}
	if fields["hit"] != true {
		t.Fatalf("hit = %v", fields["hit"])
	}
}

func TestLoggerNamesErrorValues(t *testing.T) {
	t.Parallel()

	logger, logs := observed(zapcore.InfoLevel)
	logger.Error("fetch failed", "error", errors.New("upstream down"))

	fields := logs.All()[0].ContextMap()
	if fields["error"] != "upstream down" {
		t.Fatalf("error field = %v", fields["error"])
	}
}

func TestLoggerKeepsMalformedArguments(t *testing.T) {
	t.Parallel()

	logger, logs := observed(zapcore.InfoLevel)
	logger.Info("odd", 42, "value", "dangling")

	fields := logs.All()[0].ContextMap()
	if fields["arg"] != "value" {
		t.Fatalf("non-string key must fall back to a stand-in, got %v", fields["arg"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("trailing key must not be dropped: %v", fields)
	}
}

func TestLoggerHonorsLevelGate(t *testing.T) {
	t.Parallel()

	logger, logs := observed(zapcore.WarnLevel)
	logger.Debug("quiet")
	logger.Info("also quiet")
	logger.Warn("loud")

	if got := logs.Len(); got != 1 {
		t.Fatalf("entries = %d, want only the warn line", got)
	}
}

func TestLoggerContextWithoutSpanAddsNoTraceFields(t *testing.T) {
	t.Parallel()

	logger, logs := observed(zapcore.InfoLevel)
	logger.InfoContext(context.Background(), "no span", "k", "v")

	fields := logs.All()[0].ContextMap()
	if _, ok := fields["trace_id"]; ok {
		t.Fatalf("trace_id must only appear under an active span: %v", fields)
	}
	if fields["k"] != "v" {
		t.Fatalf("k = %v", fields["k"])
	}
}

func TestLoggerWithCarriesFields(t *testing.T) {
	t.Parallel()

	logger, logs := observed(zapcore.InfoLevel)
	logger.With("component", "usecase").Info("ready")

	fields := logs.All()[0].ContextMap()
	if fields["component"] != "usecase" {
		t.Fatalf("component = %v", fields["component"])
	}
}
