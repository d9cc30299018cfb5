package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"chapterfind/internal/services"
)

func newBufferLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)
	return slog.New(newPrettyHandler(&buf, levelVar, false)), &buf
}

func TestPrettyHandlerComponentPrefix(t *testing.T) {
	logger, buf := newBufferLogger(t)
	NewComponentLogger(logger, "silence").Info("scan complete", Int("markers", 12))

	line := buf.String()
	if !strings.Contains(line, "INFO silence: scan complete") {
		t.Errorf("unexpected line %q", line)
	}
	if !strings.Contains(line, "markers=12") {
		t.Errorf("missing attr in %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Errorf("component should render as prefix, not attr: %q", line)
	}
}

func TestPrettyHandlerQuotesValues(t *testing.T) {
	logger, buf := newBufferLogger(t)
	logger.Info("writing", String("path", "/books/my book.m4b"))
	if !strings.Contains(buf.String(), `path="/books/my book.m4b"`) {
		t.Errorf("value with spaces should be quoted: %q", buf.String())
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	logger, buf := newBufferLogger(t)

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithSource(ctx, "book.m4b")
	ctx = services.WithSourceIndex(ctx, 2)

	WithContext(ctx, logger).Info("probing")

	line := buf.String()
	for _, want := range []string{"run_id=run-1", "source=book.m4b", "source_index=2"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestWithContextNilLoggerIsNoop(t *testing.T) {
	logger := WithContext(context.Background(), nil)
	// Must not panic and must discard output.
	logger.Info("dropped")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"garbage": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
