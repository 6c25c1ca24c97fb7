package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
	})

	Info(context.Background(), "hello", "user", "test")

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}
	if !strings.Contains(line, "ts=") {
		t.Fatalf("expected timestamp field in log line, got %q", line)
	}
	if !strings.Contains(line, "level=info") {
		t.Fatalf("expected level field in log line, got %q", line)
	}
	if !strings.Contains(line, "msg=hello") {
		t.Fatalf("expected message field in log line, got %q", line)
	}
	if !strings.Contains(line, "user=test") {
		t.Fatalf("expected structured field in log line, got %q", line)
	}
}

func TestWarnLevelFiltering(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
		if err := SetLevel("info"); err != nil {
			t.Fatalf("failed to restore log level: %v", err)
		}
	})

	if err := SetLevel("warn"); err != nil {
		t.Fatalf("SetLevel(warn) returned error: %v", err)
	}

	Info(context.Background(), "hidden")
	Warn(context.Background(), "visible")

	out := buf.String()
	if strings.Contains(out, "msg=hidden") {
		t.Fatalf("info line should be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "level=warn") || !strings.Contains(out, "msg=visible") {
		t.Fatalf("expected warn line in output, got %q", out)
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
