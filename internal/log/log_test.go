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

func TestRequestIDIsAttachedFromContext(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
	})

	ctx := WithRequestID(context.Background(), "req-42")
	Info(ctx, "recipe stored", "id", 7)

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "request_id=req-42") {
		t.Fatalf("expected request_id field in log line, got %q", line)
	}
	if !strings.Contains(line, "id=7") {
		t.Fatalf("expected structured field in log line, got %q", line)
	}
	if got := RequestID(ctx); got != "req-42" {
		t.Fatalf("RequestID() = %q, want %q", got, "req-42")
	}
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() {
		_ = SetLevel("info")
	})

	for _, level := range []string{"debug", "INFO", " warn ", "error", ""} {
		if err := SetLevel(level); err != nil {
			t.Fatalf("SetLevel(%q) returned error: %v", level, err)
		}
	}
	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestSetOutputRedirectsLines(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	SetOutput(buf)
	t.Cleanup(func() {
		ReplaceLogger(original)
	})

	Error(context.Background(), "redirected")

	if !strings.Contains(buf.String(), "msg=redirected") {
		t.Fatalf("expected line in custom writer, got %q", buf.String())
	}
}
