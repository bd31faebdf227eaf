package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestInjectFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, slog.LevelDebug)

	ctx := InjectFields(context.Background(), Fields{"request_id": "req-1"})
	ctx = InjectFields(ctx, Fields{"stage": "validate"})

	log.InfoContext(ctx, "stage finished", "duration_ms", 3)

	out := buf.String()
	for _, want := range []string{"request_id=req-1", "stage=validate", "duration_ms=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output, got %q", want, out)
		}
	}
}

func TestInjectFieldsOverrides(t *testing.T) {
	ctx := InjectFields(context.Background(), Fields{"stage": "validate"})
	ctx = InjectFields(ctx, Fields{"stage": "format"})

	if got := FieldsFromContext(ctx)["stage"]; got != "format" {
		t.Errorf("expected stage=format, got %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
