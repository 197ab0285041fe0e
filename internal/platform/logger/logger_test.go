package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/taskcycle/taskcycle-api/internal/config"
)

func TestSetupParsesLevels(t *testing.T) {
	testCases := []struct {
		level string
	}{
		{"debug"},
		{"info"},
		{"WARN"}, // case-insensitive
		{"error"},
		{"bogus"}, // falls back to info with a warning
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tc.level})
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if logger == nil {
				t.Fatal("Expected a logger, got nil")
			}
		})
	}
}

func TestContextCarry(t *testing.T) {
	t.Parallel()

	base := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := WithLogger(context.Background(), base)

	if got := FromContext(ctx); got != base {
		t.Error("FromContext did not return the carried logger")
	}

	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext must fall back to the default logger")
	}

	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if got := FromContextOrDefault(context.Background(), fallback); got != fallback {
		t.Error("FromContextOrDefault must return the fallback when ctx is empty")
	}
	if got := FromContextOrDefault(ctx, fallback); got != base {
		t.Error("FromContextOrDefault must prefer the carried logger")
	}
}
