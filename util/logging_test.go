package util

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadLogConfigFromEnv(t *testing.T) {
	tests := []struct {
		level, format string
		wantLevel     slog.Level
		wantFormat    string
	}{
		{"", "", slog.LevelInfo, "text"},
		{"debug", "", slog.LevelDebug, "text"},
		{"WARNING", "JSON", slog.LevelWarn, "json"},
		{"error", "text", slog.LevelError, "text"},
	}
	for _, tt := range tests {
		t.Setenv("Z80ASM_LOG_LEVEL", tt.level)
		t.Setenv("Z80ASM_LOG_FORMAT", tt.format)

		cfg := LoadLogConfigFromEnv("test")
		assert.Equal(t, tt.wantLevel, cfg.Level)
		assert.Equal(t, tt.wantFormat, cfg.Format)
		assert.Equal(t, "test", cfg.Source)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: slog.LevelInfo, Format: "json", Output: &buf, Source: "lsp"})

	logger.Debug("hidden")
	logger.Info("shown", "path", "main.asm")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"source":"lsp"`)
}

func TestLogFRespectsSwitch(t *testing.T) {
	var buf bytes.Buffer
	SetTraceLogger(NewLogger(LogConfig{Level: slog.LevelDebug, Output: &buf}))
	t.Cleanup(func() {
		LoggingEnabled = false
		SetTraceLogger(nil)
	})

	LoggingEnabled = false
	LogF("request: %s", "hover")
	assert.Empty(t, buf.String())

	LoggingEnabled = true
	LogF("request: %s", "hover")
	assert.Contains(t, buf.String(), "request: hover")
}
