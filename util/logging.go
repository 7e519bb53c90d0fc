package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// LoggingEnabled turns on request tracing through LogF.
var LoggingEnabled = false

var traceLogger atomic.Pointer[slog.Logger]

// LogConfig holds logging configuration. Output defaults to stderr so stdout
// stays free for the stdio JSON-RPC stream.
type LogConfig struct {
	Level  slog.Level
	Format string // "text" or "json"
	Output io.Writer
	Source string
}

func DefaultLogConfig(source string) LogConfig {
	return LogConfig{
		Level:  slog.LevelInfo,
		Format: "text",
		Output: os.Stderr,
		Source: source,
	}
}

// LoadLogConfigFromEnv applies Z80ASM_LOG_LEVEL (debug, info, warn, error)
// and Z80ASM_LOG_FORMAT (text, json) over the defaults.
func LoadLogConfigFromEnv(source string) LogConfig {
	cfg := DefaultLogConfig(source)

	switch strings.ToLower(os.Getenv("Z80ASM_LOG_LEVEL")) {
	case "debug":
		cfg.Level = slog.LevelDebug
	case "info":
		cfg.Level = slog.LevelInfo
	case "warn", "warning":
		cfg.Level = slog.LevelWarn
	case "error":
		cfg.Level = slog.LevelError
	}

	if format := os.Getenv("Z80ASM_LOG_FORMAT"); format != "" {
		cfg.Format = strings.ToLower(format)
	}
	return cfg
}

func NewLogger(cfg LogConfig) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}
	return slog.New(handler).With("source", cfg.Source)
}

// NopLogger discards everything.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetTraceLogger sets where LogF writes.
func SetTraceLogger(logger *slog.Logger) {
	traceLogger.Store(logger)
}

func LogF(format string, args ...interface{}) {
	if !LoggingEnabled {
		return
	}
	logger := traceLogger.Load()
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug(fmt.Sprintf(format, args...))
}
