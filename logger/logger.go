package logger

import (
	"os"
	"strings"
)

// LogLevel defines the level of logging.
type LogLevel int

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

func (l LogLevel) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "NONE"
	}
}

// GetLevelFromEnv will look at the environment var `CACHEX_LOG_LEVEL` and
// convert it into the appropriate LogLevel.
func GetLevelFromEnv() LogLevel {
	switch strings.ToLower(os.Getenv("CACHEX_LOG_LEVEL")) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is an interface for logging.
type Logger interface {
	// With will return a new logger using metadata as the base context
	With(metadata map[string]any) Logger
	// Trace level logging
	Trace(msg string, args ...any)
	// Debug level logging
	Debug(msg string, args ...any)
	// Info level logging
	Info(msg string, args ...any)
	// Warning level logging
	Warn(msg string, args ...any)
	// Error level logging
	Error(msg string, args ...any)
	// IsLevelEnabled returns true if the given log level is enabled
	IsLevelEnabled(level LogLevel) bool
}

type noopLogger struct{}

var _ Logger = (*noopLogger)(nil)

func (noopLogger) With(map[string]any) Logger    { return noopLogger{} }
func (noopLogger) Trace(string, ...any)          {}
func (noopLogger) Debug(string, ...any)          {}
func (noopLogger) Info(string, ...any)           {}
func (noopLogger) Warn(string, ...any)           {}
func (noopLogger) Error(string, ...any)          {}
func (noopLogger) IsLevelEnabled(LogLevel) bool  { return false }

// Noop returns a logger that discards everything. It is the engine's default.
func Noop() Logger {
	return noopLogger{}
}

func mergeMetadata(base, extra map[string]any) map[string]any {
	if base == nil {
		return extra
	}
	kv := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		kv[k] = v
	}
	for k, v := range extra {
		kv[k] = v
	}
	return kv
}
