package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

const isWindows = runtime.GOOS == "windows"

var noColor = os.Getenv("TERM") == "dumb" ||
	(!isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()))

func color(val string) string {
	if isWindows || noColor {
		return ""
	}
	return val
}

const (
	reset   = "\033[0m"
	gray    = "\033[90m"
	cyan    = "\033[36m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	red     = "\033[31m"
	magenta = "\033[35m"
)

type consoleLogger struct {
	level    LogLevel
	sink     io.Writer
	metadata map[string]any
}

var _ Logger = (*consoleLogger)(nil)

// NewConsole returns a logger that writes human-readable, optionally
// colorized lines to standard error.
func NewConsole(level LogLevel) Logger {
	return &consoleLogger{level: level, sink: os.Stderr}
}

func (c *consoleLogger) With(metadata map[string]any) Logger {
	return &consoleLogger{level: c.level, sink: c.sink, metadata: mergeMetadata(c.metadata, metadata)}
}

func (c *consoleLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.level
}

func levelColor(level LogLevel) string {
	switch level {
	case LevelTrace:
		return magenta
	case LevelDebug:
		return cyan
	case LevelInfo:
		return green
	case LevelWarn:
		return yellow
	default:
		return red
	}
}

func (c *consoleLogger) log(level LogLevel, msg string, args ...any) {
	if !c.IsLevelEnabled(level) {
		return
	}
	line := fmt.Sprintf(msg, args...)
	var meta string
	if len(c.metadata) > 0 {
		ks := make([]string, 0, len(c.metadata))
		for k := range c.metadata {
			ks = append(ks, k)
		}
		sort.Strings(ks)
		parts := make([]string, 0, len(ks))
		for _, k := range ks {
			parts = append(parts, fmt.Sprintf("%s=%v", k, c.metadata[k]))
		}
		meta = " " + color(gray) + strings.Join(parts, " ") + color(reset)
	}
	fmt.Fprintf(c.sink, "%s[%s]%s %s%-7s%s %s%s\n",
		color(gray), time.Now().Format(time.RFC3339), color(reset),
		color(levelColor(level)), level.String(), color(reset),
		line, meta)
}

func (c *consoleLogger) Trace(msg string, args ...any) { c.log(LevelTrace, msg, args...) }
func (c *consoleLogger) Debug(msg string, args ...any) { c.log(LevelDebug, msg, args...) }
func (c *consoleLogger) Info(msg string, args ...any)  { c.log(LevelInfo, msg, args...) }
func (c *consoleLogger) Warn(msg string, args ...any)  { c.log(LevelWarn, msg, args...) }
func (c *consoleLogger) Error(msg string, args ...any) { c.log(LevelError, msg, args...) }
