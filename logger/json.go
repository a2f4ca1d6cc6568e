package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// JSONLogEntry is the shape of one structured log line.
type JSONLogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type jsonLogger struct {
	level    LogLevel
	sink     io.Writer
	metadata map[string]any
	ts       *time.Time // for unit testing
}

var _ Logger = (*jsonLogger)(nil)

// NewJSON returns a logger that writes one JSON entry per line to sink.
func NewJSON(sink io.Writer, level LogLevel) Logger {
	return &jsonLogger{level: level, sink: sink}
}

func (j *jsonLogger) With(metadata map[string]any) Logger {
	return &jsonLogger{level: j.level, sink: j.sink, metadata: mergeMetadata(j.metadata, metadata), ts: j.ts}
}

func (j *jsonLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= j.level
}

func (j *jsonLogger) log(level LogLevel, msg string, args ...any) {
	if !j.IsLevelEnabled(level) {
		return
	}
	ts := time.Now()
	if j.ts != nil {
		ts = *j.ts
	}
	entry := JSONLogEntry{
		Timestamp: ts,
		Severity:  level.String(),
		Message:   fmt.Sprintf(msg, args...),
		Metadata:  j.metadata,
	}
	buf, err := json.Marshal(entry)
	if err != nil {
		return
	}
	j.sink.Write(append(buf, '\n'))
}

func (j *jsonLogger) Trace(msg string, args ...any) { j.log(LevelTrace, msg, args...) }
func (j *jsonLogger) Debug(msg string, args ...any) { j.log(LevelDebug, msg, args...) }
func (j *jsonLogger) Info(msg string, args ...any)  { j.log(LevelInfo, msg, args...) }
func (j *jsonLogger) Warn(msg string, args ...any)  { j.log(LevelWarn, msg, args...) }
func (j *jsonLogger) Error(msg string, args ...any) { j.log(LevelError, msg, args...) }
