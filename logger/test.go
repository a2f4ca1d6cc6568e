package logger

import "sync"

// TestLogEntry is one captured log call.
type TestLogEntry struct {
	Severity  string
	Message   string
	Arguments []any
}

// TestLogger captures log entries for assertions in tests.
type TestLogger struct {
	mu       sync.Mutex
	entries  []TestLogEntry
	metadata map[string]any
}

var _ Logger = (*TestLogger)(nil)

// NewTestLogger returns a logger that records every call.
func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

// Entries returns a snapshot of the captured entries.
func (t *TestLogger) Entries() []TestLogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TestLogEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *TestLogger) record(severity, msg string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TestLogEntry{Severity: severity, Message: msg, Arguments: args})
}

// With shares the captured entries with the parent so tests can assert on a
// single logger regardless of metadata chaining.
func (t *TestLogger) With(metadata map[string]any) Logger {
	return &testChild{parent: t, metadata: mergeMetadata(t.metadata, metadata)}
}

func (t *TestLogger) Trace(msg string, args ...any) { t.record("TRACE", msg, args...) }
func (t *TestLogger) Debug(msg string, args ...any) { t.record("DEBUG", msg, args...) }
func (t *TestLogger) Info(msg string, args ...any)  { t.record("INFO", msg, args...) }
func (t *TestLogger) Warn(msg string, args ...any)  { t.record("WARNING", msg, args...) }
func (t *TestLogger) Error(msg string, args ...any) { t.record("ERROR", msg, args...) }

func (t *TestLogger) IsLevelEnabled(LogLevel) bool { return true }

type testChild struct {
	parent   *TestLogger
	metadata map[string]any
}

var _ Logger = (*testChild)(nil)

func (c *testChild) With(metadata map[string]any) Logger {
	return &testChild{parent: c.parent, metadata: mergeMetadata(c.metadata, metadata)}
}

func (c *testChild) Trace(msg string, args ...any) { c.parent.record("TRACE", msg, args...) }
func (c *testChild) Debug(msg string, args ...any) { c.parent.record("DEBUG", msg, args...) }
func (c *testChild) Info(msg string, args ...any)  { c.parent.record("INFO", msg, args...) }
func (c *testChild) Warn(msg string, args ...any)  { c.parent.record("WARNING", msg, args...) }
func (c *testChild) Error(msg string, args ...any) { c.parent.record("ERROR", msg, args...) }

func (c *testChild) IsLevelEnabled(LogLevel) bool { return true }
