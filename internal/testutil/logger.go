package testutil

import (
	"fmt"
	"strings"
	"sync"

	"dayone-export/internal/journal"
)

// LogRecord is one message captured by RecordingLogger.
type LogRecord struct {
	Level string
	Msg   string
	Args  []any
}

func (r LogRecord) String() string {
	parts := []string{r.Level, r.Msg}
	for i := 0; i+1 < len(r.Args); i += 2 {
		parts = append(parts, fmt.Sprintf("%v=%v", r.Args[i], r.Args[i+1]))
	}
	return strings.Join(parts, " ")
}

// RecordingLogger keeps every logged message for later assertions.
// Safe for concurrent use.
type RecordingLogger struct {
	mu      sync.Mutex
	records []LogRecord
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) log(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, LogRecord{Level: level, Msg: msg, Args: args})
}

func (l *RecordingLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args) }

// Records returns the messages logged at level, or all messages if level is empty.
func (l *RecordingLogger) Records(level string) []LogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LogRecord
	for _, r := range l.records {
		if level == "" || r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// Warnings returns the WARN messages.
func (l *RecordingLogger) Warnings() []LogRecord {
	return l.Records("WARN")
}

// Compile-time check
var _ journal.Logger = (*RecordingLogger)(nil)
