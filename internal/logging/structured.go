package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// StructuredLogger emits one JSON object per entry.
type StructuredLogger struct {
	level      Level
	service    string
	version    string
	mu         sync.RWMutex
	encoder    *json.Encoder
	fields     map[string]interface{}
	timeFormat string
}

// LogEntry represents a structured log entry.
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// NewStructuredLogger creates a structured logger writing to stderr.
func NewStructuredLogger(service, version, level string) *StructuredLogger {
	return NewStructuredLoggerTo(os.Stderr, service, version, level)
}

// NewStructuredLoggerTo creates a structured logger writing to w.
func NewStructuredLoggerTo(w io.Writer, service, version, level string) *StructuredLogger {
	return &StructuredLogger{
		level:      parseLevel(level),
		service:    service,
		version:    version,
		encoder:    json.NewEncoder(w),
		fields:     make(map[string]interface{}),
		timeFormat: time.RFC3339Nano,
	}
}

// WithFields returns a logger with additional fields.
func (l *StructuredLogger) WithFields(fields map[string]interface{}) ContextLogger {
	newLogger := &StructuredLogger{
		level:      l.level,
		service:    l.service,
		version:    l.version,
		encoder:    l.encoder,
		fields:     make(map[string]interface{}),
		timeFormat: l.timeFormat,
	}

	l.mu.RLock()
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	l.mu.RUnlock()

	for k, v := range fields {
		newLogger.fields[k] = v
	}

	return newLogger
}

// WithField returns a logger with an additional field.
func (l *StructuredLogger) WithField(key string, value interface{}) ContextLogger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *StructuredLogger) shouldLog(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

// addArgsAsFields adds args as key-value pairs to the log entry.
func (l *StructuredLogger) addArgsAsFields(entry *LogEntry, args []interface{}) {
	if len(args) == 0 {
		return
	}

	if entry.Fields == nil {
		entry.Fields = make(map[string]interface{})
	}

	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			entry.Fields[key] = args[i+1]
		}
	}

	// An odd trailing arg has no key
	if len(args)%2 == 1 {
		entry.Fields["extra"] = args[len(args)-1]
	}
}

// log writes a structured log entry.
func (l *StructuredLogger) log(level Level, message string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(l.timeFormat),
		Level:     levelToString(level),
		Service:   l.service,
		Version:   l.version,
		Message:   message,
	}

	// Printf-style message when it carries format verbs, otherwise the args
	// are key-value pairs.
	if len(args) > 0 {
		if strings.Contains(message, "%") {
			verbCount := 0
			for i := 0; i < len(message)-1; i++ {
				if message[i] == '%' && message[i+1] != '%' {
					verbCount++
				}
			}
			if verbCount > 0 && len(args) >= verbCount {
				entry.Message = fmt.Sprintf(message, args[:verbCount]...)
				l.addArgsAsFields(&entry, args[verbCount:])
			} else {
				l.addArgsAsFields(&entry, args)
			}
		} else {
			l.addArgsAsFields(&entry, args)
		}
	}

	l.mu.RLock()
	if len(l.fields) > 0 {
		if entry.Fields == nil {
			entry.Fields = make(map[string]interface{})
		}
		for k, v := range l.fields {
			entry.Fields[k] = v
		}
	}
	l.mu.RUnlock()

	if err := l.encoder.Encode(entry); err != nil {
		// Fall back to plain stderr if JSON encoding fails
		fmt.Fprintf(os.Stderr, "[%s] %s: %s (json encoding failed: %v)\n",
			entry.Timestamp, entry.Level, entry.Message, err)
	}
}

func (l *StructuredLogger) Debug(message string, args ...interface{}) {
	l.log(DebugLevel, message, args...)
}

func (l *StructuredLogger) Info(message string, args ...interface{}) {
	l.log(InfoLevel, message, args...)
}

func (l *StructuredLogger) Warn(message string, args ...interface{}) {
	l.log(WarnLevel, message, args...)
}

func (l *StructuredLogger) Error(message string, args ...interface{}) {
	l.log(ErrorLevel, message, args...)
}

func (l *StructuredLogger) Fatal(message string, args ...interface{}) {
	l.log(ErrorLevel, message, args...)
	os.Exit(1)
}

func (l *StructuredLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}
