package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func parseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func levelToString(level Level) string {
	switch level {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "info"
	}
}

// Logger is a plain leveled logger writing human-readable lines to stderr.
type Logger struct {
	logger *log.Logger
	level  Level
	mu     sync.RWMutex
}

func NewLogger(prefix string, level string) *Logger {
	return &Logger{
		logger: log.New(os.Stderr, prefix, log.LstdFlags),
		level:  parseLevel(level),
	}
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) shouldLog(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

// logf renders printf-style when the message has format verbs; otherwise
// trailing args are appended as key=value pairs.
func (l *Logger) logf(level Level, tag string, message string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	if strings.Contains(message, "%") {
		l.logger.Printf(tag+message, args...)
		return
	}
	var b strings.Builder
	b.WriteString(tag)
	b.WriteString(message)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if len(args)%2 == 1 {
		fmt.Fprintf(&b, " extra=%v", args[len(args)-1])
	}
	l.logger.Print(b.String())
}

func (l *Logger) Debug(message string, args ...interface{}) {
	l.logf(DebugLevel, "[DEBUG] ", message, args...)
}

func (l *Logger) Info(message string, args ...interface{}) {
	l.logf(InfoLevel, "[INFO] ", message, args...)
}

func (l *Logger) Warn(message string, args ...interface{}) {
	l.logf(WarnLevel, "[WARN] ", message, args...)
}

func (l *Logger) Error(message string, args ...interface{}) {
	l.logf(ErrorLevel, "[ERROR] ", message, args...)
}

func (l *Logger) Fatal(message string, args ...interface{}) {
	l.logf(ErrorLevel, "[FATAL] ", message, args...)
	os.Exit(1)
}

// WithField returns a logger whose prefix carries the field.
func (l *Logger) WithField(key string, value interface{}) ContextLogger {
	return &Logger{
		logger: log.New(os.Stderr, fmt.Sprintf("%s[%v=%v] ", l.logger.Prefix(), key, value), log.LstdFlags),
		level:  l.level,
	}
}

func (l *Logger) WithFields(fields map[string]interface{}) ContextLogger {
	out := ContextLogger(l)
	for k, v := range fields {
		out = out.WithField(k, v)
	}
	return out
}
