package logging

// ContextLogger is the logging interface used throughout chesstoc. Both the
// text and the structured JSON implementations satisfy it, so packages can
// take either without caring about the output format.
type ContextLogger interface {
	Debug(message string, args ...interface{})
	Info(message string, args ...interface{})
	Warn(message string, args ...interface{})
	Error(message string, args ...interface{})
	Fatal(message string, args ...interface{})

	WithField(key string, value interface{}) ContextLogger
	WithFields(fields map[string]interface{}) ContextLogger

	SetLevel(level Level)
}
