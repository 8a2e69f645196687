package logging

// LogFormat selects the output encoding.
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// Config holds the settings used to build a logger.
type Config struct {
	Level   string
	Format  LogFormat
	Service string
	Version string
	Prefix  string
}

// NewLoggerFromConfig builds a ContextLogger from config. An unset format
// means text: this is a terminal tool first.
func NewLoggerFromConfig(cfg *Config) ContextLogger {
	switch cfg.Format {
	case FormatJSON:
		return NewStructuredLogger(cfg.Service, cfg.Version, cfg.Level)
	default:
		return NewLogger(cfg.Prefix, cfg.Level)
	}
}
