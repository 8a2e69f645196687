package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	// Engine configuration
	Engine EngineConfig `json:"engine"`

	// Output configuration
	Output OutputConfig `json:"output"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Metrics configuration
	Metrics MetricsConfig `json:"metrics"`
}

type EngineConfig struct {
	BinaryPath   string  `json:"binaryPath"`
	Threads      int     `json:"threads"`
	HashMB       int     `json:"hashMB"`
	MoveTimeSecs float64 `json:"moveTimeSecs"`
}

type OutputConfig struct {
	Columns  int    `json:"columns"`
	HTMLPath string `json:"htmlPath"`
	Title    string `json:"title"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Prefix string `json:"prefix"`
}

type MetricsConfig struct {
	Addr string `json:"addr"`
}

func Load(configPath string) (*Config, error) {
	cfg := &Config{
		// Default values
		Engine: EngineConfig{
			BinaryPath:   "stockfish",
			Threads:      4,
			HashMB:       128,
			MoveTimeSecs: 1.0,
		},
		Output: OutputConfig{
			Columns: 4,
			Title:   "Game collection",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Prefix: "[chesstoc] ",
		},
	}

	// Load from JSON file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CHESSTOC_ENGINE_PATH"); v != "" {
		c.Engine.BinaryPath = v
	}
	if v := os.Getenv("CHESSTOC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CHESSTOC_LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv("CHESSTOC_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
}

func (c *Config) validate() error {
	// Validate the engine path if it is absolute
	if filepath.IsAbs(c.Engine.BinaryPath) {
		if _, err := os.Stat(c.Engine.BinaryPath); err != nil {
			return fmt.Errorf("engine binary not found at %s", c.Engine.BinaryPath)
		}
	}

	// Validate numeric ranges
	if c.Engine.Threads < 1 {
		c.Engine.Threads = 1
	}
	if c.Engine.HashMB < 16 {
		c.Engine.HashMB = 16
	}
	if c.Engine.MoveTimeSecs < 0.02 {
		c.Engine.MoveTimeSecs = 0.02
	}
	if c.Output.Columns < 1 {
		c.Output.Columns = 1
	}

	return nil
}

func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("CHESSTOC_CONFIG"); path != "" {
		return path
	}

	// Check current directory
	if _, err := os.Stat("chesstoc.json"); err == nil {
		return "chesstoc.json"
	}

	// Check home directory
	if home, err := os.UserHomeDir(); err == nil {
		configPath := filepath.Join(home, ".chesstoc", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	return ""
}
