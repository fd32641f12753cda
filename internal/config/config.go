package config

import "time"

// Config is the root configuration.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Poller PollerConfig `yaml:"poller"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// APIConfig holds prices API settings.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`   // Root of the API, e.g. http://localhost:8000/api
	AuthToken    string        `yaml:"auth_token"` // Static bearer credential sent on every request
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// PollerConfig holds poll scheduler settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// ServerConfig holds the presentation HTTP server settings.
type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPath string `yaml:"metrics_path"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}
