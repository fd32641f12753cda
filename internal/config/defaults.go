package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL      = "http://localhost:8000/api"
	DefaultAPITimeout   = 30 * time.Second
	DefaultRetryBackoff = 1 * time.Second
	DefaultPollInterval = 30 * time.Second
	DefaultPort         = 8080
	DefaultMetricsPath  = "/metrics"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

func (c *Config) applyDefaults() {
	// API defaults; max_retries stays 0 so one attempt is one request.
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
