package stream

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Errors
var (
	ErrAlreadyStarted = errors.New("stream already started")
	ErrNoServer       = errors.New("server address is required")
)

// Config configures a stream client.
type Config struct {
	URL        string // WebSocket URL (e.g., ws://localhost:8080/ws)
	RefreshURL string // Manual refresh endpoint (e.g., http://localhost:8080/api/refresh)

	HandshakeTimeout  time.Duration
	PingTimeout       time.Duration // Max time without any frame before the connection is stale
	WriteTimeout      time.Duration // Write deadline for control frames
	RequestTimeout    time.Duration // Timeout for refresh requests
	ReconnectBaseWait time.Duration
	ReconnectMaxWait  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout:  10 * time.Second,
		PingTimeout:       90 * time.Second,
		WriteTimeout:      5 * time.Second,
		RequestTimeout:    10 * time.Second,
		ReconnectBaseWait: 1 * time.Second,
		ReconnectMaxWait:  30 * time.Second,
	}
}

// ConfigForServer returns the default config with endpoints derived from a
// server base address such as "http://localhost:8080".
func ConfigForServer(addr string) (Config, error) {
	if addr == "" {
		return Config{}, ErrNoServer
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return Config{}, fmt.Errorf("parse server address: %w", err)
	}

	ws := *u
	switch u.Scheme {
	case "http":
		ws.Scheme = "ws"
	case "https":
		ws.Scheme = "wss"
	default:
		return Config{}, fmt.Errorf("server address must be http or https, got %q", u.Scheme)
	}
	base := strings.TrimSuffix(u.Path, "/")
	ws.Path = base + "/ws"

	refresh := *u
	refresh.Path = base + "/api/refresh"

	cfg := DefaultConfig()
	cfg.URL = ws.String()
	cfg.RefreshURL = refresh.String()
	return cfg, nil
}
