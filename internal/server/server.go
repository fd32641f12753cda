package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/pricewatch/internal/lifecycle"
	"github.com/rickgao/pricewatch/internal/presentation"
	"github.com/rickgao/pricewatch/internal/version"
)

// StateSource is the lifecycle surface the server reads from.
type StateSource interface {
	State() lifecycle.State
	Refresh()
	Subscribe(fn func(lifecycle.State)) bool
}

// Config holds server configuration.
type Config struct {
	Port        int
	MetricsPath string

	WriteTimeout time.Duration
	PingInterval time.Duration
	ClientBuffer int
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Port:         8080,
		MetricsPath:  "/metrics",
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
		ClientBuffer: 16,
	}
}

// Server serves the presentation contract.
type Server struct {
	cfg      Config
	source   StateSource
	metrics  http.Handler
	logger   *slog.Logger
	hub      *hub
	upgrader websocket.Upgrader
	server   *http.Server
	started  time.Time
}

// New creates a server and subscribes it to source. metrics may be nil.
func New(cfg Config, source StateSource, metrics http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = def.MetricsPath
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = def.ClientBuffer
	}

	s := &Server{
		cfg:     cfg,
		source:  source,
		metrics: metrics,
		logger:  logger,
		hub:     newHub(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		started: time.Now(),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if !source.Subscribe(s.hub.publish) {
		logger.Warn("state source closed, websocket stream disabled")
	}
	return s
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET "+s.cfg.MetricsPath, s.metrics)
	}

	return mux
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting http server", "port", s.cfg.Port)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown disconnects websocket clients and gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presentation.From(s.source.State()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("manual refresh requested", "remote", r.RemoteAddr)
	s.source.Refresh()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh scheduled"})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := newWSClient(conn, s.cfg, s.logger)
	latest, ok := s.hub.add(c)
	if !ok {
		c.close()
		return
	}
	if latest != nil {
		c.send <- latest
	}
	s.logger.Debug("websocket client connected", "remote", c.remote, "clients", s.hub.count())

	go c.writeLoop()
	c.readLoop()

	s.hub.remove(c)
	s.logger.Debug("websocket client disconnected", "remote", c.remote)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.source.State()

	health := struct {
		Status     string         `json:"status"`
		Version    version.Info   `json:"version"`
		Uptime     string         `json:"uptime"`
		Components map[string]any `json:"components"`
	}{
		Status:  "healthy",
		Version: version.Get(),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Components: map[string]any{
			"lifecycle": map[string]any{
				"status":       state.Status,
				"in_flight":    state.InFlight,
				"has_snapshot": state.HasSnapshot(),
				"updated_at":   state.UpdatedAt,
			},
			"websocket_clients": s.hub.count(),
		},
	}
	if state.Status == lifecycle.StatusFailed {
		health.Status = "degraded"
	}

	writeJSON(w, http.StatusOK, health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
