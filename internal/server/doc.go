// Package server exposes the presentation contract over HTTP.
//
// Routes:
//
//	GET  /api/state    current presentation view as JSON
//	POST /api/refresh  issue a manual poll attempt
//	GET  /ws           websocket stream, one view per state transition
//	GET  /health       liveness and lifecycle summary
//	GET  /metrics      Prometheus metrics (path configurable)
package server
