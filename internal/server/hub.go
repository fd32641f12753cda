package server

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rickgao/pricewatch/internal/lifecycle"
	"github.com/rickgao/pricewatch/internal/presentation"
)

// hub fans encoded views out to websocket clients.
type hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	latest  []byte
	closed  bool
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// publish is a lifecycle subscriber. It runs on the event loop and never blocks.
func (h *hub) publish(s lifecycle.State) {
	data, err := json.Marshal(presentation.From(s))
	if err != nil {
		h.logger.Error("failed to encode view", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("websocket client buffer full, dropping view", "remote", c.remote)
		}
	}
}

// add registers c and returns the latest view to send first. Returns false
// once the hub is closed.
func (h *hub) add(c *wsClient) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, false
	}
	h.clients[c] = struct{}{}
	return h.latest, true
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// close disconnects every client.
func (h *hub) close() {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*wsClient]struct{})
	h.closed = true
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
