package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsClient is one connected websocket peer.
type wsClient struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
	done   chan struct{}
	logger *slog.Logger

	writeTimeout time.Duration
	pingInterval time.Duration

	closeOnce sync.Once
}

func newWSClient(conn *websocket.Conn, cfg Config, logger *slog.Logger) *wsClient {
	return &wsClient{
		conn:         conn,
		remote:       conn.RemoteAddr().String(),
		send:         make(chan []byte, cfg.ClientBuffer),
		done:         make(chan struct{}),
		logger:       logger,
		writeTimeout: cfg.WriteTimeout,
		pingInterval: cfg.PingInterval,
	}
}

// close gracefully closes the connection. Safe to call more than once.
func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.conn.Close()
	})
}

// writeLoop owns all writes to the connection.
func (c *wsClient) writeLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("websocket write failed", "remote", c.remote, "error", err)
				c.close()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(c.writeTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.logger.Debug("failed to send ping", "remote", c.remote, "error", err)
				c.close()
				return
			}
		}
	}
}

// readLoop discards inbound messages so control frames are processed, and
// returns when the peer goes away.
func (c *wsClient) readLoop() {
	defer c.close()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			select {
			case <-c.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.logger.Debug("websocket read failed", "remote", c.remote, "error", err)
				}
			}
			return
		}
	}
}
