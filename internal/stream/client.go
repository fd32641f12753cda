package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/singleflight"

	"github.com/rickgao/pricewatch/internal/lifecycle"
	"github.com/rickgao/pricewatch/internal/model"
	"github.com/rickgao/pricewatch/internal/presentation"
)

// Client follows a remote server's view stream.
type Client struct {
	cfg        Config
	logger     *slog.Logger
	httpClient *http.Client
	feed       *presentation.Feed
	refreshes  singleflight.Group

	// State
	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	last      *presentation.View
	started   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewClient creates a stream client. Call Start to connect.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.ReconnectBaseWait <= 0 {
		cfg.ReconnectBaseWait = def.ReconnectBaseWait
	}
	if cfg.ReconnectMaxWait < cfg.ReconnectBaseWait {
		cfg.ReconnectMaxWait = cfg.ReconnectBaseWait
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = def.PingTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = def.HandshakeTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}

	return &Client{
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		feed:       presentation.NewFeed(),
	}
}

// Start connects in the background and keeps reconnecting until Stop.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrAlreadyStarted
	}
	if c.cfg.URL == "" {
		return ErrNoServer
	}
	c.started = true

	ctx, c.cancel = context.WithCancel(ctx)
	c.feed.Publish(presentation.View{
		Status:  lifecycle.StatusIdle,
		Display: presentation.Display{Mode: presentation.ModeLoading, Message: presentation.LoadingMessage},
	})

	c.wg.Add(1)
	go c.run(ctx)
	return nil
}

// Stop closes the connection and waits for the background goroutine.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.cancel()
	if c.conn != nil {
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.conn.Close()
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Views returns the view stream.
func (c *Client) Views() <-chan presentation.View {
	return c.feed.C()
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Refresh asks the server for a manual attempt. The result arrives on the stream.
// Presses made while a request is outstanding share it.
func (c *Client) Refresh() {
	go func() {
		_, err, shared := c.refreshes.Do("refresh", func() (any, error) {
			return nil, c.refresh(context.Background())
		})
		if err != nil && !shared {
			c.logger.Warn("refresh request failed", "error", err)
		}
	}()
}

func (c *Client) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RefreshURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// run connects, reads until the connection drops, then reconnects with
// exponential backoff.
func (c *Client) run(ctx context.Context) {
	defer c.wg.Done()

	wait := c.cfg.ReconnectBaseWait
	for {
		conn, err := c.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("stream connect failed", "url", c.cfg.URL, "error", err, "retry_in", wait)
			c.publishDisconnected()

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}

			// Exponential backoff
			wait *= 2
			if wait > c.cfg.ReconnectMaxWait {
				wait = c.cfg.ReconnectMaxWait
			}
			continue
		}

		wait = c.cfg.ReconnectBaseWait
		c.logger.Info("stream connected", "url", c.cfg.URL)

		err = c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		c.connected = false
		c.mu.Unlock()
		conn.Close()

		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("stream disconnected", "error", err)
		c.publishDisconnected()
	}
}

func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		conn.Close()
		return nil, ctx.Err()
	}
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	// Server pings keep the read deadline moving.
	conn.SetReadDeadline(time.Now().Add(c.cfg.PingTimeout))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(c.cfg.PingTimeout))
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(c.cfg.WriteTimeout),
		)
	})

	return conn, nil
}

// readLoop decodes views until the connection fails.
func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(c.cfg.PingTimeout))

		var v presentation.View
		if err := json.Unmarshal(data, &v); err != nil {
			c.logger.Warn("dropping undecodable view", "error", err, "size", len(data))
			continue
		}

		c.mu.Lock()
		c.last = &v
		c.mu.Unlock()
		c.feed.Publish(v)
	}
}

// publishDisconnected reports the lost server as a network failure, keeping
// the last snapshot seen.
func (c *Client) publishDisconnected() {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()

	v := presentation.View{
		Status:    lifecycle.StatusFailed,
		LastError: model.NetworkErrorMessage,
		ErrorKind: model.KindNoResponse.String(),
		Display:   presentation.Display{Mode: presentation.ModeError, Message: model.NetworkErrorMessage},
		UpdatedAt: time.Now(),
	}
	if last != nil {
		switch {
		case last.ViewModel != nil:
			v.LastKnownGood = last.ViewModel
		case last.LastKnownGood != nil:
			v.LastKnownGood = last.LastKnownGood
		}
	}
	c.feed.Publish(v)
}
