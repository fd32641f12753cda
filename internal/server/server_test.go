package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/pricewatch/internal/lifecycle"
	"github.com/rickgao/pricewatch/internal/model"
	"github.com/rickgao/pricewatch/internal/presentation"
)

// fakeSource stands in for the lifecycle. push delivers a state to subscribers
// the way the event loop would.
type fakeSource struct {
	mu        sync.Mutex
	state     lifecycle.State
	subs      []func(lifecycle.State)
	refreshes atomic.Int32
}

func (f *fakeSource) State() lifecycle.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSource) Refresh() { f.refreshes.Add(1) }

func (f *fakeSource) Subscribe(fn func(lifecycle.State)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	fn(f.state)
	return true
}

func (f *fakeSource) push(s lifecycle.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
	for _, fn := range f.subs {
		fn(s)
	}
}

func readyState() lifecycle.State {
	q := []model.Quote{{
		ID:                "bitcoin",
		Name:              "Bitcoin",
		Symbol:            "BTC",
		PriceUSD:          decimal.RequireFromString("64000"),
		ChangePercent24Hr: decimal.RequireFromString("-1.5"),
	}}
	return lifecycle.State{Status: lifecycle.StatusReady, Quotes: q, LastKnownGood: q}
}

func newTestServer(t *testing.T, src *fakeSource, metrics http.Handler) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{PingInterval: time.Hour}, src, metrics, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.hub.close()
		ts.Close()
	})
	return s, ts
}

func TestServer_State(t *testing.T) {
	src := &fakeSource{state: readyState()}
	_, ts := newTestServer(t, src, nil)

	resp, err := http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var v map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, "ready", v["status"])
	assert.Equal(t, map[string]any{"mode": "data"}, v["display"])
	require.Contains(t, v, "viewModel")
}

func TestServer_Refresh(t *testing.T) {
	src := &fakeSource{}
	_, ts := newTestServer(t, src, nil)

	resp, err := http.Post(ts.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, int32(1), src.refreshes.Load())

	resp, err = http.Get(ts.URL + "/api/refresh")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, int32(1), src.refreshes.Load())
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name   string
		state  lifecycle.State
		status string
	}{
		{"ready", readyState(), "healthy"},
		{"idle", lifecycle.State{}, "healthy"},
		{"failed", lifecycle.State{Status: lifecycle.StatusFailed}, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newTestServer(t, &fakeSource{state: tt.state}, nil)

			resp, err := http.Get(ts.URL + "/health")
			require.NoError(t, err)
			defer resp.Body.Close()

			var body struct {
				Status     string         `json:"status"`
				Components map[string]any `json:"components"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.status, body.Status)
			assert.Contains(t, body.Components, "lifecycle")
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pricewatch_up 1\n"))
	})

	t.Run("mounted", func(t *testing.T) {
		_, ts := newTestServer(t, &fakeSource{}, metrics)

		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("absent", func(t *testing.T) {
		_, ts := newTestServer(t, &fakeSource{}, nil)

		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readView(t *testing.T, conn *websocket.Conn) presentation.Display {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var v struct {
		Display presentation.Display `json:"display"`
	}
	require.NoError(t, json.Unmarshal(data, &v))
	return v.Display
}

func TestServer_WebSocketStream(t *testing.T) {
	src := &fakeSource{}
	s, ts := newTestServer(t, src, nil)

	conn := dial(t, ts)

	// The current view is sent on connect.
	d := readView(t, conn)
	assert.Equal(t, presentation.ModeLoading, d.Mode)
	require.Eventually(t, func() bool { return s.hub.count() == 1 }, time.Second, 5*time.Millisecond)

	f := model.NoResponseFailure()
	src.push(lifecycle.State{Status: lifecycle.StatusFailed, Err: &f})
	d = readView(t, conn)
	assert.Equal(t, presentation.ModeError, d.Mode)
	assert.Equal(t, model.NetworkErrorMessage, d.Message)

	src.push(lifecycle.State{Status: lifecycle.StatusReady, Quotes: []model.Quote{}})
	d = readView(t, conn)
	assert.Equal(t, presentation.ModeEmpty, d.Mode)
	assert.Equal(t, presentation.EmptyMessage, d.Message)
}

func TestServer_WebSocketDisconnect(t *testing.T) {
	s, ts := newTestServer(t, &fakeSource{}, nil)

	conn := dial(t, ts)
	readView(t, conn)
	require.Eventually(t, func() bool { return s.hub.count() == 1 }, time.Second, 5*time.Millisecond)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	require.Eventually(t, func() bool { return s.hub.count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestServer_ShutdownClosesStreams(t *testing.T) {
	s, ts := newTestServer(t, &fakeSource{}, nil)

	conn := dial(t, ts)
	readView(t, conn)
	require.Eventually(t, func() bool { return s.hub.count() == 1 }, time.Second, 5*time.Millisecond)

	s.hub.close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))

	_, ok := s.hub.add(&wsClient{})
	assert.False(t, ok)
}
