package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bnema/rclctl/internal/ports"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// recordingClock fires immediately and remembers every requested delay.
type recordingClock struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (c *recordingClock) Now() time.Time { return time.Now() }

func (c *recordingClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.delays = append(c.delays, d)
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func (c *recordingClock) Delays() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.delays...)
}

type countingObserver struct {
	connected    atomic.Int32
	reconnecting atomic.Int32
	received     atomic.Int32
	dropped      atomic.Int32
}

func (o *countingObserver) Connected()      { o.connected.Add(1) }
func (o *countingObserver) Reconnecting()   { o.reconnecting.Add(1) }
func (o *countingObserver) Received(string) { o.received.Add(1) }
func (o *countingObserver) Dropped()        { o.dropped.Add(1) }

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/rcl2/ws"
}

func TestEventURL(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{base: "http://127.0.0.1:8000", path: "", want: "ws://127.0.0.1:8000/rcl2/ws"},
		{base: "https://agent.example.com/", path: "/rcl2/ws", want: "wss://agent.example.com/rcl2/ws"},
		{base: "https://agent.example.com/api?x=1", path: "rcl2/ws", want: "wss://agent.example.com/api/rcl2/ws"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := EventURL(tt.base, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := EventURL("ftp://host", "")
	require.Error(t, err)
}

func TestChannelDeliversEventsAndDropsUndecodable(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get("X-API-Key"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"payload":"no type"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"debt_repaid","decision_id":"dec-1"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"mystery"}`))
		// hold the socket open until the client goes away
		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	counts := &countingObserver{}
	channel := NewChannel(wsURL(server), WithAPIKey("key-1"), WithObserver(counts))

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan ports.Event, 4)
	done := make(chan error, 1)
	go func() { done <- channel.Run(ctx, func(e ports.Event) { events <- e }) }()

	first := <-events
	second := <-events
	assert.Equal(t, ports.EventDebtRepaid, first.Type)
	assert.JSONEq(t, `{"type":"debt_repaid","decision_id":"dec-1"}`, string(first.Payload))
	assert.Equal(t, "mystery", second.Type)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), counts.connected.Load())
	assert.Equal(t, int32(2), counts.received.Load())
	assert.Equal(t, int32(2), counts.dropped.Load())
	assert.Zero(t, counts.reconnecting.Load())
}

func TestChannelReconnectsAfterFixedDelay(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var connections atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		connections.Add(1)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"restraint_update"}`))
		// drop the connection without a close handshake
		_ = conn.Close()
	}))
	defer server.Close()

	clock := &recordingClock{}
	core, logs := observer.New(zap.InfoLevel)
	channel := NewChannel(wsURL(server),
		WithReconnectDelay(250*time.Millisecond),
		WithClock(clock),
		WithLogger(zap.New(core)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	var received atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- channel.Run(ctx, func(ports.Event) {
			if received.Add(1) == 3 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("channel did not stop after cancel")
	}

	assert.GreaterOrEqual(t, connections.Load(), int32(3))
	delays := clock.Delays()
	require.GreaterOrEqual(t, len(delays), 2)
	for _, d := range delays {
		assert.Equal(t, 250*time.Millisecond, d)
	}
	assert.NotZero(t, logs.FilterMessage("websocket closed, reconnect scheduled").Len())
}

func TestChannelStopsWaitingForReconnectOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	server := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(server)
	server.Close()

	counts := &countingObserver{}
	channel := NewChannel(url, WithReconnectDelay(time.Hour), WithObserver(counts))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- channel.Run(ctx, func(ports.Event) {}) }()

	require.Eventually(t, func() bool { return counts.reconnecting.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reconnect wait was not cancelled")
	}
	assert.Zero(t, counts.connected.Load())
}

func TestRunRequiresHandler(t *testing.T) {
	err := NewChannel("ws://127.0.0.1:1/rcl2/ws").Run(context.Background(), nil)
	require.Error(t, err)
}
