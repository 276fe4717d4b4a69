package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bnema/rclctl/internal/ports"
)

const (
	DefaultPath           = "/rcl2/ws"
	DefaultReconnectDelay = 5 * time.Second

	handshakeTimeout = 10 * time.Second
	maxMessageBytes  = 1 << 20
)

var _ ports.EventSource = (*Channel)(nil)

// Observer is told about connection lifecycle and every decoded message.
type Observer interface {
	Connected()
	Reconnecting()
	Received(eventType string)
	Dropped()
}

type nopObserver struct{}

func (nopObserver) Connected()      {}
func (nopObserver) Reconnecting()   {}
func (nopObserver) Received(string) {}
func (nopObserver) Dropped()        {}

// Channel keeps one socket open to the backend event endpoint. After any
// close or dial failure it waits a fixed delay and dials again, forever,
// until its context is cancelled.
type Channel struct {
	url            string
	header         http.Header
	dialer         *websocket.Dialer
	reconnectDelay time.Duration
	clock          ports.Clock
	logger         *zap.Logger
	observer       Observer
}

type Option func(*Channel)

func WithAPIKey(key string) Option {
	return func(c *Channel) {
		if key = strings.TrimSpace(key); key != "" {
			c.header.Set("X-API-Key", key)
		}
	}
}

func WithReconnectDelay(delay time.Duration) Option {
	return func(c *Channel) {
		if delay > 0 {
			c.reconnectDelay = delay
		}
	}
}

func WithClock(clock ports.Clock) Option {
	return func(c *Channel) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Channel) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(c *Channel) {
		if observer != nil {
			c.observer = observer
		}
	}
}

func NewChannel(eventURL string, opts ...Option) *Channel {
	c := &Channel{
		url:            eventURL,
		header:         http.Header{},
		dialer:         &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		reconnectDelay: DefaultReconnectDelay,
		clock:          ports.SystemClock{},
		logger:         zap.NewNop(),
		observer:       nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EventURL maps an http(s) backend base URL onto the ws(s) event endpoint.
func EventURL(baseURL, path string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("parse backend base url: %w", err)
	}

	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported backend scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", errors.New("backend base url host is required")
	}

	if path == "" {
		path = DefaultPath
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/" + strings.TrimLeft(path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}

func (c *Channel) URL() string {
	return c.url
}

// Run blocks until ctx is cancelled. It never gives up reconnecting and
// returns nil on cancellation.
func (c *Channel) Run(ctx context.Context, handle ports.EventHandler) error {
	if handle == nil {
		return errors.New("event handler is required")
	}

	for {
		err := c.session(ctx, handle)
		if ctx.Err() != nil {
			return nil
		}

		c.logger.Info("websocket closed, reconnect scheduled",
			zap.String("url", c.url),
			zap.Duration("delay", c.reconnectDelay),
			zap.Error(err),
		)
		c.observer.Reconnecting()

		select {
		case <-ctx.Done():
			return nil
		case <-c.clock.After(c.reconnectDelay):
		}
	}
}

func (c *Channel) session(ctx context.Context, handle ports.EventHandler) error {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	conn.SetReadLimit(maxMessageBytes)

	c.logger.Info("websocket connected", zap.String("url", c.url))
	c.observer.Connected()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		event, ok := decodeEvent(data)
		if !ok {
			c.logger.Warn("dropping undecodable websocket message", zap.Int("bytes", len(data)))
			c.observer.Dropped()
			continue
		}
		c.observer.Received(event.Type)
		handle(event)
	}
}

func decodeEvent(data []byte) (ports.Event, bool) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil || head.Type == "" {
		return ports.Event{}, false
	}

	payload := make(json.RawMessage, len(data))
	copy(payload, data)
	return ports.Event{Type: head.Type, Payload: payload}, true
}
