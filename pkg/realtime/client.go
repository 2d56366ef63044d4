package realtime

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	clierrors "github.com/creativehub/nexus/pkg/errors"
	"github.com/creativehub/nexus/pkg/logger"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Message types exchanged with the backend
const (
	TypeSystem            = "system"
	TypePing              = "ping"
	TypePong              = "pong"
	TypeError             = "error"
	TypeSubscribe         = "subscribe"
	TypeUnsubscribe       = "unsubscribe"
	TypeSubscribed        = "subscribed"
	TypeUnsubscribed      = "unsubscribed"
	TypeChange            = "change"
	TypeNotification      = "notification"
	TypeNotificationCount = "notification_count"
)

// ChannelProjects streams project inserts, updates and deletes
const ChannelProjects = "projects"

// RealtimePath is the backend socket endpoint
const RealtimePath = "/api/v1/realtime"

// Message is the socket envelope
type Message struct {
	Type      string              `json:"type"`
	Payload   jsoniter.RawMessage `json:"payload,omitempty"`
	ID        string              `json:"id,omitempty"`
	ReplyTo   string              `json:"reply_to,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Decode unmarshals the payload into v
func (m Message) Decode(v interface{}) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s message has no payload", m.Type)
	}
	return json.Unmarshal(m.Payload, v)
}

// ChangePayload describes a row change on a subscribed channel
type ChangePayload struct {
	Table string                 `json:"table"`
	Event string                 `json:"event"`
	New   map[string]interface{} `json:"new,omitempty"`
	Old   map[string]interface{} `json:"old,omitempty"`
}

// CountPayload carries the unread notification count
type CountPayload struct {
	UnreadCount int64 `json:"unread_count"`
}

// ErrorPayload is sent when the backend rejects a message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type channelPayload struct {
	Channel string `json:"channel"`
}

type pingPayload struct {
	ClientTime int64 `json:"client_time"`
}

// Config holds socket client settings
type Config struct {
	URL                  string
	Token                string
	APIKey               string
	HandshakeTimeout     time.Duration
	HeartbeatInterval    time.Duration
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int // negative means unlimited
}

// DefaultConfig returns settings for the given socket URL
func DefaultConfig(socketURL string) Config {
	return Config{
		URL:                  socketURL,
		HandshakeTimeout:     15 * time.Second,
		HeartbeatInterval:    30 * time.Second,
		ReconnectBaseDelay:   2 * time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		MaxReconnectAttempts: -1,
	}
}

// SocketURL derives the realtime endpoint from the backend's HTTP URL
func SocketURL(backendURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(backendURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported backend URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + RealtimePath
	return u.String(), nil
}

// ConnectionState is the socket lifecycle state
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// ConnectionStats holds connection statistics
type ConnectionStats struct {
	MessagesReceived int64
	MessagesSent     int64
	ReconnectCount   int
	LastError        string
	LastLatency      time.Duration
	ConnectedAt      time.Time
	DisconnectedAt   time.Time
}

// Handler receives dispatched messages
type Handler func(Message)

type listener struct {
	id      uint64
	handler Handler
}

// Client is a reconnecting realtime socket
type Client struct {
	config Config
	state  atomic.Int32

	connMu  sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex

	listenersMu sync.RWMutex
	listeners   map[string][]listener
	nextID      uint64

	subsMu sync.Mutex
	subs   map[string]bool

	statsMu sync.RWMutex
	stats   ConnectionStats

	msgSeq atomic.Uint64
}

// NewClient creates a socket client. Nothing connects until Run.
func NewClient(cfg Config) *Client {
	if cfg.ReconnectBaseDelay <= 0 {
		cfg.ReconnectBaseDelay = time.Second
	}
	if cfg.ReconnectMaxDelay < cfg.ReconnectBaseDelay {
		cfg.ReconnectMaxDelay = cfg.ReconnectBaseDelay
	}
	return &Client{
		config:    cfg,
		listeners: make(map[string][]listener),
		subs:      make(map[string]bool),
	}
}

// On registers a handler for a message type. An empty type receives every
// message. The returned func removes the handler.
func (c *Client) On(msgType string, handler Handler) func() {
	c.listenersMu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners[msgType] = append(c.listeners[msgType], listener{id: id, handler: handler})
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		ls := c.listeners[msgType]
		for i, l := range ls {
			if l.id == id {
				c.listeners[msgType] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Subscribe joins a channel now if connected and again after every reconnect
func (c *Client) Subscribe(channel string) error {
	c.subsMu.Lock()
	c.subs[channel] = true
	c.subsMu.Unlock()
	if !c.IsConnected() {
		return nil
	}
	return c.Send(TypeSubscribe, channelPayload{Channel: channel})
}

// Unsubscribe leaves a channel
func (c *Client) Unsubscribe(channel string) error {
	c.subsMu.Lock()
	delete(c.subs, channel)
	c.subsMu.Unlock()
	if !c.IsConnected() {
		return nil
	}
	return c.Send(TypeUnsubscribe, channelPayload{Channel: channel})
}

// Send writes a message on the current connection
func (c *Client) Send(msgType string, payload interface{}) error {
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	msg := map[string]interface{}{
		"type":      msgType,
		"id":        fmt.Sprintf("c%d", c.msgSeq.Add(1)),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if payload != nil {
		msg["payload"] = payload
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	c.statsMu.Lock()
	c.stats.MessagesSent++
	c.statsMu.Unlock()
	return nil
}

// IsConnected reports whether a connection is open
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// State returns the connection state
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// Stats returns connection statistics
func (c *Client) Stats() ConnectionStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

// Run connects and serves messages until ctx is cancelled. A failed first
// connection is returned as an error. Later drops reconnect with exponential
// backoff until MaxReconnectAttempts consecutive dials fail.
func (c *Client) Run(ctx context.Context) error {
	c.setState(StateConnecting)
	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected)
		return err
	}

	for {
		c.serve(ctx, conn)
		if ctx.Err() != nil {
			c.setState(StateDisconnected)
			return nil
		}
		if conn, err = c.reconnect(ctx); conn == nil {
			c.setState(StateDisconnected)
			return err
		}
		c.statsMu.Lock()
		c.stats.ReconnectCount++
		c.statsMu.Unlock()
	}
}

// reconnect dials with exponential backoff and jitter. It returns a nil conn
// when ctx ends or the attempt limit is reached.
func (c *Client) reconnect(ctx context.Context) (*websocket.Conn, error) {
	c.setState(StateReconnecting)
	delay := c.config.ReconnectBaseDelay
	for attempt := 1; ; attempt++ {
		if c.config.MaxReconnectAttempts >= 0 && attempt > c.config.MaxReconnectAttempts {
			return nil, fmt.Errorf("connection lost; gave up after %d reconnect attempts: %s",
				c.config.MaxReconnectAttempts, c.Stats().LastError)
		}

		wait := delay + time.Duration(rand.Int63n(int64(delay)/2+1))
		logger.Debug("Reconnecting realtime socket", "attempt", attempt, "wait", wait)
		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(wait):
		}

		conn, err := c.dial(ctx)
		if err == nil {
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, nil
		}
		delay *= 2
		if delay > c.config.ReconnectMaxDelay {
			delay = c.config.ReconnectMaxDelay
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return nil, clierrors.NewCLIError(clierrors.ErrorTypeValidation, "invalid realtime URL", err)
	}
	q := u.Query()
	if c.config.Token != "" {
		q.Set("token", c.config.Token)
	}
	if c.config.APIKey != "" {
		q.Set("apikey", c.config.APIKey)
	}
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.config.HandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		c.recordError(err)
		if resp != nil {
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return nil, clierrors.AuthError("The backend rejected the realtime connection")
			case http.StatusForbidden:
				return nil, clierrors.NewCLIError(clierrors.ErrorTypeForbidden, "Realtime connection not allowed", err)
			}
		}
		return nil, clierrors.Classify(err)
	}
	return conn, nil
}

// serve reads from conn until it breaks or ctx ends
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	c.setState(StateConnected)

	c.statsMu.Lock()
	c.stats.ConnectedAt = time.Now()
	c.statsMu.Unlock()
	logger.Debug("Realtime socket connected", "url", c.config.URL)

	connCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.connMu.Lock()
		c.conn = nil
		c.connMu.Unlock()
		_ = conn.Close()
		c.statsMu.Lock()
		c.stats.DisconnectedAt = time.Now()
		c.statsMu.Unlock()
	}()

	go func() {
		<-connCtx.Done()
		if ctx.Err() != nil {
			c.writeMu.Lock()
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			c.writeMu.Unlock()
		}
		_ = conn.Close()
	}()

	c.resubscribe()
	if c.config.HeartbeatInterval > 0 {
		go c.heartbeat(connCtx)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.recordError(err)
				logger.Warn("Realtime socket read failed", "err", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("Dropping malformed realtime message", "err", err)
			continue
		}
		c.statsMu.Lock()
		c.stats.MessagesReceived++
		c.statsMu.Unlock()

		if msg.Type == TypePong {
			c.recordLatency(msg)
		}
		c.dispatch(msg)
	}
}

func (c *Client) resubscribe() {
	c.subsMu.Lock()
	channels := make([]string, 0, len(c.subs))
	for ch := range c.subs {
		channels = append(channels, ch)
	}
	c.subsMu.Unlock()

	for _, ch := range channels {
		if err := c.Send(TypeSubscribe, channelPayload{Channel: ch}); err != nil {
			logger.Warn("Failed to subscribe", "channel", ch, "err", err)
		}
	}
}

func (c *Client) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Send(TypePing, pingPayload{ClientTime: time.Now().UnixMilli()}); err != nil {
				logger.Debug("Failed to send ping", "err", err)
			}
		}
	}
}

func (c *Client) recordLatency(msg Message) {
	var pong struct {
		ClientTime int64 `json:"client_time"`
	}
	if err := msg.Decode(&pong); err != nil || pong.ClientTime == 0 {
		return
	}
	c.statsMu.Lock()
	c.stats.LastLatency = time.Since(time.UnixMilli(pong.ClientTime))
	c.statsMu.Unlock()
}

// dispatch runs handlers in order on the read goroutine
func (c *Client) dispatch(msg Message) {
	c.listenersMu.RLock()
	handlers := make([]Handler, 0, len(c.listeners[msg.Type])+len(c.listeners[""]))
	for _, l := range c.listeners[msg.Type] {
		handlers = append(handlers, l.handler)
	}
	for _, l := range c.listeners[""] {
		handlers = append(handlers, l.handler)
	}
	c.listenersMu.RUnlock()

	for _, h := range handlers {
		h(msg)
	}
}

func (c *Client) setState(s ConnectionState) {
	c.state.Store(int32(s))
}

func (c *Client) recordError(err error) {
	c.statsMu.Lock()
	c.stats.LastError = err.Error()
	c.statsMu.Unlock()
}
