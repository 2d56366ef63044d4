package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/creativehub/nexus/internal/logger"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next message from the peer
	readWait = 90 * time.Second

	// Ping period, shorter than readWait on the client side
	pingPeriod = 30 * time.Second

	maxMessageSize = 64 * 1024

	sendBufferSize = 256
)

// Client is one websocket connection of a profile
type Client struct {
	conn *websocket.Conn
	hub  *Hub

	UserID   string
	Username string

	send       chan []byte
	sendMu     sync.Mutex
	sendClosed bool

	ConnectedAt time.Time
	RemoteAddr  string

	rateLimiter *RateLimiter

	subsMu        sync.RWMutex
	subscriptions map[string]bool

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

// RateLimiter is a token bucket for inbound messages
type RateLimiter struct {
	tokens    float64
	maxTokens float64
	refill    float64
	lastTime  time.Time
	mu        sync.Mutex
}

// NewRateLimiter creates a bucket that refills maxPerSecond tokens per second up to burst
func NewRateLimiter(maxPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		tokens:    float64(burst),
		maxTokens: float64(burst),
		refill:    float64(maxPerSecond),
		lastTime:  time.Now(),
	}
}

// Allow consumes a token if one is available
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.tokens += now.Sub(r.lastTime).Seconds() * r.refill
	r.lastTime = now
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}

	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// NewClient creates a client for an accepted connection. conn may be nil in tests.
func NewClient(hub *Hub, conn *websocket.Conn, userID, username string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	config := hub.getRateLimitConfig()

	return &Client{
		hub:           hub,
		conn:          conn,
		UserID:        userID,
		Username:      username,
		send:          make(chan []byte, sendBufferSize),
		ConnectedAt:   time.Now().UTC(),
		rateLimiter:   NewRateLimiter(config.MaxMessagesPerSecond, config.BurstSize),
		subscriptions: make(map[string]bool),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// enqueue queues data without blocking. open is false once the hub has
// closed the client.
func (c *Client) enqueue(data []byte) (queued, open bool) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false, false
	}
	select {
	case c.send <- data:
		return true, true
	default:
		return false, true
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

// Subscribe adds channel to the client's subscriptions
func (c *Client) Subscribe(channel string) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	c.subscriptions[channel] = true
}

// Unsubscribe removes channel from the client's subscriptions
func (c *Client) Unsubscribe(channel string) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	delete(c.subscriptions, channel)
}

// IsSubscribed reports whether the client receives channel's events
func (c *Client) IsSubscribed(channel string) bool {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	return c.subscriptions[channel]
}

// ReadPump reads inbound messages until the connection fails
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		readCtx, readCancel := context.WithTimeout(c.ctx, readWait)
		_, data, err := c.conn.Read(readCtx)
		readCancel()

		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && c.ctx.Err() == nil {
				logger.Log.Debug("Realtime read failed", logger.WithUserID(c.UserID), zap.Error(err))
				c.hub.stats.Errors.Add(1)
			}
			return
		}

		if !c.rateLimiter.Allow() {
			c.SendError("rate_limited", "Too many messages, please slow down")
			continue
		}
		c.hub.stats.MessagesReceived.Add(1)

		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			c.SendError("invalid_json", "Failed to parse message")
			continue
		}
		c.handleMessage(&message)
	}
}

// WritePump writes queued messages and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return

		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				logger.Log.Debug("Realtime write failed", logger.WithUserID(c.UserID), zap.Error(err))
				c.hub.stats.Errors.Add(1)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				logger.Log.Debug("Realtime ping failed", logger.WithUserID(c.UserID), zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) handleMessage(message *Message) {
	switch message.Type {
	case MessageTypePing:
		c.handlePing(message)
	case MessageTypeSubscribe, MessageTypeUnsubscribe:
		c.handleSubscription(message)
	default:
		c.SendError("unknown_type", fmt.Sprintf("Unknown message type: %s", message.Type))
	}
}

func (c *Client) handlePing(message *Message) {
	var ping PingPayload
	_ = message.ParsePayload(&ping)

	serverTime := time.Now().UnixMilli()
	var latency int64
	if ping.ClientTime > 0 {
		latency = serverTime - ping.ClientTime
	}
	_ = c.Send(NewReply(message, MessageTypePong, PongPayload{
		ClientTime: ping.ClientTime,
		ServerTime: serverTime,
		Latency:    latency,
	}))
}

func (c *Client) handleSubscription(message *Message) {
	var sub SubscribePayload
	if err := message.ParsePayload(&sub); err != nil || sub.Channel == "" {
		c.SendError("invalid_payload", "channel is required")
		return
	}
	if !IsKnownChannel(sub.Channel) {
		c.SendError("unknown_channel", fmt.Sprintf("Unknown channel: %s", sub.Channel))
		return
	}

	if message.Type == MessageTypeSubscribe {
		c.Subscribe(sub.Channel)
		_ = c.Send(NewReply(message, MessageTypeSubscribed, sub))
		return
	}
	c.Unsubscribe(sub.Channel)
	_ = c.Send(NewReply(message, MessageTypeUnsubscribed, sub))
}

// Send queues a message for this client only
func (c *Client) Send(message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	queued, open := c.enqueue(data)
	if !open {
		return fmt.Errorf("client connection closed")
	}
	if !queued {
		return fmt.Errorf("send buffer full")
	}
	return nil
}

// SendError sends an error message to the client
func (c *Client) SendError(code, message string) {
	c.hub.stats.Errors.Add(1)
	_ = c.Send(NewErrorMessage(code, message))
}

// Close cancels the pumps and closes the connection
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			c.conn.Close(websocket.StatusNormalClosure, "closing")
		}
	})
}
