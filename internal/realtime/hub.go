// Package realtime pushes change events and personal notifications to
// websocket clients. It uses github.com/coder/websocket.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/metrics"
	"go.uber.org/zap"
)

// Hub tracks connected clients and routes messages to them
type Hub struct {
	// Clients by profile id, for personal messages
	clients map[string]map[*Client]struct{}

	allClients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	channel    chan *channelMessage
	unicast    chan *unicastMessage

	mu sync.RWMutex

	stats *Stats

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	rateLimitConfig RateLimitConfig
}

// Stats tracks connection and message counts
type Stats struct {
	TotalConnections   atomic.Int64
	ActiveConnections  atomic.Int64
	MessagesReceived   atomic.Int64
	MessagesSent       atomic.Int64
	Errors             atomic.Int64
	ConnectionsDropped atomic.Int64
}

// RateLimitConfig bounds inbound messages per client
type RateLimitConfig struct {
	MaxMessagesPerSecond int
	BurstSize            int
}

// DefaultRateLimitConfig returns the default inbound limit
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxMessagesPerSecond: 10,
		BurstSize:            20,
	}
}

type channelMessage struct {
	Channel string
	Message *Message
}

type unicastMessage struct {
	UserID  string
	Message *Message
}

// NewHub creates a hub. Call Run to start routing.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:         make(map[string]map[*Client]struct{}),
		allClients:      make(map[*Client]struct{}),
		register:        make(chan *Client, 256),
		unregister:      make(chan *Client, 256),
		channel:         make(chan *channelMessage, 256),
		unicast:         make(chan *unicastMessage, 256),
		stats:           &Stats{},
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
		rateLimitConfig: DefaultRateLimitConfig(),
	}
}

// Run is the hub's event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)
	logger.Log.Info("Realtime hub started")

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.channel:
			h.publishToChannel(msg.Channel, msg.Message)

		case msg := <-h.unicast:
			h.sendToUser(msg.UserID, msg.Message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}
	h.allClients[client] = struct{}{}

	h.stats.TotalConnections.Add(1)
	active := h.stats.ActiveConnections.Add(1)
	metrics.Get().RealtimeConnections.Inc()

	logger.Log.Debug("Realtime client connected",
		logger.WithUserID(client.UserID), zap.Int64("active", active))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.allClients[client]; !ok {
		return
	}
	delete(h.allClients, client)
	if clients, ok := h.clients[client.UserID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	client.closeSend()

	active := h.stats.ActiveConnections.Add(-1)
	metrics.Get().RealtimeConnections.Dec()

	logger.Log.Debug("Realtime client disconnected",
		logger.WithUserID(client.UserID), zap.Int64("active", active))
}

// publishToChannel delivers to every client subscribed to channel
func (h *Hub) publishToChannel(channel string, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.WarnWithFields("Failed to marshal channel message", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.allClients {
		if client.IsSubscribed(channel) {
			h.deliver(client, message.Type, data)
		}
	}
}

func (h *Hub) sendToUser(userID string, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.WarnWithFields("Failed to marshal personal message", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		h.deliver(client, message.Type, data)
	}
}

// deliver queues data on the client's buffer. A full buffer means the client
// is too slow to keep up and it is dropped. Callers hold h.mu.
func (h *Hub) deliver(client *Client, msgType string, data []byte) {
	queued, open := client.enqueue(data)
	switch {
	case queued:
		h.stats.MessagesSent.Add(1)
		metrics.Get().RealtimeMessagesTotal.WithLabelValues(msgType).Inc()
	case open:
		h.stats.ConnectionsDropped.Add(1)
		logger.Log.Warn("Dropping slow realtime client", logger.WithUserID(client.UserID))
		go h.Unregister(client)
	}
}

// PublishToChannel queues a message for every subscriber of channel on this instance
func (h *Hub) PublishToChannel(channel string, message *Message) {
	select {
	case h.channel <- &channelMessage{Channel: channel, Message: message}:
	case <-h.ctx.Done():
	}
}

// SendToUser queues a message for every connection of a profile on this instance
func (h *Hub) SendToUser(userID string, message *Message) {
	select {
	case h.unicast <- &unicastMessage{UserID: userID, Message: message}:
	case <-h.ctx.Done():
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// IsUserOnline reports whether a profile has any open connection
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// ConnectionCount returns the number of open connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.allClients)
}

// GetStats returns a snapshot of hub counters
func (h *Hub) GetStats() StatsSnapshot {
	return StatsSnapshot{
		TotalConnections:   h.stats.TotalConnections.Load(),
		ActiveConnections:  h.stats.ActiveConnections.Load(),
		MessagesReceived:   h.stats.MessagesReceived.Load(),
		MessagesSent:       h.stats.MessagesSent.Load(),
		Errors:             h.stats.Errors.Load(),
		ConnectionsDropped: h.stats.ConnectionsDropped.Load(),
	}
}

// StatsSnapshot is a point-in-time copy of Stats
type StatsSnapshot struct {
	TotalConnections   int64 `json:"total_connections"`
	ActiveConnections  int64 `json:"active_connections"`
	MessagesReceived   int64 `json:"messages_received"`
	MessagesSent       int64 `json:"messages_sent"`
	Errors             int64 `json:"errors"`
	ConnectionsDropped int64 `json:"connections_dropped"`
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"connections=%d/%d messages=rx:%d/tx:%d errors=%d dropped=%d",
		s.ActiveConnections, s.TotalConnections,
		s.MessagesReceived, s.MessagesSent,
		s.Errors, s.ConnectionsDropped,
	)
}

// Shutdown stops the hub and closes every client
func (h *Hub) Shutdown(ctx context.Context) error {
	h.cancel()
	select {
	case <-h.done:
		logger.Log.Info("Realtime hub stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, _ := json.Marshal(NewMessage(MessageTypeSystem, SystemPayload{Event: "server_shutdown"}))
	for client := range h.allClients {
		client.enqueue(data)
		client.closeSend()
		metrics.Get().RealtimeConnections.Dec()
	}

	h.clients = make(map[string]map[*Client]struct{})
	h.allClients = make(map[*Client]struct{})
	h.stats.ActiveConnections.Store(0)
}

// SetRateLimitConfig changes the inbound limit for clients created afterwards
func (h *Hub) SetRateLimitConfig(config RateLimitConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rateLimitConfig = config
}

func (h *Hub) getRateLimitConfig() RateLimitConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rateLimitConfig
}
