package realtime

import (
	"context"
	"encoding/json"

	"github.com/creativehub/nexus/internal/cache"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/metrics"
)

// RedisChannel is the pub/sub channel shared by every server instance
const RedisChannel = "nexus:realtime"

// Publisher is what request handlers use to emit realtime events
type Publisher interface {
	PublishChange(ctx context.Context, table, event string, newRow, oldRow interface{})
	SendToUser(ctx context.Context, userID string, message *Message)
}

// envelope is the Redis wire format. Exactly one of Channel or UserID is set.
type envelope struct {
	Channel string   `json:"channel,omitempty"`
	UserID  string   `json:"user_id,omitempty"`
	Message *Message `json:"message"`
}

// Broker fans events out to hubs. With Redis every instance receives every
// event through RedisChannel; without it events go straight to the local hub.
type Broker struct {
	hub   *Hub
	redis *cache.RedisClient
}

var _ Publisher = (*Broker)(nil)

// NewBroker creates a broker for hub. redisClient may be nil.
func NewBroker(hub *Hub, redisClient *cache.RedisClient) *Broker {
	return &Broker{hub: hub, redis: redisClient}
}

// PublishChange emits a row change on the table's channel
func (b *Broker) PublishChange(ctx context.Context, table, event string, newRow, oldRow interface{}) {
	b.publish(ctx, envelope{Channel: table, Message: NewChangeMessage(table, event, newRow, oldRow)})
}

// SendToUser emits a personal message to every connection of a profile
func (b *Broker) SendToUser(ctx context.Context, userID string, message *Message) {
	b.publish(ctx, envelope{UserID: userID, Message: message})
}

func (b *Broker) publish(ctx context.Context, env envelope) {
	if b.redis != nil {
		data, err := json.Marshal(env)
		if err == nil {
			err = b.redis.Publish(ctx, RedisChannel, data)
		}
		if err == nil {
			return
		}
		// Local clients still get the event when Redis is down
		logger.WarnWithFields("Realtime publish to Redis failed, delivering locally", err)
		metrics.Get().ErrorsTotal.WithLabelValues("realtime").Inc()
	}
	b.dispatch(env)
}

func (b *Broker) dispatch(env envelope) {
	if env.Message == nil {
		return
	}
	if env.UserID != "" {
		b.hub.SendToUser(env.UserID, env.Message)
		return
	}
	if env.Channel != "" {
		b.hub.PublishToChannel(env.Channel, env.Message)
	}
}

// Run forwards Redis events to the local hub until ctx is cancelled.
// It returns immediately when Redis is not configured.
func (b *Broker) Run(ctx context.Context) {
	if b.redis == nil {
		return
	}

	pubsub := b.redis.Subscribe(ctx, RedisChannel)
	defer pubsub.Close()

	logger.Log.Info("Realtime Redis bridge subscribed")
	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.WarnWithFields("Dropping malformed realtime event", err)
				continue
			}
			b.dispatch(env)
		}
	}
}

// NopPublisher discards events. Used when realtime is disabled and in tests.
type NopPublisher struct{}

func (NopPublisher) PublishChange(context.Context, string, string, interface{}, interface{}) {}
func (NopPublisher) SendToUser(context.Context, string, *Message) {}
