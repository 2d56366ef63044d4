package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/creativehub/nexus/internal/auth"
	"github.com/creativehub/nexus/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
	})
	return hub
}

func registered(t *testing.T, hub *Hub, userID string) *Client {
	t.Helper()
	client := NewClient(hub, nil, userID, userID)
	before := hub.ConnectionCount()
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ConnectionCount() == before+1 }, time.Second, 5*time.Millisecond)
	return client
}

func receive(t *testing.T, client *Client) *Message {
	t.Helper()
	select {
	case data, ok := <-client.send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func assertNothingReceived(t *testing.T, client *Client) {
	t.Helper()
	select {
	case data := <-client.send:
		t.Fatalf("unexpected message: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(5, 10)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow(), "request %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow())

	time.Sleep(300 * time.Millisecond)
	assert.True(t, rl.Allow())
}

func TestFlexibleTime(t *testing.T) {
	var ft FlexibleTime
	require.NoError(t, json.Unmarshal([]byte(`1767225600000`), &ft))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), ft.Time)

	require.NoError(t, json.Unmarshal([]byte(`"2026-01-01T10:00:00Z"`), &ft))
	assert.Equal(t, 10, ft.Hour())

	assert.Error(t, json.Unmarshal([]byte(`true`), &ft))
}

func TestChangeMessageShape(t *testing.T) {
	msg := NewChangeMessage("projects", EventDelete, nil, RowID{ID: "p1"})
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "change", decoded["type"])
	payload := decoded["payload"].(map[string]interface{})
	assert.Equal(t, "projects", payload["table"])
	assert.Equal(t, "DELETE", payload["event"])
	assert.Equal(t, map[string]interface{}{"id": "p1"}, payload["old"])
	_, hasNew := payload["new"]
	assert.False(t, hasNew)
}

func TestHubDeliversOnlyToSubscribers(t *testing.T) {
	hub := startHub(t)
	subscribed := registered(t, hub, "u1")
	other := registered(t, hub, "u2")
	subscribed.Subscribe(ChannelProjects)

	hub.PublishToChannel(ChannelProjects, NewChangeMessage("projects", EventInsert, map[string]string{"id": "p1"}, nil))

	msg := receive(t, subscribed)
	assert.Equal(t, MessageTypeChange, msg.Type)
	assertNothingReceived(t, other)

	subscribed.Unsubscribe(ChannelProjects)
	hub.PublishToChannel(ChannelProjects, NewChangeMessage("projects", EventUpdate, nil, nil))
	assertNothingReceived(t, subscribed)
}

func TestHubSendToUserReachesEveryConnection(t *testing.T) {
	hub := startHub(t)
	first := registered(t, hub, "u1")
	second := registered(t, hub, "u1")
	stranger := registered(t, hub, "u2")

	assert.True(t, hub.IsUserOnline("u1"))
	hub.SendToUser("u1", NewMessage(MessageTypeNotificationCount, NotificationCountPayload{UnreadCount: 3}))

	for _, c := range []*Client{first, second} {
		msg := receive(t, c)
		var payload NotificationCountPayload
		require.NoError(t, msg.ParsePayload(&payload))
		assert.EqualValues(t, 3, payload.UnreadCount)
	}
	assertNothingReceived(t, stranger)
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := startHub(t)
	slow := registered(t, hub, "u1")
	slow.Subscribe(ChannelProjects)

	for i := 0; i < sendBufferSize; i++ {
		queued, _ := slow.enqueue([]byte(`{}`))
		require.True(t, queued)
	}
	hub.PublishToChannel(ChannelProjects, NewChangeMessage("projects", EventInsert, nil, nil))

	assert.Eventually(t, func() bool { return hub.ConnectionCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, hub.GetStats().ConnectionsDropped)
	assert.Error(t, slow.Send(NewMessage(MessageTypePong, nil)))
}

func TestClientHandlesSubscriptionMessages(t *testing.T) {
	hub := startHub(t)
	client := registered(t, hub, "u1")

	client.handleMessage(&Message{Type: MessageTypeSubscribe, ID: "m1", Payload: map[string]string{"channel": "projects"}})
	reply := receive(t, client)
	assert.Equal(t, MessageTypeSubscribed, reply.Type)
	assert.Equal(t, "m1", reply.ReplyTo)
	assert.True(t, client.IsSubscribed(ChannelProjects))

	client.handleMessage(&Message{Type: MessageTypeSubscribe, Payload: map[string]string{"channel": "secrets"}})
	reply = receive(t, client)
	assert.Equal(t, MessageTypeError, reply.Type)

	client.handleMessage(&Message{Type: MessageTypeUnsubscribe, Payload: map[string]string{"channel": "projects"}})
	assert.Equal(t, MessageTypeUnsubscribed, receive(t, client).Type)
	assert.False(t, client.IsSubscribed(ChannelProjects))

	client.handleMessage(&Message{Type: "shout"})
	assert.Equal(t, MessageTypeError, receive(t, client).Type)
}

func TestBrokerWithoutRedisDeliversLocally(t *testing.T) {
	hub := startHub(t)
	client := registered(t, hub, "u1")
	client.Subscribe(ChannelProjects)
	broker := NewBroker(hub, nil)

	broker.PublishChange(context.Background(), "projects", EventUpdate, map[string]int{"like_count": 4}, RowID{ID: "p1"})
	msg := receive(t, client)
	var change ChangePayload
	require.NoError(t, msg.ParsePayload(&change))
	assert.Equal(t, EventUpdate, change.Event)

	broker.SendToUser(context.Background(), "u1", NewMessage(MessageTypeNotification, map[string]string{"id": "n1"}))
	assert.Equal(t, MessageTypeNotification, receive(t, client).Type)

	// Run returns at once without Redis
	broker.Run(context.Background())
}

type tokenAuth struct{}

func (tokenAuth) Register(auth.RegisterRequest) (*auth.AuthResponse, error) {
	return nil, errors.New("not implemented")
}

func (tokenAuth) Login(auth.LoginRequest) (*auth.AuthResponse, error) {
	return nil, errors.New("not implemented")
}

func (tokenAuth) ValidateToken(token string) (*models.Profile, error) {
	if token == "good-token" {
		return &models.Profile{ID: "u1", Username: "ada"}, nil
	}
	return nil, auth.ErrInvalidToken
}

func TestHandleWebSocketEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)
	broker := NewBroker(hub, nil)

	router := gin.New()
	router.GET("/realtime", NewHandler(hub, tokenAuth{}, nil).HandleWebSocket)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/realtime"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, wsURL+"?token=bad", nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, 401, resp.StatusCode)
	}

	conn, _, err := websocket.Dial(ctx, wsURL+"?token=good-token", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var msg Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, MessageTypeSystem, msg.Type)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]interface{}{
		"type":    "subscribe",
		"payload": map[string]string{"channel": "projects"},
	}))
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, MessageTypeSubscribed, msg.Type)

	broker.PublishChange(ctx, "projects", EventInsert, map[string]string{"id": "p9", "title": "Fresh"}, nil)
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	require.Equal(t, MessageTypeChange, msg.Type)
	var change ChangePayload
	require.NoError(t, msg.ParsePayload(&change))
	assert.Equal(t, "projects", change.Table)
	assert.Equal(t, EventInsert, change.Event)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]interface{}{
		"type":    "ping",
		"id":      "p-1",
		"payload": map[string]int64{"client_time": time.Now().UnixMilli()},
	}))
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, MessageTypePong, msg.Type)
	assert.Equal(t, "p-1", msg.ReplyTo)
}
