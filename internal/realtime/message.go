package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexibleTime accepts Unix millisecond timestamps and RFC3339 strings
type FlexibleTime struct {
	time.Time
}

// UnmarshalJSON implements custom unmarshaling for timestamps
func (ft *FlexibleTime) UnmarshalJSON(b []byte) error {
	var ms int64
	if err := json.Unmarshal(b, &ms); err == nil {
		ft.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("timestamp must be Unix milliseconds (integer) or RFC3339 string")
	}
	if str == "" {
		ft.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return err
	}
	ft.Time = t
	return nil
}

// MarshalJSON always writes RFC3339
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ft.Time)
}

// Message types
const (
	MessageTypeSystem            = "system"
	MessageTypePing              = "ping"
	MessageTypePong              = "pong"
	MessageTypeError             = "error"
	MessageTypeSubscribe         = "subscribe"
	MessageTypeUnsubscribe       = "unsubscribe"
	MessageTypeSubscribed        = "subscribed"
	MessageTypeUnsubscribed      = "unsubscribed"
	MessageTypeChange            = "change"
	MessageTypeNotification      = "notification"
	MessageTypeNotificationCount = "notification_count"
)

// ChannelProjects carries change events for the projects table
const ChannelProjects = "projects"

// Change event kinds
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

var knownChannels = map[string]bool{
	ChannelProjects: true,
}

// IsKnownChannel reports whether clients may subscribe to channel
func IsKnownChannel(channel string) bool {
	return knownChannels[channel]
}

// Message is the envelope for everything sent over the socket
type Message struct {
	Type      string       `json:"type"`
	Payload   interface{}  `json:"payload,omitempty"`
	ID        string       `json:"id,omitempty"`
	ReplyTo   string       `json:"reply_to,omitempty"`
	Timestamp FlexibleTime `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time
func NewMessage(msgType string, payload interface{}) *Message {
	return &Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: FlexibleTime{Time: time.Now().UTC()},
	}
}

// NewReply creates a reply to an inbound message
func NewReply(original *Message, msgType string, payload interface{}) *Message {
	msg := NewMessage(msgType, payload)
	msg.ReplyTo = original.ID
	return msg
}

// NewErrorMessage creates an error message
func NewErrorMessage(code string, message string) *Message {
	return NewMessage(MessageTypeError, ErrorPayload{Code: code, Message: message})
}

// NewChangeMessage creates a change event for a table row
func NewChangeMessage(table, event string, newRow, oldRow interface{}) *Message {
	return NewMessage(MessageTypeChange, ChangePayload{
		Table: table,
		Event: event,
		New:   newRow,
		Old:   oldRow,
	})
}

// ErrorPayload describes a rejected inbound message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PingPayload carries the client clock for latency measurement
type PingPayload struct {
	ClientTime int64 `json:"client_time"`
}

// PongPayload answers a ping
type PongPayload struct {
	ClientTime int64 `json:"client_time"`
	ServerTime int64 `json:"server_time"`
	Latency    int64 `json:"latency_ms"`
}

// SubscribePayload names the channel of a subscribe or unsubscribe request
type SubscribePayload struct {
	Channel string `json:"channel"`
}

// ChangePayload is a row-level change. Old carries at least the row id for
// updates and deletes.
type ChangePayload struct {
	Table string      `json:"table"`
	Event string      `json:"event"`
	New   interface{} `json:"new,omitempty"`
	Old   interface{} `json:"old,omitempty"`
}

// RowID identifies the previous row in a change event
type RowID struct {
	ID string `json:"id"`
}

// NotificationCountPayload carries the recipient's unread count
type NotificationCountPayload struct {
	UnreadCount int64 `json:"unread_count"`
}

// SystemPayload represents connection lifecycle events
type SystemPayload struct {
	Event   string                 `json:"event"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// ParsePayload decodes the payload into target
func (m *Message) ParsePayload(target interface{}) error {
	if m.Payload == nil {
		return nil
	}
	data, err := json.Marshal(m.Payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
