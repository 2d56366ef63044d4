package realtime

import (
	"context"
	"sync"
)

// RecordedEvent is one call captured by RecordingPublisher
type RecordedEvent struct {
	UserID  string
	Table   string
	Event   string
	New     interface{}
	Old     interface{}
	Message *Message
}

// RecordingPublisher keeps every event in memory. Tests use it to assert on
// what handlers emitted.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []RecordedEvent
}

var _ Publisher = (*RecordingPublisher)(nil)

func (r *RecordingPublisher) PublishChange(_ context.Context, table, event string, newRow, oldRow interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{Table: table, Event: event, New: newRow, Old: oldRow})
}

func (r *RecordingPublisher) SendToUser(_ context.Context, userID string, message *Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{UserID: userID, Message: message})
}

// Changes returns recorded change events for table
func (r *RecordingPublisher) Changes(table string) []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RecordedEvent
	for _, e := range r.events {
		if e.Table == table {
			out = append(out, e)
		}
	}
	return out
}

// Personal returns recorded personal messages of msgType for userID
func (r *RecordingPublisher) Personal(userID, msgType string) []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Message
	for _, e := range r.events {
		if e.UserID == userID && e.Message != nil && e.Message.Type == msgType {
			out = append(out, e.Message)
		}
	}
	return out
}
