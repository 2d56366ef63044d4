package stream

import (
	"context"
	"sync"
)

// MockCall records a method call for assertion
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockPublisher is an in-memory ActivityPublisher for tests. Published
// activities are kept per user so reads return what was written.
type MockPublisher struct {
	mu sync.Mutex

	Calls []MockCall

	// Set to make the corresponding method fail
	PublishErr error
	RemoveErr  error

	activities []*Activity
}

var _ ActivityPublisher = (*MockPublisher)(nil)

// NewMockPublisher creates an empty mock publisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) recordCall(method string, args ...interface{}) {
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// GetCallsForMethod returns calls for a specific method
func (m *MockPublisher) GetCallsForMethod(method string) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []MockCall
	for _, call := range m.Calls {
		if call.Method == method {
			result = append(result, call)
		}
	}
	return result
}

func (m *MockPublisher) PublishProject(_ context.Context, activity *Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("PublishProject", activity.Actor, activity.ProjectID)
	if m.PublishErr != nil {
		return m.PublishErr
	}
	stored := *activity
	stored.Verb = VerbPublished
	stored.ForeignID = ProjectForeignID(activity.ProjectID)
	// newest first, like a Stream flat feed
	m.activities = append([]*Activity{&stored}, m.activities...)
	return nil
}

func (m *MockPublisher) RemoveProject(_ context.Context, ownerID, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("RemoveProject", ownerID, projectID)
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	kept := m.activities[:0]
	for _, a := range m.activities {
		if a.ForeignID != ProjectForeignID(projectID) {
			kept = append(kept, a)
		}
	}
	m.activities = kept
	return nil
}

func (m *MockPublisher) GetUserActivity(_ context.Context, userID string, limit, offset int) ([]*Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("GetUserActivity", userID, limit, offset)
	var mine []*Activity
	for _, a := range m.activities {
		if a.Actor == userID {
			mine = append(mine, a)
		}
	}
	return page(mine, limit, offset), nil
}

func (m *MockPublisher) GetGlobalActivity(_ context.Context, limit, offset int) ([]*Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("GetGlobalActivity", limit, offset)
	return page(m.activities, limit, offset), nil
}

func page(activities []*Activity, limit, offset int) []*Activity {
	out := []*Activity{}
	if offset >= len(activities) {
		return out
	}
	end := offset + limit
	if end > len(activities) {
		end = len(activities)
	}
	return append(out, activities[offset:end]...)
}
