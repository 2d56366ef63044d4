package stream

import "context"

// ActivityPublisher fans project activity out to Stream feeds.
// Client talks to getstream.io; MockPublisher records calls for tests.
type ActivityPublisher interface {
	PublishProject(ctx context.Context, activity *Activity) error
	RemoveProject(ctx context.Context, ownerID, projectID string) error
	GetUserActivity(ctx context.Context, userID string, limit, offset int) ([]*Activity, error)
	GetGlobalActivity(ctx context.Context, limit, offset int) ([]*Activity, error)
}

// Ensure Client implements ActivityPublisher
var _ ActivityPublisher = (*Client)(nil)
