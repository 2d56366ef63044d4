package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/telemetry"
	stream "github.com/GetStream/stream-go2/v8"
	"go.uber.org/zap"
)

// Feed group names configured in the Stream dashboard
const (
	FeedGroupUser   = "user"   // a creator's own projects
	FeedGroupGlobal = "global" // every published project
	globalFeedID    = "main"
)

// VerbPublished is the verb of a project activity
const VerbPublished = "published"

// Client wraps the Stream feeds client
type Client struct {
	feedsClient *stream.Client
}

// Activity is a published project as it appears in activity feeds
type Activity struct {
	ID           string                 `json:"id,omitempty"`
	Actor        string                 `json:"actor"`
	Verb         string                 `json:"verb"`
	Object       string                 `json:"object"`
	ForeignID    string                 `json:"foreign_id,omitempty"`
	Time         string                 `json:"time,omitempty"`
	ProjectID    string                 `json:"project_id"`
	Title        string                 `json:"title"`
	MediaURL     string                 `json:"media_url"`
	MediaType    string                 `json:"media_type"`
	ThumbnailURL string                 `json:"thumbnail_url,omitempty"`
	Category     string                 `json:"category,omitempty"`
	Tags         []string               `json:"tags,omitempty"`
	Extra        map[string]interface{} `json:"extra,omitempty"`
}

// ProjectForeignID is the foreign id used for a project's activity, so the
// activity can be removed without knowing Stream's activity id
func ProjectForeignID(projectID string) string {
	return "project:" + projectID
}

// NewClient creates a Stream feeds client
func NewClient(apiKey, apiSecret string) (*Client, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("stream api key and secret must be set")
	}

	feedsClient, err := stream.New(apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create Stream feeds client: %w", err)
	}
	return &Client{feedsClient: feedsClient}, nil
}

// PublishProject adds a project activity to the owner's feed and the global feed
func (c *Client) PublishProject(ctx context.Context, activity *Activity) error {
	ctx, span := telemetry.TraceExternalCall(ctx, "stream", "add_activity")

	ownerID := activity.Actor
	userFeed, err := c.feedsClient.FlatFeed(FeedGroupUser, ownerID)
	if err != nil {
		telemetry.EndExternalCall(span, err)
		return fmt.Errorf("failed to get user feed: %w", err)
	}
	globalFeed, err := c.feedsClient.FlatFeed(FeedGroupGlobal, globalFeedID)
	if err != nil {
		telemetry.EndExternalCall(span, err)
		return fmt.Errorf("failed to get global feed: %w", err)
	}

	streamActivity := stream.Activity{
		Actor:     fmt.Sprintf("user:%s", ownerID),
		Verb:      VerbPublished,
		Object:    fmt.Sprintf("project:%s", activity.ProjectID),
		ForeignID: ProjectForeignID(activity.ProjectID),
		To:        []string{globalFeed.ID()},
		Extra: map[string]any{
			"project_id": activity.ProjectID,
			"title":      activity.Title,
			"media_url":  activity.MediaURL,
			"media_type": activity.MediaType,
		},
	}
	if activity.ThumbnailURL != "" {
		streamActivity.Extra["thumbnail_url"] = activity.ThumbnailURL
	}
	if activity.Category != "" {
		streamActivity.Extra["category"] = activity.Category
	}
	if len(activity.Tags) > 0 {
		streamActivity.Extra["tags"] = activity.Tags
	}
	for k, v := range activity.Extra {
		streamActivity.Extra[k] = v
	}

	resp, err := userFeed.AddActivity(ctx, streamActivity)
	telemetry.EndExternalCall(span, err)
	if err != nil {
		return fmt.Errorf("failed to create Stream activity: %w", err)
	}

	activity.ID = resp.ID
	if !resp.Time.IsZero() {
		activity.Time = resp.Time.Format(time.RFC3339)
	}

	logger.Log.Debug("Stream activity created",
		logger.WithUserID(ownerID),
		logger.WithProjectID(activity.ProjectID),
		zap.String("activity_id", activity.ID),
	)
	return nil
}

// RemoveProject removes a project's activity from the owner's feed. Stream
// propagates the removal to the global feed.
func (c *Client) RemoveProject(ctx context.Context, ownerID, projectID string) error {
	ctx, span := telemetry.TraceExternalCall(ctx, "stream", "remove_activity")

	userFeed, err := c.feedsClient.FlatFeed(FeedGroupUser, ownerID)
	if err != nil {
		telemetry.EndExternalCall(span, err)
		return fmt.Errorf("failed to get user feed: %w", err)
	}

	_, err = userFeed.RemoveActivityByForeignID(ctx, ProjectForeignID(projectID))
	telemetry.EndExternalCall(span, err)
	if err != nil {
		return fmt.Errorf("failed to remove Stream activity: %w", err)
	}
	return nil
}

// GetUserActivity reads a creator's feed
func (c *Client) GetUserActivity(ctx context.Context, userID string, limit, offset int) ([]*Activity, error) {
	userFeed, err := c.feedsClient.FlatFeed(FeedGroupUser, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user feed: %w", err)
	}
	return c.readFeed(ctx, userFeed, limit, offset)
}

// GetGlobalActivity reads the global feed
func (c *Client) GetGlobalActivity(ctx context.Context, limit, offset int) ([]*Activity, error) {
	globalFeed, err := c.feedsClient.FlatFeed(FeedGroupGlobal, globalFeedID)
	if err != nil {
		return nil, fmt.Errorf("failed to get global feed: %w", err)
	}
	return c.readFeed(ctx, globalFeed, limit, offset)
}

func (c *Client) readFeed(ctx context.Context, feed *stream.FlatFeed, limit, offset int) ([]*Activity, error) {
	ctx, span := telemetry.TraceExternalCall(ctx, "stream", "get_activities")
	resp, err := feed.GetActivities(ctx,
		stream.WithActivitiesLimit(limit),
		stream.WithActivitiesOffset(offset),
	)
	telemetry.EndExternalCall(span, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}

	activities := make([]*Activity, 0, len(resp.Results))
	for i := range resp.Results {
		activities = append(activities, convertStreamActivity(&resp.Results[i]))
	}
	return activities, nil
}

func convertStreamActivity(act *stream.Activity) *Activity {
	activity := &Activity{
		ID:        act.ID,
		Actor:     act.Actor,
		Verb:      act.Verb,
		Object:    act.Object,
		ForeignID: act.ForeignID,
	}
	if !act.Time.IsZero() {
		activity.Time = act.Time.Format(time.RFC3339)
	}

	if act.Extra == nil {
		return activity
	}
	activity.ProjectID = stringField(act.Extra, "project_id")
	activity.Title = stringField(act.Extra, "title")
	activity.MediaURL = stringField(act.Extra, "media_url")
	activity.MediaType = stringField(act.Extra, "media_type")
	activity.ThumbnailURL = stringField(act.Extra, "thumbnail_url")
	activity.Category = stringField(act.Extra, "category")
	if tags, ok := act.Extra["tags"].([]interface{}); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				activity.Tags = append(activity.Tags, s)
			}
		}
	}
	return activity
}

func stringField(extra map[string]interface{}, key string) string {
	s, _ := extra[key].(string)
	return s
}
