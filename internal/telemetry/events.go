package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("nexus")

// FeedAttrs describes a feed pipeline run
type FeedAttrs struct {
	Sort      string
	Category  string
	MediaType string
	HasQuery  bool
	Limit     int
	Offset    int
}

// TraceFeed starts a span around a feed query
func TraceFeed(ctx context.Context, attrs FeedAttrs) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "feed.query",
		trace.WithAttributes(
			attribute.String("feed.sort", attrs.Sort),
			attribute.Int("feed.limit", attrs.Limit),
			attribute.Int("feed.offset", attrs.Offset),
			attribute.Bool("feed.has_query", attrs.HasQuery),
		),
	)
	if attrs.Category != "" {
		span.SetAttributes(attribute.String("feed.category", attrs.Category))
	}
	if attrs.MediaType != "" {
		span.SetAttributes(attribute.String("feed.media_type", attrs.MediaType))
	}
	return ctx, span
}

// TraceSearch starts a span around a search or suggestion lookup
func TraceSearch(ctx context.Context, kind string, queryLength int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "search."+kind,
		trace.WithAttributes(
			attribute.String("search.kind", kind),
			attribute.Int("search.query_length", queryLength),
		),
	)
}

// TraceEngagement starts a span for likes, saves, comments and views
func TraceEngagement(ctx context.Context, action, projectID, userID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "engagement."+action,
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.String("user.id", userID),
		),
	)
}

// TraceHireTransition starts a span for a hire request status change
func TraceHireTransition(ctx context.Context, requestID, from, to string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "hire.transition",
		trace.WithAttributes(
			attribute.String("hire.request_id", requestID),
			attribute.String("hire.from", from),
			attribute.String("hire.to", to),
		),
	)
}
