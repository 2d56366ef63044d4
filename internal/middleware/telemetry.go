package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// feedAttributes maps feed query parameters to span attribute names
var feedAttributes = map[string]string{
	"category": "feed.category",
	"sort":     "feed.sort",
	"media":    "feed.media",
	"range":    "feed.range",
	"best_of":  "feed.best_of",
	"limit":    "query.limit",
	"offset":   "query.offset",
}

// TracingMiddleware traces HTTP requests with otelgin and adds caller and
// feed-filter attributes to the server span. Register with router.Use(chain...).
func TracingMiddleware(serviceName string) gin.HandlersChain {
	return gin.HandlersChain{otelgin.Middleware(serviceName), enrichSpan}
}

// enrichSpan runs inside the otelgin span, so attributes land before it ends
func enrichSpan(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}

	if userID, exists := c.Get("user_id"); exists {
		if userIDStr, ok := userID.(string); ok {
			span.SetAttributes(attribute.String("user.id", userIDStr))
		}
	}
	if requestID := RequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request.id", requestID))
	}

	for param, attr := range feedAttributes {
		if v := c.Query(param); v != "" {
			span.SetAttributes(attribute.String(attr, v))
		}
	}
	if q := c.Query("q"); q != "" {
		span.SetAttributes(attribute.Int("search.query_length", len(q)))
	}

	for _, ginErr := range c.Errors {
		if ginErr.Err != nil {
			span.RecordError(ginErr.Err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, ginErr.Error())
		}
	}
}
