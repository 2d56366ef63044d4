package handlers

import (
	"github.com/creativehub/nexus/internal/analytics"
	"github.com/creativehub/nexus/internal/auth"
	"github.com/creativehub/nexus/internal/availability"
	"github.com/creativehub/nexus/internal/cache"
	"github.com/creativehub/nexus/internal/email"
	"github.com/creativehub/nexus/internal/feed"
	"github.com/creativehub/nexus/internal/hiring"
	"github.com/creativehub/nexus/internal/notifications"
	"github.com/creativehub/nexus/internal/queue"
	"github.com/creativehub/nexus/internal/realtime"
	"github.com/creativehub/nexus/internal/search"
	"github.com/creativehub/nexus/internal/storage"
	"github.com/creativehub/nexus/internal/stream"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth          auth.AuthServiceInterface
	redis         *cache.RedisClient
	realtime      realtime.Publisher
	feed          *feed.Service
	search        *search.Service
	notifications *notifications.Service
	availability  *availability.Service
	hiring        *hiring.Service
	analytics     *analytics.Service
	storage       storage.MediaUploader
	activity      stream.ActivityPublisher
	mailer        email.Mailer
	tasks         *queue.TaskQueue
}

// NewHandlers creates a new handlers instance. redisClient and publisher may
// be nil; optional integrations are attached with the setters.
func NewHandlers(authService auth.AuthServiceInterface, redisClient *cache.RedisClient, publisher realtime.Publisher) *Handlers {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	feedService := feed.NewService(redisClient)
	h := &Handlers{
		auth:          authService,
		redis:         redisClient,
		realtime:      publisher,
		feed:          feedService,
		search:        search.NewService(nil, feedService, redisClient),
		notifications: notifications.NewService(publisher),
		availability:  availability.NewService(redisClient),
		analytics:     analytics.NewService(),
	}
	h.hiring = hiring.NewService(h.notifications, h.availability, nil)
	return h
}

// SetStorage sets the media uploader. Uploads answer 503 without one.
func (h *Handlers) SetStorage(uploader storage.MediaUploader) {
	h.storage = uploader
}

// SetActivityPublisher sets the Stream activity feed publisher
func (h *Handlers) SetActivityPublisher(publisher stream.ActivityPublisher) {
	h.activity = publisher
}

// SetSearchClient sets the Elasticsearch client used before the database fallback
func (h *Handlers) SetSearchClient(client *search.Client) {
	h.search = search.NewService(client, h.feed, h.redis)
	h.search.SetTaskQueue(h.tasks)
}

// SetMailer sets the email sender for hiring notifications
func (h *Handlers) SetMailer(mailer email.Mailer) {
	h.mailer = mailer
	h.hiring = hiring.NewService(h.notifications, h.availability, mailer)
	h.hiring.SetTaskQueue(h.tasks)
}

// SetTaskQueue routes best-effort side effects through a worker pool. Without
// one they run on their own goroutines.
func (h *Handlers) SetTaskQueue(tasks *queue.TaskQueue) {
	h.tasks = tasks
	h.search.SetTaskQueue(tasks)
	h.hiring.SetTaskQueue(tasks)
}

// Search exposes the search service for background indexing jobs
func (h *Handlers) Search() *search.Service {
	return h.search
}
