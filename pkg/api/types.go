package api

import "time"

// Auth

type RegisterRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Profile   Profile   `json:"profile"`
}

// Profiles

type ProfileSummary struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	DisplayName        string `json:"display_name"`
	AvatarURL          string `json:"avatar_url"`
	AvailabilityStatus string `json:"availability_status"`
}

type Profile struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email,omitempty"`
	Username              string     `json:"username"`
	DisplayName           string     `json:"display_name"`
	Bio                   string     `json:"bio"`
	AvatarURL             string     `json:"avatar_url"`
	Location              string     `json:"location"`
	Website               string     `json:"website"`
	Skills                []string   `json:"skills"`
	AvailabilityStatus    string     `json:"availability_status"`
	HourlyRate            float64    `json:"hourly_rate"`
	OpenTo                []string   `json:"open_to"`
	AvailabilityNote      string     `json:"availability_note"`
	AvailabilityUpdatedAt *time.Time `json:"availability_updated_at,omitempty"`
	ProjectCount          int        `json:"project_count"`
	CreatedAt             time.Time  `json:"created_at"`
}

type ProfileStats struct {
	Projects      int64 `json:"projects"`
	LikesReceived int64 `json:"likes_received"`
	TotalViews    int64 `json:"total_views"`
}

type ProfileResponse struct {
	Profile Profile      `json:"profile"`
	Stats   ProfileStats `json:"stats"`
}

// ProfileUpdate is a partial update; nil fields are left unchanged
type ProfileUpdate struct {
	DisplayName *string   `json:"display_name,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Website     *string   `json:"website,omitempty"`
	Skills      *[]string `json:"skills,omitempty"`
}

// Availability

type Availability struct {
	Status     string     `json:"status"`
	HourlyRate float64    `json:"hourly_rate"`
	OpenTo     []string   `json:"open_to"`
	Note       string     `json:"note"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Categories and projects

type Category struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ProjectCount int64  `json:"project_count,omitempty"`
}

type Project struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	MediaURL     string          `json:"media_url"`
	MediaType    string          `json:"media_type"`
	ThumbnailURL string          `json:"thumbnail_url,omitempty"`
	Tags         []string        `json:"tags"`
	LikeCount    int             `json:"like_count"`
	SaveCount    int             `json:"save_count"`
	CommentCount int             `json:"comment_count"`
	ViewCount    int             `json:"view_count"`
	IsFeatured   bool            `json:"is_featured"`
	IsPublished  bool            `json:"is_published"`
	Owner        *ProfileSummary `json:"owner,omitempty"`
	Category     *Category       `json:"category,omitempty"`
	IsLiked      *bool           `json:"is_liked,omitempty"`
	IsSaved      *bool           `json:"is_saved,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type PageMeta struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

type FeedMeta struct {
	PageMeta
	Sort     string                 `json:"sort"`
	Filters  map[string]interface{} `json:"filters"`
	Query    string                 `json:"query,omitempty"`
	Fallback bool                   `json:"fallback,omitempty"`
}

type ProjectList struct {
	Projects []Project `json:"projects"`
	Meta     FeedMeta  `json:"meta"`
}

type ProfileList struct {
	Profiles []Profile `json:"profiles"`
	Meta     FeedMeta  `json:"meta"`
}

type Suggestion struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
	ID   string `json:"id"`
}

// EngagementResult is the response of a like or save toggle
type EngagementResult struct {
	ProjectID string `json:"project_id"`
	Liked     *bool  `json:"is_liked,omitempty"`
	Saved     *bool  `json:"is_saved,omitempty"`
	LikeCount *int   `json:"like_count,omitempty"`
	SaveCount *int   `json:"save_count,omitempty"`
	Changed   bool   `json:"changed"`
}

type Comment struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	Author    *ProfileSummary `json:"author,omitempty"`
	Content   string          `json:"content"`
	IsEdited  bool            `json:"is_edited"`
	EditedAt  *time.Time      `json:"edited_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type CommentList struct {
	Comments []Comment `json:"comments"`
	Meta     PageMeta  `json:"meta"`
}

// Notifications

type Notification struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Actor         *ProfileSummary `json:"actor,omitempty"`
	ProjectID     *string         `json:"project_id,omitempty"`
	HireRequestID *string         `json:"hire_request_id,omitempty"`
	Message       string          `json:"message"`
	IsRead        bool            `json:"is_read"`
	ReadAt        *time.Time      `json:"read_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	Meta          struct {
		PageMeta
		UnreadCount int64 `json:"unread_count"`
	} `json:"meta"`
}

type MarkReadResult struct {
	Updated     int64 `json:"updated"`
	UnreadCount int64 `json:"unread_count"`
}

// Hiring

type HireRequestInput struct {
	FreelancerUsername string  `json:"freelancer_username"`
	ProjectID          *string `json:"project_id,omitempty"`
	Title              string  `json:"title"`
	Message            string  `json:"message"`
	Budget             float64 `json:"budget"`
}

type HireRequest struct {
	ID          string          `json:"id"`
	Client      *ProfileSummary `json:"client,omitempty"`
	Freelancer  *ProfileSummary `json:"freelancer,omitempty"`
	ProjectID   *string         `json:"project_id,omitempty"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	Budget      float64         `json:"budget"`
	Status      string          `json:"status"`
	RespondedAt *time.Time      `json:"responded_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type HireRequestList struct {
	HireRequests []HireRequest `json:"hire_requests"`
	Meta         PageMeta      `json:"meta"`
}

// Analytics

type AnalyticsTotals struct {
	Projects int   `json:"projects"`
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Saves    int64 `json:"saves"`
	Comments int64 `json:"comments"`
}

type AnalyticsProject struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	MediaType  string  `json:"media_type"`
	Views      int     `json:"views"`
	Likes      int     `json:"likes"`
	Saves      int     `json:"saves"`
	Comments   int     `json:"comments"`
	Engagement float64 `json:"engagement_score"`
	Category   string  `json:"category,omitempty"`
}

type AnalyticsDay struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
	Likes int    `json:"likes"`
	Saves int    `json:"saves"`
}

type AnalyticsCategory struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Projects int    `json:"projects"`
	Views    int64  `json:"views"`
}

type AnalyticsReport struct {
	Days   int             `json:"days"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Totals AnalyticsTotals `json:"totals"`
	Window struct {
		Views int64 `json:"views"`
		Likes int64 `json:"likes"`
		Saves int64 `json:"saves"`
	} `json:"window"`
	Projects      []AnalyticsProject  `json:"projects"`
	Daily         []AnalyticsDay      `json:"daily"`
	TopCategories []AnalyticsCategory `json:"top_categories"`
}
