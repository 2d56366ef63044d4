package handlers

import "github.com/gin-gonic/gin"

// RouteMiddleware is the per-route middleware the API is mounted with.
// Nil rate limiters are skipped.
type RouteMiddleware struct {
	RequireAuth  gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
	AuthLimit    gin.HandlerFunc
	UploadLimit  gin.HandlerFunc
	SearchLimit  gin.HandlerFunc
}

func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// RegisterRoutes mounts every API endpoint on api (the /api/v1 group)
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup, mw RouteMiddleware) {
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", chain(mw.AuthLimit, h.Register)...)
		authRoutes.POST("/login", chain(mw.AuthLimit, h.Login)...)
		authRoutes.GET("/me", mw.RequireAuth, h.AuthMe)
	}

	api.GET("/categories", h.ListCategories)
	api.GET("/categories/:slug", h.GetCategory)

	public := api.Group("", chain(mw.OptionalAuth)...)
	{
		public.GET("/feed", h.GetFeed)
		public.GET("/projects/:id", h.GetProject)
		public.GET("/projects/:id/comments", h.GetComments)
		public.GET("/profiles/:username", h.GetProfile)
		public.GET("/profiles/:username/projects", h.GetProfileProjects)
		public.GET("/profiles/:username/availability", h.GetProfileAvailability)
	}

	searchRoutes := api.Group("/search", chain(mw.SearchLimit, mw.OptionalAuth)...)
	{
		searchRoutes.GET("/projects", h.SearchProjects)
		searchRoutes.GET("/profiles", h.SearchProfiles)
		searchRoutes.GET("/suggestions", h.GetSuggestions)
	}

	authed := api.Group("", mw.RequireAuth)
	{
		authed.POST("/projects", chain(mw.UploadLimit, h.CreateProject)...)
		authed.PATCH("/projects/:id", h.UpdateProject)
		authed.DELETE("/projects/:id", h.DeleteProject)

		authed.POST("/projects/:id/like", h.LikeProject)
		authed.DELETE("/projects/:id/like", h.UnlikeProject)
		authed.POST("/projects/:id/save", h.SaveProject)
		authed.DELETE("/projects/:id/save", h.UnsaveProject)
		authed.POST("/projects/:id/comments", h.CreateComment)
		authed.PATCH("/comments/:id", h.UpdateComment)
		authed.DELETE("/comments/:id", h.DeleteComment)

		authed.GET("/me", h.GetMe)
		authed.PATCH("/me", h.UpdateMe)
		authed.POST("/me/avatar", chain(mw.UploadLimit, h.UploadAvatar)...)
		authed.GET("/me/saved", h.GetSavedProjects)
		authed.GET("/me/availability", h.GetMyAvailability)
		authed.PUT("/me/availability", h.UpdateMyAvailability)
		authed.GET("/me/analytics", h.GetAnalytics)

		authed.GET("/notifications", h.GetNotifications)
		authed.GET("/notifications/unread-count", h.GetUnreadCount)
		authed.POST("/notifications/read", h.MarkNotificationsRead)
		authed.DELETE("/notifications/:id", h.DeleteNotification)

		authed.POST("/hire-requests", h.CreateHireRequest)
		authed.GET("/hire-requests", h.GetHireRequests)
		authed.GET("/hire-requests/:id", h.GetHireRequest)
		authed.POST("/hire-requests/:id/:action", h.TransitionHireRequest)
	}
}
