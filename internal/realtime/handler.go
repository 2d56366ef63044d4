package realtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/creativehub/nexus/internal/auth"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler upgrades authenticated requests to websocket connections
type Handler struct {
	hub            *Hub
	authService    auth.AuthServiceInterface
	allowedOrigins []string
}

// NewHandler creates a websocket handler. allowedOrigins are host patterns
// accepted in the Origin header; empty allows any origin.
func NewHandler(hub *Hub, authService auth.AuthServiceInterface, allowedOrigins []string) *Handler {
	return &Handler{hub: hub, authService: authService, allowedOrigins: allowedOrigins}
}

// HandleWebSocket serves GET /realtime. The session token comes from the
// token query parameter or an Authorization bearer header.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if header := c.GetHeader("Authorization"); token == "" && header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
			token = header[7:]
		}
	}
	if token == "" {
		util.RespondUnauthorized(c, "no authentication token provided")
		return
	}

	profile, err := h.authService.ValidateToken(token)
	if err != nil {
		util.RespondUnauthorized(c, "invalid token")
		return
	}

	opts := &websocket.AcceptOptions{CompressionMode: websocket.CompressionContextTakeover}
	if len(h.allowedOrigins) == 0 {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = h.allowedOrigins
	}

	conn, err := websocket.Accept(c.Writer, c.Request, opts)
	if err != nil {
		logger.Log.Warn("Realtime upgrade failed", logger.WithUserID(profile.ID), zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, profile.ID, profile.Username)
	client.RemoteAddr = c.ClientIP()
	h.hub.Register(client)

	_ = client.Send(NewMessage(MessageTypeSystem, SystemPayload{
		Event: "connected",
		Data: map[string]interface{}{
			"user_id":     profile.ID,
			"username":    profile.Username,
			"server_time": time.Now().UTC().UnixMilli(),
			"session_id":  fmt.Sprintf("%p", client),
			"channels":    []string{ChannelProjects},
		},
	}))

	go client.WritePump()
	client.ReadPump()
}
