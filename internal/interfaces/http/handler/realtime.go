package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/homechef/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ConnectionServer attaches an upgraded websocket to a user
type ConnectionServer interface {
	Serve(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, userID uuid.UUID) error
}

// RealtimeHandler upgrades /ws requests into push connections
type RealtimeHandler struct {
	BaseHandler
	hub      ConnectionServer
	upgrader *websocket.Upgrader
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(hub ConnectionServer, upgrader *websocket.Upgrader) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, upgrader: upgrader}
}

// Connect handles GET /ws: open the caller's realtime event stream
func (h *RealtimeHandler) Connect(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if !websocket.IsWebSocketUpgrade(c.Request) {
		h.BadRequest(c, "Websocket upgrade required")
		return
	}
	// the upgrader has already answered the request when this fails
	if err := h.hub.Serve(h.upgrader, c.Writer, c.Request, actor.ID); err != nil {
		logger.GetGinLogger(c).Warn("Websocket upgrade failed", zap.Error(err))
	}
}
