package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	notificationapp "github.com/homechef/backend/internal/application/notification"
	"github.com/homechef/backend/internal/domain/account"
)

// NotificationUseCases is what NotificationHandler needs from the notification service
type NotificationUseCases interface {
	List(ctx context.Context, actor account.Actor, q notificationapp.ListQuery) ([]notificationapp.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, actor account.Actor, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor account.Actor) (*notificationapp.MarkAllReadResponse, error)
	UnreadCount(ctx context.Context, actor account.Actor) (*notificationapp.UnreadCountResponse, error)
}

// NotificationHandler serves the caller's in-app inbox
type NotificationHandler struct {
	BaseHandler
	notifications NotificationUseCases
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications NotificationUseCases) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List pages through the caller's notifications, newest first
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q notificationapp.ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	items, total, err := h.notifications.List(c.Request.Context(), actor, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, q.Page, q.PageSize)
}

// UnreadCount returns the number of unread notifications
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	resp, err := h.notifications.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkRead marks one notification read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MarkAllRead marks every notification read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	resp, err := h.notifications.MarkAllRead(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
