package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/notification"
)

// ListQuery pages through the caller's inbox
type ListQuery struct {
	UnreadOnly bool `form:"unread_only"`
	Page       int  `form:"page" binding:"min=0"`
	PageSize   int  `form:"page_size" binding:"min=0,max=100"`
}

// NotificationResponse represents an inbox item in API responses
type NotificationResponse struct {
	ID        uuid.UUID         `json:"id"`
	Kind      notification.Kind `json:"kind"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	OrderID   *uuid.UUID        `json:"order_id,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// UnreadCountResponse is the inbox badge
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// MarkAllReadResponse reports how many items were marked
type MarkAllReadResponse struct {
	Marked int64 `json:"marked"`
}

// ToNotificationResponse converts an inbox item
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Kind:      n.Kind,
		Title:     n.Title,
		Body:      n.Body,
		OrderID:   n.OrderID,
		Data:      n.Data,
		Read:      n.IsRead(),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationResponses converts a page of inbox items
func ToNotificationResponses(items []notification.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(items))
	for i := range items {
		out[i] = ToNotificationResponse(&items[i])
	}
	return out
}
