// Package notification holds the in-app inbox. Delivery over realtime, push
// and email channels is handled by the application layer.
package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
)

// Kind identifies what a notification is about
type Kind string

const (
	KindApprovalRequest Kind = "APPROVAL_REQUEST"
	KindOrderReceipt    Kind = "ORDER_RECEIPT"
	KindOrderAccepted   Kind = "ORDER_ACCEPTED"
	KindOrderRejected   Kind = "ORDER_REJECTED"
	KindOrderPreparing  Kind = "ORDER_PREPARING"
	KindDeliveryOffer   Kind = "DELIVERY_OFFER"
	KindOrderReady      Kind = "ORDER_READY"
	KindDriverAssigned  Kind = "DRIVER_ASSIGNED"
	KindDriverReleased  Kind = "DRIVER_RELEASED"
	KindOrderPickedUp   Kind = "ORDER_PICKED_UP"
	KindOrderDelivered  Kind = "ORDER_DELIVERED"
	KindOrderCompleted  Kind = "ORDER_COMPLETED"
	KindOrderCancelled  Kind = "ORDER_CANCELLED"
	KindCashSettled     Kind = "CASH_SETTLED"
	KindChatMessage     Kind = "CHAT_MESSAGE"
	KindTierChanged     Kind = "TIER_CHANGED"
)

const (
	maxTitleLength = 200
	maxBodyLength  = 2000
)

// Channel is an outbound delivery path
type Channel string

const (
	ChannelRealtime Channel = "realtime"
	ChannelPush     Channel = "push"
	ChannelEmail    Channel = "email"
)

// AllChannels is the default fan-out
var AllChannels = []Channel{ChannelRealtime, ChannelPush, ChannelEmail}

// Notification is an inbox item for one recipient
type Notification struct {
	ID          uuid.UUID         `json:"id"`
	RecipientID uuid.UUID         `json:"recipient_id"`
	Kind        Kind              `json:"kind"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	OrderID     *uuid.UUID        `json:"order_id,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// New builds an unread notification
func New(recipient uuid.UUID, kind Kind, title, body string, orderID *uuid.UUID, data map[string]string, now time.Time) (*Notification, error) {
	if recipient == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Recipient is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title is required")
	}
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}
	if len(body) > maxBodyLength {
		body = body[:maxBodyLength]
	}
	return &Notification{
		ID:          uuid.New(),
		RecipientID: recipient,
		Kind:        kind,
		Title:       title,
		Body:        body,
		OrderID:     orderID,
		Data:        data,
		CreatedAt:   now,
	}, nil
}

// IsRead reports whether the recipient has seen it
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// Repository persists inbox items
type Repository interface {
	CreateBatch(ctx context.Context, items []*Notification) error
	FindByRecipient(ctx context.Context, recipient uuid.UUID, unreadOnly bool, filter shared.Filter) ([]Notification, int64, error)
	// MarkRead returns shared.ErrNotFound if the notification does not
	// belong to the recipient
	MarkRead(ctx context.Context, recipient, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, recipient uuid.UUID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, recipient uuid.UUID) (int64, error)
}
