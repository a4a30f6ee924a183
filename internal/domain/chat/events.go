package chat

import (
	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/shared"
)

const EventTypeMessageSent = "MessageSent"

// MessageSentEvent carries enough of the message to notify the other
// participants without another read
type MessageSentEvent struct {
	shared.BaseDomainEvent
	RoomID      uuid.UUID    `json:"room_id"`
	OrderID     uuid.UUID    `json:"order_id"`
	OrderNumber string       `json:"order_number"`
	MessageID   uuid.UUID    `json:"message_id"`
	SenderID    uuid.UUID    `json:"sender_id"`
	SenderRole  account.Role `json:"sender_role"`
	Recipients  []uuid.UUID  `json:"recipients"`
	Preview     string       `json:"preview"`
}

func NewMessageSentEvent(r *Room, m *Message, recipients []uuid.UUID) *MessageSentEvent {
	return &MessageSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessageSent, AggregateTypeChatRoom, r.ID),
		RoomID:          r.ID,
		OrderID:         r.OrderID,
		OrderNumber:     r.OrderNumber,
		MessageID:       m.ID,
		SenderID:        m.SenderID,
		SenderRole:      m.SenderRole,
		Recipients:      recipients,
		Preview:         Preview(m.Body),
	}
}
