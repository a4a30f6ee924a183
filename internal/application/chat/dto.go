package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/chat"
)

// SendMessageRequest posts a message to a room. Length is checked after
// trimming by the room.
type SendMessageRequest struct {
	Body string `json:"body" binding:"required,max=8000"`
}

// MessageQuery pages backwards through a room's history
type MessageQuery struct {
	Before *time.Time `form:"before" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit  int        `form:"limit" binding:"min=0,max=100"`
}

// ParticipantResponse is a room member
type ParticipantResponse struct {
	AccountID  uuid.UUID    `json:"account_id"`
	Role       account.Role `json:"role"`
	JoinedAt   time.Time    `json:"joined_at"`
	LeftAt     *time.Time   `json:"left_at,omitempty"`
	LastReadAt *time.Time   `json:"last_read_at,omitempty"`
}

// RoomResponse represents a chat room in API responses
type RoomResponse struct {
	ID           uuid.UUID             `json:"id"`
	OrderID      uuid.UUID             `json:"order_id"`
	OrderNumber  string                `json:"order_number"`
	Participants []ParticipantResponse `json:"participants"`
	Closed       bool                  `json:"closed"`
	ClosedAt     *time.Time            `json:"closed_at,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// MessageResponse represents a chat message in API responses
type MessageResponse struct {
	ID         uuid.UUID    `json:"id"`
	RoomID     uuid.UUID    `json:"room_id"`
	SenderID   uuid.UUID    `json:"sender_id"`
	SenderRole account.Role `json:"sender_role"`
	Body       string       `json:"body"`
	CreatedAt  time.Time    `json:"created_at"`
}

// UnreadResponse sums unseen messages over the caller's rooms
type UnreadResponse struct {
	Total int64              `json:"total"`
	Rooms []chat.UnreadCount `json:"rooms"`
}

// ToRoomResponse converts a room
func ToRoomResponse(r *chat.Room) RoomResponse {
	participants := make([]ParticipantResponse, len(r.Participants))
	for i, p := range r.Participants {
		participants[i] = ParticipantResponse{
			AccountID:  p.AccountID,
			Role:       p.Role,
			JoinedAt:   p.JoinedAt,
			LeftAt:     p.LeftAt,
			LastReadAt: p.LastReadAt,
		}
	}
	return RoomResponse{
		ID:           r.ID,
		OrderID:      r.OrderID,
		OrderNumber:  r.OrderNumber,
		Participants: participants,
		Closed:       r.IsClosed(),
		ClosedAt:     r.ClosedAt,
		CreatedAt:    r.CreatedAt,
	}
}

// ToMessageResponse converts a message
func ToMessageResponse(m *chat.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		RoomID:     m.RoomID,
		SenderID:   m.SenderID,
		SenderRole: m.SenderRole,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}

// ToMessageResponses converts a page of messages
func ToMessageResponses(msgs []chat.Message) []MessageResponse {
	out := make([]MessageResponse, len(msgs))
	for i := range msgs {
		out[i] = ToMessageResponse(&msgs[i])
	}
	return out
}
