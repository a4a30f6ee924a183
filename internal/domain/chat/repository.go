package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
)

// UnreadCount is the number of unseen messages in one room
type UnreadCount struct {
	RoomID      uuid.UUID `json:"room_id"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Unread      int64     `json:"unread"`
}

// RoomRepository persists rooms, participants and messages
type RoomRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Room, error)
	// Create returns shared.ErrAlreadyExists if the order already has a room
	Create(ctx context.Context, r *Room) error
	// SaveWithLock persists participants and the closed flag with a version check
	SaveWithLock(ctx context.Context, r *Room) error
	// SaveParticipantRead updates a single participant's last-read time
	SaveParticipantRead(ctx context.Context, roomID, accountID uuid.UUID, at time.Time) error
	// AppendMessage stores the message and its events in one transaction
	AppendMessage(ctx context.Context, m *Message, events []shared.DomainEvent) error
	// ListMessages returns up to limit messages created before the cursor, newest first
	ListMessages(ctx context.Context, roomID uuid.UUID, before *time.Time, limit int) ([]Message, error)
	// UnreadCounts returns a row per room of the account with unseen messages
	UnreadCounts(ctx context.Context, accountID uuid.UUID) ([]UnreadCount, error)
}
