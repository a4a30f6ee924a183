package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/chat"
)

// ChatRoomModel is the persistence model for the chat Room aggregate root
type ChatRoomModel struct {
	AggregateModel
	OrderID      uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex"`
	OrderNumber  string                 `gorm:"type:varchar(30);not null"`
	Participants []ChatParticipantModel `gorm:"foreignKey:RoomID;references:ID"`
	ClosedAt     *time.Time
}

// TableName returns the table name for GORM
func (ChatRoomModel) TableName() string {
	return "chat_rooms"
}

// ToDomain converts the persistence model to a domain Room
func (m *ChatRoomModel) ToDomain() *chat.Room {
	r := &chat.Room{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderID:           m.OrderID,
		OrderNumber:       m.OrderNumber,
		ClosedAt:          m.ClosedAt,
		Participants:      make([]chat.Participant, len(m.Participants)),
	}
	for i, p := range m.Participants {
		r.Participants[i] = p.ToDomain()
	}
	return r
}

// ChatRoomModelFromDomain creates a new persistence model from a domain Room
func ChatRoomModelFromDomain(r *chat.Room) *ChatRoomModel {
	m := &ChatRoomModel{
		OrderID:      r.OrderID,
		OrderNumber:  r.OrderNumber,
		ClosedAt:     r.ClosedAt,
		Participants: make([]ChatParticipantModel, len(r.Participants)),
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	for i, p := range r.Participants {
		m.Participants[i] = ChatParticipantModelFromDomain(r.ID, p)
	}
	return m
}

// ChatParticipantModel is one member row of a room
type ChatParticipantModel struct {
	RoomID     uuid.UUID    `gorm:"type:uuid;primary_key"`
	AccountID  uuid.UUID    `gorm:"type:uuid;primary_key;index"`
	Role       account.Role `gorm:"type:varchar(20);not null"`
	JoinedAt   time.Time    `gorm:"not null"`
	LeftAt     *time.Time
	LastReadAt *time.Time
}

// TableName returns the table name for GORM
func (ChatParticipantModel) TableName() string {
	return "chat_participants"
}

// ToDomain converts the persistence model to a domain Participant
func (m *ChatParticipantModel) ToDomain() chat.Participant {
	return chat.Participant{
		AccountID:  m.AccountID,
		Role:       m.Role,
		JoinedAt:   m.JoinedAt,
		LeftAt:     m.LeftAt,
		LastReadAt: m.LastReadAt,
	}
}

// ChatParticipantModelFromDomain creates a participant row
func ChatParticipantModelFromDomain(roomID uuid.UUID, p chat.Participant) ChatParticipantModel {
	return ChatParticipantModel{
		RoomID:     roomID,
		AccountID:  p.AccountID,
		Role:       p.Role,
		JoinedAt:   p.JoinedAt,
		LeftAt:     p.LeftAt,
		LastReadAt: p.LastReadAt,
	}
}

// ChatMessageModel is a stored chat line
type ChatMessageModel struct {
	ID         uuid.UUID    `gorm:"type:uuid;primary_key"`
	RoomID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_chat_messages_room_created,priority:1"`
	SenderID   uuid.UUID    `gorm:"type:uuid;not null"`
	SenderRole account.Role `gorm:"type:varchar(20);not null"`
	Body       string       `gorm:"type:text;not null"`
	CreatedAt  time.Time    `gorm:"not null;index:idx_chat_messages_room_created,priority:2"`
}

// TableName returns the table name for GORM
func (ChatMessageModel) TableName() string {
	return "chat_messages"
}

// ToDomain converts the persistence model to a domain Message
func (m *ChatMessageModel) ToDomain() chat.Message {
	return chat.Message{
		ID:         m.ID,
		RoomID:     m.RoomID,
		SenderID:   m.SenderID,
		SenderRole: m.SenderRole,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}

// ChatMessageModelFromDomain creates a new persistence model from a domain Message
func ChatMessageModelFromDomain(msg *chat.Message) *ChatMessageModel {
	return &ChatMessageModel{
		ID:         msg.ID,
		RoomID:     msg.RoomID,
		SenderID:   msg.SenderID,
		SenderRole: msg.SenderRole,
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
	}
}
