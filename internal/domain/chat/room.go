// Package chat models the per-order conversation between the client, the cook
// and, once assigned, the driver.
package chat

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/shared"
)

const (
	AggregateTypeChatRoom = "ChatRoom"

	MaxMessageLength = 2000
	MaxPageSize      = 100
	previewLength    = 120
)

// Participant is a member of a room. Removed members keep their row with
// LeftAt set so that their earlier messages stay attributable.
type Participant struct {
	AccountID  uuid.UUID
	Role       account.Role
	JoinedAt   time.Time
	LeftAt     *time.Time
	LastReadAt *time.Time
}

// Active reports whether the participant is still in the room
func (p Participant) Active() bool {
	return p.LeftAt == nil
}

// Room is the chat attached to one order
type Room struct {
	shared.BaseAggregateRoot
	OrderID      uuid.UUID
	OrderNumber  string
	Participants []Participant
	ClosedAt     *time.Time
}

// Message is a single chat line
type Message struct {
	ID         uuid.UUID
	RoomID     uuid.UUID
	SenderID   uuid.UUID
	SenderRole account.Role
	Body       string
	CreatedAt  time.Time
}

// NewRoom opens a room for an order with the client and the cook
func NewRoom(orderID uuid.UUID, orderNumber string, clientID, cookID uuid.UUID, now time.Time) *Room {
	r := &Room{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		OrderNumber:       orderNumber,
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Participants = []Participant{
		{AccountID: clientID, Role: account.RoleClient, JoinedAt: now},
		{AccountID: cookID, Role: account.RoleCook, JoinedAt: now},
	}
	return r
}

// IsClosed reports whether the room is read-only
func (r *Room) IsClosed() bool {
	return r.ClosedAt != nil
}

func (r *Room) find(accountID uuid.UUID) int {
	for i := range r.Participants {
		if r.Participants[i].AccountID == accountID {
			return i
		}
	}
	return -1
}

// IsParticipant reports whether the account is an active member
func (r *Room) IsParticipant(accountID uuid.UUID) bool {
	i := r.find(accountID)
	return i >= 0 && r.Participants[i].Active()
}

// ActiveParticipants returns the IDs of the current members
func (r *Room) ActiveParticipants() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Participants))
	for _, p := range r.Participants {
		if p.Active() {
			ids = append(ids, p.AccountID)
		}
	}
	return ids
}

// AddParticipant joins or rejoins an account. Returns false if it was already active.
func (r *Room) AddParticipant(accountID uuid.UUID, role account.Role, now time.Time) (bool, error) {
	if r.IsClosed() {
		return false, shared.NewDomainError("ROOM_CLOSED", "Chat room is closed")
	}
	if i := r.find(accountID); i >= 0 {
		if r.Participants[i].Active() {
			return false, nil
		}
		r.Participants[i].LeftAt = nil
		r.Participants[i].JoinedAt = now
	} else {
		r.Participants = append(r.Participants, Participant{AccountID: accountID, Role: role, JoinedAt: now})
	}
	r.touch(now)
	return true, nil
}

// RemoveParticipant marks an account as having left. Returns false if it was not active.
func (r *Room) RemoveParticipant(accountID uuid.UUID, now time.Time) bool {
	i := r.find(accountID)
	if i < 0 || !r.Participants[i].Active() {
		return false
	}
	r.Participants[i].LeftAt = &now
	r.touch(now)
	return true
}

// Close makes the room read-only. Closing twice is a no-op.
func (r *Room) Close(now time.Time) bool {
	if r.IsClosed() {
		return false
	}
	r.ClosedAt = &now
	r.touch(now)
	return true
}

// MarkRead records that the participant has seen everything up to now
func (r *Room) MarkRead(accountID uuid.UUID, now time.Time) error {
	i := r.find(accountID)
	if i < 0 {
		return shared.NewDomainError("NOT_PARTICIPANT", "Not a participant of this chat")
	}
	r.Participants[i].LastReadAt = &now
	return nil
}

func (r *Room) touch(now time.Time) {
	r.UpdatedAt = now
	r.IncrementVersion()
}

// Post validates and creates a message. Admins may post without joining.
// Posting does not modify the room so concurrent senders never conflict.
func (r *Room) Post(sender account.Actor, body string, now time.Time) (*Message, *MessageSentEvent, error) {
	if r.IsClosed() {
		return nil, nil, shared.NewDomainError("ROOM_CLOSED", "Chat room is closed")
	}
	if !sender.IsAdmin() && !r.IsParticipant(sender.ID) {
		return nil, nil, shared.NewDomainError("NOT_PARTICIPANT", "Not a participant of this chat")
	}
	body = strings.TrimSpace(body)
	n := utf8.RuneCountInString(body)
	if n == 0 || n > MaxMessageLength {
		return nil, nil, shared.NewDomainError("INVALID_MESSAGE", "Message must be 1-2000 characters")
	}

	msg := &Message{
		ID:         uuid.New(),
		RoomID:     r.ID,
		SenderID:   sender.ID,
		SenderRole: sender.Role,
		Body:       body,
		CreatedAt:  now,
	}

	recipients := make([]uuid.UUID, 0, len(r.Participants))
	for _, id := range r.ActiveParticipants() {
		if id != sender.ID {
			recipients = append(recipients, id)
		}
	}
	return msg, NewMessageSentEvent(r, msg, recipients), nil
}

// Preview shortens a message body for notifications
func Preview(body string) string {
	if utf8.RuneCountInString(body) <= previewLength {
		return body
	}
	runes := []rune(body)
	return string(runes[:previewLength-1]) + "…"
}
