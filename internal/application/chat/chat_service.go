package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/chat"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultMessageLimit = 50

// ChatService manages order chat rooms and their messages
type ChatService struct {
	rooms  chat.RoomRepository
	orders ordering.OrderRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewChatService creates a new ChatService
func NewChatService(rooms chat.RoomRepository, orders ordering.OrderRepository, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		rooms:  rooms,
		orders: orders,
		logger: logger,
		now:    time.Now,
	}
}

// OpenRoom creates the order's room with the client and the cook. Opening an
// existing room returns it unchanged.
func (s *ChatService) OpenRoom(ctx context.Context, parties ordering.OrderParties) (*chat.Room, error) {
	existing, err := s.rooms.FindByOrder(ctx, parties.OrderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	room := chat.NewRoom(parties.OrderID, parties.OrderNumber, parties.ClientID, parties.CookID, s.now())
	if err := s.rooms.Create(ctx, room); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.rooms.FindByOrder(ctx, parties.OrderID)
		}
		return nil, err
	}
	s.logger.Debug("chat room opened",
		zap.String("room_id", room.ID.String()),
		zap.String("order_id", parties.OrderID.String()),
	)
	return room, nil
}

// AddParticipant joins an account to the order's room
func (s *ChatService) AddParticipant(ctx context.Context, orderID, accountID uuid.UUID, role account.Role) error {
	room, err := s.rooms.FindByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	changed, err := room.AddParticipant(accountID, role, s.now())
	if err != nil || !changed {
		return err
	}
	return s.rooms.SaveWithLock(ctx, room)
}

// RemoveParticipant takes an account out of the order's room. Its earlier
// messages remain.
func (s *ChatService) RemoveParticipant(ctx context.Context, orderID, accountID uuid.UUID) error {
	room, err := s.rooms.FindByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !room.RemoveParticipant(accountID, s.now()) {
		return nil
	}
	return s.rooms.SaveWithLock(ctx, room)
}

// CloseRoom makes the order's room read-only. A missing room is ignored.
func (s *ChatService) CloseRoom(ctx context.Context, orderID uuid.UUID) error {
	room, err := s.rooms.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if !room.Close(s.now()) {
		return nil
	}
	return s.rooms.SaveWithLock(ctx, room)
}

// RoomForOrder returns the order's room. When the order exists but its room
// has not been opened yet, it is opened on demand.
func (s *ChatService) RoomForOrder(ctx context.Context, actor account.Actor, orderID uuid.UUID) (*RoomResponse, error) {
	room, err := s.rooms.FindByOrder(ctx, orderID)
	if errors.Is(err, shared.ErrNotFound) {
		o, ferr := s.orders.FindByID(ctx, orderID)
		if ferr != nil {
			return nil, ferr
		}
		if !actor.IsAdmin() && !o.IsParty(actor.ID) {
			return nil, shared.ErrForbidden
		}
		room, err = s.OpenRoom(ctx, o.Parties())
		if err == nil && o.DriverID != nil && !o.Status.IsTerminal() {
			err = s.AddParticipant(ctx, o.ID, *o.DriverID, account.RoleDriver)
			if err == nil {
				room, err = s.rooms.FindByOrder(ctx, orderID)
			}
		}
	}
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !room.IsParticipant(actor.ID) {
		return nil, shared.ErrForbidden
	}
	resp := ToRoomResponse(room)
	return &resp, nil
}

// SendMessage posts a message. The MessageSent event is stored with the
// message and fans out to the other participants.
func (s *ChatService) SendMessage(ctx context.Context, actor account.Actor, roomID uuid.UUID, body string) (*MessageResponse, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	msg, event, err := room.Post(actor, body, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.rooms.AppendMessage(ctx, msg, []shared.DomainEvent{event}); err != nil {
		return nil, err
	}
	resp := ToMessageResponse(msg)
	return &resp, nil
}

// ListMessages returns messages before the cursor, newest first
func (s *ChatService) ListMessages(ctx context.Context, actor account.Actor, roomID uuid.UUID, q MessageQuery) ([]MessageResponse, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !room.IsParticipant(actor.ID) {
		return nil, shared.ErrForbidden
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > chat.MaxPageSize {
		limit = chat.MaxPageSize
	}
	msgs, err := s.rooms.ListMessages(ctx, roomID, q.Before, limit)
	if err != nil {
		return nil, err
	}
	return ToMessageResponses(msgs), nil
}

// MarkRead records that the caller has read the room up to now
func (s *ChatService) MarkRead(ctx context.Context, actor account.Actor, roomID uuid.UUID) error {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	now := s.now()
	if err := room.MarkRead(actor.ID, now); err != nil {
		return err
	}
	return s.rooms.SaveParticipantRead(ctx, roomID, actor.ID, now)
}

// UnreadCount returns the caller's unseen messages per room
func (s *ChatService) UnreadCount(ctx context.Context, actor account.Actor) (*UnreadResponse, error) {
	rooms, err := s.rooms.UnreadCounts(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	resp := &UnreadResponse{Rooms: rooms}
	for _, r := range rooms {
		resp.Total += r.Unread
	}
	if resp.Rooms == nil {
		resp.Rooms = []chat.UnreadCount{}
	}
	return resp, nil
}
