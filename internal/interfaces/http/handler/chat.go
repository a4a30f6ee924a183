package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	chatapp "github.com/homechef/backend/internal/application/chat"
	"github.com/homechef/backend/internal/domain/account"
)

// ChatUseCases is what ChatHandler needs from the chat service
type ChatUseCases interface {
	RoomForOrder(ctx context.Context, actor account.Actor, orderID uuid.UUID) (*chatapp.RoomResponse, error)
	SendMessage(ctx context.Context, actor account.Actor, roomID uuid.UUID, body string) (*chatapp.MessageResponse, error)
	ListMessages(ctx context.Context, actor account.Actor, roomID uuid.UUID, q chatapp.MessageQuery) ([]chatapp.MessageResponse, error)
	MarkRead(ctx context.Context, actor account.Actor, roomID uuid.UUID) error
	UnreadCount(ctx context.Context, actor account.Actor) (*chatapp.UnreadResponse, error)
}

// ChatHandler serves order chat rooms
type ChatHandler struct {
	BaseHandler
	chat ChatUseCases
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chat ChatUseCases) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// RoomForOrder returns the room of an order the caller takes part in
func (h *ChatHandler) RoomForOrder(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	room, err := h.chat.RoomForOrder(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, room)
}

// Messages handles GET /chat/rooms/{id}/messages: page backwards through a
// room's messages. before is an RFC3339 cursor and limit the page size.
func (h *ChatHandler) Messages(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	roomID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var q chatapp.MessageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	messages, err := h.chat.ListMessages(c.Request.Context(), actor, roomID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, messages)
}

// Send posts a message to the room
func (h *ChatHandler) Send(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	roomID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req chatapp.SendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	msg, err := h.chat.SendMessage(c.Request.Context(), actor, roomID, req.Body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}

// MarkRead moves the caller's read marker to now
func (h *ChatHandler) MarkRead(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	roomID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.chat.MarkRead(c.Request.Context(), actor, roomID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Unread sums unseen messages over the caller's rooms
func (h *ChatHandler) Unread(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	unread, err := h.chat.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unread)
}
