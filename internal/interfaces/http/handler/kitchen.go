package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderingapp "github.com/homechef/backend/internal/application/ordering"
	"github.com/homechef/backend/internal/domain/account"
)

// ApprovalUseCases is what KitchenHandler needs from the approval service
type ApprovalUseCases interface {
	ListPending(ctx context.Context, actor account.Actor) ([]orderingapp.OrderResponse, error)
	Accept(ctx context.Context, actor account.Actor, id uuid.UUID, req orderingapp.AcceptRequest) (*orderingapp.OrderResponse, error)
	Reject(ctx context.Context, actor account.Actor, id uuid.UUID, reason string) (*orderingapp.OrderResponse, error)
	StartPreparing(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error)
	MarkReady(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error)
}

// KitchenHandler serves the cook's side of the order lifecycle
type KitchenHandler struct {
	BaseHandler
	approvals ApprovalUseCases
}

// NewKitchenHandler creates a new KitchenHandler
func NewKitchenHandler(approvals ApprovalUseCases) *KitchenHandler {
	return &KitchenHandler{approvals: approvals}
}

// Pending handles GET /cook/orders/pending: orders awaiting the caller's
// approval, oldest deadline first
func (h *KitchenHandler) Pending(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	orders, err := h.approvals.ListPending(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Accept approves an order
func (h *KitchenHandler) Accept(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req orderingapp.AcceptRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	order, err := h.approvals.Accept(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Reject declines an order
func (h *KitchenHandler) Reject(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req orderingapp.ReasonRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.approvals.Reject(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Start moves an accepted order into preparation
func (h *KitchenHandler) Start(c *gin.Context) {
	h.transition(c, h.approvals.StartPreparing)
}

// Ready marks an order ready for pickup
func (h *KitchenHandler) Ready(c *gin.Context) {
	h.transition(c, h.approvals.MarkReady)
}

type orderTransition func(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error)

// transition runs a body-less state change on the order in the path
func (h *BaseHandler) transition(c *gin.Context, fn orderTransition) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
