package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderingapp "github.com/homechef/backend/internal/application/ordering"
	routingapp "github.com/homechef/backend/internal/application/routing"
	"github.com/homechef/backend/internal/domain/account"
)

// DeliveryUseCases is what DeliveryHandler needs from the delivery service
type DeliveryUseCases interface {
	ListAvailable(ctx context.Context, actor account.Actor) ([]orderingapp.AvailableOrderResponse, error)
	Claim(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error)
	Assign(ctx context.Context, actor account.Actor, id, driverID uuid.UUID) (*orderingapp.OrderResponse, error)
	Release(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error)
	PickUp(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error)
	MarkDelivered(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error)
}

// RoutePlanner plans the driver's stop sequence
type RoutePlanner interface {
	PlanRoute(ctx context.Context, actor account.Actor) (*routingapp.RouteResponse, error)
}

// DeliveryHandler serves the driver's side of the order lifecycle
type DeliveryHandler struct {
	BaseHandler
	deliveries DeliveryUseCases
	cash       CashOrderUseCases
	routes     RoutePlanner
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(deliveries DeliveryUseCases, cash CashOrderUseCases, routes RoutePlanner) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries, cash: cash, routes: routes}
}

// Available handles GET /driver/orders/available: rEADY orders without a
// driver, nearest first
func (h *DeliveryHandler) Available(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	orders, err := h.deliveries.ListAvailable(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Claim self-assigns a READY order
func (h *DeliveryHandler) Claim(c *gin.Context) {
	h.transition(c, h.deliveries.Claim)
}

// Release hands an assigned order back to the pool
func (h *DeliveryHandler) Release(c *gin.Context) {
	h.transition(c, h.deliveries.Release)
}

// PickUp records collection from the kitchen
func (h *DeliveryHandler) PickUp(c *gin.Context) {
	h.transition(c, h.deliveries.PickUp)
}

// Deliver records the handoff of a card-paid order
func (h *DeliveryHandler) Deliver(c *gin.Context) {
	h.transition(c, h.deliveries.MarkDelivered)
}

// CollectCash handles POST /driver/orders/{id}/collect-cash: deliver a cash
// order against the client's handoff code
func (h *DeliveryHandler) CollectCash(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req orderingapp.CollectCashRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.cash.CollectCash(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CashBalance shows the cash the caller holds
func (h *DeliveryHandler) CashBalance(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	balance, err := h.cash.DriverCashBalance(c.Request.Context(), actor, actor.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// Route handles GET /driver/route: plan the caller's pickup and drop-off
// sequence
func (h *DeliveryHandler) Route(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	route, err := h.routes.PlanRoute(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, route)
}

// Assign dispatches a READY order to a driver (admin)
func (h *DeliveryHandler) Assign(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req orderingapp.AssignRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.deliveries.Assign(c.Request.Context(), actor, id, req.DriverID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
