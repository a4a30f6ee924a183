package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderingapp "github.com/homechef/backend/internal/application/ordering"
	"github.com/homechef/backend/internal/domain/account"
)

// OrderUseCases is what OrderHandler needs from the order service
type OrderUseCases interface {
	PlaceOrder(ctx context.Context, actor account.Actor, req orderingapp.PlaceOrderRequest) (*orderingapp.OrderResponse, error)
	Get(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error)
	List(ctx context.Context, actor account.Actor, filter orderingapp.OrderListFilter) ([]orderingapp.OrderResponse, int64, error)
	ListAll(ctx context.Context, filter orderingapp.OrderListFilter) ([]orderingapp.OrderResponse, int64, error)
	Cancel(ctx context.Context, actor account.Actor, id uuid.UUID, reason string) (*orderingapp.OrderResponse, error)
	Complete(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error)
	Stats(ctx context.Context) (*orderingapp.StatsResponse, error)
}

// CashOrderUseCases covers cash-on-delivery placement and settlement
type CashOrderUseCases interface {
	PlaceCashOrder(ctx context.Context, actor account.Actor, req orderingapp.PlaceCashOrderRequest) (*orderingapp.CashOrderResponse, error)
	CollectCash(ctx context.Context, actor account.Actor, id uuid.UUID, req orderingapp.CollectCashRequest) (*orderingapp.CollectCashResponse, error)
	DriverCashBalance(ctx context.Context, actor account.Actor, driverID uuid.UUID) (*orderingapp.CashBalanceResponse, error)
	SettleDriverCash(ctx context.Context, actor account.Actor, driverID uuid.UUID) (*orderingapp.CashBalanceResponse, error)
}

// OrderHandler serves the client's orders and the admin order console
type OrderHandler struct {
	BaseHandler
	orders OrderUseCases
	cash   CashOrderUseCases
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderUseCases, cash CashOrderUseCases) *OrderHandler {
	return &OrderHandler{orders: orders, cash: cash}
}

// Place handles POST /orders: place a card-paid order
func (h *OrderHandler) Place(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req orderingapp.PlaceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.PlaceOrder(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// PlaceCash handles POST /orders/cash: place a cash-on-delivery order
func (h *OrderHandler) PlaceCash(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req orderingapp.PlaceCashOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.cash.PlaceCashOrder(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List lists the caller's orders
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter orderingapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	orders, total, err := h.orders.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Get returns one order the caller is a party to
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel handles POST /orders/{id}/cancel: cancel an order before it is picked
// up
func (h *OrderHandler) Cancel(c *gin.Context) {
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
	order, err := h.orders.Cancel(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Complete confirms receipt of a delivered order
func (h *OrderHandler) Complete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Complete(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListAll lists every order (admin)
func (h *OrderHandler) ListAll(c *gin.Context) {
	var filter orderingapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	orders, total, err := h.orders.ListAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Stats returns per-status counts and today's revenue (admin)
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.orders.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// DriverCash shows a driver's unsettled cash (admin)
func (h *OrderHandler) DriverCash(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	driverID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	balance, err := h.cash.DriverCashBalance(c.Request.Context(), actor, driverID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// SettleDriverCash marks a driver's collected cash as handed in (admin)
func (h *OrderHandler) SettleDriverCash(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	driverID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	balance, err := h.cash.SettleDriverCash(c.Request.Context(), actor, driverID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}
