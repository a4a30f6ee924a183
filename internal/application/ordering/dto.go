package ordering

import (
	"time"

	"github.com/google/uuid"
	accountapp "github.com/homechef/backend/internal/application/account"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderLineRequest is one dish of a new order
type OrderLineRequest struct {
	DishID   uuid.UUID `json:"dish_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1,max=50"`
}

// PlaceOrderRequest places a card-paid order. Address defaults to the
// client's saved address.
type PlaceOrderRequest struct {
	Items            []OrderLineRequest       `json:"items" binding:"required,min=1,max=50,dive"`
	Address          *accountapp.AddressInput `json:"address"`
	PaymentReference string                   `json:"payment_reference" binding:"max=200"`
	RedeemPoints     int64                    `json:"redeem_points" binding:"min=0"`
	Notes            string                   `json:"notes" binding:"max=500"`
}

// PlaceCashOrderRequest places a cash-on-delivery order
type PlaceCashOrderRequest struct {
	Items        []OrderLineRequest       `json:"items" binding:"required,min=1,max=50,dive"`
	Address      *accountapp.AddressInput `json:"address"`
	RedeemPoints int64                    `json:"redeem_points" binding:"min=0"`
	Notes        string                   `json:"notes" binding:"max=500"`
}

// ReasonRequest carries a rejection or cancellation reason
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// AcceptRequest is the cook's approval; PrepMinutes defaults to the kitchen default
type AcceptRequest struct {
	PrepMinutes *int `json:"prep_minutes" binding:"omitempty,min=1,max=240"`
}

// AssignRequest is an admin dispatch
type AssignRequest struct {
	DriverID uuid.UUID `json:"driver_id" binding:"required"`
}

// CollectCashRequest is the driver's handoff of a cash order
type CollectCashRequest struct {
	Code     string          `json:"code" binding:"required,len=4,numeric"`
	Tendered decimal.Decimal `json:"tendered" binding:"money"`
}

// OrderListFilter narrows order listings. The party filters are honoured for
// admins only; other roles always see their own orders.
type OrderListFilter struct {
	Page          int                    `form:"page" binding:"min=0"`
	PageSize      int                    `form:"page_size" binding:"min=0,max=100"`
	Status        []ordering.OrderStatus `form:"status"`
	PaymentMethod ordering.PaymentMethod `form:"payment_method" binding:"omitempty,oneof=CARD CASH"`
	ClientID      *uuid.UUID             `form:"client_id"`
	CookID        *uuid.UUID             `form:"cook_id"`
	DriverID      *uuid.UUID             `form:"driver_id"`
}

// OrderItemResponse is a line of an order
type OrderItemResponse struct {
	DishID    uuid.UUID       `json:"dish_id"`
	DishName  string          `json:"dish_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID              `json:"id"`
	OrderNumber      string                 `json:"order_number"`
	ClientID         uuid.UUID              `json:"client_id"`
	CookID           uuid.UUID              `json:"cook_id"`
	DriverID         *uuid.UUID             `json:"driver_id,omitempty"`
	Status           ordering.OrderStatus   `json:"status"`
	Items            []OrderItemResponse    `json:"items"`
	Currency         valueobject.Currency   `json:"currency"`
	Subtotal         decimal.Decimal        `json:"subtotal"`
	DeliveryFee      decimal.Decimal        `json:"delivery_fee"`
	Discount         decimal.Decimal        `json:"discount"`
	Total            decimal.Decimal        `json:"total"`
	RedeemedPoints   int64                  `json:"redeemed_points"`
	PaymentMethod    ordering.PaymentMethod `json:"payment_method"`
	PaymentStatus    ordering.PaymentStatus `json:"payment_status"`
	Pickup           valueobject.Address    `json:"pickup"`
	Dropoff          valueobject.Address    `json:"dropoff"`
	Notes            string                 `json:"notes,omitempty"`
	ApprovalDeadline time.Time              `json:"approval_deadline"`
	PrepMinutes      int                    `json:"prep_minutes,omitempty"`
	EstimatedReadyAt *time.Time             `json:"estimated_ready_at,omitempty"`
	AcceptedAt       *time.Time             `json:"accepted_at,omitempty"`
	RejectedAt       *time.Time             `json:"rejected_at,omitempty"`
	ReadyAt          *time.Time             `json:"ready_at,omitempty"`
	AssignedAt       *time.Time             `json:"assigned_at,omitempty"`
	PickedUpAt       *time.Time             `json:"picked_up_at,omitempty"`
	DeliveredAt      *time.Time             `json:"delivered_at,omitempty"`
	CompletedAt      *time.Time             `json:"completed_at,omitempty"`
	CancelledAt      *time.Time             `json:"cancelled_at,omitempty"`
	RejectionReason  string                 `json:"rejection_reason,omitempty"`
	CancelReason     string                 `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	Version          int                    `json:"version"`
}

// CashOrderResponse returns the handoff code once, at placement
type CashOrderResponse struct {
	Order       OrderResponse `json:"order"`
	HandoffCode string        `json:"handoff_code"`
}

// CollectCashResponse is the outcome of a cash handoff
type CollectCashResponse struct {
	Order  OrderResponse   `json:"order"`
	Change decimal.Decimal `json:"change"`
}

// AvailableOrderResponse is a READY order offered to a driver
type AvailableOrderResponse struct {
	Order      OrderResponse `json:"order"`
	DistanceKm *float64      `json:"distance_km,omitempty"`
}

// CashBalanceResponse is the cash a driver holds for the platform
type CashBalanceResponse struct {
	DriverID uuid.UUID            `json:"driver_id"`
	Amount   decimal.Decimal      `json:"amount"`
	Currency valueobject.Currency `json:"currency"`
	Orders   int                  `json:"orders"`
}

// StatsResponse is the admin dashboard summary
type StatsResponse struct {
	ByStatus       map[ordering.OrderStatus]int64 `json:"by_status"`
	CompletedToday int64                          `json:"completed_today"`
	RevenueToday   decimal.Decimal                `json:"revenue_today"`
	Currency       valueobject.Currency           `json:"currency"`
	OpenOrders     int64                          `json:"open_orders"`
	GeneratedAt    time.Time                      `json:"generated_at"`
}

// ToOrderResponse converts the aggregate. The handoff hash never leaves the
// domain.
func ToOrderResponse(o *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			DishID:    item.DishID,
			DishName:  item.DishName,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Amount:    item.Amount,
		}
	}
	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		ClientID:         o.ClientID,
		CookID:           o.CookID,
		DriverID:         o.DriverID,
		Status:           o.Status,
		Items:            items,
		Currency:         o.Currency,
		Subtotal:         o.Subtotal,
		DeliveryFee:      o.DeliveryFee,
		Discount:         o.Discount,
		Total:            o.Total,
		RedeemedPoints:   o.RedeemedPoints,
		PaymentMethod:    o.PaymentMethod,
		PaymentStatus:    o.PaymentStatus,
		Pickup:           o.Pickup,
		Dropoff:          o.Dropoff,
		Notes:            o.Notes,
		ApprovalDeadline: o.ApprovalDeadline,
		PrepMinutes:      o.PrepMinutes,
		EstimatedReadyAt: o.EstimatedReadyAt,
		AcceptedAt:       o.AcceptedAt,
		RejectedAt:       o.RejectedAt,
		ReadyAt:          o.ReadyAt,
		AssignedAt:       o.AssignedAt,
		PickedUpAt:       o.PickedUpAt,
		DeliveredAt:      o.DeliveredAt,
		CompletedAt:      o.CompletedAt,
		CancelledAt:      o.CancelledAt,
		RejectionReason:  o.RejectionReason,
		CancelReason:     o.CancelReason,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Version:          o.Version,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []ordering.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
