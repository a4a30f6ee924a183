package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type recorded on order events
const AggregateTypeOrder = "Order"

const (
	EventTypeOrderPlaced             = "OrderPlaced"
	EventTypeOrderAccepted           = "OrderAccepted"
	EventTypeOrderRejected           = "OrderRejected"
	EventTypeOrderPreparationStarted = "OrderPreparationStarted"
	EventTypeOrderReady              = "OrderReady"
	EventTypeDriverAssigned          = "DriverAssigned"
	EventTypeDriverReleased          = "DriverReleased"
	EventTypeOrderPickedUp           = "OrderPickedUp"
	EventTypeOrderDelivered          = "OrderDelivered"
	EventTypeOrderCompleted          = "OrderCompleted"
	EventTypeOrderCancelled          = "OrderCancelled"
	EventTypeCashCollected           = "CashCollected"
	EventTypeCashSettled             = "CashSettled"
)

// OrderParties identifies the order and everyone involved in it. Every order
// event embeds it so that notification fan-out needs no extra lookups.
type OrderParties struct {
	OrderID     uuid.UUID  `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	ClientID    uuid.UUID  `json:"client_id"`
	CookID      uuid.UUID  `json:"cook_id"`
	DriverID    *uuid.UUID `json:"driver_id,omitempty"`
}

// OrderEvent is implemented by every order lifecycle event
type OrderEvent interface {
	shared.DomainEvent
	GetParties() OrderParties
}

// GetParties returns the parties snapshot
func (p OrderParties) GetParties() OrderParties {
	return p
}

func newOrderBase(eventType string, o *Order) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, AggregateTypeOrder, o.ID)
}

// OrderPlacedEvent is raised when a client places an order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderParties
	Total            decimal.Decimal      `json:"total"`
	Currency         valueobject.Currency `json:"currency"`
	PaymentMethod    PaymentMethod        `json:"payment_method"`
	ItemCount        int                  `json:"item_count"`
	RedeemedPoints   int64                `json:"redeemed_points"`
	ApprovalDeadline time.Time            `json:"approval_deadline"`
}

func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent:  newOrderBase(EventTypeOrderPlaced, o),
		OrderParties:     o.Parties(),
		Total:            o.Total,
		Currency:         o.Currency,
		PaymentMethod:    o.PaymentMethod,
		ItemCount:        o.ItemCount(),
		RedeemedPoints:   o.RedeemedPoints,
		ApprovalDeadline: o.ApprovalDeadline,
	}
}

// OrderAcceptedEvent is raised when the cook approves an order
type OrderAcceptedEvent struct {
	shared.BaseDomainEvent
	OrderParties
	PrepMinutes      int       `json:"prep_minutes"`
	EstimatedReadyAt time.Time `json:"estimated_ready_at"`
}

func NewOrderAcceptedEvent(o *Order) *OrderAcceptedEvent {
	return &OrderAcceptedEvent{
		BaseDomainEvent:  newOrderBase(EventTypeOrderAccepted, o),
		OrderParties:     o.Parties(),
		PrepMinutes:      o.PrepMinutes,
		EstimatedReadyAt: *o.EstimatedReadyAt,
	}
}

// OrderRejectedEvent is raised when the cook declines, or the approval window lapses
type OrderRejectedEvent struct {
	shared.BaseDomainEvent
	OrderParties
	Reason         string        `json:"reason"`
	RedeemedPoints int64         `json:"redeemed_points"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
}

func NewOrderRejectedEvent(o *Order) *OrderRejectedEvent {
	return &OrderRejectedEvent{
		BaseDomainEvent: newOrderBase(EventTypeOrderRejected, o),
		OrderParties:    o.Parties(),
		Reason:          o.RejectionReason,
		RedeemedPoints:  o.RedeemedPoints,
		PaymentStatus:   o.PaymentStatus,
	}
}

// OrderPreparationStartedEvent is raised when cooking begins
type OrderPreparationStartedEvent struct {
	shared.BaseDomainEvent
	OrderParties
}

func NewOrderPreparationStartedEvent(o *Order) *OrderPreparationStartedEvent {
	return &OrderPreparationStartedEvent{
		BaseDomainEvent: newOrderBase(EventTypeOrderPreparationStarted, o),
		OrderParties:    o.Parties(),
	}
}

// OrderReadyEvent is raised when the food awaits a driver
type OrderReadyEvent struct {
	shared.BaseDomainEvent
	OrderParties
	Pickup valueobject.Point `json:"pickup"`
	City   string            `json:"city"`
}

func NewOrderReadyEvent(o *Order) *OrderReadyEvent {
	return &OrderReadyEvent{
		BaseDomainEvent: newOrderBase(EventTypeOrderReady, o),
		OrderParties:    o.Parties(),
		Pickup:          o.Pickup.Location,
		City:            o.Pickup.City,
	}
}

// DriverAssignedEvent is raised when a driver takes the order
type DriverAssignedEvent struct {
	shared.BaseDomainEvent
	OrderParties
}

func NewDriverAssignedEvent(o *Order) *DriverAssignedEvent {
	return &DriverAssignedEvent{
		BaseDomainEvent: newOrderBase(EventTypeDriverAssigned, o),
		OrderParties:    o.Parties(),
	}
}

// DriverReleasedEvent is raised when a driver hands an order back
type DriverReleasedEvent struct {
	shared.BaseDomainEvent
	OrderParties
	ReleasedDriverID uuid.UUID `json:"released_driver_id"`
}

func NewDriverReleasedEvent(o *Order, driverID uuid.UUID) *DriverReleasedEvent {
	return &DriverReleasedEvent{
		BaseDomainEvent:  newOrderBase(EventTypeDriverReleased, o),
		OrderParties:     o.Parties(),
		ReleasedDriverID: driverID,
	}
}

// OrderPickedUpEvent is raised when the driver leaves the kitchen with the food
type OrderPickedUpEvent struct {
	shared.BaseDomainEvent
	OrderParties
}

func NewOrderPickedUpEvent(o *Order) *OrderPickedUpEvent {
	return &OrderPickedUpEvent{
		BaseDomainEvent: newOrderBase(EventTypeOrderPickedUp, o),
		OrderParties:    o.Parties(),
	}
}

// OrderDeliveredEvent is raised on handoff to the client
type OrderDeliveredEvent struct {
	shared.BaseDomainEvent
	OrderParties
	PaymentMethod PaymentMethod `json:"payment_method"`
}

func NewOrderDeliveredEvent(o *Order) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{
		BaseDomainEvent: newOrderBase(EventTypeOrderDelivered, o),
		OrderParties:    o.Parties(),
		PaymentMethod:   o.PaymentMethod,
	}
}

// OrderCompletedEvent is raised when the order is closed. Loyalty points are
// earned from it.
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderParties
	Total    decimal.Decimal      `json:"total"`
	Currency valueobject.Currency `json:"currency"`
}

func NewOrderCompletedEvent(o *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: newOrderBase(EventTypeOrderCompleted, o),
		OrderParties:    o.Parties(),
		Total:           o.Total,
		Currency:        o.Currency,
	}
}

// OrderCancelledEvent is raised when an order is aborted before pickup
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderParties
	Reason         string        `json:"reason"`
	CancelledBy    *uuid.UUID    `json:"cancelled_by,omitempty"`
	PreviousStatus OrderStatus   `json:"previous_status"`
	RedeemedPoints int64         `json:"redeemed_points"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
}

// NewOrderCancelledEvent keeps the driver that held the order, if any, in the
// parties so that they are told about the cancellation
func NewOrderCancelledEvent(o *Order, previous OrderStatus, previousDriver *uuid.UUID) *OrderCancelledEvent {
	parties := o.Parties()
	parties.DriverID = previousDriver
	return &OrderCancelledEvent{
		BaseDomainEvent: newOrderBase(EventTypeOrderCancelled, o),
		OrderParties:    parties,
		Reason:          o.CancelReason,
		CancelledBy:     o.CancelledBy,
		PreviousStatus:  previous,
		RedeemedPoints:  o.RedeemedPoints,
		PaymentStatus:   o.PaymentStatus,
	}
}

// CashCollectedEvent is raised when a driver collects payment at the door
type CashCollectedEvent struct {
	shared.BaseDomainEvent
	OrderParties
	Amount   decimal.Decimal      `json:"amount"`
	Tendered decimal.Decimal      `json:"tendered"`
	Change   decimal.Decimal      `json:"change"`
	Currency valueobject.Currency `json:"currency"`
}

func NewCashCollectedEvent(o *Order, change decimal.Decimal) *CashCollectedEvent {
	return &CashCollectedEvent{
		BaseDomainEvent: newOrderBase(EventTypeCashCollected, o),
		OrderParties:    o.Parties(),
		Amount:          o.Total,
		Tendered:        o.CashTendered,
		Change:          change,
		Currency:        o.Currency,
	}
}

// CashSettledEvent is raised when the driver remits collected cash
type CashSettledEvent struct {
	shared.BaseDomainEvent
	OrderParties
	Amount   decimal.Decimal      `json:"amount"`
	Currency valueobject.Currency `json:"currency"`
}

func NewCashSettledEvent(o *Order) *CashSettledEvent {
	return &CashSettledEvent{
		BaseDomainEvent: newOrderBase(EventTypeCashSettled, o),
		OrderParties:    o.Parties(),
		Amount:          o.Total,
		Currency:        o.Currency,
	}
}
