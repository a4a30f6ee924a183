// Package ordering holds the order aggregate and its approval and delivery
// lifecycle:
//
//	PENDING_APPROVAL -> ACCEPTED -> PREPARING -> READY -> ASSIGNED -> PICKED_UP -> DELIVERED -> COMPLETED
//
// with REJECTED reachable only from PENDING_APPROVAL and CANCELLED reachable
// from every status before pickup. A driver may release an ASSIGNED order back
// to READY.
package ordering

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const (
	MinPrepMinutes  = 1
	MaxPrepMinutes  = 240
	maxItemQuantity = 50
	maxNotesLength  = 500
	maxReasonLength = 500
)

// OrderItem is a snapshot of a dish at the time it was ordered
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	DishID    uuid.UUID
	DishName  string
	UnitPrice decimal.Decimal
	Quantity  int
	Amount    decimal.Decimal
}

// LineInput describes one requested dish
type LineInput struct {
	DishID    uuid.UUID
	DishName  string
	UnitPrice decimal.Decimal
	Quantity  int
}

// NewOrderInput carries everything needed to place an order. Prices, fees
// and the loyalty discount are resolved by the caller.
type NewOrderInput struct {
	OrderNumber      string
	ClientID         uuid.UUID
	CookID           uuid.UUID
	Lines            []LineInput
	Currency         valueobject.Currency
	Pickup           valueobject.Address
	Dropoff          valueobject.Address
	DeliveryFee      decimal.Decimal
	Discount         decimal.Decimal
	RedeemedPoints   int64
	PaymentMethod    PaymentMethod
	PaymentReference string
	Notes            string
	ApprovalTimeout  time.Duration
	Now              time.Time
}

// Order is the aggregate root of the marketplace order lifecycle
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber string
	ClientID    uuid.UUID
	CookID      uuid.UUID
	DriverID    *uuid.UUID
	Items       []OrderItem
	Status      OrderStatus

	Currency       valueobject.Currency
	Subtotal       decimal.Decimal
	DeliveryFee    decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
	RedeemedPoints int64

	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	PaymentReference string
	CashCodeHash     string
	CashTendered     decimal.Decimal

	// HandoffAttempts counts wrong codes since the last lockout
	HandoffAttempts    int
	HandoffLockedUntil *time.Time

	Pickup  valueobject.Address
	Dropoff valueobject.Address
	Notes   string

	ApprovalDeadline time.Time
	PrepMinutes      int
	EstimatedReadyAt *time.Time
	AcceptedAt       *time.Time
	RejectedAt       *time.Time
	PreparingAt      *time.Time
	ReadyAt          *time.Time
	AssignedAt       *time.Time
	PickedUpAt       *time.Time
	DeliveredAt      *time.Time
	CompletedAt      *time.Time
	CancelledAt      *time.Time
	SettledAt        *time.Time

	RejectionReason string
	CancelReason    string
	CancelledBy     *uuid.UUID
}

// NewOrder validates the input and creates an order awaiting cook approval
func NewOrder(in NewOrderInput) (*Order, error) {
	if in.ClientID == uuid.Nil || in.CookID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTIES", "Client and cook are required")
	}
	if in.ClientID == in.CookID {
		return nil, shared.NewDomainError("SELF_ORDER", "Cooks cannot order from their own kitchen")
	}
	if strings.TrimSpace(in.OrderNumber) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(in.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	if !in.PaymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be CARD or CASH")
	}
	if in.PaymentMethod == PaymentCard && strings.TrimSpace(in.PaymentReference) == "" {
		return nil, shared.NewDomainError("PAYMENT_REFERENCE_REQUIRED", "Card orders require a payment reference")
	}
	if in.Currency == "" {
		in.Currency = valueobject.DefaultCurrency
	}
	if len(in.Notes) > maxNotesLength {
		return nil, shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 500 characters")
	}
	if in.DeliveryFee.IsNegative() || in.Discount.IsNegative() || in.RedeemedPoints < 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Fees and discounts cannot be negative")
	}
	if in.ApprovalTimeout <= 0 {
		return nil, shared.NewDomainError("INVALID_APPROVAL_TIMEOUT", "Approval timeout must be positive")
	}
	if in.Now.IsZero() {
		in.Now = time.Now()
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       in.OrderNumber,
		ClientID:          in.ClientID,
		CookID:            in.CookID,
		Status:            StatusPendingApproval,
		Currency:          in.Currency,
		DeliveryFee:       in.DeliveryFee.Round(2),
		Discount:          in.Discount.Round(2),
		RedeemedPoints:    in.RedeemedPoints,
		PaymentMethod:     in.PaymentMethod,
		PaymentReference:  strings.TrimSpace(in.PaymentReference),
		Pickup:            in.Pickup,
		Dropoff:           in.Dropoff,
		Notes:             strings.TrimSpace(in.Notes),
		ApprovalDeadline:  in.Now.Add(in.ApprovalTimeout),
	}
	o.CreatedAt = in.Now
	o.UpdatedAt = in.Now

	if in.PaymentMethod == PaymentCard {
		o.PaymentStatus = PaymentPaid
	} else {
		o.PaymentStatus = PaymentPending
	}

	seen := make(map[uuid.UUID]bool, len(in.Lines))
	for _, line := range in.Lines {
		if seen[line.DishID] {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", fmt.Sprintf("Dish %s appears more than once", line.DishID))
		}
		seen[line.DishID] = true
		item, err := newOrderItem(o.ID, line)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}

	o.recalculateTotals()
	if o.Discount.GreaterThan(o.Subtotal) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the subtotal")
	}

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

func newOrderItem(orderID uuid.UUID, line LineInput) (OrderItem, error) {
	if line.DishID == uuid.Nil {
		return OrderItem{}, shared.NewDomainError("INVALID_DISH", "Dish ID cannot be empty")
	}
	if line.Quantity < 1 || line.Quantity > maxItemQuantity {
		return OrderItem{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 1 and 50")
	}
	if !line.UnitPrice.IsPositive() {
		return OrderItem{}, shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}
	return OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		DishID:    line.DishID,
		DishName:  line.DishName,
		UnitPrice: line.UnitPrice,
		Quantity:  line.Quantity,
		Amount:    line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2),
	}, nil
}

func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	o.Subtotal = subtotal
	total := subtotal.Add(o.DeliveryFee).Sub(o.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.Total = total.Round(2)
}

// transition moves the order to target, stamping UpdatedAt and the version
func (o *Order) transition(target OrderStatus, now time.Time) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	o.Status = target
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// IsApprovalOverdue reports whether the cook missed the approval deadline
func (o *Order) IsApprovalOverdue(now time.Time) bool {
	return o.Status == StatusPendingApproval && now.After(o.ApprovalDeadline)
}

// Accept is the cook's approval of the order
func (o *Order) Accept(prepMinutes int, now time.Time) error {
	if o.Status != StatusPendingApproval {
		return shared.NewDomainError("INVALID_STATE", "Only orders pending approval can be accepted")
	}
	if o.IsApprovalOverdue(now) {
		return shared.NewDomainError("APPROVAL_EXPIRED", "The approval window for this order has passed")
	}
	if prepMinutes < MinPrepMinutes || prepMinutes > MaxPrepMinutes {
		return shared.NewDomainError("INVALID_PREP_TIME", "Preparation time must be between 1 and 240 minutes")
	}
	if err := o.transition(StatusAccepted, now); err != nil {
		return err
	}
	eta := now.Add(time.Duration(prepMinutes) * time.Minute)
	o.PrepMinutes = prepMinutes
	o.AcceptedAt = &now
	o.EstimatedReadyAt = &eta

	o.AddDomainEvent(NewOrderAcceptedEvent(o))
	return nil
}

// Reject is the cook's refusal of the order, or the system's after the
// approval window lapsed
func (o *Order) Reject(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Rejection reason is required")
	}
	if len(reason) > maxReasonLength {
		return shared.NewDomainError("INVALID_REASON", "Reason cannot exceed 500 characters")
	}
	if err := o.transition(StatusRejected, now); err != nil {
		return err
	}
	o.RejectionReason = reason
	o.RejectedAt = &now
	o.releasePayment()

	o.AddDomainEvent(NewOrderRejectedEvent(o))
	return nil
}

// StartPreparing marks that the cook began cooking
func (o *Order) StartPreparing(now time.Time) error {
	if err := o.transition(StatusPreparing, now); err != nil {
		return err
	}
	o.PreparingAt = &now
	o.AddDomainEvent(NewOrderPreparationStartedEvent(o))
	return nil
}

// MarkReady marks the food ready for pickup
func (o *Order) MarkReady(now time.Time) error {
	if err := o.transition(StatusReady, now); err != nil {
		return err
	}
	o.ReadyAt = &now
	o.AddDomainEvent(NewOrderReadyEvent(o))
	return nil
}

// AssignDriver hands a ready order to a driver
func (o *Order) AssignDriver(driverID uuid.UUID, now time.Time) error {
	if driverID == uuid.Nil {
		return shared.NewDomainError("INVALID_DRIVER", "Driver ID cannot be empty")
	}
	if driverID == o.ClientID || driverID == o.CookID {
		return shared.NewDomainError("INVALID_DRIVER", "Order parties cannot deliver their own order")
	}
	if err := o.transition(StatusAssigned, now); err != nil {
		return err
	}
	o.DriverID = &driverID
	o.AssignedAt = &now
	o.AddDomainEvent(NewDriverAssignedEvent(o))
	return nil
}

// ReleaseDriver returns an assigned order to the pool of ready orders
func (o *Order) ReleaseDriver(now time.Time) error {
	if o.Status != StatusAssigned || o.DriverID == nil {
		return shared.NewDomainError("INVALID_STATE", "Only assigned orders can be released")
	}
	released := *o.DriverID
	if err := o.transition(StatusReady, now); err != nil {
		return err
	}
	o.DriverID = nil
	o.AssignedAt = nil
	o.AddDomainEvent(NewDriverReleasedEvent(o, released))
	return nil
}

// PickUp records that the driver collected the food from the kitchen
func (o *Order) PickUp(now time.Time) error {
	if err := o.transition(StatusPickedUp, now); err != nil {
		return err
	}
	o.PickedUpAt = &now
	o.AddDomainEvent(NewOrderPickedUpEvent(o))
	return nil
}

// Deliver completes the handoff of a prepaid order
func (o *Order) Deliver(now time.Time) error {
	if o.PaymentMethod == PaymentCash {
		return shared.NewDomainError("CASH_COLLECTION_REQUIRED", "Cash orders are delivered by collecting payment")
	}
	if err := o.transition(StatusDelivered, now); err != nil {
		return err
	}
	o.DeliveredAt = &now
	o.AddDomainEvent(NewOrderDeliveredEvent(o))
	return nil
}

// Complete closes a delivered order
func (o *Order) Complete(now time.Time) error {
	if err := o.transition(StatusCompleted, now); err != nil {
		return err
	}
	o.CompletedAt = &now
	o.AddDomainEvent(NewOrderCompletedEvent(o))
	return nil
}

// Cancel aborts the order before pickup
func (o *Order) Cancel(by uuid.UUID, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Cancellation reason is required")
	}
	if len(reason) > maxReasonLength {
		return shared.NewDomainError("INVALID_REASON", "Reason cannot exceed 500 characters")
	}
	previous := o.Status
	previousDriver := o.DriverID
	if err := o.transition(StatusCancelled, now); err != nil {
		return err
	}
	o.CancelReason = reason
	o.CancelledAt = &now
	if by != uuid.Nil {
		o.CancelledBy = &by
	}
	o.DriverID = nil
	o.releasePayment()

	o.AddDomainEvent(NewOrderCancelledEvent(o, previous, previousDriver))
	return nil
}

// releasePayment moves the payment to its refund or void state on abort
func (o *Order) releasePayment() {
	switch o.PaymentStatus {
	case PaymentPaid:
		o.PaymentStatus = PaymentRefundPending
	case PaymentPending:
		o.PaymentStatus = PaymentVoided
	}
}

// IsParty reports whether the user is the client, the cook or the driver
func (o *Order) IsParty(userID uuid.UUID) bool {
	if userID == o.ClientID || userID == o.CookID {
		return true
	}
	return o.DriverID != nil && *o.DriverID == userID
}

// IsAssignedTo reports whether the driver holds the order
func (o *Order) IsAssignedTo(driverID uuid.UUID) bool {
	return o.DriverID != nil && *o.DriverID == driverID
}

// TotalMoney returns the payable total as Money
func (o *Order) TotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(o.Total, o.Currency)
	return m
}

// ItemCount returns the number of dishes ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// Parties returns the participant snapshot carried by events
func (o *Order) Parties() OrderParties {
	p := OrderParties{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		ClientID:    o.ClientID,
		CookID:      o.CookID,
	}
	if o.DriverID != nil {
		id := *o.DriverID
		p.DriverID = &id
	}
	return p
}
