package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root
type OrderModel struct {
	AggregateModel
	OrderNumber string                 `gorm:"type:varchar(30);not null;uniqueIndex"`
	ClientID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	CookID      uuid.UUID              `gorm:"type:uuid;not null;index:idx_orders_cook_status,priority:1"`
	DriverID    *uuid.UUID             `gorm:"type:uuid;index:idx_orders_driver_status,priority:1"`
	Items       []OrderItemModel       `gorm:"foreignKey:OrderID;references:ID"`
	Status      ordering.OrderStatus   `gorm:"type:varchar(20);not null;index:idx_orders_cook_status,priority:2;index:idx_orders_driver_status,priority:2;index"`
	Currency    valueobject.Currency   `gorm:"type:varchar(3);not null"`
	Subtotal    decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	DeliveryFee decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	Discount    decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	Total       decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Redeemed    int64                  `gorm:"column:redeemed_points;not null;default:0"`
	Method      ordering.PaymentMethod `gorm:"column:payment_method;type:varchar(10);not null"`
	Payment     ordering.PaymentStatus `gorm:"column:payment_status;type:varchar(20);not null"`
	PaymentRef  string                 `gorm:"column:payment_reference;type:varchar(200)"`
	CashCode    string                 `gorm:"column:cash_code_hash;type:varchar(100)"`
	Tendered    decimal.Decimal        `gorm:"column:cash_tendered;type:decimal(18,2);not null;default:0"`
	Pickup      AddressColumns         `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff     AddressColumns         `gorm:"embedded;embeddedPrefix:dropoff_"`
	Notes       string                 `gorm:"type:varchar(500)"`

	HandoffAttempts    int `gorm:"not null;default:0"`
	HandoffLockedUntil *time.Time

	ApprovalDeadline time.Time `gorm:"not null;index"`
	PrepMinutes      int       `gorm:"not null;default:0"`
	EstimatedReadyAt *time.Time
	AcceptedAt       *time.Time
	RejectedAt       *time.Time
	PreparingAt      *time.Time
	ReadyAt          *time.Time
	AssignedAt       *time.Time
	PickedUpAt       *time.Time
	DeliveredAt      *time.Time `gorm:"index"`
	CompletedAt      *time.Time `gorm:"index"`
	CancelledAt      *time.Time
	SettledAt        *time.Time

	RejectionReason string     `gorm:"type:varchar(500)"`
	CancelReason    string     `gorm:"type:varchar(500)"`
	CancelledBy     *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *ordering.Order {
	o := &ordering.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		ClientID:          m.ClientID,
		CookID:            m.CookID,
		DriverID:          m.DriverID,
		Status:            m.Status,
		Currency:          m.Currency,
		Subtotal:          m.Subtotal,
		DeliveryFee:       m.DeliveryFee,
		Discount:          m.Discount,
		Total:             m.Total,
		RedeemedPoints:    m.Redeemed,
		PaymentMethod:     m.Method,
		PaymentStatus:     m.Payment,
		PaymentReference:  m.PaymentRef,
		CashCodeHash:      m.CashCode,
		CashTendered:      m.Tendered,
		HandoffAttempts:   m.HandoffAttempts,
		Pickup:            m.Pickup.ToDomain(),
		Dropoff:           m.Dropoff.ToDomain(),
		Notes:             m.Notes,
		ApprovalDeadline:  m.ApprovalDeadline,
		PrepMinutes:       m.PrepMinutes,
		EstimatedReadyAt:  m.EstimatedReadyAt,
		AcceptedAt:        m.AcceptedAt,
		RejectedAt:        m.RejectedAt,
		PreparingAt:       m.PreparingAt,
		ReadyAt:           m.ReadyAt,
		AssignedAt:        m.AssignedAt,
		PickedUpAt:        m.PickedUpAt,
		DeliveredAt:       m.DeliveredAt,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
		SettledAt:         m.SettledAt,
		RejectionReason:   m.RejectionReason,
		CancelReason:      m.CancelReason,
		CancelledBy:       m.CancelledBy,
		Items:             make([]ordering.OrderItem, len(m.Items)),
	}
	o.HandoffLockedUntil = m.HandoffLockedUntil
	for i, item := range m.Items {
		o.Items[i] = item.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *ordering.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.ClientID = o.ClientID
	m.CookID = o.CookID
	m.DriverID = o.DriverID
	m.Status = o.Status
	m.Currency = o.Currency
	m.Subtotal = o.Subtotal
	m.DeliveryFee = o.DeliveryFee
	m.Discount = o.Discount
	m.Total = o.Total
	m.Redeemed = o.RedeemedPoints
	m.Method = o.PaymentMethod
	m.Payment = o.PaymentStatus
	m.PaymentRef = o.PaymentReference
	m.CashCode = o.CashCodeHash
	m.Tendered = o.CashTendered
	m.HandoffAttempts = o.HandoffAttempts
	m.HandoffLockedUntil = o.HandoffLockedUntil
	m.Pickup = AddressColumnsFromDomain(o.Pickup)
	m.Dropoff = AddressColumnsFromDomain(o.Dropoff)
	m.Notes = o.Notes
	m.ApprovalDeadline = o.ApprovalDeadline
	m.PrepMinutes = o.PrepMinutes
	m.EstimatedReadyAt = o.EstimatedReadyAt
	m.AcceptedAt = o.AcceptedAt
	m.RejectedAt = o.RejectedAt
	m.PreparingAt = o.PreparingAt
	m.ReadyAt = o.ReadyAt
	m.AssignedAt = o.AssignedAt
	m.PickedUpAt = o.PickedUpAt
	m.DeliveredAt = o.DeliveredAt
	m.CompletedAt = o.CompletedAt
	m.CancelledAt = o.CancelledAt
	m.SettledAt = o.SettledAt
	m.RejectionReason = o.RejectionReason
	m.CancelReason = o.CancelReason
	m.CancelledBy = o.CancelledBy
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(&o.Items[i])
	}
}

// StateColumns are the columns a lifecycle transition may change. Items,
// parties and prices are fixed at placement.
func (m *OrderModel) StateColumns() map[string]any {
	return map[string]any{
		"driver_id":            m.DriverID,
		"status":               m.Status,
		"payment_status":       m.Payment,
		"cash_code_hash":       m.CashCode,
		"cash_tendered":        m.Tendered,
		"handoff_attempts":     m.HandoffAttempts,
		"handoff_locked_until": m.HandoffLockedUntil,
		"prep_minutes":         m.PrepMinutes,
		"estimated_ready_at":   m.EstimatedReadyAt,
		"accepted_at":          m.AcceptedAt,
		"rejected_at":          m.RejectedAt,
		"preparing_at":         m.PreparingAt,
		"ready_at":             m.ReadyAt,
		"assigned_at":          m.AssignedAt,
		"picked_up_at":         m.PickedUpAt,
		"delivered_at":         m.DeliveredAt,
		"completed_at":         m.CompletedAt,
		"cancelled_at":         m.CancelledAt,
		"settled_at":           m.SettledAt,
		"rejection_reason":     m.RejectionReason,
		"cancel_reason":        m.CancelReason,
		"cancelled_by":         m.CancelledBy,
		"version":              m.Version,
		"updated_at":           m.UpdatedAt,
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *ordering.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is a dish snapshot line of an order
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	DishID    uuid.UUID       `gorm:"type:uuid;not null"`
	DishName  string          `gorm:"type:varchar(200);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity  int             `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem
func (m *OrderItemModel) ToDomain() ordering.OrderItem {
	return ordering.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		DishID:    m.DishID,
		DishName:  m.DishName,
		UnitPrice: m.UnitPrice,
		Quantity:  m.Quantity,
		Amount:    m.Amount,
	}
}

// OrderItemModelFromDomain creates a new persistence model from a domain OrderItem
func OrderItemModelFromDomain(i *ordering.OrderItem) OrderItemModel {
	return OrderItemModel{
		ID:        i.ID,
		OrderID:   i.OrderID,
		DishID:    i.DishID,
		DishName:  i.DishName,
		UnitPrice: i.UnitPrice,
		Quantity:  i.Quantity,
		Amount:    i.Amount,
	}
}

// OrderSequenceModel hands out the per-day order number suffix
type OrderSequenceModel struct {
	Day       string `gorm:"type:varchar(8);primary_key"`
	LastValue int64  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderSequenceModel) TableName() string {
	return "order_sequences"
}
