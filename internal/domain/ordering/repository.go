package ordering

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderFilter narrows order listings. Nil fields are not filtered on.
type OrderFilter struct {
	shared.Filter
	ClientID      *uuid.UUID
	CookID        *uuid.UUID
	DriverID      *uuid.UUID
	Statuses      []OrderStatus
	PaymentMethod PaymentMethod
}

// OrderRepository defines persistence for orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	// FindPendingApproval returns a cook's orders awaiting approval, oldest first
	FindPendingApproval(ctx context.Context, cookID uuid.UUID) ([]Order, error)
	// FindOverdueApprovals returns orders pending approval past their deadline
	FindOverdueApprovals(ctx context.Context, now time.Time, limit int) ([]Order, error)
	// FindDeliveredBefore returns DELIVERED orders delivered before the cutoff
	FindDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]Order, error)
	// FindReadyUnassigned returns READY orders waiting for a driver
	FindReadyUnassigned(ctx context.Context, limit int) ([]Order, error)
	// FindReadyUnassignedNear is FindReadyUnassigned ranked by pickup
	// distance from the given point, so the limit keeps the nearest orders
	FindReadyUnassignedNear(ctx context.Context, from valueobject.Point, limit int) ([]Order, error)
	// FindActiveByDriver returns the driver's ASSIGNED and PICKED_UP orders
	FindActiveByDriver(ctx context.Context, driverID uuid.UUID) ([]Order, error)
	// FindCollectedCashByDriver returns cash orders collected but not yet settled
	FindCollectedCashByDriver(ctx context.Context, driverID uuid.UUID) ([]Order, error)

	CountActiveByDriver(ctx context.Context, driverID uuid.UUID) (int64, error)
	// CountOpenCashOrders counts a client's non-terminal cash orders
	CountOpenCashOrders(ctx context.Context, clientID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)
	// SumCompletedSince totals COMPLETED orders completed at or after since
	SumCompletedSince(ctx context.Context, since time.Time) (decimal.Decimal, int64, error)

	// GenerateOrderNumber returns the next ORD-YYYYMMDD-NNNNN number
	GenerateOrderNumber(ctx context.Context, now time.Time) (string, error)

	// CreateWithEvents inserts a new order and its events in one transaction
	CreateWithEvents(ctx context.Context, order *Order, events []shared.DomainEvent) error
	// SaveWithLockAndEvents updates with a version check and persists the
	// events to the outbox atomically
	SaveWithLockAndEvents(ctx context.Context, order *Order, events []shared.DomainEvent) error
}
