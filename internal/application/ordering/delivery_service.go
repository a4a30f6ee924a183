package ordering

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/homechef/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DeliveryService dispatches ready orders to drivers and tracks the delivery
type DeliveryService struct {
	tx       TransactionScope
	orders   ordering.OrderRepository
	accounts account.AccountRepository
	config   Config
	logger   *zap.Logger
	metrics  *telemetry.BusinessMetrics
	now      func() time.Time
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(
	tx TransactionScope,
	orders ordering.OrderRepository,
	accounts account.AccountRepository,
	config Config,
	logger *zap.Logger,
) *DeliveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryService{
		tx:       tx,
		orders:   orders,
		accounts: accounts,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *DeliveryService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// ListAvailable returns up to BatchSize READY orders without a driver. With a
// known driver location the nearest pickups are selected and sorted by
// distance; otherwise the longest waiting orders come first.
func (s *DeliveryService) ListAvailable(ctx context.Context, actor account.Actor) ([]AvailableOrderResponse, error) {
	if !actor.IsDriver() {
		return nil, shared.ErrForbidden
	}
	driver, err := s.accounts.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	var from *valueobject.Point
	if driver.Driver != nil {
		from = driver.Driver.LastLocation
	}

	var orders []ordering.Order
	if from == nil {
		orders, err = s.orders.FindReadyUnassigned(ctx, s.config.BatchSize)
	} else {
		orders, err = s.orders.FindReadyUnassignedNear(ctx, *from, s.config.BatchSize)
	}
	if err != nil {
		return nil, err
	}

	out := make([]AvailableOrderResponse, len(orders))
	for i := range orders {
		out[i] = AvailableOrderResponse{Order: ToOrderResponse(&orders[i])}
	}
	if from == nil {
		return out, nil
	}
	for i := range out {
		km := from.DistanceKm(orders[i].Pickup.Location)
		out[i].DistanceKm = &km
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DistanceKm < *out[j].DistanceKm
	})
	return out, nil
}

// Claim assigns a ready order to the calling driver. When two drivers race
// for the same order the second save fails with a concurrency conflict.
func (s *DeliveryService) Claim(ctx context.Context, actor account.Actor, id uuid.UUID) (*OrderResponse, error) {
	if !actor.IsDriver() {
		return nil, shared.ErrForbidden
	}
	return s.assign(ctx, id, actor.ID, actor.ID)
}

// Assign dispatches an order to a driver on an admin's behalf
func (s *DeliveryService) Assign(ctx context.Context, actor account.Actor, id, driverID uuid.UUID) (*OrderResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	return s.assign(ctx, id, driverID, actor.ID)
}

// assign runs under the driver's row lock, so two claims by the same driver
// cannot both pass the active delivery limit
func (s *DeliveryService) assign(ctx context.Context, id, driverID, by uuid.UUID) (*OrderResponse, error) {
	var o *ordering.Order
	err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		driver, err := repos.Accounts().FindByIDForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if driver.Role != account.RoleDriver {
			return shared.NewDomainError("NOT_A_DRIVER", "Orders can only be assigned to drivers")
		}
		if !driver.CanDeliver() {
			return shared.NewDomainError("DRIVER_UNAVAILABLE", "Driver must be active and on duty")
		}
		active, err := repos.Orders().CountActiveByDriver(ctx, driverID)
		if err != nil {
			return err
		}
		if active >= s.config.MaxActiveDeliveries {
			return shared.NewDomainError("MAX_ACTIVE_DELIVERIES",
				fmt.Sprintf("Driver already has %d active deliveries", active))
		}

		o, err = repos.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := o.AssignDriver(driverID, s.now()); err != nil {
			return err
		}
		return repos.Orders().SaveWithLockAndEvents(ctx, o, o.GetDomainEvents())
	})
	if err != nil {
		return nil, err
	}
	o.ClearDomainEvents()
	s.metrics.RecordOrderTransition(ctx, string(o.Status))
	s.logger.Info("driver assigned",
		zap.String("order_id", o.ID.String()),
		zap.String("driver_id", driverID.String()),
		zap.String("by", by.String()),
	)
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Release hands an assigned order back to the pool of ready orders
func (s *DeliveryService) Release(ctx context.Context, actor account.Actor, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.driverOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := o.ReleaseDriver(s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, o, "driver released order")
}

// PickUp records that the driver collected the food
func (s *DeliveryService) PickUp(ctx context.Context, actor account.Actor, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.driverOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := o.PickUp(s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, o, "order picked up")
}

// MarkDelivered completes the handoff of a card order. Cash orders are
// delivered through CashOrderService.CollectCash.
func (s *DeliveryService) MarkDelivered(ctx context.Context, actor account.Actor, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.driverOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := o.Deliver(s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, o, "order delivered")
}

// AutoCompleteDelivered completes orders delivered longer than the
// configured delay ago and returns how many were completed
func (s *DeliveryService) AutoCompleteDelivered(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.config.AutoCompleteAfter)
	orders, err := s.orders.FindDeliveredBefore(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		return 0, err
	}
	completed := 0
	for i := range orders {
		o := &orders[i]
		if err := o.Complete(now); err != nil {
			s.logger.Warn("failed to auto-complete order", zap.String("order_id", o.ID.String()), zap.Error(err))
			continue
		}
		if err := persist(ctx, s.orders, s.metrics, o); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			return completed, err
		}
		completed++
	}
	if completed > 0 {
		s.logger.Info("auto-completed delivered orders", zap.Int("count", completed))
	}
	return completed, nil
}

func (s *DeliveryService) driverOrder(ctx context.Context, actor account.Actor, id uuid.UUID) (*ordering.Order, error) {
	if !actor.IsDriver() {
		return nil, shared.ErrForbidden
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsAssignedTo(actor.ID) {
		return nil, shared.NewDomainError("NOT_ASSIGNED", "Order is not assigned to you")
	}
	return o, nil
}

func (s *DeliveryService) save(ctx context.Context, o *ordering.Order, msg string) (*OrderResponse, error) {
	if err := persist(ctx, s.orders, s.metrics, o); err != nil {
		return nil, err
	}
	s.logger.Info(msg,
		zap.String("order_id", o.ID.String()),
		zap.String("status", string(o.Status)),
	)
	resp := ToOrderResponse(o)
	return &resp, nil
}
