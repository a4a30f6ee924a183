package ordering

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CashOrderService handles cash-on-delivery: placement with limits, the
// doorstep handoff and the driver's settlement with the platform
type CashOrderService struct {
	orders *OrderService
}

// NewCashOrderService creates a CashOrderService sharing the order service's
// repositories and configuration
func NewCashOrderService(orders *OrderService) *CashOrderService {
	return &CashOrderService{orders: orders}
}

// PlaceCashOrder places a cash order and returns the handoff code. The code
// is shown to the client once; only its hash is stored.
func (s *CashOrderService) PlaceCashOrder(ctx context.Context, actor account.Actor, req PlaceCashOrderRequest) (*CashOrderResponse, error) {
	cfg := s.orders.config
	var code string
	o, err := s.orders.place(ctx, actor, placement{
		items:        req.Items,
		address:      req.Address,
		method:       ordering.PaymentCash,
		redeemPoints: req.RedeemPoints,
		notes:        req.Notes,
		prepare: func(ctx context.Context, repos TransactionalRepositories, o *ordering.Order) error {
			if o.Total.GreaterThan(cfg.MaxCashOrderAmount) {
				return shared.NewDomainError("CASH_LIMIT_EXCEEDED",
					fmt.Sprintf("Cash orders are limited to %s %s", cfg.MaxCashOrderAmount.StringFixed(2), cfg.Currency))
			}
			// Concurrent placements by the same client queue on this lock
			if _, err := repos.Accounts().FindByIDForUpdate(ctx, o.ClientID); err != nil {
				return err
			}
			open, err := repos.Orders().CountOpenCashOrders(ctx, o.ClientID)
			if err != nil {
				return err
			}
			if open >= cfg.MaxOpenCashOrders {
				return shared.NewDomainError("CASH_ORDER_LIMIT",
					fmt.Sprintf("At most %d cash orders may be open at once", cfg.MaxOpenCashOrders))
			}
			code, err = ordering.GenerateHandoffCode()
			if err != nil {
				return err
			}
			return o.SetHandoffCode(code)
		},
	})
	if err != nil {
		return nil, err
	}
	return &CashOrderResponse{Order: ToOrderResponse(o), HandoffCode: code}, nil
}

// CollectCash delivers a picked up cash order against the client's code and
// returns the change due. Wrong codes are counted on the order and lock
// collection for a while once ordering.MaxHandoffAttempts is reached.
func (s *CashOrderService) CollectCash(ctx context.Context, actor account.Actor, id uuid.UUID, req CollectCashRequest) (*CollectCashResponse, error) {
	if !actor.IsDriver() {
		return nil, shared.ErrForbidden
	}
	o, err := s.orders.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsAssignedTo(actor.ID) {
		return nil, shared.NewDomainError("NOT_ASSIGNED", "Order is not assigned to you")
	}
	attempts := o.HandoffAttempts
	change, err := o.CollectCash(req.Code, req.Tendered, s.orders.now())
	if err != nil {
		if o.HandoffAttempts != attempts {
			if perr := persist(ctx, s.orders.orders, s.orders.metrics, o); perr != nil {
				return nil, perr
			}
			s.orders.logger.Warn("handoff code rejected",
				zap.String("order_id", o.ID.String()),
				zap.String("driver_id", actor.ID.String()),
				zap.Int("attempts", o.HandoffAttempts),
				zap.Bool("locked", o.HandoffLockedUntil != nil),
			)
		}
		return nil, err
	}
	if err := persist(ctx, s.orders.orders, s.orders.metrics, o); err != nil {
		return nil, err
	}
	s.orders.logger.Info("cash collected",
		zap.String("order_id", o.ID.String()),
		zap.String("driver_id", actor.ID.String()),
		zap.String("total", o.Total.StringFixed(2)),
		zap.String("change", change.StringFixed(2)),
	)
	return &CollectCashResponse{Order: ToOrderResponse(o), Change: change}, nil
}

// DriverCashBalance returns the collected cash the driver has not yet
// remitted. Drivers see their own balance, admins any driver's.
func (s *CashOrderService) DriverCashBalance(ctx context.Context, actor account.Actor, driverID uuid.UUID) (*CashBalanceResponse, error) {
	if !actor.IsAdmin() && !(actor.IsDriver() && actor.ID == driverID) {
		return nil, shared.ErrForbidden
	}
	orders, err := s.orders.orders.FindCollectedCashByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return &CashBalanceResponse{
		DriverID: driverID,
		Amount:   sumTotals(orders),
		Currency: s.orders.config.Currency,
		Orders:   len(orders),
	}, nil
}

// SettleDriverCash marks every collected cash order of the driver as settled
// in one transaction and returns the settled total
func (s *CashOrderService) SettleDriverCash(ctx context.Context, actor account.Actor, driverID uuid.UUID) (*CashBalanceResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	now := s.orders.now()
	var settled []ordering.Order
	err := s.orders.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		orders, err := repos.Orders().FindCollectedCashByDriver(ctx, driverID)
		if err != nil {
			return err
		}
		for i := range orders {
			o := &orders[i]
			if err := o.SettleCash(now); err != nil {
				return err
			}
			if err := repos.Orders().SaveWithLockAndEvents(ctx, o, o.GetDomainEvents()); err != nil {
				return err
			}
		}
		settled = orders
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := range settled {
		settled[i].ClearDomainEvents()
	}

	total := sumTotals(settled)
	s.orders.logger.Info("driver cash settled",
		zap.String("driver_id", driverID.String()),
		zap.String("by", actor.ID.String()),
		zap.Int("orders", len(settled)),
		zap.String("amount", total.StringFixed(2)),
	)
	return &CashBalanceResponse{
		DriverID: driverID,
		Amount:   total,
		Currency: s.orders.config.Currency,
		Orders:   len(settled),
	}, nil
}

func sumTotals(orders []ordering.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	return total.Round(2)
}
