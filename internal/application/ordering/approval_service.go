package ordering

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReasonApprovalTimeout is recorded on orders the cook never answered
const ReasonApprovalTimeout = "APPROVAL_TIMEOUT"

// OrderApprovalService is the cook's gate on new orders and the kitchen side
// of the lifecycle
type OrderApprovalService struct {
	orders   ordering.OrderRepository
	accounts account.AccountRepository
	config   Config
	logger   *zap.Logger
	metrics  *telemetry.BusinessMetrics
	now      func() time.Time
}

// NewOrderApprovalService creates a new OrderApprovalService
func NewOrderApprovalService(orders ordering.OrderRepository, accounts account.AccountRepository, config Config, logger *zap.Logger) *OrderApprovalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderApprovalService{
		orders:   orders,
		accounts: accounts,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *OrderApprovalService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// ListPending returns the cook's orders awaiting approval, oldest first
func (s *OrderApprovalService) ListPending(ctx context.Context, actor account.Actor) ([]OrderResponse, error) {
	if !actor.IsCook() {
		return nil, shared.ErrForbidden
	}
	orders, err := s.orders.FindPendingApproval(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// Accept approves the order. Without an explicit preparation time the
// kitchen default is used.
func (s *OrderApprovalService) Accept(ctx context.Context, actor account.Actor, id uuid.UUID, req AcceptRequest) (*OrderResponse, error) {
	cook, err := s.activeCook(ctx, actor)
	if err != nil {
		return nil, err
	}
	o, err := s.cookOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	var prep int
	if cook.Cook != nil {
		prep = cook.Cook.DefaultPrepMinutes
	}
	if req.PrepMinutes != nil {
		prep = *req.PrepMinutes
	}
	if err := o.Accept(prep, s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, o, "order accepted")
}

// Reject declines the order. Redeemed points are returned by the loyalty
// handler of the rejection event.
func (s *OrderApprovalService) Reject(ctx context.Context, actor account.Actor, id uuid.UUID, reason string) (*OrderResponse, error) {
	o, err := s.cookOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := o.Reject(reason, s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, o, "order rejected")
}

// StartPreparing records that cooking began
func (s *OrderApprovalService) StartPreparing(ctx context.Context, actor account.Actor, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.cookOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := o.StartPreparing(s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, o, "order preparation started")
}

// MarkReady releases the order to drivers
func (s *OrderApprovalService) MarkReady(ctx context.Context, actor account.Actor, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.cookOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := o.MarkReady(s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, o, "order ready")
}

// ExpireOverdue rejects every order whose approval window has passed and
// returns how many were rejected. Orders changed concurrently are skipped and
// picked up by the next run if still overdue.
func (s *OrderApprovalService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	orders, err := s.orders.FindOverdueApprovals(ctx, now, s.config.BatchSize)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range orders {
		o := &orders[i]
		if !o.IsApprovalOverdue(now) {
			continue
		}
		if err := o.Reject(ReasonApprovalTimeout, now); err != nil {
			s.logger.Warn("failed to expire order", zap.String("order_id", o.ID.String()), zap.Error(err))
			continue
		}
		if err := persist(ctx, s.orders, s.metrics, o); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		s.logger.Info("expired overdue order approvals", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *OrderApprovalService) activeCook(ctx context.Context, actor account.Actor) (*account.Account, error) {
	if !actor.IsCook() {
		return nil, shared.ErrForbidden
	}
	cook, err := s.accounts.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !cook.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Suspended cooks cannot accept orders")
	}
	return cook, nil
}

func (s *OrderApprovalService) cookOrder(ctx context.Context, actor account.Actor, id uuid.UUID) (*ordering.Order, error) {
	if !actor.IsCook() {
		return nil, shared.ErrForbidden
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CookID != actor.ID {
		return nil, shared.ErrForbidden
	}
	return o, nil
}

func (s *OrderApprovalService) save(ctx context.Context, o *ordering.Order, msg string) (*OrderResponse, error) {
	if err := persist(ctx, s.orders, s.metrics, o); err != nil {
		return nil, err
	}
	s.logger.Info(msg,
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("status", string(o.Status)),
	)
	resp := ToOrderResponse(o)
	return &resp, nil
}
