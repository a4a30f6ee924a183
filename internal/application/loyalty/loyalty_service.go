package loyalty

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LoyaltyService keeps the points ledger. Methods ending in With run on the
// repository they are given so order placement can redeem points inside its
// own transaction.
type LoyaltyService struct {
	accounts loyalty.AccountRepository
	program  loyalty.Program
	logger   *zap.Logger
	metrics  *telemetry.BusinessMetrics
	now      func() time.Time
}

// NewLoyaltyService creates a new LoyaltyService
func NewLoyaltyService(accounts loyalty.AccountRepository, program loyalty.Program, logger *zap.Logger) *LoyaltyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoyaltyService{
		accounts: accounts,
		program:  program,
		logger:   logger,
		now:      time.Now,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *LoyaltyService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// Program returns the active earn and redeem rules
func (s *LoyaltyService) Program() loyalty.Program {
	return s.program
}

// Get returns the client's status. Clients without an account see an empty
// bronze account.
func (s *LoyaltyService) Get(ctx context.Context, clientID uuid.UUID) (*AccountResponse, error) {
	a, err := s.accounts.FindByClient(ctx, clientID)
	if errors.Is(err, shared.ErrNotFound) {
		a = loyalty.NewAccount(clientID, s.program)
		a.Version = 0
	} else if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(a, s.program)
	return &resp, nil
}

// Ledger returns the client's movements, newest first
func (s *LoyaltyService) Ledger(ctx context.Context, clientID uuid.UUID, page, pageSize int) ([]LedgerEntryResponse, int64, error) {
	f := shared.Filter{Page: page, PageSize: pageSize, OrderBy: "created_at", OrderDir: "desc"}.Normalize()
	entries, total, err := s.accounts.Ledger(ctx, clientID, f)
	if err != nil {
		return nil, 0, err
	}
	return ToLedgerEntryResponses(entries), total, nil
}

// Quote prices a redemption without spending anything
func (s *LoyaltyService) Quote(ctx context.Context, clientID uuid.UUID, req QuoteRequest) (*QuoteResponse, error) {
	balance := int64(0)
	a, err := s.accounts.FindByClient(ctx, clientID)
	if err == nil {
		balance = a.Balance
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	q := s.program.Quote(req.Points, balance, req.Subtotal)
	return &QuoteResponse{Requested: req.Points, Points: q.Points, Discount: q.Discount, Balance: balance}, nil
}

// QuoteWith prices a redemption the client can afford. Asking for more
// points than the balance fails with INSUFFICIENT_POINTS.
func (s *LoyaltyService) QuoteWith(ctx context.Context, accounts loyalty.AccountRepository, clientID uuid.UUID, points int64, subtotal decimal.Decimal) (loyalty.Quote, error) {
	if points <= 0 {
		return loyalty.Quote{Discount: decimal.Zero}, nil
	}
	a, err := accounts.FindByClient(ctx, clientID)
	if errors.Is(err, shared.ErrNotFound) {
		return loyalty.Quote{}, insufficientPoints(0, points)
	}
	if err != nil {
		return loyalty.Quote{}, err
	}
	if a.Balance < points {
		return loyalty.Quote{}, insufficientPoints(a.Balance, points)
	}
	return s.program.Quote(points, a.Balance, subtotal), nil
}

// RedeemWith debits a quoted redemption for the order
func (s *LoyaltyService) RedeemWith(ctx context.Context, accounts loyalty.AccountRepository, clientID, orderID uuid.UUID, quote loyalty.Quote) error {
	if quote.Points <= 0 {
		return nil
	}
	a, err := accounts.FindByClient(ctx, clientID)
	if err != nil {
		return err
	}
	entry, err := a.Redeem(orderID, quote.Points, quote.Discount, s.now())
	if err != nil {
		return err
	}
	if err := s.save(ctx, accounts, a, entry); err != nil {
		return err
	}
	s.metrics.RecordLoyaltyPoints(ctx, telemetry.PointsRedeemed, quote.Points)
	s.logger.Info("loyalty points redeemed",
		zap.String("client_id", clientID.String()),
		zap.String("order_id", orderID.String()),
		zap.Int64("points", quote.Points),
		zap.String("discount", quote.Discount.StringFixed(2)),
	)
	return nil
}

// Redeem quotes and debits points for an order in one step
func (s *LoyaltyService) Redeem(ctx context.Context, clientID, orderID uuid.UUID, points int64, subtotal decimal.Decimal) (loyalty.Quote, error) {
	q, err := s.QuoteWith(ctx, s.accounts, clientID, points, subtotal)
	if err != nil {
		return loyalty.Quote{}, err
	}
	if err := s.RedeemWith(ctx, s.accounts, clientID, orderID, q); err != nil {
		return loyalty.Quote{}, err
	}
	return q, nil
}

// Reverse refunds the points redeemed on an order that was rejected or
// cancelled. It runs at most once per order and returns the refunded points.
func (s *LoyaltyService) Reverse(ctx context.Context, clientID, orderID uuid.UUID, reason string) (int64, error) {
	redeemed, err := s.accounts.FindOrderEntry(ctx, clientID, orderID, loyalty.EntryRedeem)
	if errors.Is(err, shared.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if _, err := s.accounts.FindOrderEntry(ctx, clientID, orderID, loyalty.EntryReversal); err == nil {
		return 0, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return 0, err
	}

	a, err := s.accounts.FindByClient(ctx, clientID)
	if err != nil {
		return 0, err
	}
	points := -redeemed.Points
	entry, err := a.Reverse(orderID, points, reason, s.now())
	if err != nil {
		return 0, err
	}
	if err := s.save(ctx, s.accounts, a, entry); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return 0, nil
		}
		return 0, err
	}
	s.metrics.RecordLoyaltyPoints(ctx, telemetry.PointsReversed, points)
	s.logger.Info("loyalty redemption reversed",
		zap.String("client_id", clientID.String()),
		zap.String("order_id", orderID.String()),
		zap.Int64("points", points),
	)
	return points, nil
}

// Earn credits a completed order. A second call for the same order is a no-op.
func (s *LoyaltyService) Earn(ctx context.Context, clientID, orderID uuid.UUID, total decimal.Decimal) (int64, error) {
	if _, err := s.accounts.FindOrderEntry(ctx, clientID, orderID, loyalty.EntryEarn); err == nil {
		return 0, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return 0, err
	}

	a, err := s.loadOrOpen(ctx, clientID)
	if err != nil {
		return 0, err
	}
	entry := a.Earn(s.program, orderID, total, s.now())
	if err := s.save(ctx, s.accounts, a, entry); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return 0, nil
		}
		return 0, err
	}
	s.metrics.RecordLoyaltyPoints(ctx, telemetry.PointsEarned, entry.Points)
	s.logger.Info("loyalty points earned",
		zap.String("client_id", clientID.String()),
		zap.String("order_id", orderID.String()),
		zap.Int64("points", entry.Points),
		zap.String("tier", string(a.Tier)),
	)
	return entry.Points, nil
}

// Adjust applies an admin correction
func (s *LoyaltyService) Adjust(ctx context.Context, actor account.Actor, clientID uuid.UUID, req AdjustRequest) (*AccountResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	a, err := s.loadOrOpen(ctx, clientID)
	if err != nil {
		return nil, err
	}
	entry, err := a.Adjust(s.program, req.Points, req.Reason, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, s.accounts, a, entry); err != nil {
		return nil, err
	}
	s.logger.Warn("loyalty balance adjusted",
		zap.String("client_id", clientID.String()),
		zap.String("admin_id", actor.ID.String()),
		zap.Int64("points", req.Points),
		zap.String("reason", req.Reason),
	)
	resp := ToAccountResponse(a, s.program)
	return &resp, nil
}

func (s *LoyaltyService) loadOrOpen(ctx context.Context, clientID uuid.UUID) (*loyalty.Account, error) {
	a, err := s.accounts.FindByClient(ctx, clientID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	a = loyalty.NewAccount(clientID, s.program)
	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.accounts.FindByClient(ctx, clientID)
		}
		return nil, err
	}
	return a, nil
}

func (s *LoyaltyService) save(ctx context.Context, accounts loyalty.AccountRepository, a *loyalty.Account, entry *loyalty.LedgerEntry) error {
	if err := accounts.SaveWithEntries(ctx, a, []*loyalty.LedgerEntry{entry}, a.GetDomainEvents()); err != nil {
		return err
	}
	a.ClearDomainEvents()
	return nil
}

func insufficientPoints(balance, requested int64) error {
	return shared.NewDomainError("INSUFFICIENT_POINTS",
		fmt.Sprintf("Balance of %d points is below the requested %d", balance, requested))
}
