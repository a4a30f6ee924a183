package ordering

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Config holds the order lifecycle rules
type Config struct {
	Currency valueobject.Currency
	// ApprovalTimeout is how long a cook has to accept a new order
	ApprovalTimeout time.Duration
	// AutoCompleteAfter closes delivered orders the client never confirmed
	AutoCompleteAfter time.Duration
	// MaxCashOrderAmount caps the total of a cash-on-delivery order
	MaxCashOrderAmount decimal.Decimal
	// MaxOpenCashOrders caps a client's non-terminal cash orders
	MaxOpenCashOrders int64
	// MaxActiveDeliveries caps a driver's ASSIGNED and PICKED_UP orders
	MaxActiveDeliveries int64
	DeliveryFee         ordering.DeliveryFeePolicy
	// BatchSize bounds the orders handled by one scheduled run
	BatchSize int
}

// DefaultConfig returns the default order rules
func DefaultConfig() Config {
	return Config{
		Currency:            valueobject.DefaultCurrency,
		ApprovalTimeout:     15 * time.Minute,
		AutoCompleteAfter:   2 * time.Hour,
		MaxCashOrderAmount:  decimal.NewFromInt(150),
		MaxOpenCashOrders:   2,
		MaxActiveDeliveries: 3,
		DeliveryFee: ordering.DeliveryFeePolicy{
			Base:  decimal.RequireFromString("2.50"),
			PerKm: decimal.RequireFromString("0.80"),
		},
		BatchSize: 100,
	}
}

// LoyaltyRedeemer applies point redemptions inside the order's transaction
type LoyaltyRedeemer interface {
	QuoteWith(ctx context.Context, accounts loyalty.AccountRepository, clientID uuid.UUID, points int64, subtotal decimal.Decimal) (loyalty.Quote, error)
	RedeemWith(ctx context.Context, accounts loyalty.AccountRepository, clientID, orderID uuid.UUID, quote loyalty.Quote) error
}
