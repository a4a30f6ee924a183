package loyalty

import (
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/shopspring/decimal"
)

// QuoteRequest prices a redemption before checkout
type QuoteRequest struct {
	Points   int64           `json:"points" binding:"required,min=1"`
	Subtotal decimal.Decimal `json:"subtotal" binding:"money"`
}

// AdjustRequest is an admin correction of a client's balance
type AdjustRequest struct {
	Points int64  `json:"points" binding:"required"`
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// AccountResponse is the client's loyalty status
type AccountResponse struct {
	ClientID       uuid.UUID       `json:"client_id"`
	Balance        int64           `json:"balance"`
	LifetimeEarned int64           `json:"lifetime_earned"`
	Tier           loyalty.Tier    `json:"tier"`
	Multiplier     decimal.Decimal `json:"multiplier"`
	NextTier       *loyalty.Tier   `json:"next_tier,omitempty"`
	PointsToNext   int64           `json:"points_to_next_tier,omitempty"`
	Version        int             `json:"version"`
}

// LedgerEntryResponse is one balance movement
type LedgerEntryResponse struct {
	ID           uuid.UUID         `json:"id"`
	Type         loyalty.EntryType `json:"type"`
	Points       int64             `json:"points"`
	BalanceAfter int64             `json:"balance_after"`
	OrderID      *uuid.UUID        `json:"order_id,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// QuoteResponse is a priced redemption
type QuoteResponse struct {
	Requested int64           `json:"requested"`
	Points    int64           `json:"points"`
	Discount  decimal.Decimal `json:"discount"`
	Balance   int64           `json:"balance"`
}

// ToAccountResponse converts an account using the program's tier table
func ToAccountResponse(a *loyalty.Account, program loyalty.Program) AccountResponse {
	resp := AccountResponse{
		ClientID:       a.ClientID,
		Balance:        a.Balance,
		LifetimeEarned: a.LifetimeEarned,
		Tier:           a.Tier,
		Multiplier:     program.RuleFor(a.Tier).Multiplier,
		Version:        a.Version,
	}
	if next, remaining, ok := a.NextTier(program); ok {
		tier := next.Tier
		resp.NextTier = &tier
		resp.PointsToNext = remaining
	}
	return resp
}

// ToLedgerEntryResponses converts ledger entries
func ToLedgerEntryResponses(entries []loyalty.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntryResponse{
			ID:           e.ID,
			Type:         e.Type,
			Points:       e.Points,
			BalanceAfter: e.BalanceAfter,
			OrderID:      e.OrderID,
			Reason:       e.Reason,
			CreatedAt:    e.CreatedAt,
		}
	}
	return out
}
