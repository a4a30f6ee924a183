package loyalty

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeLoyaltyAccount = "LoyaltyAccount"

	// MaxReasonLength is the longest ledger reason, in characters
	MaxReasonLength = 500
)

// EntryType classifies ledger movements
type EntryType string

const (
	EntryEarn     EntryType = "EARN"
	EntryRedeem   EntryType = "REDEEM"
	EntryReversal EntryType = "REVERSAL"
	EntryAdjust   EntryType = "ADJUST"
)

// LedgerEntry is an immutable balance movement. Points are signed: EARN and
// REVERSAL are positive, REDEEM negative, ADJUST either.
type LedgerEntry struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	ClientID     uuid.UUID
	Type         EntryType
	Points       int64
	BalanceAfter int64
	OrderID      *uuid.UUID
	Reason       string
	CreatedBy    *uuid.UUID
	CreatedAt    time.Time
}

// Account is a client's points balance
type Account struct {
	shared.BaseAggregateRoot
	ClientID       uuid.UUID
	Balance        int64
	LifetimeEarned int64
	Tier           Tier
}

// NewAccount opens an empty account in the lowest tier
func NewAccount(clientID uuid.UUID, program Program) *Account {
	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		Tier:              program.Tiers[0].Tier,
	}
}

func (a *Account) record(t EntryType, points int64, orderID *uuid.UUID, reason string, now time.Time) *LedgerEntry {
	a.Balance += points
	a.UpdatedAt = now
	a.IncrementVersion()
	return &LedgerEntry{
		ID:           uuid.New(),
		AccountID:    a.ID,
		ClientID:     a.ClientID,
		Type:         t,
		Points:       points,
		BalanceAfter: a.Balance,
		OrderID:      orderID,
		Reason:       reason,
		CreatedAt:    now,
	}
}

// Earn credits points for a completed order at the current tier multiplier
// and promotes the tier when lifetime points cross a threshold. A zero-point
// earn still records an entry so the order is marked as processed.
func (a *Account) Earn(program Program, orderID uuid.UUID, total decimal.Decimal, now time.Time) *LedgerEntry {
	points := program.EarnPoints(total, a.Tier)
	entry := a.record(EntryEarn, points, &orderID, fmt.Sprintf("Order total %s", total.StringFixed(2)), now)
	a.LifetimeEarned += points
	if points > 0 {
		a.AddDomainEvent(NewPointsEarnedEvent(a, orderID, points))
	}
	a.refreshTier(program)
	return entry
}

// Redeem debits points spent as an order discount
func (a *Account) Redeem(orderID uuid.UUID, points int64, discount decimal.Decimal, now time.Time) (*LedgerEntry, error) {
	if points <= 0 {
		return nil, shared.NewDomainError("INVALID_POINTS", "Points to redeem must be positive")
	}
	if points > a.Balance {
		return nil, shared.NewDomainError("INSUFFICIENT_POINTS",
			fmt.Sprintf("Balance of %d points is below the requested %d", a.Balance, points))
	}
	entry := a.record(EntryRedeem, -points, &orderID, fmt.Sprintf("Discount %s", discount.StringFixed(2)), now)
	a.AddDomainEvent(NewPointsRedeemedEvent(a, orderID, points))
	return entry, nil
}

// Reverse returns points redeemed on an order that did not go through.
// Lifetime earned points and the tier are unaffected.
func (a *Account) Reverse(orderID uuid.UUID, points int64, reason string, now time.Time) (*LedgerEntry, error) {
	if points <= 0 {
		return nil, shared.NewDomainError("INVALID_POINTS", "Points to reverse must be positive")
	}
	return a.record(EntryReversal, points, &orderID, reason, now), nil
}

// Adjust applies a manual correction by an admin. Positive adjustments count
// towards the lifetime total.
func (a *Account) Adjust(program Program, points int64, reason string, by uuid.UUID, now time.Time) (*LedgerEntry, error) {
	reason = strings.TrimSpace(reason)
	if points == 0 {
		return nil, shared.NewDomainError("INVALID_POINTS", "Adjustment cannot be zero")
	}
	if reason == "" || utf8.RuneCountInString(reason) > MaxReasonLength {
		return nil, shared.NewDomainError("REASON_REQUIRED", "Adjustment reason must be 1-500 characters")
	}
	if a.Balance+points < 0 {
		return nil, shared.NewDomainError("INSUFFICIENT_POINTS", "Adjustment would make the balance negative")
	}
	entry := a.record(EntryAdjust, points, nil, reason, now)
	entry.CreatedBy = &by
	if points > 0 {
		a.LifetimeEarned += points
		a.refreshTier(program)
	}
	return entry, nil
}

// refreshTier only ever promotes; lifetime points never decrease
func (a *Account) refreshTier(program Program) {
	next := program.TierFor(a.LifetimeEarned)
	if next.Tier == a.Tier {
		return
	}
	if next.Threshold <= program.RuleFor(a.Tier).Threshold {
		return
	}
	previous := a.Tier
	a.Tier = next.Tier
	a.AddDomainEvent(NewTierChangedEvent(a, previous))
}

// NextTier returns the next tier and the lifetime points still needed, or
// false at the top tier
func (a *Account) NextTier(program Program) (TierRule, int64, bool) {
	current := program.RuleFor(a.Tier)
	for _, rule := range program.Tiers {
		if rule.Threshold > current.Threshold {
			return rule, rule.Threshold - a.LifetimeEarned, true
		}
	}
	return TierRule{}, 0, false
}
