package loyalty

import (
	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
)

const (
	EventTypePointsEarned       = "PointsEarned"
	EventTypePointsRedeemed     = "PointsRedeemed"
	EventTypeLoyaltyTierChanged = "LoyaltyTierChanged"
)

// PointsEarnedEvent is raised when a completed order credits points
type PointsEarnedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	OrderID  uuid.UUID `json:"order_id"`
	Points   int64     `json:"points"`
	Balance  int64     `json:"balance"`
}

func NewPointsEarnedEvent(a *Account, orderID uuid.UUID, points int64) *PointsEarnedEvent {
	return &PointsEarnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePointsEarned, AggregateTypeLoyaltyAccount, a.ID),
		ClientID:        a.ClientID,
		OrderID:         orderID,
		Points:          points,
		Balance:         a.Balance,
	}
}

// PointsRedeemedEvent is raised when points pay for part of an order
type PointsRedeemedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	OrderID  uuid.UUID `json:"order_id"`
	Points   int64     `json:"points"`
	Balance  int64     `json:"balance"`
}

func NewPointsRedeemedEvent(a *Account, orderID uuid.UUID, points int64) *PointsRedeemedEvent {
	return &PointsRedeemedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePointsRedeemed, AggregateTypeLoyaltyAccount, a.ID),
		ClientID:        a.ClientID,
		OrderID:         orderID,
		Points:          points,
		Balance:         a.Balance,
	}
}

// TierChangedEvent is raised on promotion to a higher tier
type TierChangedEvent struct {
	shared.BaseDomainEvent
	ClientID       uuid.UUID `json:"client_id"`
	PreviousTier   Tier      `json:"previous_tier"`
	NewTier        Tier      `json:"new_tier"`
	LifetimeEarned int64     `json:"lifetime_earned"`
}

func NewTierChangedEvent(a *Account, previous Tier) *TierChangedEvent {
	return &TierChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoyaltyTierChanged, AggregateTypeLoyaltyAccount, a.ID),
		ClientID:        a.ClientID,
		PreviousTier:    previous,
		NewTier:         a.Tier,
		LifetimeEarned:  a.LifetimeEarned,
	}
}
