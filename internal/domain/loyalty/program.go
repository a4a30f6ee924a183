// Package loyalty implements the client points ledger. Points are earned on
// completed orders, redeemed as order discounts and never go negative. The
// tier is derived from lifetime earned points, so spending points never
// demotes a client.
package loyalty

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Tier is a reward bracket
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// TierRule assigns a tier from a lifetime points threshold
type TierRule struct {
	Tier       Tier
	Threshold  int64
	Multiplier decimal.Decimal
}

// Program holds the earn and redeem parameters
type Program struct {
	// PointsPerUnit is earned per currency unit of the order total
	PointsPerUnit decimal.Decimal
	// PointsPerUnitRedeemed is spent per currency unit of discount
	PointsPerUnitRedeemed int64
	// MaxRedeemRatio caps the discount as a fraction of the subtotal
	MaxRedeemRatio decimal.Decimal
	// Tiers sorted by ascending threshold; the first must start at 0
	Tiers []TierRule
}

// DefaultProgram returns the standard marketplace program
func DefaultProgram() Program {
	return Program{
		PointsPerUnit:         decimal.NewFromInt(10),
		PointsPerUnitRedeemed: 100,
		MaxRedeemRatio:        decimal.RequireFromString("0.5"),
		Tiers: []TierRule{
			{Tier: TierBronze, Threshold: 0, Multiplier: decimal.NewFromInt(1)},
			{Tier: TierSilver, Threshold: 500, Multiplier: decimal.RequireFromString("1.25")},
			{Tier: TierGold, Threshold: 2000, Multiplier: decimal.RequireFromString("1.5")},
			{Tier: TierPlatinum, Threshold: 5000, Multiplier: decimal.NewFromInt(2)},
		},
	}
}

// Validate checks that the program is internally consistent
func (p Program) Validate() error {
	if !p.PointsPerUnit.IsPositive() {
		return fmt.Errorf("points per unit must be positive")
	}
	if p.PointsPerUnitRedeemed <= 0 {
		return fmt.Errorf("points per redeemed unit must be positive")
	}
	if !p.MaxRedeemRatio.IsPositive() || p.MaxRedeemRatio.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("max redeem ratio must be in (0, 1]")
	}
	if len(p.Tiers) == 0 {
		return fmt.Errorf("at least one tier is required")
	}
	if p.Tiers[0].Threshold != 0 {
		return fmt.Errorf("lowest tier must start at 0 points")
	}
	for i := 1; i < len(p.Tiers); i++ {
		if p.Tiers[i].Threshold <= p.Tiers[i-1].Threshold {
			return fmt.Errorf("tier thresholds must be strictly ascending")
		}
	}
	for _, t := range p.Tiers {
		if !t.Multiplier.IsPositive() {
			return fmt.Errorf("tier %s multiplier must be positive", t.Tier)
		}
	}
	return nil
}

// TierFor returns the highest tier whose threshold the lifetime points reach
func (p Program) TierFor(lifetime int64) TierRule {
	idx := sort.Search(len(p.Tiers), func(i int) bool {
		return p.Tiers[i].Threshold > lifetime
	})
	if idx == 0 {
		return p.Tiers[0]
	}
	return p.Tiers[idx-1]
}

// RuleFor returns the rule for a tier, defaulting to the lowest tier
func (p Program) RuleFor(tier Tier) TierRule {
	for _, rule := range p.Tiers {
		if rule.Tier == tier {
			return rule
		}
	}
	return p.Tiers[0]
}

// EarnPoints computes floor(total * pointsPerUnit * tierMultiplier)
func (p Program) EarnPoints(total decimal.Decimal, tier Tier) int64 {
	if !total.IsPositive() {
		return 0
	}
	points := total.Mul(p.PointsPerUnit).Mul(p.RuleFor(tier).Multiplier).Floor()
	return points.IntPart()
}

// Quote is a priced redemption
type Quote struct {
	Points   int64           `json:"points"`
	Discount decimal.Decimal `json:"discount"`
}

// Quote prices a redemption of up to requested points against the subtotal.
// The discount is capped at MaxRedeemRatio of the subtotal and at the
// available balance; the points are reduced to exactly cover the discount,
// whole cents only.
func (p Program) Quote(requested, balance int64, subtotal decimal.Decimal) Quote {
	if requested <= 0 || balance <= 0 || !subtotal.IsPositive() {
		return Quote{Discount: decimal.Zero}
	}
	if requested > balance {
		requested = balance
	}
	perUnit := decimal.NewFromInt(p.PointsPerUnitRedeemed)
	maxDiscount := subtotal.Mul(p.MaxRedeemRatio).RoundFloor(2)

	discount := decimal.NewFromInt(requested).Div(perUnit).RoundFloor(2)
	if discount.GreaterThan(maxDiscount) {
		discount = maxDiscount
	}
	points := discount.Mul(perUnit).Ceil().IntPart()
	if points > requested {
		points = requested
	}
	if points == 0 {
		return Quote{Discount: decimal.Zero}
	}
	return Quote{Points: points, Discount: discount}
}
