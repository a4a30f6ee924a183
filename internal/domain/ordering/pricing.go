package ordering

import (
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DeliveryFeePolicy prices a delivery from the straight-line distance
// between kitchen and drop-off
type DeliveryFeePolicy struct {
	Base  decimal.Decimal
	PerKm decimal.Decimal
}

// Calculate returns base + perKm * distance, rounded to cents
func (p DeliveryFeePolicy) Calculate(from, to valueobject.Point) decimal.Decimal {
	km := decimal.NewFromFloat(from.DistanceKm(to))
	return p.Base.Add(p.PerKm.Mul(km)).Round(2)
}
