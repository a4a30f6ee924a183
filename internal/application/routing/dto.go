package routing

import (
	"time"

	"github.com/homechef/backend/internal/domain/routing"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
)

// RouteResponse is a driver's planned route
type RouteResponse struct {
	Origin          *valueobject.Point    `json:"origin,omitempty"`
	Stops           []routing.PlannedStop `json:"stops"`
	TotalKm         float64               `json:"total_km"`
	DurationMinutes float64               `json:"duration_minutes"`
	Iterations      int                   `json:"iterations"`
	PlannedAt       time.Time             `json:"planned_at"`
}

// ToRouteResponse converts a plan to its response
func ToRouteResponse(plan *routing.Plan, plannedAt time.Time) *RouteResponse {
	origin := plan.Origin
	return &RouteResponse{
		Origin:          &origin,
		Stops:           plan.Stops,
		TotalKm:         plan.TotalKm,
		DurationMinutes: plan.Duration.Minutes(),
		Iterations:      plan.Iterations,
		PlannedAt:       plannedAt,
	}
}
