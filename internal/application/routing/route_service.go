package routing

import (
	"context"
	"time"

	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/routing"
	"github.com/homechef/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Config holds the route planning parameters
type Config struct {
	AverageSpeedKmh float64
	MaxIterations   int
}

// DefaultConfig returns the default routing parameters
func DefaultConfig() Config {
	return Config{
		AverageSpeedKmh: routing.DefaultSpeedKmh,
		MaxIterations:   routing.DefaultMaxIterations,
	}
}

// RouteService plans the visiting order of a driver's active deliveries
type RouteService struct {
	orders    ordering.OrderRepository
	accounts  account.AccountRepository
	optimizer *routing.Optimizer
	logger    *zap.Logger
	now       func() time.Time
}

// NewRouteService creates a new RouteService
func NewRouteService(
	orders ordering.OrderRepository,
	accounts account.AccountRepository,
	config Config,
	logger *zap.Logger,
) (*RouteService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	optimizer, err := routing.NewOptimizer(config.AverageSpeedKmh, config.MaxIterations)
	if err != nil {
		return nil, err
	}
	return &RouteService{
		orders:    orders,
		accounts:  accounts,
		optimizer: optimizer,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// PlanRoute orders the calling driver's pickups and drop-offs starting from
// the last reported location. ASSIGNED orders contribute both stops,
// PICKED_UP orders only the drop-off.
func (s *RouteService) PlanRoute(ctx context.Context, actor account.Actor) (*RouteResponse, error) {
	if !actor.IsDriver() {
		return nil, shared.ErrForbidden
	}
	driver, err := s.accounts.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.FindActiveByDriver(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	stops := StopsFor(orders)
	now := s.now()
	if len(stops) == 0 {
		return &RouteResponse{Stops: []routing.PlannedStop{}, PlannedAt: now}, nil
	}
	if driver.Driver == nil || driver.Driver.LastLocation == nil {
		return nil, shared.NewDomainError("LOCATION_UNKNOWN", "Report your location before planning a route")
	}

	plan, err := s.optimizer.Optimize(*driver.Driver.LastLocation, stops, now)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("route planned",
		zap.String("driver_id", actor.ID.String()),
		zap.Int("stops", len(plan.Stops)),
		zap.Float64("total_km", plan.TotalKm),
		zap.Int("iterations", plan.Iterations),
	)
	return ToRouteResponse(plan, now), nil
}

// StopsFor expands active orders into route stops, keeping input order so
// ties resolve the same way on every call
func StopsFor(orders []ordering.Order) []routing.Stop {
	stops := make([]routing.Stop, 0, len(orders)*2)
	for i := range orders {
		o := &orders[i]
		switch o.Status {
		case ordering.StatusAssigned:
			stops = append(stops, routing.Stop{
				Kind:        routing.StopPickup,
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
				Location:    o.Pickup.Location,
				Address:     o.Pickup.String(),
			})
			fallthrough
		case ordering.StatusPickedUp:
			stops = append(stops, routing.Stop{
				Kind:        routing.StopDropoff,
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
				Location:    o.Dropoff.Location,
				Address:     o.Dropoff.String(),
			})
		}
	}
	return stops
}
