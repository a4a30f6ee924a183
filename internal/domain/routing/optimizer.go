// Package routing sequences a driver's pickups and drop-offs. The heuristic
// builds a nearest-neighbour tour that never visits an order's drop-off
// before its pickup, then improves it with 2-opt segment reversals that keep
// that precedence.
package routing

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
)

const (
	DefaultSpeedKmh      = 25.0
	DefaultMaxIterations = 50

	epsilon = 1e-9
)

// StopKind distinguishes kitchens from customer doors
type StopKind string

const (
	StopPickup  StopKind = "PICKUP"
	StopDropoff StopKind = "DROPOFF"
)

// Stop is a place the driver must visit for an order
type Stop struct {
	Kind        StopKind          `json:"kind"`
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Location    valueobject.Point `json:"location"`
	Address     string            `json:"address"`
}

// PlannedStop is a stop with its position in the route
type PlannedStop struct {
	Stop
	Sequence     int       `json:"sequence"`
	LegKm        float64   `json:"leg_km"`
	CumulativeKm float64   `json:"cumulative_km"`
	ETA          time.Time `json:"eta"`
}

// Plan is an ordered route starting at Origin
type Plan struct {
	Origin     valueobject.Point `json:"origin"`
	Stops      []PlannedStop     `json:"stops"`
	TotalKm    float64           `json:"total_km"`
	Duration   time.Duration     `json:"duration"`
	Iterations int               `json:"iterations"`
}

// Optimizer plans routes at a constant average speed
type Optimizer struct {
	speedKmh      float64
	maxIterations int
}

// NewOptimizer validates the parameters
func NewOptimizer(speedKmh float64, maxIterations int) (*Optimizer, error) {
	if speedKmh <= 0 || math.IsNaN(speedKmh) || math.IsInf(speedKmh, 0) {
		return nil, fmt.Errorf("average speed must be positive, got %v", speedKmh)
	}
	if maxIterations < 0 {
		return nil, fmt.Errorf("max iterations cannot be negative, got %d", maxIterations)
	}
	return &Optimizer{speedKmh: speedKmh, maxIterations: maxIterations}, nil
}

// problem is the indexed form of a request. Node 0 is the origin and node
// i+1 is stops[i].
type problem struct {
	stops    []Stop
	dist     [][]float64
	pickupOf []int
}

func newProblem(origin valueobject.Point, stops []Stop) (*problem, error) {
	n := len(stops)
	p := &problem{stops: stops, pickupOf: make([]int, n)}

	pickups := make(map[uuid.UUID]int, n)
	dropoffs := make(map[uuid.UUID]bool, n)
	for i, s := range stops {
		switch s.Kind {
		case StopPickup:
			if _, dup := pickups[s.OrderID]; dup {
				return nil, shared.NewDomainError("DUPLICATE_STOP", fmt.Sprintf("Order %s has two pickups", s.OrderID))
			}
			pickups[s.OrderID] = i
		case StopDropoff:
			if dropoffs[s.OrderID] {
				return nil, shared.NewDomainError("DUPLICATE_STOP", fmt.Sprintf("Order %s has two drop-offs", s.OrderID))
			}
			dropoffs[s.OrderID] = true
		default:
			return nil, shared.NewDomainError("INVALID_STOP", fmt.Sprintf("Unknown stop kind %q", s.Kind))
		}
	}
	for i, s := range stops {
		p.pickupOf[i] = -1
		if s.Kind == StopDropoff {
			if idx, ok := pickups[s.OrderID]; ok {
				p.pickupOf[i] = idx
			}
		}
	}

	nodes := make([]valueobject.Point, n+1)
	nodes[0] = origin
	for i, s := range stops {
		nodes[i+1] = s.Location
	}
	p.dist = make([][]float64, n+1)
	for i := range p.dist {
		p.dist[i] = make([]float64, n+1)
	}
	for i := 0; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			d := nodes[i].DistanceKm(nodes[j])
			p.dist[i][j] = d
			p.dist[j][i] = d
		}
	}
	return p, nil
}

// d returns the distance between two sequence entries, where -1 is the origin
func (p *problem) d(a, b int) float64 {
	return p.dist[a+1][b+1]
}

// nearestNeighbour greedily visits the closest eligible stop. Ties go to the
// stop listed first.
func (p *problem) nearestNeighbour() []int {
	n := len(p.stops)
	visited := make([]bool, n)
	seq := make([]int, 0, n)
	cur := -1
	for len(seq) < n {
		best := -1
		for i := 0; i < n; i++ {
			if visited[i] {
				continue
			}
			if pu := p.pickupOf[i]; pu >= 0 && !visited[pu] {
				continue
			}
			if best < 0 || p.d(cur, i) < p.d(cur, best) {
				best = i
			}
		}
		visited[best] = true
		seq = append(seq, best)
		cur = best
	}
	return seq
}

// reversible reports whether reversing seq[i..j] keeps every pickup ahead of
// its drop-off. Given a feasible sequence, only an order with both stops
// inside the segment can be broken.
func (p *problem) reversible(seq []int, i, j int) bool {
	inSegment := make(map[int]bool, j-i+1)
	for k := i; k <= j; k++ {
		inSegment[seq[k]] = true
	}
	for k := i; k <= j; k++ {
		if pu := p.pickupOf[seq[k]]; pu >= 0 && inSegment[pu] {
			return false
		}
	}
	return true
}

// twoOpt applies improving reversals until a full pass finds none or the
// pass budget runs out. The path is open: it starts at the origin and ends at
// the last stop. Returns the number of passes made.
func (p *problem) twoOpt(seq []int, maxPasses int) int {
	n := len(seq)
	passes := 0
	for passes < maxPasses {
		passes++
		improved := false
		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				prev := -1
				if i > 0 {
					prev = seq[i-1]
				}
				delta := p.d(prev, seq[j]) - p.d(prev, seq[i])
				if j+1 < n {
					next := seq[j+1]
					delta += p.d(seq[i], next) - p.d(seq[j], next)
				}
				if delta >= -epsilon {
					continue
				}
				if !p.reversible(seq, i, j) {
					continue
				}
				reverse(seq[i : j+1])
				improved = true
			}
		}
		if !improved {
			break
		}
	}
	return passes
}

func reverse(s []int) {
	for l, r := 0, len(s)-1; l < r; l, r = l+1, r-1 {
		s[l], s[r] = s[r], s[l]
	}
}

func roundKm(km float64) float64 {
	return math.Round(km*1000) / 1000
}

// Optimize orders the stops starting from origin. A drop-off whose pickup is
// not among the stops is treated as already picked up.
func (o *Optimizer) Optimize(origin valueobject.Point, stops []Stop, departAt time.Time) (*Plan, error) {
	plan := &Plan{Origin: origin, Stops: []PlannedStop{}}
	if len(stops) == 0 {
		return plan, nil
	}

	p, err := newProblem(origin, stops)
	if err != nil {
		return nil, err
	}
	seq := p.nearestNeighbour()
	if len(seq) > 2 && o.maxIterations > 0 {
		plan.Iterations = p.twoOpt(seq, o.maxIterations)
	}

	cumulative := 0.0
	prev := -1
	for pos, idx := range seq {
		leg := p.d(prev, idx)
		cumulative += leg
		plan.Stops = append(plan.Stops, PlannedStop{
			Stop:         stops[idx],
			Sequence:     pos + 1,
			LegKm:        roundKm(leg),
			CumulativeKm: roundKm(cumulative),
			ETA:          departAt.Add(o.travelTime(cumulative)),
		})
		prev = idx
	}
	plan.TotalKm = roundKm(cumulative)
	plan.Duration = o.travelTime(cumulative)
	return plan, nil
}

// travelTime converts distance to duration, truncated to the second
func (o *Optimizer) travelTime(km float64) time.Duration {
	return (time.Duration(km / o.speedKmh * float64(time.Hour))).Truncate(time.Second)
}
