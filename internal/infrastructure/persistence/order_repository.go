package persistence

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/homechef/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ordering.OrderRepository using GORM
type GormOrderRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormOrderRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter ordering.OrderFilter) ([]ordering.Order, int64, error) {
	page := filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.CookID != nil {
		query = query.Where("cook_id = ?", *filter.CookID)
	}
	if filter.DriverID != nil {
		query = query.Where("driver_id = ?", *filter.DriverID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod)
	}
	if page.Search != "" {
		query = query.Where("LOWER(order_number) LIKE ?", likePattern(page.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.OrderModel
	if err := pageQuery(query, page, OrderSortFields, "created_at").Preload("Items").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toOrders(rows), total, nil
}

// FindPendingApproval returns a cook's orders awaiting approval, oldest first
func (r *GormOrderRepository) FindPendingApproval(ctx context.Context, cookID uuid.UUID) ([]ordering.Order, error) {
	return r.find(ctx, 0, "approval_deadline ASC",
		"cook_id = ? AND status = ?", cookID, ordering.StatusPendingApproval)
}

// FindOverdueApprovals returns orders pending approval past their deadline
func (r *GormOrderRepository) FindOverdueApprovals(ctx context.Context, now time.Time, limit int) ([]ordering.Order, error) {
	return r.find(ctx, limit, "approval_deadline ASC",
		"status = ? AND approval_deadline < ?", ordering.StatusPendingApproval, now)
}

// FindDeliveredBefore returns DELIVERED orders delivered before the cutoff
func (r *GormOrderRepository) FindDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]ordering.Order, error) {
	return r.find(ctx, limit, "delivered_at ASC",
		"status = ? AND delivered_at < ?", ordering.StatusDelivered, cutoff)
}

// FindReadyUnassigned returns READY orders waiting for a driver
func (r *GormOrderRepository) FindReadyUnassigned(ctx context.Context, limit int) ([]ordering.Order, error) {
	return r.find(ctx, limit, "ready_at ASC",
		"status = ? AND driver_id IS NULL", ordering.StatusReady)
}

// FindReadyUnassignedNear returns READY orders waiting for a driver, nearest
// pickup first. The database ranks by an equirectangular approximation, which
// keeps the order of nearby kitchens but not their exact distances.
func (r *GormOrderRepository) FindReadyUnassignedNear(ctx context.Context, from valueobject.Point, limit int) ([]ordering.Order, error) {
	k := math.Cos(from.Lat * math.Pi / 180)
	query := r.db.WithContext(ctx).Preload("Items").
		Where("status = ? AND driver_id IS NULL", ordering.StatusReady).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "(pickup_lat - ?) * (pickup_lat - ?) + (pickup_lng - ?) * (pickup_lng - ?) * ?, ready_at ASC",
			Vars:               []any{from.Lat, from.Lat, from.Lng, from.Lng, k * k},
			WithoutParentheses: true,
		}})
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

// FindActiveByDriver returns the driver's ASSIGNED and PICKED_UP orders
func (r *GormOrderRepository) FindActiveByDriver(ctx context.Context, driverID uuid.UUID) ([]ordering.Order, error) {
	return r.find(ctx, 0, "assigned_at ASC",
		"driver_id = ? AND status IN ?", driverID, ordering.ActiveDeliveryStatuses())
}

// FindCollectedCashByDriver returns cash orders collected but not yet settled
func (r *GormOrderRepository) FindCollectedCashByDriver(ctx context.Context, driverID uuid.UUID) ([]ordering.Order, error) {
	return r.find(ctx, 0, "delivered_at ASC",
		"driver_id = ? AND payment_method = ? AND payment_status = ?",
		driverID, ordering.PaymentCash, ordering.PaymentCollected)
}

func (r *GormOrderRepository) find(ctx context.Context, limit int, order string, where string, args ...any) ([]ordering.Order, error) {
	query := r.db.WithContext(ctx).Preload("Items").Where(where, args...).Order(order)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

// CountActiveByDriver counts the driver's ASSIGNED and PICKED_UP orders
func (r *GormOrderRepository) CountActiveByDriver(ctx context.Context, driverID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("driver_id = ? AND status IN ?", driverID, ordering.ActiveDeliveryStatuses()).
		Count(&count).Error
	return count, err
}

// CountOpenCashOrders counts a client's non-terminal cash orders
func (r *GormOrderRepository) CountOpenCashOrders(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("client_id = ? AND payment_method = ? AND status IN ?",
			clientID, ordering.PaymentCash, ordering.OpenStatuses()).
		Count(&count).Error
	return count, err
}

// CountByStatus returns the number of orders in each status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[ordering.OrderStatus]int64, error) {
	var results []struct {
		Status ordering.OrderStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	counts := make(map[ordering.OrderStatus]int64, len(results))
	for _, row := range results {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SumCompletedSince totals COMPLETED orders completed at or after since
func (r *GormOrderRepository) SumCompletedSince(ctx context.Context, since time.Time) (decimal.Decimal, int64, error) {
	var result struct {
		Total decimal.Decimal
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("COALESCE(SUM(total), 0) as total, count(*) as count").
		Where("status = ? AND completed_at >= ?", ordering.StatusCompleted, since).
		Scan(&result).Error; err != nil {
		return decimal.Zero, 0, err
	}
	return result.Total, result.Count, nil
}

// GenerateOrderNumber returns the next ORD-YYYYMMDD-NNNNN number. The counter
// is one row per UTC day, incremented atomically so concurrent placements
// never share a number.
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, now time.Time) (string, error) {
	day := now.UTC().Format("20060102")
	var seq int64
	if err := r.db.WithContext(ctx).Raw(
		`INSERT INTO order_sequences (day, last_value) VALUES (?, 1)
		ON CONFLICT (day) DO UPDATE SET last_value = order_sequences.last_value + 1
		RETURNING last_value`, day).
		Scan(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%05d", day, seq), nil
}

// CreateWithEvents inserts a new order, its items and its events in one transaction
func (r *GormOrderRepository) CreateWithEvents(ctx context.Context, order *ordering.Order, events []shared.DomainEvent) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.OrderModelFromDomain(order)).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return saveEvents(ctx, r.outboxSaver, tx, events)
	})
	if err != nil {
		return err
	}
	order.MarkPersisted()
	return nil
}

// SaveWithLockAndEvents writes the order's lifecycle state with a version
// check and persists the events to the outbox atomically
func (r *GormOrderRepository) SaveWithLockAndEvents(ctx context.Context, order *ordering.Order, events []shared.DomainEvent) error {
	model := models.OrderModelFromDomain(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateVersioned(tx, &models.OrderModel{}, order.ID, order.PersistedVersion(), model.StateColumns()); err != nil {
			return err
		}
		return saveEvents(ctx, r.outboxSaver, tx, events)
	})
	if err != nil {
		return err
	}
	order.MarkPersisted()
	return nil
}

func toOrders(rows []models.OrderModel) []ordering.Order {
	out := make([]ordering.Order, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ ordering.OrderRepository = (*GormOrderRepository)(nil)
