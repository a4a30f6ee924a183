package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/notification"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// CreateBatch inserts one inbox row per item
func (r *GormNotificationRepository) CreateBatch(ctx context.Context, items []*notification.Notification) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]*models.NotificationModel, len(items))
	for i, n := range items {
		m, err := models.NotificationModelFromDomain(n)
		if err != nil {
			return err
		}
		rows[i] = m
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

// FindByRecipient pages through a recipient's inbox
func (r *GormNotificationRepository) FindByRecipient(ctx context.Context, recipient uuid.UUID, unreadOnly bool, filter shared.Filter) ([]notification.Notification, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.NotificationModel{}).Where("recipient_id = ?", recipient)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.NotificationModel
	if err := pageQuery(query, filter, NotificationSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]notification.Notification, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// MarkRead marks a recipient's notification read. Marking it twice keeps the
// first read time.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, recipient, id uuid.UUID, at time.Time) error {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).
		Select("id", "read_at").
		First(&model, "id = ? AND recipient_id = ?", id, recipient).Error; err != nil {
		return notFound(err)
	}
	if model.ReadAt != nil {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at).Error
}

// MarkAllRead marks every unread notification of the recipient
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, recipient uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("recipient_id = ? AND read_at IS NULL", recipient).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}

// CountUnread counts the recipient's unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, recipient uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("recipient_id = ? AND read_at IS NULL", recipient).
		Count(&count).Error
	return count, err
}

var _ notification.Repository = (*GormNotificationRepository)(nil)
