package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/chat"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormChatRepository implements chat.RoomRepository using GORM
type GormChatRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormChatRepository creates a new GormChatRepository
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormChatRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a room with its participants
func (r *GormChatRepository) FindByID(ctx context.Context, id uuid.UUID) (*chat.Room, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByOrder finds the room of an order
func (r *GormChatRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*chat.Room, error) {
	return r.first(ctx, "order_id = ?", orderID)
}

func (r *GormChatRepository) first(ctx context.Context, where string, arg any) (*chat.Room, error) {
	var model models.ChatRoomModel
	if err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		First(&model, where, arg).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts the room and its initial participants
func (r *GormChatRepository) Create(ctx context.Context, room *chat.Room) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.ChatRoomModelFromDomain(room)).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	room.MarkPersisted()
	return nil
}

// SaveWithLock writes the closed flag and the participant list with a version check
func (r *GormChatRepository) SaveWithLock(ctx context.Context, room *chat.Room) error {
	model := models.ChatRoomModelFromDomain(room)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateVersioned(tx, &models.ChatRoomModel{}, room.ID, room.PersistedVersion(), map[string]any{
			"closed_at":  model.ClosedAt,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		}); err != nil {
			return err
		}
		if len(model.Participants) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "left_at", "last_read_at"}),
		}).Create(&model.Participants).Error
	})
	if err != nil {
		return err
	}
	room.MarkPersisted()
	return nil
}

// SaveParticipantRead moves a participant's read marker. It bypasses the
// room version so that reading never conflicts with membership changes.
func (r *GormChatRepository) SaveParticipantRead(ctx context.Context, roomID, accountID uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.ChatParticipantModel{}).
		Where("room_id = ? AND account_id = ?", roomID, accountID).
		Update("last_read_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AppendMessage stores the message and its events in one transaction
func (r *GormChatRepository) AppendMessage(ctx context.Context, m *chat.Message, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.ChatMessageModelFromDomain(m)).Error; err != nil {
			return err
		}
		return saveEvents(ctx, r.outboxSaver, tx, events)
	})
}

// ListMessages returns up to limit messages created before the cursor, newest first
func (r *GormChatRepository) ListMessages(ctx context.Context, roomID uuid.UUID, before *time.Time, limit int) ([]chat.Message, error) {
	query := r.db.WithContext(ctx).Where("room_id = ?", roomID)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}
	var rows []models.ChatMessageModel
	if err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]chat.Message, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// UnreadCounts counts, per room the account is still in, the messages from
// others posted after the account last read the room
func (r *GormChatRepository) UnreadCounts(ctx context.Context, accountID uuid.UUID) ([]chat.UnreadCount, error) {
	var out []chat.UnreadCount
	err := r.db.WithContext(ctx).
		Table("chat_participants AS p").
		Select("r.id AS room_id, r.order_id, r.order_number, COUNT(m.id) AS unread").
		Joins("JOIN chat_rooms r ON r.id = p.room_id").
		Joins(`JOIN chat_messages m ON m.room_id = p.room_id AND m.sender_id <> p.account_id
			AND (p.last_read_at IS NULL OR m.created_at > p.last_read_at)`).
		Where("p.account_id = ? AND p.left_at IS NULL", accountID).
		Group("r.id, r.order_id, r.order_number").
		Order("MAX(m.created_at) DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []chat.UnreadCount{}
	}
	return out, nil
}

var _ chat.RoomRepository = (*GormChatRepository)(nil)
