package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLoyaltyRepository implements loyalty.AccountRepository using GORM
type GormLoyaltyRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormLoyaltyRepository creates a new GormLoyaltyRepository
func NewGormLoyaltyRepository(db *gorm.DB) *GormLoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormLoyaltyRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByClient returns the client's points account
func (r *GormLoyaltyRepository) FindByClient(ctx context.Context, clientID uuid.UUID) (*loyalty.Account, error) {
	var model models.LoyaltyAccountModel
	if err := r.db.WithContext(ctx).First(&model, "client_id = ?", clientID).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create opens an account. A second account for the same client yields
// shared.ErrAlreadyExists.
func (r *GormLoyaltyRepository) Create(ctx context.Context, a *loyalty.Account) error {
	if err := r.db.WithContext(ctx).Create(models.LoyaltyAccountModelFromDomain(a)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	a.MarkPersisted()
	return nil
}

// SaveWithEntries updates the balance with a version check, appends the
// ledger entries and writes the events to the outbox in one transaction
func (r *GormLoyaltyRepository) SaveWithEntries(ctx context.Context, a *loyalty.Account, entries []*loyalty.LedgerEntry, events []shared.DomainEvent) error {
	model := models.LoyaltyAccountModelFromDomain(a)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateVersioned(tx, &models.LoyaltyAccountModel{}, a.ID, a.PersistedVersion(), map[string]any{
			"balance":         model.Balance,
			"lifetime_earned": model.LifetimeEarned,
			"tier":            model.Tier,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		}); err != nil {
			return err
		}
		if len(entries) > 0 {
			rows := make([]*models.LoyaltyEntryModel, len(entries))
			for i, e := range entries {
				rows[i] = models.LoyaltyEntryModelFromDomain(e)
			}
			if err := tx.Create(rows).Error; err != nil {
				if isUniqueViolation(err) {
					return shared.ErrAlreadyExists
				}
				return err
			}
		}
		return saveEvents(ctx, r.outboxSaver, tx, events)
	})
	if err != nil {
		return err
	}
	a.MarkPersisted()
	return nil
}

// FindOrderEntry returns the entry of the given type for the order
func (r *GormLoyaltyRepository) FindOrderEntry(ctx context.Context, clientID, orderID uuid.UUID, t loyalty.EntryType) (*loyalty.LedgerEntry, error) {
	var model models.LoyaltyEntryModel
	if err := r.db.WithContext(ctx).
		First(&model, "client_id = ? AND order_id = ? AND type = ?", clientID, orderID, t).Error; err != nil {
		return nil, notFound(err)
	}
	entry := model.ToDomain()
	return &entry, nil
}

// Ledger lists a client's entries, newest first
func (r *GormLoyaltyRepository) Ledger(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]loyalty.LedgerEntry, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.LoyaltyEntryModel{}).Where("client_id = ?", clientID)
	if t, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", t)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.LoyaltyEntryModel
	if err := pageQuery(query, filter, LedgerSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]loyalty.LedgerEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

var _ loyalty.AccountRepository = (*GormLoyaltyRepository)(nil)
