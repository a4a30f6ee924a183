package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements account.AccountRepository using GORM
type GormAccountRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormAccountRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an account and locks its row for the rest of the
// transaction the repository is bound to
func (r *GormAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the accounts that exist among ids, in no particular order
func (r *GormAccountRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]account.Account, error) {
	if len(ids) == 0 {
		return []account.Account{}, nil
	}
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAccounts(rows), nil
}

// FindAll lists accounts filtered by role, status and a name or email search
func (r *GormAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]account.Account, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.AccountModel{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(display_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if role, ok := filter.Filters["role"]; ok {
		query = query.Where("role = ?", role)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.AccountModel
	if err := pageQuery(query, filter, AccountSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toAccounts(rows), total, nil
}

// FindOnDutyDrivers returns active drivers currently on duty
func (r *GormAccountRepository) FindOnDutyDrivers(ctx context.Context) ([]account.Account, error) {
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("role = ? AND status = ? AND on_duty = ?", account.RoleDriver, account.StatusActive, true).
		Order("last_location_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAccounts(rows), nil
}

// Exists checks if an account exists
func (r *GormAccountRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AccountModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the account and its registration events
func (r *GormAccountRepository) Create(ctx context.Context, a *account.Account) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.AccountModelFromDomain(a)).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return saveEvents(ctx, r.outboxSaver, tx, a.GetDomainEvents())
	})
	if err != nil {
		return err
	}
	a.MarkPersisted()
	return nil
}

// SaveWithLock updates the account if nobody else changed it since it was loaded
func (r *GormAccountRepository) SaveWithLock(ctx context.Context, a *account.Account) error {
	model := models.AccountModelFromDomain(a)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cols := map[string]any{
			"status":               model.Status,
			"display_name":         model.DisplayName,
			"phone":                model.Phone,
			"has_address":          model.HasAddress,
			"address_line1":        model.Address.Line1,
			"address_line2":        model.Address.Line2,
			"address_city":         model.Address.City,
			"address_postal_code":  model.Address.PostalCode,
			"address_instructions": model.Address.Instructions,
			"address_lat":          model.Address.Lat,
			"address_lng":          model.Address.Lng,
			"email_enabled":        model.EmailEnabled,
			"push_enabled":         model.PushEnabled,
			"suspend_reason":       model.SuspendReason,
			"suspended_at":         model.SuspendedAt,
			"kitchen_name":         model.KitchenName,
			"accepting_orders":     model.AcceptingOrders,
			"default_prep_minutes": model.DefaultPrepMinutes,
			"vehicle":              model.Vehicle,
			"on_duty":              model.OnDuty,
			"last_lat":             model.LastLat,
			"last_lng":             model.LastLng,
			"last_location_at":     model.LastLocationAt,
			"version":              model.Version,
			"updated_at":           time.Now(),
		}
		if err := updateVersioned(tx, &models.AccountModel{}, a.ID, a.PersistedVersion(), cols); err != nil {
			return err
		}
		return saveEvents(ctx, r.outboxSaver, tx, a.GetDomainEvents())
	})
	if err != nil {
		return err
	}
	a.MarkPersisted()
	return nil
}

func toAccounts(rows []models.AccountModel) []account.Account {
	out := make([]account.Account, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// GormDeviceRepository implements account.DeviceRepository using GORM
type GormDeviceRepository struct {
	db *gorm.DB
}

// NewGormDeviceRepository creates a new GormDeviceRepository
func NewGormDeviceRepository(db *gorm.DB) *GormDeviceRepository {
	return &GormDeviceRepository{db: db}
}

// Upsert registers a token, moving it to d.AccountID if another account held it
func (r *GormDeviceRepository) Upsert(ctx context.Context, d *account.Device) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"account_id", "platform"}),
		}).
		Create(models.DeviceModelFromDomain(d)).Error
}

// FindByAccounts returns every device of the given accounts
func (r *GormDeviceRepository) FindByAccounts(ctx context.Context, accountIDs []uuid.UUID) ([]account.Device, error) {
	if len(accountIDs) == 0 {
		return []account.Device{}, nil
	}
	var rows []models.DeviceModel
	if err := r.db.WithContext(ctx).Where("account_id IN ?", accountIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]account.Device, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// DeleteByToken drops a token; deleting an unknown token is not an error
func (r *GormDeviceRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.DeviceModel{}).Error
}

var (
	_ account.AccountRepository = (*GormAccountRepository)(nil)
	_ account.DeviceRepository  = (*GormDeviceRepository)(nil)
)
