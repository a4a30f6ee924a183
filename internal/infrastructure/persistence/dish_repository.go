package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/menu"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDishRepository implements menu.DishRepository using GORM
type GormDishRepository struct {
	db *gorm.DB
}

// NewGormDishRepository creates a new GormDishRepository
func NewGormDishRepository(db *gorm.DB) *GormDishRepository {
	return &GormDishRepository{db: db}
}

// FindByID finds a dish by its ID
func (r *GormDishRepository) FindByID(ctx context.Context, id uuid.UUID) (*menu.Dish, error) {
	var model models.DishModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the dishes that exist among ids
func (r *GormDishRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]menu.Dish, error) {
	if len(ids) == 0 {
		return []menu.Dish{}, nil
	}
	var rows []models.DishModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDishes(rows), nil
}

// FindByCook lists a cook's dishes, available or not
func (r *GormDishRepository) FindByCook(ctx context.Context, cookID uuid.UUID, filter shared.Filter) ([]menu.Dish, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.DishModel{}).Where("cook_id = ?", cookID)
	return r.page(query, filter)
}

// Search lists available dishes matching the criteria
func (r *GormDishRepository) Search(ctx context.Context, criteria menu.SearchCriteria, filter shared.Filter) ([]menu.Dish, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.DishModel{}).Where("available = ?", true)
	if criteria.Query != "" {
		pattern := likePattern(criteria.Query)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if criteria.Category != "" {
		query = query.Where("category = ?", criteria.Category)
	}
	if criteria.CookID != nil {
		query = query.Where("cook_id = ?", *criteria.CookID)
	}
	return r.page(query, filter)
}

func (r *GormDishRepository) page(query *gorm.DB, filter shared.Filter) ([]menu.Dish, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.DishModel
	if err := pageQuery(query, filter, DishSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toDishes(rows), total, nil
}

// Save inserts or updates a dish
func (r *GormDishRepository) Save(ctx context.Context, d *menu.Dish) error {
	if err := r.db.WithContext(ctx).Save(models.DishModelFromDomain(d)).Error; err != nil {
		return err
	}
	d.MarkPersisted()
	return nil
}

// Delete removes a dish. Orders keep their own snapshot of it.
func (r *GormDishRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DishModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDishes(rows []models.DishModel) []menu.Dish {
	out := make([]menu.Dish, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ menu.DishRepository = (*GormDishRepository)(nil)
