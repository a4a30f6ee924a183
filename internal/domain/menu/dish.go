package menu

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
)

const (
	AggregateTypeDish = "Dish"

	maxNameLength        = 200
	maxDescriptionLength = 2000
	maxCategoryLength    = 100
	maxPrepMinutes       = 240
)

// Dish is a menu item offered by a cook
type Dish struct {
	shared.BaseAggregateRoot
	CookID      uuid.UUID
	Name        string
	Description string
	Category    string
	Price       valueobject.Money
	PrepMinutes int
	Available   bool
	ImageKey    string
}

// NewDish creates an available dish for the cook
func NewDish(cookID uuid.UUID, name string, price valueobject.Money, prepMinutes int) (*Dish, error) {
	if cookID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COOK", "Cook ID cannot be empty")
	}
	d := &Dish{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CookID:            cookID,
		Available:         true,
	}
	if err := d.Update(name, "", "", price, prepMinutes); err != nil {
		return nil, err
	}
	d.Version = 1
	return d, nil
}

// Update replaces the editable attributes
func (d *Dish) Update(name, description, category string, price valueobject.Money, prepMinutes int) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return shared.NewDomainError("INVALID_DISH_NAME", "Dish name must be 1-200 characters")
	}
	if len(description) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 2000 characters")
	}
	category = strings.TrimSpace(category)
	if len(category) > maxCategoryLength {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be positive")
	}
	if prepMinutes < 1 || prepMinutes > maxPrepMinutes {
		return shared.NewDomainError("INVALID_PREP_TIME", "Preparation time must be between 1 and 240 minutes")
	}

	d.Name = name
	d.Description = strings.TrimSpace(description)
	d.Category = strings.ToLower(category)
	d.Price = price.Round(2)
	d.PrepMinutes = prepMinutes
	d.Touch()
	d.IncrementVersion()
	return nil
}

// SetAvailability toggles whether the dish can be ordered
func (d *Dish) SetAvailability(available bool) {
	d.Available = available
	d.Touch()
	d.IncrementVersion()
}

// SetImage records the storage key of the dish photo
func (d *Dish) SetImage(key string) {
	d.ImageKey = key
	d.Touch()
	d.IncrementVersion()
}

// IsOwnedBy reports whether the cook owns the dish
func (d *Dish) IsOwnedBy(cookID uuid.UUID) bool {
	return d.CookID == cookID
}

// SearchCriteria filters the public dish catalogue
type SearchCriteria struct {
	Query    string
	Category string
	CookID   *uuid.UUID
}

// DishRepository defines persistence for dishes
type DishRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Dish, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Dish, error)
	FindByCook(ctx context.Context, cookID uuid.UUID, filter shared.Filter) ([]Dish, int64, error)
	// Search returns available dishes only
	Search(ctx context.Context, criteria SearchCriteria, filter shared.Filter) ([]Dish, int64, error)
	Save(ctx context.Context, d *Dish) error
	Delete(ctx context.Context, id uuid.UUID) error
}
