package menu

import (
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/menu"
	"github.com/shopspring/decimal"
)

// CreateDishRequest adds a dish to the caller's menu
type CreateDishRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Category    string          `json:"category" binding:"max=100"`
	Price       decimal.Decimal `json:"price" binding:"positive_money"`
	PrepMinutes int             `json:"prep_minutes" binding:"required,min=1,max=240"`
}

// UpdateDishRequest replaces a dish's editable attributes
type UpdateDishRequest = CreateDishRequest

// AvailabilityRequest toggles whether a dish can be ordered
type AvailabilityRequest struct {
	Available bool `json:"available"`
}

// ImageUploadRequest asks for a presigned upload URL
type ImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp"`
}

// DishSearchFilter is the public catalogue query
type DishSearchFilter struct {
	Query    string     `form:"q" binding:"max=100"`
	Category string     `form:"category" binding:"max=100"`
	CookID   *uuid.UUID `form:"cook_id"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
}

// DishResponse represents a dish in API responses
type DishResponse struct {
	ID          uuid.UUID       `json:"id"`
	CookID      uuid.UUID       `json:"cook_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	PrepMinutes int             `json:"prep_minutes"`
	Available   bool            `json:"available"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ImageUploadResponse is returned to the cook app to upload the photo directly
type ImageUploadResponse struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ToDishResponse converts a dish; imageURL is resolved by the caller
func ToDishResponse(d *menu.Dish, imageURL string) DishResponse {
	return DishResponse{
		ID:          d.ID,
		CookID:      d.CookID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       d.Price.Amount(),
		Currency:    string(d.Price.Currency()),
		PrepMinutes: d.PrepMinutes,
		Available:   d.Available,
		ImageURL:    imageURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Version:     d.Version,
	}
}
