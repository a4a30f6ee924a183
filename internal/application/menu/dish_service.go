package menu

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/menu"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ObjectStorageService defines the object storage operations dish photos need.
// It is implemented by the infrastructure layer (S3 or any S3-compatible store).
type ObjectStorageService interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// GenerateDownloadURL returns a presigned GET URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// DishServiceConfig holds tunables of the dish service
type DishServiceConfig struct {
	Currency          valueobject.Currency
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultDishServiceConfig returns the default configuration
func DefaultDishServiceConfig() DishServiceConfig {
	return DishServiceConfig{
		Currency:          valueobject.DefaultCurrency,
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
	}
}

// DishService manages cooks' menus and the public catalogue
type DishService struct {
	dishes   menu.DishRepository
	accounts account.AccountRepository
	storage  ObjectStorageService
	config   DishServiceConfig
	logger   *zap.Logger
}

// NewDishService creates a new DishService. storage may be nil when dish
// photos are disabled.
func NewDishService(dishes menu.DishRepository, accounts account.AccountRepository, storage ObjectStorageService, logger *zap.Logger) *DishService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DishService{
		dishes:   dishes,
		accounts: accounts,
		storage:  storage,
		config:   DefaultDishServiceConfig(),
		logger:   logger,
	}
}

// SetConfig sets the service configuration
func (s *DishService) SetConfig(config DishServiceConfig) {
	s.config = config
}

// Create adds a dish to the cook's menu
func (s *DishService) Create(ctx context.Context, actor account.Actor, req CreateDishRequest) (*DishResponse, error) {
	if !actor.IsCook() {
		return nil, shared.ErrForbidden
	}
	cook, err := s.accounts.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !cook.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Suspended cooks cannot edit their menu")
	}

	price, err := valueobject.NewMoney(req.Price, s.config.Currency)
	if err != nil {
		return nil, err
	}
	d, err := menu.NewDish(actor.ID, req.Name, price, req.PrepMinutes)
	if err != nil {
		return nil, err
	}
	if req.Description != "" || req.Category != "" {
		if err := d.Update(req.Name, req.Description, req.Category, price, req.PrepMinutes); err != nil {
			return nil, err
		}
		d.Version = 1
	}
	if err := s.dishes.Save(ctx, d); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, d), nil
}

// Update replaces a dish's attributes (owner only)
func (s *DishService) Update(ctx context.Context, actor account.Actor, id uuid.UUID, req UpdateDishRequest) (*DishResponse, error) {
	d, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	price, err := valueobject.NewMoney(req.Price, d.Price.Currency())
	if err != nil {
		return nil, err
	}
	if err := d.Update(req.Name, req.Description, req.Category, price, req.PrepMinutes); err != nil {
		return nil, err
	}
	if err := s.dishes.Save(ctx, d); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, d), nil
}

// SetAvailability toggles whether the dish can be ordered (owner only)
func (s *DishService) SetAvailability(ctx context.Context, actor account.Actor, id uuid.UUID, available bool) (*DishResponse, error) {
	d, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	d.SetAvailability(available)
	if err := s.dishes.Save(ctx, d); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, d), nil
}

// Delete removes a dish (owner only). Past orders keep their snapshot.
func (s *DishService) Delete(ctx context.Context, actor account.Actor, id uuid.UUID) error {
	d, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.dishes.Delete(ctx, id); err != nil {
		return err
	}
	if d.ImageKey != "" && s.storage != nil {
		if err := s.storage.DeleteObject(ctx, d.ImageKey); err != nil {
			s.logger.Warn("failed to delete dish image",
				zap.String("dish_id", id.String()),
				zap.String("key", d.ImageKey),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Get returns a dish
func (s *DishService) Get(ctx context.Context, id uuid.UUID) (*DishResponse, error) {
	d, err := s.dishes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, d), nil
}

// ListByCook returns a cook's full menu, including unavailable dishes
func (s *DishService) ListByCook(ctx context.Context, cookID uuid.UUID, page, pageSize int) ([]DishResponse, int64, error) {
	f := shared.Filter{Page: page, PageSize: pageSize, OrderBy: "name", OrderDir: "asc"}.Normalize()
	dishes, total, err := s.dishes.FindByCook(ctx, cookID, f)
	if err != nil {
		return nil, 0, err
	}
	return s.toResponses(ctx, dishes), total, nil
}

// Search queries the public catalogue of available dishes
func (s *DishService) Search(ctx context.Context, filter DishSearchFilter) ([]DishResponse, int64, error) {
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "name", OrderDir: "asc"}.Normalize()
	criteria := menu.SearchCriteria{
		Query:    filter.Query,
		Category: filter.Category,
		CookID:   filter.CookID,
	}
	dishes, total, err := s.dishes.Search(ctx, criteria, f)
	if err != nil {
		return nil, 0, err
	}
	return s.toResponses(ctx, dishes), total, nil
}

// ImageUploadURL issues a presigned PUT for the dish photo and records the key
func (s *DishService) ImageUploadURL(ctx context.Context, actor account.Actor, id uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Image uploads are not configured")
	}
	ext, ok := imageExtensions[req.ContentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Only JPEG, PNG and WebP images are accepted")
	}
	d, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("dishes/%s/%s/%s%s", d.CookID, d.ID, uuid.New(), ext)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, err
	}

	previous := d.ImageKey
	d.SetImage(key)
	if err := s.dishes.Save(ctx, d); err != nil {
		return nil, err
	}
	if previous != "" {
		if err := s.storage.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("failed to delete replaced dish image", zap.String("key", previous), zap.Error(err))
		}
	}
	return &ImageUploadResponse{UploadURL: url, StorageKey: key, ExpiresAt: expiresAt}, nil
}

func (s *DishService) owned(ctx context.Context, actor account.Actor, id uuid.UUID) (*menu.Dish, error) {
	if !actor.IsCook() {
		return nil, shared.ErrForbidden
	}
	d, err := s.dishes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.IsOwnedBy(actor.ID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Dish belongs to another cook")
	}
	return d, nil
}

func (s *DishService) imageURL(ctx context.Context, d *menu.Dish) string {
	if d.ImageKey == "" || s.storage == nil {
		return ""
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, d.ImageKey, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Warn("failed to sign dish image", zap.String("dish_id", d.ID.String()), zap.Error(err))
		return ""
	}
	return url
}

func (s *DishService) toResponse(ctx context.Context, d *menu.Dish) *DishResponse {
	resp := ToDishResponse(d, s.imageURL(ctx, d))
	return &resp
}

func (s *DishService) toResponses(ctx context.Context, dishes []menu.Dish) []DishResponse {
	out := make([]DishResponse, len(dishes))
	for i := range dishes {
		out[i] = ToDishResponse(&dishes[i], s.imageURL(ctx, &dishes[i]))
	}
	return out
}
