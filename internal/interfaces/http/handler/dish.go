package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	menuapp "github.com/homechef/backend/internal/application/menu"
	"github.com/homechef/backend/internal/domain/account"
)

// DishUseCases is what DishHandler needs from the menu service
type DishUseCases interface {
	Create(ctx context.Context, actor account.Actor, req menuapp.CreateDishRequest) (*menuapp.DishResponse, error)
	Update(ctx context.Context, actor account.Actor, id uuid.UUID, req menuapp.UpdateDishRequest) (*menuapp.DishResponse, error)
	SetAvailability(ctx context.Context, actor account.Actor, id uuid.UUID, available bool) (*menuapp.DishResponse, error)
	Delete(ctx context.Context, actor account.Actor, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*menuapp.DishResponse, error)
	ListByCook(ctx context.Context, cookID uuid.UUID, page, pageSize int) ([]menuapp.DishResponse, int64, error)
	Search(ctx context.Context, filter menuapp.DishSearchFilter) ([]menuapp.DishResponse, int64, error)
	ImageUploadURL(ctx context.Context, actor account.Actor, id uuid.UUID, req menuapp.ImageUploadRequest) (*menuapp.ImageUploadResponse, error)
}

// DishHandler serves the public catalog and the cook's menu management
type DishHandler struct {
	BaseHandler
	dishes DishUseCases
}

// NewDishHandler creates a new DishHandler
func NewDishHandler(dishes DishUseCases) *DishHandler {
	return &DishHandler{dishes: dishes}
}

// Search handles GET /dishes: search available dishes of open kitchens
func (h *DishHandler) Search(c *gin.Context) {
	var filter menuapp.DishSearchFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	dishes, total, err := h.dishes.Search(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dishes, total, filter.Page, filter.PageSize)
}

// Get handles GET /dishes/{id}: get a dish
func (h *DishHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	dish, err := h.dishes.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dish)
}

// ListByCook lists one cook's menu
func (h *DishHandler) ListByCook(c *gin.Context) {
	cookID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var q PageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	dishes, total, err := h.dishes.ListByCook(c.Request.Context(), cookID, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dishes, total, q.Page, q.PageSize)
}

// Create handles POST /dishes: add a dish to the caller's menu
func (h *DishHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req menuapp.CreateDishRequest
	if !h.bindJSON(c, &req) {
		return
	}
	dish, err := h.dishes.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dish)
}

// Update replaces a dish's details
func (h *DishHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req menuapp.UpdateDishRequest
	if !h.bindJSON(c, &req) {
		return
	}
	dish, err := h.dishes.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dish)
}

// SetAvailability toggles whether a dish can be ordered
func (h *DishHandler) SetAvailability(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req menuapp.AvailabilityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	dish, err := h.dishes.SetAvailability(c.Request.Context(), actor, id, req.Available)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dish)
}

// Delete removes a dish from the menu
func (h *DishHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.dishes.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ImageUploadURL presigns an upload for the dish photo
func (h *DishHandler) ImageUploadURL(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req menuapp.ImageUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.dishes.ImageUploadURL(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
