package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	accountapp "github.com/homechef/backend/internal/application/account"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/interfaces/http/dto"
	"github.com/homechef/backend/internal/interfaces/http/middleware"
)

// AccountUseCases is what AccountHandler needs from the account service
type AccountUseCases interface {
	Register(ctx context.Context, subject uuid.UUID, req accountapp.RegisterRequest) (*accountapp.AccountResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*accountapp.AccountResponse, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req accountapp.UpdateProfileRequest) (*accountapp.AccountResponse, error)
	SetCookAvailability(ctx context.Context, actor account.Actor, req accountapp.CookAvailabilityRequest) (*accountapp.AccountResponse, error)
	SetDriverDuty(ctx context.Context, actor account.Actor, req accountapp.DriverDutyRequest) (*accountapp.AccountResponse, error)
	UpdateDriverLocation(ctx context.Context, actor account.Actor, req accountapp.LocationRequest) (*accountapp.AccountResponse, error)
	Suspend(ctx context.Context, actor account.Actor, id uuid.UUID, reason string) (*accountapp.AccountResponse, error)
	Reactivate(ctx context.Context, actor account.Actor, id uuid.UUID) (*accountapp.AccountResponse, error)
	List(ctx context.Context, filter accountapp.AccountListFilter) ([]accountapp.AccountResponse, int64, error)
	RegisterDevice(ctx context.Context, actor account.Actor, req accountapp.DeviceRequest) error
}

// AccountHandler serves the caller's profile and the admin account console
type AccountHandler struct {
	BaseHandler
	accounts AccountUseCases
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts AccountUseCases) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Register handles POST /accounts: create the caller's marketplace profile
func (h *AccountHandler) Register(c *gin.Context) {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		h.Error(c, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	var req accountapp.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.accounts.Register(c.Request.Context(), subject, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Me handles GET /accounts/me: get the caller's profile
func (h *AccountHandler) Me(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	resp, err := h.accounts.Get(c.Request.Context(), actor.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateMe handles PUT /accounts/me: replace the caller's contact details
func (h *AccountHandler) UpdateMe(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req accountapp.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.accounts.UpdateProfile(c.Request.Context(), actor.ID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetAvailability opens or closes the cook's kitchen
func (h *AccountHandler) SetAvailability(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req accountapp.CookAvailabilityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.accounts.SetCookAvailability(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetDuty toggles the driver's duty status
func (h *AccountHandler) SetDuty(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req accountapp.DriverDutyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.accounts.SetDriverDuty(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateLocation records the driver's position
func (h *AccountHandler) UpdateLocation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req accountapp.LocationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.accounts.UpdateDriverLocation(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterDevice stores a push token
func (h *AccountHandler) RegisterDevice(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req accountapp.DeviceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.accounts.RegisterDevice(c.Request.Context(), actor, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// List handles GET /admin/accounts: list accounts
func (h *AccountHandler) List(c *gin.Context) {
	var filter accountapp.AccountListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	accounts, total, err := h.accounts.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, accounts, total, filter.Page, filter.PageSize)
}

// Suspend handles POST /admin/accounts/{id}/suspend: suspend an account
func (h *AccountHandler) Suspend(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req accountapp.SuspendRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.accounts.Suspend(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reactivate lifts a suspension (admin)
func (h *AccountHandler) Reactivate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.accounts.Reactivate(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
