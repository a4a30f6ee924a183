package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	loyaltyapp "github.com/homechef/backend/internal/application/loyalty"
	"github.com/homechef/backend/internal/domain/account"
)

// LoyaltyUseCases is what LoyaltyHandler needs from the loyalty service
type LoyaltyUseCases interface {
	Get(ctx context.Context, clientID uuid.UUID) (*loyaltyapp.AccountResponse, error)
	Ledger(ctx context.Context, clientID uuid.UUID, page, pageSize int) ([]loyaltyapp.LedgerEntryResponse, int64, error)
	Quote(ctx context.Context, clientID uuid.UUID, req loyaltyapp.QuoteRequest) (*loyaltyapp.QuoteResponse, error)
	Adjust(ctx context.Context, actor account.Actor, clientID uuid.UUID, req loyaltyapp.AdjustRequest) (*loyaltyapp.AccountResponse, error)
}

// LoyaltyHandler serves points balances, the ledger and redemption quotes
type LoyaltyHandler struct {
	BaseHandler
	loyalty LoyaltyUseCases
}

// NewLoyaltyHandler creates a new LoyaltyHandler
func NewLoyaltyHandler(loyalty LoyaltyUseCases) *LoyaltyHandler {
	return &LoyaltyHandler{loyalty: loyalty}
}

// Get handles GET /loyalty: the caller's points balance and tier
func (h *LoyaltyHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	resp, err := h.loyalty.Get(c.Request.Context(), actor.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Ledger pages through the caller's balance movements
func (h *LoyaltyHandler) Ledger(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q PageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	entries, total, err := h.loyalty.Ledger(c.Request.Context(), actor.ID, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, q.Page, q.PageSize)
}

// Quote prices a redemption without spending points
func (h *LoyaltyHandler) Quote(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req loyaltyapp.QuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.loyalty.Quote(c.Request.Context(), actor.ID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Adjust corrects a client's balance (admin)
func (h *LoyaltyHandler) Adjust(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	clientID, ok := h.pathID(c, "clientId")
	if !ok {
		return
	}
	var req loyaltyapp.AdjustRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.loyalty.Adjust(c.Request.Context(), actor, clientID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
