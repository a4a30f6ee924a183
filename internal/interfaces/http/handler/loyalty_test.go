package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	loyaltyapp "github.com/homechef/backend/internal/application/loyalty"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoyaltyHandler_Get(t *testing.T) {
	client := actorOf(account.RoleClient)
	svc := new(mockLoyalty)
	svc.On("Get", mock.Anything, client.ID).
		Return(&loyaltyapp.AccountResponse{ClientID: client.ID, Balance: 320, Tier: loyalty.TierBronze}, nil)
	h := NewLoyaltyHandler(svc)

	w, env := serve(t, h.Get, call{method: http.MethodGet, route: "/loyalty", url: "/loyalty", actor: client})

	assert.Equal(t, http.StatusOK, w.Code)
	got := decode[loyaltyapp.AccountResponse](t, env.Data)
	assert.Equal(t, int64(320), got.Balance)
	assert.Equal(t, loyalty.TierBronze, got.Tier)
}

func TestLoyaltyHandler_Ledger(t *testing.T) {
	client := actorOf(account.RoleClient)
	svc := new(mockLoyalty)
	svc.On("Ledger", mock.Anything, client.ID, 0, 0).
		Return([]loyaltyapp.LedgerEntryResponse{{ID: uuid.New(), Points: 40}}, int64(1), nil)
	h := NewLoyaltyHandler(svc)

	w, env := serve(t, h.Ledger, call{method: http.MethodGet, route: "/loyalty/ledger", url: "/loyalty/ledger", actor: client})

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Page)
	assert.Equal(t, 20, env.Meta.PageSize)
	assert.Equal(t, 1, env.Meta.TotalPages)
}

func TestLoyaltyHandler_Quote(t *testing.T) {
	client := actorOf(account.RoleClient)

	t.Run("quotes", func(t *testing.T) {
		svc := new(mockLoyalty)
		svc.On("Quote", mock.Anything, client.ID, mock.MatchedBy(func(r loyaltyapp.QuoteRequest) bool {
			return r.Points == 500 && r.Subtotal.Equal(decimal.RequireFromString("18.40"))
		})).Return(&loyaltyapp.QuoteResponse{Requested: 500, Points: 500, Discount: decimal.NewFromInt(5)}, nil)
		h := NewLoyaltyHandler(svc)

		w, env := serve(t, h.Quote, call{method: http.MethodPost, route: "/loyalty/quote", url: "/loyalty/quote",
			body: `{"points":500,"subtotal":"18.40"}`, actor: client})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", decode[loyaltyapp.QuoteResponse](t, env.Data).Discount.String())
		svc.AssertExpectations(t)
	})

	t.Run("subtotal with three decimals", func(t *testing.T) {
		h := NewLoyaltyHandler(new(mockLoyalty))

		w, env := serve(t, h.Quote, call{method: http.MethodPost, route: "/loyalty/quote", url: "/loyalty/quote",
			body: `{"points":500,"subtotal":"18.405"}`, actor: client})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "subtotal", env.Error.Details[0].Field)
		assert.Equal(t, "must be a non-negative amount with at most 2 decimals", env.Error.Details[0].Message)
	})
}

func TestLoyaltyHandler_Adjust(t *testing.T) {
	admin := actorOf(account.RoleAdmin)
	clientID := uuid.New()
	req := loyaltyapp.AdjustRequest{Points: -50, Reason: "duplicate earn"}
	svc := new(mockLoyalty)
	svc.On("Adjust", mock.Anything, *admin, clientID, req).
		Return(&loyaltyapp.AccountResponse{ClientID: clientID, Balance: 150}, nil)
	h := NewLoyaltyHandler(svc)

	w, env := serve(t, h.Adjust, call{method: http.MethodPost, route: "/admin/loyalty/:clientId/adjust",
		url: "/admin/loyalty/" + clientID.String() + "/adjust", body: req, actor: admin})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(150), decode[loyaltyapp.AccountResponse](t, env.Data).Balance)
}
