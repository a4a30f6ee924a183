package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	orderingapp "github.com/homechef/backend/internal/application/ordering"
	routingapp "github.com/homechef/backend/internal/application/routing"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDeliveries struct {
	mock.Mock
}

func (m *mockDeliveries) ListAvailable(ctx context.Context, actor account.Actor) ([]orderingapp.AvailableOrderResponse, error) {
	args := m.Called(ctx, actor)
	items, _ := args.Get(0).([]orderingapp.AvailableOrderResponse)
	return items, args.Error(1)
}

func (m *mockDeliveries) Claim(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, id))
}

func (m *mockDeliveries) Assign(ctx context.Context, actor account.Actor, id, driverID uuid.UUID) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, id, driverID))
}

func (m *mockDeliveries) Release(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, id))
}

func (m *mockDeliveries) PickUp(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, id))
}

func (m *mockDeliveries) MarkDelivered(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, id))
}

type routePlannerFunc func(ctx context.Context, actor account.Actor) (*routingapp.RouteResponse, error)

func (f routePlannerFunc) PlanRoute(ctx context.Context, actor account.Actor) (*routingapp.RouteResponse, error) {
	return f(ctx, actor)
}

func TestDeliveryHandler_Claim(t *testing.T) {
	driver := actorOf(account.RoleDriver)
	id := uuid.New()
	deliveries := new(mockDeliveries)
	deliveries.On("Claim", mock.Anything, *driver, id).
		Return(&orderingapp.OrderResponse{ID: id, Status: ordering.StatusAssigned, DriverID: &driver.ID}, nil)
	h := NewDeliveryHandler(deliveries, new(mockCash), nil)

	w, env := serve(t, h.Claim, call{method: http.MethodPost, route: "/driver/orders/:id/claim",
		url: "/driver/orders/" + id.String() + "/claim", actor: driver})

	assert.Equal(t, http.StatusOK, w.Code)
	got := decode[orderingapp.OrderResponse](t, env.Data)
	require.NotNil(t, got.DriverID)
	assert.Equal(t, driver.ID, *got.DriverID)
}

func TestDeliveryHandler_CollectCash(t *testing.T) {
	driver := actorOf(account.RoleDriver)
	id := uuid.New()
	url := "/driver/orders/" + id.String() + "/collect-cash"
	route := "/driver/orders/:id/collect-cash"

	t.Run("collects", func(t *testing.T) {
		cash := new(mockCash)
		cash.On("CollectCash", mock.Anything, *driver, id, mock.MatchedBy(func(r orderingapp.CollectCashRequest) bool {
			return r.Code == "0427" && r.Tendered.Equal(decimal.RequireFromString("20"))
		})).Return(&orderingapp.CollectCashResponse{Change: decimal.RequireFromString("2.50")}, nil)
		h := NewDeliveryHandler(new(mockDeliveries), cash, nil)

		w, env := serve(t, h.CollectCash, call{method: http.MethodPost, route: route, url: url,
			body: `{"code":"0427","tendered":"20"}`, actor: driver})

		assert.Equal(t, http.StatusOK, w.Code)
		got := decode[orderingapp.CollectCashResponse](t, env.Data)
		assert.Equal(t, "2.5", got.Change.String())
		cash.AssertExpectations(t)
	})

	t.Run("code must be four digits", func(t *testing.T) {
		h := NewDeliveryHandler(new(mockDeliveries), new(mockCash), nil)

		w, env := serve(t, h.CollectCash, call{method: http.MethodPost, route: route, url: url,
			body: `{"code":"42a7","tendered":"20"}`, actor: driver})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "code", env.Error.Details[0].Field)
	})

	t.Run("tendered cannot be negative", func(t *testing.T) {
		h := NewDeliveryHandler(new(mockDeliveries), new(mockCash), nil)

		w, env := serve(t, h.CollectCash, call{method: http.MethodPost, route: route, url: url,
			body: `{"code":"0427","tendered":"-1"}`, actor: driver})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "tendered", env.Error.Details[0].Field)
	})

	t.Run("wrong handoff code", func(t *testing.T) {
		cash := new(mockCash)
		cash.On("CollectCash", mock.Anything, *driver, id, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_HANDOFF_CODE", "Handoff code does not match"))
		h := NewDeliveryHandler(new(mockDeliveries), cash, nil)

		w, env := serve(t, h.CollectCash, call{method: http.MethodPost, route: route, url: url,
			body: `{"code":"1111","tendered":"20"}`, actor: driver})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_HANDOFF_CODE", env.Error.Code)
	})
}

func TestDeliveryHandler_CashBalance(t *testing.T) {
	driver := actorOf(account.RoleDriver)
	cash := new(mockCash)
	cash.On("DriverCashBalance", mock.Anything, *driver, driver.ID).
		Return(&orderingapp.CashBalanceResponse{DriverID: driver.ID, Orders: 3}, nil)
	h := NewDeliveryHandler(new(mockDeliveries), cash, nil)

	w, env := serve(t, h.CashBalance, call{method: http.MethodGet, route: "/driver/cash", url: "/driver/cash", actor: driver})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[orderingapp.CashBalanceResponse](t, env.Data).Orders)
}

func TestDeliveryHandler_Route(t *testing.T) {
	driver := actorOf(account.RoleDriver)
	h := NewDeliveryHandler(new(mockDeliveries), new(mockCash), routePlannerFunc(
		func(_ context.Context, actor account.Actor) (*routingapp.RouteResponse, error) {
			if actor.ID != driver.ID {
				return nil, shared.ErrForbidden
			}
			return &routingapp.RouteResponse{TotalKm: 4.2}, nil
		}))

	w, env := serve(t, h.Route, call{method: http.MethodGet, route: "/driver/route", url: "/driver/route", actor: driver})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 4.2, decode[routingapp.RouteResponse](t, env.Data).TotalKm, 1e-9)
}

func TestDeliveryHandler_Assign(t *testing.T) {
	admin := actorOf(account.RoleAdmin)
	id, driverID := uuid.New(), uuid.New()
	deliveries := new(mockDeliveries)
	deliveries.On("Assign", mock.Anything, *admin, id, driverID).
		Return(&orderingapp.OrderResponse{ID: id, DriverID: &driverID}, nil)
	h := NewDeliveryHandler(deliveries, new(mockCash), nil)

	w, _ := serve(t, h.Assign, call{method: http.MethodPost, route: "/admin/orders/:id/assign",
		url: "/admin/orders/" + id.String() + "/assign", body: orderingapp.AssignRequest{DriverID: driverID}, actor: admin})

	assert.Equal(t, http.StatusOK, w.Code)
	deliveries.AssertExpectations(t)
}
