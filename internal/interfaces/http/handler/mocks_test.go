package handler

import (
	"context"

	"github.com/google/uuid"
	accountapp "github.com/homechef/backend/internal/application/account"
	"github.com/homechef/backend/internal/application/event"
	loyaltyapp "github.com/homechef/backend/internal/application/loyalty"
	orderingapp "github.com/homechef/backend/internal/application/ordering"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/stretchr/testify/mock"
)

func result[T any](args mock.Arguments) (*T, error) {
	if v, ok := args.Get(0).(*T); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func page[T any](args mock.Arguments) ([]T, int64, error) {
	items, _ := args.Get(0).([]T)
	return items, args.Get(1).(int64), args.Error(2)
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) PlaceOrder(ctx context.Context, actor account.Actor, req orderingapp.PlaceOrderRequest) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, req))
}

func (m *mockOrders) Get(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, id))
}

func (m *mockOrders) List(ctx context.Context, actor account.Actor, filter orderingapp.OrderListFilter) ([]orderingapp.OrderResponse, int64, error) {
	return page[orderingapp.OrderResponse](m.Called(ctx, actor, filter))
}

func (m *mockOrders) ListAll(ctx context.Context, filter orderingapp.OrderListFilter) ([]orderingapp.OrderResponse, int64, error) {
	return page[orderingapp.OrderResponse](m.Called(ctx, filter))
}

func (m *mockOrders) Cancel(ctx context.Context, actor account.Actor, id uuid.UUID, reason string) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, id, reason))
}

func (m *mockOrders) Complete(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, id))
}

func (m *mockOrders) Stats(ctx context.Context) (*orderingapp.StatsResponse, error) {
	return result[orderingapp.StatsResponse](m.Called(ctx))
}

type mockCash struct{ mock.Mock }

func (m *mockCash) PlaceCashOrder(ctx context.Context, actor account.Actor, req orderingapp.PlaceCashOrderRequest) (*orderingapp.CashOrderResponse, error) {
	return result[orderingapp.CashOrderResponse](m.Called(ctx, actor, req))
}

func (m *mockCash) CollectCash(ctx context.Context, actor account.Actor, id uuid.UUID, req orderingapp.CollectCashRequest) (*orderingapp.CollectCashResponse, error) {
	return result[orderingapp.CollectCashResponse](m.Called(ctx, actor, id, req))
}

func (m *mockCash) DriverCashBalance(ctx context.Context, actor account.Actor, driverID uuid.UUID) (*orderingapp.CashBalanceResponse, error) {
	return result[orderingapp.CashBalanceResponse](m.Called(ctx, actor, driverID))
}

func (m *mockCash) SettleDriverCash(ctx context.Context, actor account.Actor, driverID uuid.UUID) (*orderingapp.CashBalanceResponse, error) {
	return result[orderingapp.CashBalanceResponse](m.Called(ctx, actor, driverID))
}

type mockApprovals struct{ mock.Mock }

func (m *mockApprovals) ListPending(ctx context.Context, actor account.Actor) ([]orderingapp.OrderResponse, error) {
	args := m.Called(ctx, actor)
	items, _ := args.Get(0).([]orderingapp.OrderResponse)
	return items, args.Error(1)
}

func (m *mockApprovals) Accept(ctx context.Context, actor account.Actor, id uuid.UUID, req orderingapp.AcceptRequest) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, id, req))
}

func (m *mockApprovals) Reject(ctx context.Context, actor account.Actor, id uuid.UUID, reason string) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, id, reason))
}

func (m *mockApprovals) StartPreparing(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, id))
}

func (m *mockApprovals) MarkReady(ctx context.Context, actor account.Actor, id uuid.UUID) (*orderingapp.OrderResponse, error) {
	return result[orderingapp.OrderResponse](m.Called(ctx, actor, id))
}

type mockLoyalty struct{ mock.Mock }

func (m *mockLoyalty) Get(ctx context.Context, clientID uuid.UUID) (*loyaltyapp.AccountResponse, error) {
	return result[loyaltyapp.AccountResponse](m.Called(ctx, clientID))
}

func (m *mockLoyalty) Ledger(ctx context.Context, clientID uuid.UUID, p, pageSize int) ([]loyaltyapp.LedgerEntryResponse, int64, error) {
	return page[loyaltyapp.LedgerEntryResponse](m.Called(ctx, clientID, p, pageSize))
}

func (m *mockLoyalty) Quote(ctx context.Context, clientID uuid.UUID, req loyaltyapp.QuoteRequest) (*loyaltyapp.QuoteResponse, error) {
	return result[loyaltyapp.QuoteResponse](m.Called(ctx, clientID, req))
}

func (m *mockLoyalty) Adjust(ctx context.Context, actor account.Actor, clientID uuid.UUID, req loyaltyapp.AdjustRequest) (*loyaltyapp.AccountResponse, error) {
	return result[loyaltyapp.AccountResponse](m.Called(ctx, actor, clientID, req))
}

type mockOutbox struct{ mock.Mock }

func (m *mockOutbox) GetDeadLetterEntries(ctx context.Context, filter event.OutboxFilter) ([]event.OutboxEntryDTO, int64, error) {
	return page[event.OutboxEntryDTO](m.Called(ctx, filter))
}

func (m *mockOutbox) GetEntry(ctx context.Context, id uuid.UUID) (*event.OutboxEntryDTO, error) {
	return result[event.OutboxEntryDTO](m.Called(ctx, id))
}

func (m *mockOutbox) RetryDeadEntry(ctx context.Context, id uuid.UUID) (*event.OutboxEntryDTO, error) {
	return result[event.OutboxEntryDTO](m.Called(ctx, id))
}

func (m *mockOutbox) RetryAllDeadEntries(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOutbox) GetStats(ctx context.Context) (*event.OutboxStatsDTO, error) {
	return result[event.OutboxStatsDTO](m.Called(ctx))
}

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) Register(ctx context.Context, subject uuid.UUID, req accountapp.RegisterRequest) (*accountapp.AccountResponse, error) {
	return result[accountapp.AccountResponse](m.Called(ctx, subject, req))
}

func (m *mockAccounts) Get(ctx context.Context, id uuid.UUID) (*accountapp.AccountResponse, error) {
	return result[accountapp.AccountResponse](m.Called(ctx, id))
}

func (m *mockAccounts) UpdateProfile(ctx context.Context, id uuid.UUID, req accountapp.UpdateProfileRequest) (*accountapp.AccountResponse, error) {
	return result[accountapp.AccountResponse](m.Called(ctx, id, req))
}

func (m *mockAccounts) SetCookAvailability(ctx context.Context, actor account.Actor, req accountapp.CookAvailabilityRequest) (*accountapp.AccountResponse, error) {
	return result[accountapp.AccountResponse](m.Called(ctx, actor, req))
}

func (m *mockAccounts) SetDriverDuty(ctx context.Context, actor account.Actor, req accountapp.DriverDutyRequest) (*accountapp.AccountResponse, error) {
	return result[accountapp.AccountResponse](m.Called(ctx, actor, req))
}

func (m *mockAccounts) UpdateDriverLocation(ctx context.Context, actor account.Actor, req accountapp.LocationRequest) (*accountapp.AccountResponse, error) {
	return result[accountapp.AccountResponse](m.Called(ctx, actor, req))
}

func (m *mockAccounts) Suspend(ctx context.Context, actor account.Actor, id uuid.UUID, reason string) (*accountapp.AccountResponse, error) {
	return result[accountapp.AccountResponse](m.Called(ctx, actor, id, reason))
}

func (m *mockAccounts) Reactivate(ctx context.Context, actor account.Actor, id uuid.UUID) (*accountapp.AccountResponse, error) {
	return result[accountapp.AccountResponse](m.Called(ctx, actor, id))
}

func (m *mockAccounts) List(ctx context.Context, filter accountapp.AccountListFilter) ([]accountapp.AccountResponse, int64, error) {
	return page[accountapp.AccountResponse](m.Called(ctx, filter))
}

func (m *mockAccounts) RegisterDevice(ctx context.Context, actor account.Actor, req accountapp.DeviceRequest) error {
	return m.Called(ctx, actor, req).Error(0)
}
