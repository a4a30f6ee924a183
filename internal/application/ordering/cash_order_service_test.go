package ordering

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/homechef/backend/internal/domain/menu"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (f *fixture) cashService() *CashOrderService {
	return NewCashOrderService(f.orderService())
}

func expectCashCheckout(t *testing.T, f *fixture, price string) (*account.Account, menu.Dish) {
	t.Helper()
	ctx := context.Background()
	client := newAccount(t, account.RoleClient)
	cook := newAccount(t, account.RoleCook)
	dish := newTestDish(t, cook.ID, price)
	f.accounts.On("FindByID", ctx, client.ID).Return(client, nil)
	f.accounts.On("FindByIDForUpdate", ctx, client.ID).Return(client, nil)
	f.accounts.On("FindByID", ctx, cook.ID).Return(cook, nil)
	f.dishes.On("FindByIDs", ctx, []uuid.UUID{dish.ID}).Return([]menu.Dish{dish}, nil)
	f.loyalty.On("QuoteWith", ctx, client.ID, int64(0), mock.Anything).Return(loyalty.Quote{Discount: decimal.Zero}, nil)
	f.orders.On("GenerateOrderNumber", ctx, testNow).Return("ORD-20260314-00011", nil)
	return client, dish
}

func TestCashOrderService_PlaceCashOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("returns handoff code once", func(t *testing.T) {
		f := newFixture()
		client, dish := expectCashCheckout(t, f, "12.50")
		f.orders.On("CountOpenCashOrders", ctx, client.ID).Return(int64(1), nil)
		var created *ordering.Order
		f.orders.On("CreateWithEvents", ctx, mock.AnythingOfType("*ordering.Order"), mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*ordering.Order) }).
			Return(nil)
		f.loyalty.On("RedeemWith", ctx, client.ID, mock.Anything, mock.Anything).Return(nil)

		resp, err := f.cashService().PlaceCashOrder(ctx, actorOf(client), PlaceCashOrderRequest{
			Items: []OrderLineRequest{{DishID: dish.ID, Quantity: 2}},
		})
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^\d{4}$`), resp.HandoffCode)
		assert.Equal(t, ordering.PaymentCash, resp.Order.PaymentMethod)
		assert.Equal(t, ordering.PaymentPending, resp.Order.PaymentStatus)
		require.NotNil(t, created)
		assert.NotEqual(t, resp.HandoffCode, created.CashCodeHash)
		assert.True(t, created.VerifyHandoffCode(resp.HandoffCode))
	})

	t.Run("over the cash limit", func(t *testing.T) {
		f := newFixture()
		client, dish := expectCashCheckout(t, f, "80.00")

		_, err := f.cashService().PlaceCashOrder(ctx, actorOf(client), PlaceCashOrderRequest{
			Items: []OrderLineRequest{{DishID: dish.ID, Quantity: 2}},
		})
		assert.Equal(t, "CASH_LIMIT_EXCEEDED", errorCode(err))
		f.orders.AssertNotCalled(t, "CreateWithEvents", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("too many open cash orders", func(t *testing.T) {
		f := newFixture()
		client, dish := expectCashCheckout(t, f, "10.00")
		f.orders.On("CountOpenCashOrders", ctx, client.ID).Return(int64(2), nil)

		_, err := f.cashService().PlaceCashOrder(ctx, actorOf(client), PlaceCashOrderRequest{
			Items: []OrderLineRequest{{DishID: dish.ID, Quantity: 1}},
		})
		assert.Equal(t, "CASH_ORDER_LIMIT", errorCode(err))
		f.accounts.AssertCalled(t, "FindByIDForUpdate", ctx, client.ID)
	})

	t.Run("client lock fails before counting", func(t *testing.T) {
		f := newFixture()
		client := newAccount(t, account.RoleClient)
		cook := newAccount(t, account.RoleCook)
		dish := newTestDish(t, cook.ID, "10.00")
		f.accounts.On("FindByID", ctx, client.ID).Return(client, nil)
		f.accounts.On("FindByIDForUpdate", ctx, client.ID).Return(nil, errors.New("lock timeout"))
		f.accounts.On("FindByID", ctx, cook.ID).Return(cook, nil)
		f.dishes.On("FindByIDs", ctx, []uuid.UUID{dish.ID}).Return([]menu.Dish{dish}, nil)
		f.loyalty.On("QuoteWith", ctx, client.ID, int64(0), mock.Anything).Return(loyalty.Quote{Discount: decimal.Zero}, nil)
		f.orders.On("GenerateOrderNumber", ctx, testNow).Return("ORD-20260314-00012", nil)

		_, err := f.cashService().PlaceCashOrder(ctx, actorOf(client), PlaceCashOrderRequest{
			Items: []OrderLineRequest{{DishID: dish.ID, Quantity: 1}},
		})
		assert.EqualError(t, err, "lock timeout")
		f.orders.AssertNotCalled(t, "CountOpenCashOrders", mock.Anything, mock.Anything)
		f.orders.AssertNotCalled(t, "CreateWithEvents", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCashOrderService_CollectCash(t *testing.T) {
	ctx := context.Background()
	driverID := uuid.New()
	driver := account.Actor{ID: driverID, Role: account.RoleDriver}

	t.Run("returns change", func(t *testing.T) {
		f := newFixture()
		o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCash, ordering.StatusPickedUp, driverID)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLockAndEvents", ctx, o, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 2 && events[0].EventType() == ordering.EventTypeCashCollected
		})).Return(nil)

		resp, err := f.cashService().CollectCash(ctx, driver, o.ID, CollectCashRequest{
			Code:     "4821",
			Tendered: decimal.NewFromInt(30),
		})
		require.NoError(t, err)
		assert.Equal(t, "2.5", resp.Change.String())
		assert.Equal(t, ordering.StatusDelivered, resp.Order.Status)
		assert.Equal(t, ordering.PaymentCollected, resp.Order.PaymentStatus)
		f.orders.AssertExpectations(t)
	})

	t.Run("wrong code is counted", func(t *testing.T) {
		f := newFixture()
		o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCash, ordering.StatusPickedUp, driverID)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLockAndEvents", ctx, mock.MatchedBy(func(saved *ordering.Order) bool {
			return saved.HandoffAttempts == 1 && saved.Status == ordering.StatusPickedUp
		}), mock.Anything).Return(nil).Once()

		_, err := f.cashService().CollectCash(ctx, driver, o.ID, CollectCashRequest{
			Code:     "0000",
			Tendered: decimal.NewFromInt(30),
		})
		assert.Equal(t, "INVALID_HANDOFF_CODE", errorCode(err))
		f.orders.AssertExpectations(t)
	})

	t.Run("locked after too many wrong codes", func(t *testing.T) {
		f := newFixture()
		o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCash, ordering.StatusPickedUp, driverID)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLockAndEvents", ctx, o, mock.Anything).Return(nil).Times(ordering.MaxHandoffAttempts)
		svc := f.cashService()

		for i := 0; i < ordering.MaxHandoffAttempts; i++ {
			_, err := svc.CollectCash(ctx, driver, o.ID, CollectCashRequest{Code: "0000", Tendered: decimal.NewFromInt(30)})
			assert.Equal(t, "INVALID_HANDOFF_CODE", errorCode(err))
		}
		_, err := svc.CollectCash(ctx, driver, o.ID, CollectCashRequest{Code: "4821", Tendered: decimal.NewFromInt(30)})
		assert.Equal(t, "HANDOFF_LOCKED", errorCode(err))
		assert.Equal(t, ordering.StatusPickedUp, o.Status)
		f.orders.AssertNumberOfCalls(t, "SaveWithLockAndEvents", ordering.MaxHandoffAttempts)
	})

	t.Run("short payment", func(t *testing.T) {
		f := newFixture()
		o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCash, ordering.StatusPickedUp, driverID)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.cashService().CollectCash(ctx, driver, o.ID, CollectCashRequest{
			Code:     "4821",
			Tendered: decimal.NewFromInt(20),
		})
		assert.Equal(t, "INSUFFICIENT_CASH", errorCode(err))
	})
}

func collectedOrder(t *testing.T, driverID uuid.UUID) ordering.Order {
	t.Helper()
	o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCash, ordering.StatusPickedUp, driverID)
	_, err := o.CollectCash("4821", decimal.NewFromInt(30), testNow)
	require.NoError(t, err)
	o.ClearDomainEvents()
	o.MarkPersisted()
	return *o
}

func TestCashOrderService_DriverCashBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	driverID := uuid.New()
	f.orders.On("FindCollectedCashByDriver", ctx, driverID).
		Return([]ordering.Order{collectedOrder(t, driverID), collectedOrder(t, driverID)}, nil)

	bal, err := f.cashService().DriverCashBalance(ctx, account.Actor{ID: driverID, Role: account.RoleDriver}, driverID)
	require.NoError(t, err)
	assert.Equal(t, "55", bal.Amount.String())
	assert.Equal(t, 2, bal.Orders)

	_, err = f.cashService().DriverCashBalance(ctx, account.Actor{ID: uuid.New(), Role: account.RoleDriver}, driverID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCashOrderService_SettleDriverCash(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	driverID := uuid.New()
	f.orders.On("FindCollectedCashByDriver", ctx, driverID).
		Return([]ordering.Order{collectedOrder(t, driverID), collectedOrder(t, driverID)}, nil)
	f.orders.On("SaveWithLockAndEvents", ctx, mock.MatchedBy(func(o *ordering.Order) bool {
		return o.PaymentStatus == ordering.PaymentSettled
	}), mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == ordering.EventTypeCashSettled
	})).Return(nil).Twice()

	res, err := f.cashService().SettleDriverCash(ctx, account.Actor{ID: uuid.New(), Role: account.RoleAdmin}, driverID)
	require.NoError(t, err)
	assert.Equal(t, "55", res.Amount.String())
	assert.Equal(t, 2, res.Orders)
	f.orders.AssertExpectations(t)

	_, err = f.cashService().SettleDriverCash(ctx, account.Actor{ID: driverID, Role: account.RoleDriver}, driverID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
