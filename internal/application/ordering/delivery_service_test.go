package ordering

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDeliveryService_ListAvailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	driver := newAccount(t, account.RoleDriver)
	driver.Driver.LastLocation = &valueobject.Point{Lat: 40.80, Lng: -73.95}

	far := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCard, ordering.StatusReady, uuid.Nil)
	near := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCard, ordering.StatusReady, uuid.Nil)
	near.Pickup.Location = valueobject.Point{Lat: 40.79, Lng: -73.95}

	f.accounts.On("FindByID", ctx, driver.ID).Return(driver, nil)
	f.orders.On("FindReadyUnassignedNear", ctx, *driver.Driver.LastLocation, f.config.BatchSize).
		Return([]ordering.Order{*far, *near}, nil)

	out, err := f.deliveryService().ListAvailable(ctx, actorOf(driver))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, near.ID, out[0].Order.ID)
	assert.Equal(t, far.ID, out[1].Order.ID)
	require.NotNil(t, out[0].DistanceKm)
	assert.InDelta(t, 1.11, *out[0].DistanceKm, 0.01)

	t.Run("unknown location keeps queue order", func(t *testing.T) {
		f := newFixture()
		driver := newAccount(t, account.RoleDriver)
		f.accounts.On("FindByID", ctx, driver.ID).Return(driver, nil)
		f.orders.On("FindReadyUnassigned", ctx, f.config.BatchSize).Return([]ordering.Order{*far, *near}, nil)

		out, err := f.deliveryService().ListAvailable(ctx, actorOf(driver))
		require.NoError(t, err)
		assert.Equal(t, far.ID, out[0].Order.ID)
		assert.Nil(t, out[0].DistanceKm)
		f.orders.AssertNotCalled(t, "FindReadyUnassignedNear", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeliveryService_Claim(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns the driver", func(t *testing.T) {
		f := newFixture()
		driver := newAccount(t, account.RoleDriver)
		o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCard, ordering.StatusReady, uuid.Nil)
		f.accounts.On("FindByIDForUpdate", ctx, driver.ID).Return(driver, nil)
		f.orders.On("CountActiveByDriver", ctx, driver.ID).Return(int64(2), nil)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLockAndEvents", ctx, o, mock.Anything).Return(nil)

		resp, err := f.deliveryService().Claim(ctx, actorOf(driver), o.ID)
		require.NoError(t, err)
		assert.Equal(t, ordering.StatusAssigned, resp.Status)
		require.NotNil(t, resp.DriverID)
		assert.Equal(t, driver.ID, *resp.DriverID)
	})

	t.Run("at capacity", func(t *testing.T) {
		f := newFixture()
		driver := newAccount(t, account.RoleDriver)
		f.accounts.On("FindByIDForUpdate", ctx, driver.ID).Return(driver, nil)
		f.orders.On("CountActiveByDriver", ctx, driver.ID).Return(int64(3), nil)

		_, err := f.deliveryService().Claim(ctx, actorOf(driver), uuid.New())
		assert.Equal(t, "MAX_ACTIVE_DELIVERIES", errorCode(err))
		f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("locks the driver before counting", func(t *testing.T) {
		f := newFixture()
		driver := newAccount(t, account.RoleDriver)
		o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCard, ordering.StatusReady, uuid.Nil)
		var calls []string
		f.accounts.On("FindByIDForUpdate", ctx, driver.ID).
			Run(func(mock.Arguments) { calls = append(calls, "lock") }).
			Return(driver, nil)
		f.orders.On("CountActiveByDriver", ctx, driver.ID).
			Run(func(mock.Arguments) { calls = append(calls, "count") }).
			Return(int64(0), nil)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLockAndEvents", ctx, o, mock.Anything).
			Run(func(mock.Arguments) { calls = append(calls, "save") }).
			Return(nil)

		_, err := f.deliveryService().Claim(ctx, actorOf(driver), o.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"lock", "count", "save"}, calls)
		f.accounts.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("off duty", func(t *testing.T) {
		f := newFixture()
		driver := newAccount(t, account.RoleDriver)
		driver.Driver.OnDuty = false
		f.accounts.On("FindByIDForUpdate", ctx, driver.ID).Return(driver, nil)

		_, err := f.deliveryService().Claim(ctx, actorOf(driver), uuid.New())
		assert.Equal(t, "DRIVER_UNAVAILABLE", errorCode(err))
	})

	t.Run("lost race", func(t *testing.T) {
		f := newFixture()
		driver := newAccount(t, account.RoleDriver)
		o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCard, ordering.StatusReady, uuid.Nil)
		f.accounts.On("FindByIDForUpdate", ctx, driver.ID).Return(driver, nil)
		f.orders.On("CountActiveByDriver", ctx, driver.ID).Return(int64(0), nil)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLockAndEvents", ctx, o, mock.Anything).Return(shared.ErrConcurrencyConflict)

		_, err := f.deliveryService().Claim(ctx, actorOf(driver), o.ID)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("not ready yet", func(t *testing.T) {
		f := newFixture()
		driver := newAccount(t, account.RoleDriver)
		o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCard, ordering.StatusPreparing, uuid.Nil)
		f.accounts.On("FindByIDForUpdate", ctx, driver.ID).Return(driver, nil)
		f.orders.On("CountActiveByDriver", ctx, driver.ID).Return(int64(0), nil)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.deliveryService().Claim(ctx, actorOf(driver), o.ID)
		assert.Equal(t, "INVALID_STATE", errorCode(err))
	})
}

func TestDeliveryService_Assign(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	admin := account.Actor{ID: uuid.New(), Role: account.RoleAdmin}
	cook := newAccount(t, account.RoleCook)
	f.accounts.On("FindByIDForUpdate", ctx, cook.ID).Return(cook, nil)

	_, err := f.deliveryService().Assign(ctx, admin, uuid.New(), cook.ID)
	assert.Equal(t, "NOT_A_DRIVER", errorCode(err))

	_, err = f.deliveryService().Assign(ctx, account.Actor{ID: uuid.New(), Role: account.RoleDriver}, uuid.New(), cook.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestDeliveryService_Handoff(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	driverID := uuid.New()
	driver := account.Actor{ID: driverID, Role: account.RoleDriver}
	o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCard, ordering.StatusAssigned, driverID)
	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
	f.orders.On("SaveWithLockAndEvents", ctx, o, mock.Anything).Return(nil)
	svc := f.deliveryService()

	_, err := svc.PickUp(ctx, account.Actor{ID: uuid.New(), Role: account.RoleDriver}, o.ID)
	assert.Equal(t, "NOT_ASSIGNED", errorCode(err))

	resp, err := svc.PickUp(ctx, driver, o.ID)
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusPickedUp, resp.Status)

	resp, err = svc.MarkDelivered(ctx, driver, o.ID)
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusDelivered, resp.Status)
}

func TestDeliveryService_Release(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	driverID := uuid.New()
	o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCard, ordering.StatusAssigned, driverID)
	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
	f.orders.On("SaveWithLockAndEvents", ctx, o, mock.Anything).Return(nil)

	resp, err := f.deliveryService().Release(ctx, account.Actor{ID: driverID, Role: account.RoleDriver}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusReady, resp.Status)
	assert.Nil(t, resp.DriverID)
}

func TestDeliveryService_MarkDelivered_CashNeedsCollection(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	driverID := uuid.New()
	o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCash, ordering.StatusPickedUp, driverID)
	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

	_, err := f.deliveryService().MarkDelivered(ctx, account.Actor{ID: driverID, Role: account.RoleDriver}, o.ID)
	assert.Equal(t, "CASH_COLLECTION_REQUIRED", errorCode(err))
}

func TestDeliveryService_AutoCompleteDelivered(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := newTestOrder(t, uuid.New(), uuid.New(), ordering.PaymentCard, ordering.StatusPickedUp, uuid.New())
	require.NoError(t, o.Deliver(testNow))
	o.ClearDomainEvents()

	now := testNow.Add(3 * time.Hour)
	f.orders.On("FindDeliveredBefore", ctx, now.Add(-2*time.Hour), f.config.BatchSize).Return([]ordering.Order{*o}, nil)
	f.orders.On("SaveWithLockAndEvents", ctx, mock.MatchedBy(func(saved *ordering.Order) bool {
		return saved.ID == o.ID && saved.Status == ordering.StatusCompleted
	}), mock.Anything).Return(nil)

	n, err := f.deliveryService().AutoCompleteDelivered(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.orders.AssertExpectations(t)
}
