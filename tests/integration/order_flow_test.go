package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	loyaltyapp "github.com/homechef/backend/internal/application/loyalty"
	orderingapp "github.com/homechef/backend/internal/application/ordering"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected a domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestCardOrder_FullLifecycle(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()

	cook, dishID := m.openKitchen(t, "9.50")
	client := m.register(t, account.RoleClient, "client", clientAddress)
	driver := m.onDutyDriver(t, "driver")

	placed, err := m.orders.PlaceOrder(ctx, client, orderingapp.PlaceOrderRequest{
		Items:            []orderingapp.OrderLineRequest{{DishID: dishID, Quantity: 2}},
		PaymentReference: "pi_123",
	})
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusPendingApproval, placed.Status)
	assert.True(t, placed.Subtotal.Equal(decimal.RequireFromString("19.00")))
	assert.True(t, placed.DeliveryFee.GreaterThan(decimal.RequireFromString("2.50")))
	assert.True(t, placed.Total.Equal(placed.Subtotal.Add(placed.DeliveryFee)))
	assert.Regexp(t, `^ORD-\d{8}-\d{5}$`, placed.OrderNumber)

	m.drain(t)
	unread, err := m.notifications.UnreadCount(ctx, cook)
	require.NoError(t, err)
	assert.Positive(t, unread.Unread, "cook is told about the new order")

	room, err := m.chat.RoomForOrder(ctx, client, placed.ID)
	require.NoError(t, err)
	assert.Len(t, room.Participants, 2)

	pending, err := m.approvals.ListPending(ctx, cook)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	m.prepare(t, cook, placed.ID)

	claimed, err := m.deliveries.Claim(ctx, driver, placed.ID)
	require.NoError(t, err)
	require.NotNil(t, claimed.DriverID)
	assert.Equal(t, driver.ID, *claimed.DriverID)

	m.drain(t)
	room, err = m.chat.RoomForOrder(ctx, driver, placed.ID)
	require.NoError(t, err)
	assert.Len(t, room.Participants, 3, "driver joins the order chat")

	_, err = m.deliveries.PickUp(ctx, driver, placed.ID)
	require.NoError(t, err)
	_, err = m.deliveries.MarkDelivered(ctx, driver, placed.ID)
	require.NoError(t, err)

	completed, err := m.orders.Complete(ctx, client, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusCompleted, completed.Status)

	m.drain(t)

	balance, err := m.loyalty.Get(ctx, client.ID)
	require.NoError(t, err)
	expected := completed.Total.Mul(decimal.NewFromInt(10)).Floor().IntPart()
	assert.Equal(t, expected, balance.Balance)
	assert.Equal(t, expected, balance.LifetimeEarned)

	room, err = m.chat.RoomForOrder(ctx, client, placed.ID)
	require.NoError(t, err)
	assert.True(t, room.Closed)

	// Replaying the completion must not credit twice
	_, err = m.loyalty.Earn(ctx, client.ID, placed.ID, completed.Total)
	require.NoError(t, err)
	balance, err = m.loyalty.Get(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, expected, balance.Balance)

	assert.Zero(t, m.db.CountRows("outbox_events", "status = ?", "PENDING"))
}

func TestCashOrder_HandoffAndSettlement(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	admin := account.Actor{ID: uuid.New(), Role: account.RoleAdmin}

	cook, dishID := m.openKitchen(t, "12.00")
	client := m.register(t, account.RoleClient, "client", clientAddress)
	driver := m.onDutyDriver(t, "driver")

	placed, err := m.cash.PlaceCashOrder(ctx, client, orderingapp.PlaceCashOrderRequest{
		Items: []orderingapp.OrderLineRequest{{DishID: dishID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, placed.HandoffCode, 4)
	assert.Equal(t, ordering.PaymentCash, placed.Order.PaymentMethod)
	orderID := placed.Order.ID

	m.prepare(t, cook, orderID)
	_, err = m.deliveries.Claim(ctx, driver, orderID)
	require.NoError(t, err)

	// Card completion path is closed to cash orders
	_, err = m.deliveries.PickUp(ctx, driver, orderID)
	require.NoError(t, err)
	_, err = m.deliveries.MarkDelivered(ctx, driver, orderID)
	require.Error(t, err)

	wrong := "0000"
	if placed.HandoffCode == wrong {
		wrong = "1111"
	}
	_, err = m.cash.CollectCash(ctx, driver, orderID, orderingapp.CollectCashRequest{
		Code: wrong, Tendered: decimal.RequireFromString("50.00"),
	})
	requireDomainCode(t, err, "INVALID_HANDOFF_CODE")
	stored, err := m.orderRepo.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.HandoffAttempts, "failed attempts survive the request")

	collected, err := m.cash.CollectCash(ctx, driver, orderID, orderingapp.CollectCashRequest{
		Code: placed.HandoffCode, Tendered: decimal.RequireFromString("50.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusDelivered, collected.Order.Status)
	assert.True(t, collected.Change.Equal(decimal.RequireFromString("50.00").Sub(collected.Order.Total)))

	held, err := m.cash.DriverCashBalance(ctx, driver, driver.ID)
	require.NoError(t, err)
	assert.True(t, held.Amount.Equal(collected.Order.Total))
	assert.Equal(t, 1, held.Orders)

	_, err = m.cash.SettleDriverCash(ctx, driver, driver.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	settled, err := m.cash.SettleDriverCash(ctx, admin, driver.ID)
	require.NoError(t, err)
	assert.True(t, settled.Amount.Equal(collected.Order.Total))

	held, err = m.cash.DriverCashBalance(ctx, admin, driver.ID)
	require.NoError(t, err)
	assert.True(t, held.Amount.IsZero())
	assert.Zero(t, held.Orders)
}

func TestRedemption_RefundedWhenCookRejects(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	admin := account.Actor{ID: uuid.New(), Role: account.RoleAdmin}

	cook, dishID := m.openKitchen(t, "10.00")
	client := m.register(t, account.RoleClient, "client", clientAddress)

	_, err := m.loyalty.Adjust(ctx, admin, client.ID, loyaltyapp.AdjustRequest{Points: 800, Reason: "welcome bonus"})
	require.NoError(t, err)

	placed, err := m.orders.PlaceOrder(ctx, client, orderingapp.PlaceOrderRequest{
		Items:        []orderingapp.OrderLineRequest{{DishID: dishID, Quantity: 2}},
		RedeemPoints: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), placed.RedeemedPoints)
	assert.True(t, placed.Discount.Equal(decimal.RequireFromString("5.00")))

	balance, err := m.loyalty.Get(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance.Balance)

	_, err = m.orders.PlaceOrder(ctx, client, orderingapp.PlaceOrderRequest{
		Items:        []orderingapp.OrderLineRequest{{DishID: dishID, Quantity: 1}},
		RedeemPoints: 1000,
	})
	requireDomainCode(t, err, "INSUFFICIENT_POINTS")

	rejected, err := m.approvals.Reject(ctx, cook, placed.ID, "out of pasta")
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusRejected, rejected.Status)

	m.drain(t)
	// A second drain finds nothing left to refund
	m.drain(t)

	balance, err = m.loyalty.Get(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(800), balance.Balance)
}

func TestApprovalExpiry_RejectsOverdueOrders(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()

	_, dishID := m.openKitchen(t, "8.00")
	client := m.register(t, account.RoleClient, "client", clientAddress)

	placed, err := m.orders.PlaceOrder(ctx, client, orderingapp.PlaceOrderRequest{
		Items: []orderingapp.OrderLineRequest{{DishID: dishID, Quantity: 1}},
	})
	require.NoError(t, err)

	n, err := m.approvals.ExpireOverdue(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n, "deadline not reached yet")

	n, err = m.approvals.ExpireOverdue(ctx, time.Now().Add(orderingapp.DefaultConfig().ApprovalTimeout+time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := m.orders.Get(ctx, client, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusRejected, got.Status)
	assert.Equal(t, orderingapp.ReasonApprovalTimeout, got.RejectionReason)
}

func TestConcurrentClaim_OnlyOneDriverWins(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()

	cook, dishID := m.openKitchen(t, "11.00")
	client := m.register(t, account.RoleClient, "client", clientAddress)
	drivers := []account.Actor{m.onDutyDriver(t, "driver-a"), m.onDutyDriver(t, "driver-b")}

	placed, err := m.orders.PlaceOrder(ctx, client, orderingapp.PlaceOrderRequest{
		Items: []orderingapp.OrderLineRequest{{DishID: dishID, Quantity: 1}},
	})
	require.NoError(t, err)
	m.prepare(t, cook, placed.ID)

	var (
		wg   sync.WaitGroup
		errs = make([]error, len(drivers))
	)
	for i, d := range drivers {
		wg.Add(1)
		go func(i int, d account.Actor) {
			defer wg.Done()
			_, errs[i] = m.deliveries.Claim(ctx, d, placed.ID)
		}(i, d)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	got, err := m.orderRepo.FindByID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusAssigned, got.Status)
}

func TestOrderNumbers_UniqueUnderConcurrency(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()

	_, dishID := m.openKitchen(t, "5.00")
	client := m.register(t, account.RoleClient, "client", clientAddress)

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := m.orders.PlaceOrder(ctx, client, orderingapp.PlaceOrderRequest{
				Items: []orderingapp.OrderLineRequest{{DishID: dishID, Quantity: 1}},
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers[o.OrderNumber] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, n)
	assert.Equal(t, int64(n), m.db.CountRows("orders", "client_id = ?", client.ID))
}

func TestConcurrentClaims_DriverStaysWithinDeliveryLimit(t *testing.T) {
	m := newMarketplace(t, func(c *orderingapp.Config) { c.MaxActiveDeliveries = 1 })
	ctx := context.Background()

	cook, dishID := m.openKitchen(t, "9.00")
	client := m.register(t, account.RoleClient, "client", clientAddress)
	driver := m.onDutyDriver(t, "driver")

	ids := make([]uuid.UUID, 3)
	for i := range ids {
		placed, err := m.orders.PlaceOrder(ctx, client, orderingapp.PlaceOrderRequest{
			Items: []orderingapp.OrderLineRequest{{DishID: dishID, Quantity: 1}},
		})
		require.NoError(t, err)
		m.prepare(t, cook, placed.ID)
		ids[i] = placed.ID
	}

	var (
		wg   sync.WaitGroup
		errs = make([]error, len(ids))
	)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = m.deliveries.Claim(ctx, driver, id)
		}(i, id)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		requireDomainCode(t, err, "MAX_ACTIVE_DELIVERIES")
	}
	assert.Equal(t, 1, wins)

	active, err := m.orderRepo.CountActiveByDriver(ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)
}

func TestConcurrentCashOrders_ClientStaysWithinOpenLimit(t *testing.T) {
	m := newMarketplace(t, func(c *orderingapp.Config) { c.MaxOpenCashOrders = 1 })
	ctx := context.Background()

	_, dishID := m.openKitchen(t, "7.00")
	client := m.register(t, account.RoleClient, "client", clientAddress)

	const n = 4
	var (
		wg   sync.WaitGroup
		errs = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.cash.PlaceCashOrder(ctx, client, orderingapp.PlaceCashOrderRequest{
				Items: []orderingapp.OrderLineRequest{{DishID: dishID, Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	placed := 0
	for _, err := range errs {
		if err == nil {
			placed++
			continue
		}
		requireDomainCode(t, err, "CASH_ORDER_LIMIT")
	}
	assert.Equal(t, 1, placed)

	open, err := m.orderRepo.CountOpenCashOrders(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), open)
}
