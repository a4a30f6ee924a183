package ordering

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pickedUpCashOrder(t *testing.T, code string) *Order {
	t.Helper()
	o := newTestOrder(t, PaymentCash)
	require.NoError(t, o.SetHandoffCode(code))
	require.NoError(t, o.Accept(10, baseTime))
	require.NoError(t, o.StartPreparing(baseTime))
	require.NoError(t, o.MarkReady(baseTime))
	require.NoError(t, o.AssignDriver(uuid.New(), baseTime))
	require.NoError(t, o.PickUp(baseTime))
	o.ClearDomainEvents()
	return o
}

func TestGenerateHandoffCode(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{4}$`)
	for range 20 {
		code, err := GenerateHandoffCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestOrder_SetHandoffCode(t *testing.T) {
	card := newTestOrder(t, PaymentCard)
	assert.Equal(t, "NOT_CASH_ORDER", domainCode(card.SetHandoffCode("1234")))

	cash := newTestOrder(t, PaymentCash)
	assert.Equal(t, "INVALID_HANDOFF_CODE", domainCode(cash.SetHandoffCode("12")))
	require.NoError(t, cash.SetHandoffCode("0420"))
	assert.NotContains(t, cash.CashCodeHash, "0420")
	assert.True(t, cash.VerifyHandoffCode("0420"))
	assert.False(t, cash.VerifyHandoffCode("0421"))
}

func TestOrder_CollectCash(t *testing.T) {
	t.Run("delivers and returns change", func(t *testing.T) {
		o := pickedUpCashOrder(t, "7777")

		change, err := o.CollectCash("7777", decimal.RequireFromString("40"), baseTime)
		require.NoError(t, err)

		assert.Equal(t, "7.75", change.StringFixed(2))
		assert.Equal(t, StatusDelivered, o.Status)
		assert.Equal(t, PaymentCollected, o.PaymentStatus)

		events := o.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeCashCollected, events[0].EventType())
		assert.Equal(t, EventTypeOrderDelivered, events[1].EventType())
	})

	t.Run("wrong code", func(t *testing.T) {
		o := pickedUpCashOrder(t, "7777")
		version := o.GetVersion()
		_, err := o.CollectCash("1111", decimal.NewFromInt(100), baseTime)
		assert.Equal(t, "INVALID_HANDOFF_CODE", domainCode(err))
		assert.Equal(t, StatusPickedUp, o.Status)
		assert.Equal(t, 1, o.HandoffAttempts)
		assert.Equal(t, version+1, o.GetVersion())
		assert.Nil(t, o.HandoffLockedUntil)
	})

	t.Run("locks after repeated wrong codes", func(t *testing.T) {
		o := pickedUpCashOrder(t, "7777")
		for i := 0; i < MaxHandoffAttempts; i++ {
			_, err := o.CollectCash("1111", decimal.NewFromInt(100), baseTime)
			assert.Equal(t, "INVALID_HANDOFF_CODE", domainCode(err))
		}
		require.NotNil(t, o.HandoffLockedUntil)
		assert.Equal(t, baseTime.Add(HandoffLockout), *o.HandoffLockedUntil)

		// The right code is refused while locked
		_, err := o.CollectCash("7777", decimal.NewFromInt(100), baseTime.Add(time.Minute))
		assert.Equal(t, "HANDOFF_LOCKED", domainCode(err))
		assert.Equal(t, StatusPickedUp, o.Status)
		assert.Equal(t, MaxHandoffAttempts, o.HandoffAttempts)

		// After the lockout the counter starts over
		later := baseTime.Add(HandoffLockout + time.Second)
		_, err = o.CollectCash("1111", decimal.NewFromInt(100), later)
		assert.Equal(t, "INVALID_HANDOFF_CODE", domainCode(err))
		assert.Equal(t, 1, o.HandoffAttempts)
		assert.Nil(t, o.HandoffLockedUntil)

		_, err = o.CollectCash("7777", decimal.NewFromInt(100), later)
		require.NoError(t, err)
		assert.Equal(t, StatusDelivered, o.Status)
	})

	t.Run("insufficient cash", func(t *testing.T) {
		o := pickedUpCashOrder(t, "7777")
		_, err := o.CollectCash("7777", decimal.NewFromInt(10), baseTime)
		assert.Equal(t, "INSUFFICIENT_CASH", domainCode(err))
	})

	t.Run("card order is delivered directly", func(t *testing.T) {
		o := newTestOrder(t, PaymentCard)
		_, err := o.CollectCash("7777", decimal.NewFromInt(100), baseTime)
		assert.Equal(t, "NOT_CASH_ORDER", domainCode(err))
	})

	t.Run("cash order cannot use plain delivery", func(t *testing.T) {
		o := pickedUpCashOrder(t, "7777")
		assert.Equal(t, "CASH_COLLECTION_REQUIRED", domainCode(o.Deliver(baseTime)))
	})
}

func TestOrder_SettleCash(t *testing.T) {
	o := pickedUpCashOrder(t, "1234")
	assert.Equal(t, "NOT_COLLECTED", domainCode(o.SettleCash(baseTime)))

	_, err := o.CollectCash("1234", o.Total, baseTime)
	require.NoError(t, err)
	o.ClearDomainEvents()

	require.NoError(t, o.SettleCash(baseTime))
	assert.Equal(t, PaymentSettled, o.PaymentStatus)
	assert.NotNil(t, o.SettledAt)
	assert.Equal(t, EventTypeCashSettled, o.GetDomainEvents()[0].EventType())

	assert.Error(t, o.SettleCash(baseTime))
}
