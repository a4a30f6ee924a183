package account

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kitchenAddress() *valueobject.Address {
	addr, _ := valueobject.NewAddress("1 Baker St", "London", valueobject.Point{Lat: 51.52, Lng: -0.15})
	return &addr
}

func TestNewAccount(t *testing.T) {
	t.Run("creates cook with kitchen profile", func(t *testing.T) {
		a, err := NewAccount(uuid.New(), RoleCook, "  Mama Rosa ", "Rosa@Example.com")
		require.NoError(t, err)

		assert.Equal(t, StatusActive, a.Status)
		assert.Equal(t, "Mama Rosa", a.DisplayName)
		assert.Equal(t, "rosa@example.com", a.Email)
		require.NotNil(t, a.Cook)
		assert.Equal(t, "Mama Rosa", a.Cook.KitchenName)
		assert.Nil(t, a.Driver)
		assert.Len(t, a.GetDomainEvents(), 1)
	})

	t.Run("creates driver profile", func(t *testing.T) {
		a, err := NewAccount(uuid.New(), RoleDriver, "Dan", "")
		require.NoError(t, err)
		assert.NotNil(t, a.Driver)
		assert.False(t, a.CanDeliver())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewAccount(uuid.Nil, RoleClient, "x", "")
		assert.Error(t, err)

		_, err = NewAccount(uuid.New(), Role("CHEF"), "x", "")
		assert.Error(t, err)

		_, err = NewAccount(uuid.New(), RoleClient, "   ", "")
		assert.Error(t, err)

		_, err = NewAccount(uuid.New(), RoleClient, "x", "not-an-email")
		assert.Error(t, err)
	})
}

func TestRole_SelfRegistrable(t *testing.T) {
	assert.True(t, RoleClient.SelfRegistrable())
	assert.True(t, RoleCook.SelfRegistrable())
	assert.True(t, RoleDriver.SelfRegistrable())
	assert.False(t, RoleAdmin.SelfRegistrable())
}

func TestAccount_SetAcceptingOrders(t *testing.T) {
	cook, _ := NewAccount(uuid.New(), RoleCook, "Rosa", "")

	err := cook.SetAcceptingOrders(true)
	assert.Error(t, err, "kitchen address is required")

	require.NoError(t, cook.UpdateProfile("Rosa", "", kitchenAddress(), NotificationPreferences{Email: true}))
	require.NoError(t, cook.SetAcceptingOrders(true))
	assert.True(t, cook.CanAcceptOrders())

	client, _ := NewAccount(uuid.New(), RoleClient, "Cleo", "")
	assert.Error(t, client.SetAcceptingOrders(true))
}

func TestAccount_DriverDuty(t *testing.T) {
	driver, _ := NewAccount(uuid.New(), RoleDriver, "Dan", "")

	require.NoError(t, driver.SetOnDuty(true, "bike"))
	assert.True(t, driver.CanDeliver())
	assert.Equal(t, "bike", driver.Driver.Vehicle)

	now := time.Now()
	require.NoError(t, driver.UpdateLocation(51.5, -0.12, now))
	assert.Equal(t, 51.5, driver.Driver.LastLocation.Lat)

	assert.Error(t, driver.UpdateLocation(120, 0, now))
}

func TestAccount_Suspend(t *testing.T) {
	driver, _ := NewAccount(uuid.New(), RoleDriver, "Dan", "")
	require.NoError(t, driver.SetOnDuty(true, ""))
	version := driver.Version

	assert.Error(t, driver.Suspend(" "))
	require.NoError(t, driver.Suspend("fraud report"))
	assert.False(t, driver.IsActive())
	assert.False(t, driver.Driver.OnDuty)
	assert.Equal(t, version+1, driver.Version)

	assert.Error(t, driver.Suspend("again"))
	require.NoError(t, driver.Reactivate())
	assert.True(t, driver.IsActive())
	assert.Error(t, driver.Reactivate())

	admin, _ := NewAccount(uuid.New(), RoleAdmin, "Ops", "")
	assert.Error(t, admin.Suspend("nope"))
}
