package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestAccount(t *testing.T, role account.Role, name, email string) *account.Account {
	t.Helper()
	a, err := account.NewAccount(uuid.New(), role, name, email)
	require.NoError(t, err)
	return a
}

func TestGormAccountRepository_Create(t *testing.T) {
	repo := NewGormAccountRepository(setupTestDB(t))
	saver := &recordingSaver{}
	repo.SetOutboxEventSaver(saver)
	ctx := context.Background()

	a := newTestAccount(t, account.RoleCook, "Nonna Rosa", "rosa@example.com")
	require.NoError(t, repo.Create(ctx, a))
	assert.Len(t, saver.eventTypes(), 1)

	dup, err := account.NewAccount(a.ID, account.RoleClient, "Someone", "someone@example.com")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)

	found, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleCook, found.Role)
	require.NotNil(t, found.Cook)
	assert.Equal(t, "Nonna Rosa", found.Cook.KitchenName)
	assert.True(t, found.Preferences.Email)

	exists, err := repo.Exists(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormAccountRepository_FindByIDForUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := newTestAccount(t, account.RoleDriver, "Dan Driver", "dan@example.com")
	require.NoError(t, NewGormAccountRepository(db).Create(ctx, a))

	err := db.Transaction(func(tx *gorm.DB) error {
		repo := NewGormAccountRepository(tx)
		locked, err := repo.FindByIDForUpdate(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, locked.ID)
		require.NotNil(t, locked.Driver)

		_, err = repo.FindByIDForUpdate(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestGormAccountRepository_FindAll(t *testing.T) {
	repo := NewGormAccountRepository(setupTestDB(t))
	ctx := context.Background()
	for _, a := range []*account.Account{
		newTestAccount(t, account.RoleCook, "Nonna Rosa", "rosa@example.com"),
		newTestAccount(t, account.RoleClient, "Rose Client", "client@example.com"),
		newTestAccount(t, account.RoleDriver, "Dan Driver", "dan@example.com"),
	} {
		require.NoError(t, repo.Create(ctx, a))
	}

	_, total, err := repo.FindAll(ctx, shared.Filter{Search: "ROS"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	accounts, total, err := repo.FindAll(ctx, shared.Filter{Filters: map[string]any{"role": account.RoleDriver}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Dan Driver", accounts[0].DisplayName)

	byIDs, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, byIDs)
}

func TestGormAccountRepository_SaveWithLock(t *testing.T) {
	repo := NewGormAccountRepository(setupTestDB(t))
	ctx := context.Background()
	driver := newTestAccount(t, account.RoleDriver, "Dan Driver", "dan@example.com")
	require.NoError(t, repo.Create(ctx, driver))
	driver.ClearDomainEvents()

	stale, err := repo.FindByID(ctx, driver.ID)
	require.NoError(t, err)

	require.NoError(t, driver.SetOnDuty(true, "bike"))
	require.NoError(t, driver.UpdateLocation(45.46, 9.19, testNow))
	require.NoError(t, repo.SaveWithLock(ctx, driver))

	onDuty, err := repo.FindOnDutyDrivers(ctx)
	require.NoError(t, err)
	require.Len(t, onDuty, 1)
	require.NotNil(t, onDuty[0].Driver.LastLocation)
	assert.InDelta(t, 45.46, onDuty[0].Driver.LastLocation.Lat, 1e-9)
	assert.Equal(t, "bike", onDuty[0].Driver.Vehicle)

	require.NoError(t, stale.SetOnDuty(false, ""))
	assert.ErrorIs(t, repo.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)
}

func TestGormDeviceRepository(t *testing.T) {
	repo := NewGormDeviceRepository(setupTestDB(t))
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()

	require.NoError(t, repo.Upsert(ctx, &account.Device{ID: uuid.New(), AccountID: first, Token: "tok-1", Platform: "ios", CreatedAt: testNow}))
	require.NoError(t, repo.Upsert(ctx, &account.Device{ID: uuid.New(), AccountID: second, Token: "tok-1", Platform: "android", CreatedAt: testNow}))

	devices, err := repo.FindByAccounts(ctx, []uuid.UUID{first, second})
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, second, devices[0].AccountID)
	assert.Equal(t, "android", devices[0].Platform)

	require.NoError(t, repo.DeleteByToken(ctx, "tok-1"))
	devices, err = repo.FindByAccounts(ctx, []uuid.UUID{second})
	require.NoError(t, err)
	assert.Empty(t, devices)
}
