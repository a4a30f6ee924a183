package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.OutboxEntryModel{}))
	return db
}

func newStoredEntry(t *testing.T, repo *GormOutboxRepository, createdAt time.Time) *shared.OutboxEntry {
	t.Helper()
	entry := shared.NewOutboxEntry(newTestEvent("TestEvent"), []byte(`{"data":"x"}`))
	entry.CreatedAt = createdAt
	entry.UpdatedAt = createdAt
	require.NoError(t, repo.Save(context.Background(), entry))
	return entry
}

func TestGormOutboxRepository_SaveAndFindPending(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	second := newStoredEntry(t, repo, base.Add(time.Minute))
	first := newStoredEntry(t, repo, base)

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
	assert.Equal(t, "TestEvent", pending[0].EventType)
	assert.JSONEq(t, `{"data":"x"}`, string(pending[0].Payload))

	limited, err := repo.FindPending(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGormOutboxRepository_SaveEmpty(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxDB(t))
	assert.NoError(t, repo.Save(context.Background()))
}

func TestGormOutboxRepository_FindByID(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()
	entry := newStoredEntry(t, repo, time.Now().UTC())

	found, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.EventID, found.EventID)
	assert.Equal(t, shared.OutboxStatusPending, found.Status)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOutboxRepository_MarkProcessingClaimsOnce(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()
	entry := newStoredEntry(t, repo, time.Now().UTC())

	claimed, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, shared.OutboxStatusProcessing, claimed[0].Status)

	again, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID})
	require.NoError(t, err)
	assert.Empty(t, again)

	none, err := repo.MarkProcessing(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormOutboxRepository_UpdateAndFindRetryable(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()
	entry := newStoredEntry(t, repo, time.Now().UTC())

	entry.MarkFailed("timeout")
	require.NoError(t, repo.Update(ctx, entry))

	notYet, err := repo.FindRetryable(ctx, entry.NextRetryAt.Add(-time.Millisecond), 10)
	require.NoError(t, err)
	assert.Empty(t, notYet)

	due, err := repo.FindRetryable(ctx, entry.NextRetryAt.Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 1, due[0].RetryCount)
	assert.Equal(t, "timeout", due[0].LastError)
}

func TestGormOutboxRepository_DeleteOlderThan(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()
	old := newStoredEntry(t, repo, time.Now().UTC())
	recent := newStoredEntry(t, repo, time.Now().UTC())
	pending := newStoredEntry(t, repo, time.Now().UTC())

	old.MarkSent()
	*old.ProcessedAt = time.Now().UTC().Add(-8 * 24 * time.Hour)
	require.NoError(t, repo.Update(ctx, old))
	recent.MarkSent()
	require.NoError(t, repo.Update(ctx, recent))

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(ctx, old.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = repo.FindByID(ctx, recent.ID)
	assert.NoError(t, err)
	_, err = repo.FindByID(ctx, pending.ID)
	assert.NoError(t, err)
}

func TestGormOutboxRepository_FindDeadAndCount(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxDB(t))
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		e := newStoredEntry(t, repo, time.Now().UTC())
		e.MarkDead("unknown event type")
		require.NoError(t, repo.Update(ctx, e))
	}
	newStoredEntry(t, repo, time.Now().UTC())

	dead, total, err := repo.FindDead(ctx, shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, dead, 2)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[shared.OutboxStatusDead])
	assert.Equal(t, int64(1), counts[shared.OutboxStatusPending])
}
