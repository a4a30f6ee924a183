package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeadLetterRepo struct {
	entries map[uuid.UUID]*shared.OutboxEntry
	findErr error
}

func newFakeDeadLetterRepo(statuses ...shared.OutboxStatus) *fakeDeadLetterRepo {
	r := &fakeDeadLetterRepo{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
	for _, s := range statuses {
		r.add(s)
	}
	return r
}

func (r *fakeDeadLetterRepo) add(status shared.OutboxStatus) *shared.OutboxEntry {
	e := &shared.OutboxEntry{
		ID:            uuid.New(),
		EventID:       uuid.New(),
		EventType:     "OrderCompleted",
		AggregateID:   uuid.New(),
		AggregateType: "Order",
		Status:        status,
		MaxRetries:    shared.DefaultMaxRetries,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if status == shared.OutboxStatusDead {
		e.RetryCount = shared.DefaultMaxRetries
		e.LastError = "loyalty handler: connection refused"
	}
	r.entries[e.ID] = e
	return e
}

func (r *fakeDeadLetterRepo) FindDead(_ context.Context, filter shared.Filter) ([]*shared.OutboxEntry, int64, error) {
	if r.findErr != nil {
		return nil, 0, r.findErr
	}
	var dead []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusDead {
			dead = append(dead, e)
		}
	}
	total := int64(len(dead))
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(dead) {
		return nil, total, nil
	}
	end := min(start+filter.PageSize, len(dead))
	return dead[start:end], total, nil
}

func (r *fakeDeadLetterRepo) FindByID(_ context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	if e, ok := r.entries[id]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeDeadLetterRepo) Update(_ context.Context, entry *shared.OutboxEntry) error {
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeDeadLetterRepo) CountByStatus(context.Context) (map[shared.OutboxStatus]int64, error) {
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func TestOutboxService_GetDeadLetterEntries(t *testing.T) {
	repo := newFakeDeadLetterRepo(
		shared.OutboxStatusDead, shared.OutboxStatusDead, shared.OutboxStatusDead,
		shared.OutboxStatusPending, shared.OutboxStatusSent,
	)
	service := NewOutboxService(repo, nil)

	entries, total, err := service.GetDeadLetterEntries(context.Background(), OutboxFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "DEAD", e.Status)
		assert.NotEmpty(t, e.LastError)
	}
}

func TestOutboxService_GetDeadLetterEntries_RepositoryError(t *testing.T) {
	repo := newFakeDeadLetterRepo()
	repo.findErr = assert.AnError
	service := NewOutboxService(repo, nil)

	_, _, err := service.GetDeadLetterEntries(context.Background(), OutboxFilter{})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
}

func TestOutboxService_GetEntry(t *testing.T) {
	repo := newFakeDeadLetterRepo()
	entry := repo.add(shared.OutboxStatusSent)
	service := NewOutboxService(repo, nil)

	got, err := service.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.EventID, got.EventID)

	_, err = service.GetEntry(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errEntryNotFound)
}

func TestOutboxService_RetryDeadEntry(t *testing.T) {
	t.Run("dead entry is requeued", func(t *testing.T) {
		repo := newFakeDeadLetterRepo()
		dead := repo.add(shared.OutboxStatusDead)
		service := NewOutboxService(repo, nil)

		result, err := service.RetryDeadEntry(context.Background(), dead.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", result.Status)
		assert.Zero(t, result.RetryCount)
		assert.Empty(t, result.LastError)
	})

	t.Run("unknown entry", func(t *testing.T) {
		service := NewOutboxService(newFakeDeadLetterRepo(), nil)

		_, err := service.RetryDeadEntry(context.Background(), uuid.New())
		assert.ErrorIs(t, err, errEntryNotFound)
	})

	t.Run("entry that is not dead", func(t *testing.T) {
		repo := newFakeDeadLetterRepo()
		pending := repo.add(shared.OutboxStatusPending)
		service := NewOutboxService(repo, nil)

		_, err := service.RetryDeadEntry(context.Background(), pending.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATUS", domainErr.Code)
	})
}

func TestOutboxService_RetryAllDeadEntries(t *testing.T) {
	repo := newFakeDeadLetterRepo()
	for i := 0; i < 150; i++ {
		repo.add(shared.OutboxStatusDead)
	}
	sent := repo.add(shared.OutboxStatusSent)
	service := NewOutboxService(repo, nil)

	count, err := service.RetryAllDeadEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(150), count)

	for id, e := range repo.entries {
		if id == sent.ID {
			assert.Equal(t, shared.OutboxStatusSent, e.Status)
			continue
		}
		assert.Equal(t, shared.OutboxStatusPending, e.Status)
	}
}

func TestOutboxService_GetStats(t *testing.T) {
	repo := newFakeDeadLetterRepo(
		shared.OutboxStatusPending, shared.OutboxStatusPending,
		shared.OutboxStatusProcessing,
		shared.OutboxStatusSent, shared.OutboxStatusSent, shared.OutboxStatusSent,
		shared.OutboxStatusFailed,
		shared.OutboxStatusDead,
	)
	service := NewOutboxService(repo, nil)

	stats, err := service.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &OutboxStatsDTO{
		Pending: 2, Processing: 1, Sent: 3, Failed: 1, Dead: 1, Total: 8,
	}, stats)
}
