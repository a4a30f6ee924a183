package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type expirerFunc func(ctx context.Context, now time.Time) (int, error)

func (f expirerFunc) ExpireOverdue(ctx context.Context, now time.Time) (int, error) { return f(ctx, now) }

type completerFunc func(ctx context.Context, now time.Time) (int, error)

func (f completerFunc) AutoCompleteDelivered(ctx context.Context, now time.Time) (int, error) {
	return f(ctx, now)
}

type cleanerFunc func(ctx context.Context) (int64, error)

func (f cleanerFunc) Cleanup(ctx context.Context) (int64, error) { return f(ctx) }

func TestScheduler_Register(t *testing.T) {
	s := New(Config{}, nil)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Register(Job{Name: "a", Spec: "@every 1m", Run: noop}))

	err := s.Register(Job{Name: "a", Spec: "@hourly", Run: noop})
	assert.ErrorIs(t, err, ErrDuplicateJob)

	err = s.Register(Job{Name: "b", Spec: "not a schedule", Run: noop})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")

	s.Start(context.Background())
	defer func() { require.NoError(t, s.Stop(context.Background())) }()

	err = s.Register(Job{Name: "c", Spec: "@hourly", Run: noop})
	assert.ErrorIs(t, err, ErrSchedulerRunning)
}

func TestScheduler_RunNow(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := New(Config{JobTimeout: time.Second}, zap.New(core))

	t.Run("logs the duration of a successful run", func(t *testing.T) {
		require.NoError(t, s.Register(Job{Name: "ok", Spec: "@hourly", Run: func(ctx context.Context) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return nil
		}}))

		require.NoError(t, s.RunNow(context.Background(), "ok"))
		entries := logs.FilterMessage("Job completed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "ok", entries[0].ContextMap()["job"])
		assert.Contains(t, entries[0].ContextMap(), "duration")
	})

	t.Run("returns and logs job errors", func(t *testing.T) {
		boom := errors.New("boom")
		require.NoError(t, s.Register(Job{Name: "fail", Spec: "@hourly", Run: func(context.Context) error { return boom }}))

		err := s.RunNow(context.Background(), "fail")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, logs.FilterMessage("Job failed").Len())
	})

	t.Run("recovers panics", func(t *testing.T) {
		require.NoError(t, s.Register(Job{Name: "panic", Spec: "@hourly", Run: func(context.Context) error {
			panic("kaboom")
		}}))

		err := s.RunNow(context.Background(), "panic")
		assert.ErrorIs(t, err, ErrJobPanicked)
		assert.Contains(t, err.Error(), "kaboom")
		assert.Equal(t, 1, logs.FilterMessage("Job panic recovered").Len())
	})

	t.Run("unknown job", func(t *testing.T) {
		assert.ErrorIs(t, s.RunNow(context.Background(), "missing"), ErrJobNotFound)
	})
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	s := New(Config{}, nil)
	var runs atomic.Int32
	require.NoError(t, s.Register(Job{Name: "tick", Spec: "@every 1s", Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_RegisterAll(t *testing.T) {
	var expired, completed, cleaned bool
	s := New(Config{}, nil)

	err := s.RegisterAll(
		Specs{ApprovalExpiry: "@every 1m", AutoComplete: "@every 10m"},
		expirerFunc(func(context.Context, time.Time) (int, error) { expired = true; return 2, nil }),
		completerFunc(func(context.Context, time.Time) (int, error) { completed = true; return 0, nil }),
		cleanerFunc(func(context.Context) (int64, error) { cleaned = true; return 0, nil }),
	)
	require.NoError(t, err)

	require.NoError(t, s.RunNow(context.Background(), JobApprovalExpiry))
	require.NoError(t, s.RunNow(context.Background(), JobAutoComplete))
	assert.ErrorIs(t, s.RunNow(context.Background(), JobOutboxCleanup), ErrJobNotFound)

	assert.True(t, expired)
	assert.True(t, completed)
	assert.False(t, cleaned)
}
