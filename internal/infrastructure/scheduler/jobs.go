package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job names
const (
	JobApprovalExpiry = "approval-expiry"
	JobAutoComplete   = "auto-complete"
	JobOutboxCleanup  = "outbox-cleanup"
)

// ApprovalExpirer rejects orders whose approval window has closed
type ApprovalExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

// DeliveryCompleter completes orders left in DELIVERED past the grace period
type DeliveryCompleter interface {
	AutoCompleteDelivered(ctx context.Context, now time.Time) (int, error)
}

// OutboxCleaner deletes published outbox entries past retention
type OutboxCleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// Specs holds the cron expression of each job
type Specs struct {
	ApprovalExpiry string
	AutoComplete   string
	OutboxCleanup  string
}

// ApprovalExpiryJob builds the job that expires overdue approvals
func ApprovalExpiryJob(spec string, svc ApprovalExpirer, logger *zap.Logger) Job {
	return Job{
		Name: JobApprovalExpiry,
		Spec: spec,
		Run: func(ctx context.Context) error {
			n, err := svc.ExpireOverdue(ctx, time.Now())
			if n > 0 {
				logger.Info("Expired overdue approvals", zap.Int("count", n))
			}
			return err
		},
	}
}

// AutoCompleteJob builds the job that completes stale deliveries
func AutoCompleteJob(spec string, svc DeliveryCompleter, logger *zap.Logger) Job {
	return Job{
		Name: JobAutoComplete,
		Spec: spec,
		Run: func(ctx context.Context) error {
			n, err := svc.AutoCompleteDelivered(ctx, time.Now())
			if n > 0 {
				logger.Info("Auto-completed delivered orders", zap.Int("count", n))
			}
			return err
		},
	}
}

// OutboxCleanupJob builds the job that prunes the outbox
func OutboxCleanupJob(spec string, cleaner OutboxCleaner) Job {
	return Job{
		Name: JobOutboxCleanup,
		Spec: spec,
		Run: func(ctx context.Context) error {
			_, err := cleaner.Cleanup(ctx)
			return err
		},
	}
}

// RegisterAll registers the three maintenance jobs. An empty spec leaves that
// job unscheduled.
func (s *Scheduler) RegisterAll(specs Specs, expirer ApprovalExpirer, completer DeliveryCompleter, cleaner OutboxCleaner) error {
	jobs := []Job{
		ApprovalExpiryJob(specs.ApprovalExpiry, expirer, s.logger),
		AutoCompleteJob(specs.AutoComplete, completer, s.logger),
		OutboxCleanupJob(specs.OutboxCleanup, cleaner),
	}
	for _, job := range jobs {
		if job.Spec == "" {
			s.logger.Info("Job disabled", zap.String("job", job.Name))
			continue
		}
		if err := s.Register(job); err != nil {
			return err
		}
	}
	return nil
}
