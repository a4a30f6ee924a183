// Package scheduler runs the periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/homechef/backend/internal/infrastructure/telemetry"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Job is one named unit of periodic work
type Job struct {
	Name string
	// Spec is a standard five-field cron expression or a descriptor such as
	// "@hourly" or "@every 1m"
	Spec string
	Run  func(ctx context.Context) error
}

// Config holds scheduler configuration
type Config struct {
	// JobTimeout bounds a single run. Zero means no limit.
	JobTimeout time.Duration
	Location   *time.Location
}

// Scheduler owns a cron instance and the registered jobs. A job that is still
// running when its next tick fires skips that tick.
type Scheduler struct {
	cron    *cron.Cron
	config  Config
	logger  *zap.Logger
	metrics *telemetry.BusinessMetrics

	mu      sync.Mutex
	jobs    map[string]Job
	baseCtx context.Context
	cancel  context.CancelFunc
	running bool
}

// New creates a stopped scheduler
func New(config Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")
	loc := config.Location
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{l: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl)),
		),
		config:  config,
		logger:  logger,
		jobs:    make(map[string]Job),
		baseCtx: context.Background(),
	}
}

// SetBusinessMetrics records job durations and outcomes
func (s *Scheduler) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// Register adds a job. Jobs must be registered before Start.
func (s *Scheduler) Register(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerRunning
	}
	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name)
	}
	if _, err := s.cron.AddFunc(job.Spec, func() { _ = s.execute(s.context(), job) }); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Spec, job.Name, err)
	}
	s.jobs[job.Name] = job
	return nil
}

// Start begins firing the registered jobs. Runs inherit values from ctx and
// are cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.baseCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.running = true
	s.cron.Start()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	s.logger.Info("Scheduler started", zap.Strings("jobs", names))
}

// Stop halts the schedule and waits for in-flight runs, up to ctx's deadline
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		cancel()
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		cancel()
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow executes a registered job immediately on the caller's goroutine
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.execute(ctx, job)
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

// execute runs one job with its timeout, span, profiler labels and metrics.
// A panic is converted into ErrJobPanicked.
func (s *Scheduler) execute(ctx context.Context, job Job) (err error) {
	if s.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
	}
	ctx, span := telemetry.StartSpan(ctx, "job."+job.Name, attribute.String("job.name", job.Name))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrJobPanicked, job.Name, r)
			s.logger.Error("Job panic recovered",
				zap.String("job", job.Name),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
		elapsed := time.Since(start)
		outcome := "success"
		if err != nil {
			outcome = "failure"
			s.logger.Error("Job failed",
				zap.String("job", job.Name),
				zap.Duration("duration", elapsed),
				zap.Error(err),
			)
		} else {
			s.logger.Info("Job completed",
				zap.String("job", job.Name),
				zap.Duration("duration", elapsed),
			)
		}
		s.metrics.RecordJobRun(ctx, job.Name, outcome, elapsed)
		telemetry.EndSpan(span, err)
	}()

	telemetry.WithJobLabels(ctx, job.Name, func(ctx context.Context) {
		err = job.Run(ctx)
	})
	return err
}

// cronLogger routes robfig/cron's internal logging to zap
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
