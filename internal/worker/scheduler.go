package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/legal-desk/internal/config"
	"github.com/spec-kit/legal-desk/internal/observability"
	"github.com/spec-kit/legal-desk/internal/persistence"
)

// Job is a periodic batch task. Run reports how many items were processed and
// how many failed; jobs are expected to be idempotent on restart.
type Job struct {
	Name string
	Run  func(ctx context.Context) (processed, failed int, err error)
}

// Scheduler drives the daily batch jobs (expiry sweep, reminder dispatch,
// aging backfill) on a fixed interval. Each job run is serialized across
// processes through the Redis job lock.
type Scheduler struct {
	cfg     config.SchedulerConfig
	lock    *persistence.JobLock
	metrics *observability.Metrics
	logger  *zap.Logger
	jobs    []Job
}

// NewScheduler constructs the scheduler.
func NewScheduler(cfg config.SchedulerConfig, lock *persistence.JobLock, metrics *observability.Metrics, logger *zap.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		lock:    lock,
		metrics: metrics,
		logger:  logger,
		jobs:    jobs,
	}
}

// Start runs the scheduler loop until the context is cancelled. The first
// sweep happens one interval after start, not immediately, so deploys do not
// stampede the lock.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info("scheduler disabled")
		return
	}
	ticker := time.NewTicker(s.cfg.Interval())
	defer ticker.Stop()

	s.logger.Info("scheduler started", zap.Duration("interval", s.cfg.Interval()))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

// RunAll executes every job once, for cron-driven deployments that invoke the
// binary instead of keeping the loop alive.
func (s *Scheduler) RunAll(ctx context.Context) {
	s.runAll(ctx)
}

func (s *Scheduler) runAll(ctx context.Context) {
	for _, job := range s.jobs {
		s.runOne(ctx, job)
	}
}

func (s *Scheduler) runOne(ctx context.Context, job Job) {
	acquired, err := s.lock.Acquire(ctx, job.Name, s.cfg.LockTTL())
	if err != nil {
		s.logger.Warn("job lock acquisition failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Info("job already running elsewhere", zap.String("job", job.Name))
		return
	}
	defer func() {
		if err := s.lock.Release(ctx, job.Name); err != nil {
			s.logger.Warn("job lock release failed", zap.String("job", job.Name), zap.Error(err))
		}
	}()

	start := time.Now()
	processed, failed, err := job.Run(ctx)
	if err != nil {
		s.logger.Error("job failed", zap.String("job", job.Name), zap.Error(err))
		s.metrics.RecordJobRun(job.Name, failed+1)
		return
	}
	s.metrics.RecordJobRun(job.Name, failed)
	s.logger.Info("job finished",
		zap.String("job", job.Name),
		zap.Int("processed", processed),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	)
}
