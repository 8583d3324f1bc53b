package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/repository"
	"github.com/robfig/cron/v3"
)

const (
	// 03:00 UTC daily
	LogRetentionSchedule = "0 3 * * *"
	// 00:05 UTC on the 1st, right after the month rolls over
	MonthlyReconcileSchedule = "5 0 1 * *"
	// hourly sweep for downgrades that land mid-month
	HourlyReconcileSchedule = "0 * * * *"

	jobTimeout = 5 * time.Minute
)

// Scheduler runs periodic maintenance against the store.
type Scheduler struct {
	repo          repository.MaintenanceRepository
	retentionDays int
	cron          *cron.Cron
	now           func() time.Time
}

func NewScheduler(repo repository.MaintenanceRepository, retentionDays int) *Scheduler {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Scheduler{
		repo:          repo,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithLocation(time.UTC)),
		now:           time.Now,
	}
}

// Start registers every job and starts the cron loop.
func (s *Scheduler) Start() error {
	schedule := []struct {
		spec string
		name string
		run  func(context.Context) error
	}{
		{LogRetentionSchedule, "log_retention", s.PruneSystemLogs},
		{MonthlyReconcileSchedule, "free_tier_reconcile_monthly", s.ReconcileFreeTier},
		{HourlyReconcileSchedule, "free_tier_reconcile_hourly", s.ReconcileFreeTier},
	}
	for _, job := range schedule {
		job := job
		if _, err := s.cron.AddFunc(job.spec, func() { s.run(job.name, job.run) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.name, err)
		}
	}
	s.cron.Start()
	slog.Info("scheduler started", "jobs", len(schedule))
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) run(name string, job func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		slog.Error("scheduled job failed", "action", "jobs."+name, "error", err)
		return
	}
	slog.Info("scheduled job completed", "action", "jobs."+name,
		"latency_ms", float64(time.Since(start).Microseconds())/1000)
}

// PruneSystemLogs deletes persisted log rows past retention.
func (s *Scheduler) PruneSystemLogs(ctx context.Context) error {
	cutoff := s.now().UTC().AddDate(0, 0, -s.retentionDays)
	n, err := s.repo.DeleteSystemLogsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("log cleanup failed: %w", err)
	}
	if n > 0 {
		slog.Info("log cleanup completed", "deleted", n)
	}
	return nil
}

// ReconcileFreeTier resets stale monthly maxima on this month's usage rows
// for users without a paid, live subscription.
func (s *Scheduler) ReconcileFreeTier(ctx context.Context) error {
	start, _ := models.MonthWindow(s.now())
	n, err := s.repo.ReconcileFreeTierLimits(ctx, start, plans.FreeMonthlyWordLimit)
	if err != nil {
		return fmt.Errorf("free tier reconcile failed: %w", err)
	}
	if n > 0 {
		slog.Info("free tier limits reconciled", "updated", n, "period_start", start.Format(time.RFC3339))
	}
	return nil
}
