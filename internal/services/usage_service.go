package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/repository"
	"github.com/google/uuid"
)

// UsageService tracks monthly word consumption per user.
type UsageService struct {
	repo repository.UsageRepository
	now  func() time.Time
}

func NewUsageService(repo repository.UsageRepository) *UsageService {
	return &UsageService{repo: repo, now: time.Now}
}

// CurrentPeriod returns the usage row for the calendar month containing now,
// creating it with the entitlement's monthly limit on first use and repairing
// a stale limit for free-tier users.
func (s *UsageService) CurrentPeriod(ctx context.Context, userID uuid.UUID, ent plans.Entitlement) (*models.UsagePeriod, error) {
	start, end := models.MonthWindow(s.now())

	period, err := s.repo.GetOrCreateUsagePeriod(ctx, userID, start, end, ent.MonthlyWordLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize usage tracking: %w", err)
	}

	if err := s.ReconcileLimit(ctx, period, ent); err != nil {
		slog.Error("usage limit reconcile failed",
			"user_id", userID.String(),
			"action", "usage.reconcile",
			"error", err,
		)
	}
	return period, nil
}

// ReconcileLimit overwrites a free-tier period's stored maximum when it drifted
// from the free limit, e.g. after a downgrade.
func (s *UsageService) ReconcileLimit(ctx context.Context, period *models.UsagePeriod, ent plans.Entitlement) error {
	if ent.Tier != plans.Free || period.MaxWordsAllowed == plans.FreeMonthlyWordLimit {
		return nil
	}

	slog.Info("updating word limit for free tier user",
		"user_id", period.UserID.String(),
		"current_limit", period.MaxWordsAllowed,
		"new_limit", plans.FreeMonthlyWordLimit,
	)
	if err := s.repo.UpdateUsageLimit(ctx, period.ID, plans.FreeMonthlyWordLimit); err != nil {
		return err
	}
	period.MaxWordsAllowed = plans.FreeMonthlyWordLimit
	return nil
}

// RecordConsumption adds words to the period counter.
func (s *UsageService) RecordConsumption(ctx context.Context, period *models.UsagePeriod, words int) error {
	if words <= 0 {
		return nil
	}
	if err := s.repo.IncrementUsage(ctx, period.ID, words); err != nil {
		return err
	}
	period.WordCount += words
	return nil
}
