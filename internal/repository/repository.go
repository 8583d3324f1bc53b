// Package repository is the narrow persistence boundary for subscriptions,
// usage periods, humanization history and billing events.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

// SubscriptionRepository reads and writes per-user subscription rows.
type SubscriptionRepository interface {
	// GetSubscription returns nil, nil when the user has no row.
	GetSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	UpsertSubscription(ctx context.Context, sub *models.Subscription) error
	// UpdateSubscriptionStatus returns the number of rows touched.
	UpdateSubscriptionStatus(ctx context.Context, stripeSubscriptionID string, status plans.Status) (int64, error)
}

// UsageRepository is the metering capability set. IncrementUsage is a single
// additive statement so concurrent writers never lose each other's words.
type UsageRepository interface {
	GetOrCreateUsagePeriod(ctx context.Context, userID uuid.UUID, start, end time.Time, maxWords int) (*models.UsagePeriod, error)
	UpdateUsageLimit(ctx context.Context, periodID uuid.UUID, maxWords int) error
	IncrementUsage(ctx context.Context, periodID uuid.UUID, words int) error
}

type HistoryRepository interface {
	CreateHumanization(ctx context.Context, h *models.Humanization) error
	ListHumanizations(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Humanization, int64, error)
}

type BillingEventRepository interface {
	GetBillingEvent(ctx context.Context, id string) (*models.BillingEvent, error)
	SaveBillingEvent(ctx context.Context, ev *models.BillingEvent) error
}

// MaintenanceRepository backs the scheduled jobs.
type MaintenanceRepository interface {
	ReconcileFreeTierLimits(ctx context.Context, periodStart time.Time, freeLimit int) (int64, error)
	DeleteSystemLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
