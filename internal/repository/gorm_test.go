package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var (
	periodStart = time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
)

func TestGetSubscriptionMissingIsNil(t *testing.T) {
	repo := NewGormRepository(testutil.NewDB(t))

	sub, err := repo.GetSubscription(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestUpsertSubscriptionKeepsOneRowPerUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.UpsertSubscription(ctx, &models.Subscription{
		UserID:               userID,
		StripeSubscriptionID: "sub_1",
		PlanType:             plans.Beginner,
		Status:               plans.StatusActive,
	}))
	require.NoError(t, repo.UpsertSubscription(ctx, &models.Subscription{
		UserID:               userID,
		StripeSubscriptionID: "sub_1",
		PlanType:             plans.Pro,
		Status:               plans.StatusTrialing,
	}))

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	sub, err := repo.GetSubscription(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, plans.Pro, sub.PlanType)
	assert.Equal(t, plans.StatusTrialing, sub.Status)
}

func TestUpdateSubscriptionStatus(t *testing.T) {
	repo := NewGormRepository(testutil.NewDB(t))
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, repo.UpsertSubscription(ctx, &models.Subscription{
		UserID: userID, StripeSubscriptionID: "sub_9", PlanType: plans.Pro, Status: plans.StatusActive,
	}))

	n, err := repo.UpdateSubscriptionStatus(ctx, "sub_9", plans.StatusPastDue)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.UpdateSubscriptionStatus(ctx, "sub_missing", plans.StatusCanceled)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	sub, err := repo.GetSubscription(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, plans.StatusPastDue, sub.Status)
}

func TestGetOrCreateUsagePeriodIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	first, err := repo.GetOrCreateUsagePeriod(ctx, userID, periodStart, periodEnd, 250)
	require.NoError(t, err)
	assert.Equal(t, 0, first.WordCount)
	assert.Equal(t, 250, first.MaxWordsAllowed)

	second, err := repo.GetOrCreateUsagePeriod(ctx, userID, periodStart, periodEnd, 5000)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 250, second.MaxWordsAllowed, "existing row must not be overwritten")

	var count int64
	require.NoError(t, db.Model(&models.UsagePeriod{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetOrCreateUsagePeriodSeparatesMonths(t *testing.T) {
	repo := NewGormRepository(testutil.NewDB(t))
	ctx := context.Background()
	userID := uuid.New()

	oct, err := repo.GetOrCreateUsagePeriod(ctx, userID, periodStart, periodEnd, 250)
	require.NoError(t, err)
	nov, err := repo.GetOrCreateUsagePeriod(ctx, userID, periodEnd, periodEnd.AddDate(0, 1, 0), 250)
	require.NoError(t, err)
	assert.NotEqual(t, oct.ID, nov.ID)
}

func TestIncrementUsageAndUpdateLimit(t *testing.T) {
	repo := NewGormRepository(testutil.NewDB(t))
	ctx := context.Background()
	userID := uuid.New()

	period, err := repo.GetOrCreateUsagePeriod(ctx, userID, periodStart, periodEnd, 5000)
	require.NoError(t, err)

	require.NoError(t, repo.IncrementUsage(ctx, period.ID, 120))
	require.NoError(t, repo.IncrementUsage(ctx, period.ID, 30))
	require.NoError(t, repo.UpdateUsageLimit(ctx, period.ID, 250))

	got, err := repo.GetOrCreateUsagePeriod(ctx, userID, periodStart, periodEnd, 0)
	require.NoError(t, err)
	assert.Equal(t, 150, got.WordCount)
	assert.Equal(t, 250, got.MaxWordsAllowed)

	assert.ErrorIs(t, repo.IncrementUsage(ctx, uuid.New(), 1), ErrNotFound)
	assert.ErrorIs(t, repo.UpdateUsageLimit(ctx, uuid.New(), 1), ErrNotFound)
}

func TestListHumanizationsNewestFirst(t *testing.T) {
	repo := NewGormRepository(testutil.NewDB(t))
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, time.October, 3, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateHumanization(ctx, &models.Humanization{
			UserID:        userID,
			OriginalText:  "in",
			HumanizedText: "out",
			Status:        models.HumanizationCompleted,
			TokensUsed:    i,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.CreateHumanization(ctx, &models.Humanization{
		UserID: uuid.New(), OriginalText: "x", HumanizedText: "y", Status: models.HumanizationCompleted,
	}))

	rows, total, err := repo.ListHumanizations(ctx, userID, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].TokensUsed)
	assert.Equal(t, 1, rows[1].TokensUsed)

	rows, _, err = repo.ListHumanizations(ctx, userID, 2, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].TokensUsed)
}

func TestBillingEventRoundTrip(t *testing.T) {
	repo := NewGormRepository(testutil.NewDB(t))
	ctx := context.Background()

	_, err := repo.GetBillingEvent(ctx, "evt_1")
	assert.ErrorIs(t, err, ErrNotFound)

	ev := &models.BillingEvent{
		ID:      "evt_1",
		Type:    "invoice.paid",
		Result:  models.BillingEventFailed,
		Payload: datatypes.JSON(`{"id":"evt_1"}`),
	}
	require.NoError(t, repo.SaveBillingEvent(ctx, ev))

	ev.Result = models.BillingEventProcessed
	require.NoError(t, repo.SaveBillingEvent(ctx, ev))

	got, err := repo.GetBillingEvent(ctx, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, models.BillingEventProcessed, got.Result)
	assert.Equal(t, "invoice.paid", got.Type)
}

func TestReconcileFreeTierLimits(t *testing.T) {
	repo := NewGormRepository(testutil.NewDB(t))
	ctx := context.Background()

	downgraded := uuid.New()
	paying := uuid.New()
	canceled := uuid.New()

	require.NoError(t, repo.UpsertSubscription(ctx, &models.Subscription{
		UserID: downgraded, PlanType: plans.Free, Status: plans.StatusActive,
	}))
	require.NoError(t, repo.UpsertSubscription(ctx, &models.Subscription{
		UserID: paying, PlanType: plans.Pro, Status: plans.StatusActive,
	}))
	require.NoError(t, repo.UpsertSubscription(ctx, &models.Subscription{
		UserID: canceled, PlanType: plans.Ultimate, Status: plans.StatusCanceled,
	}))

	for _, id := range []uuid.UUID{downgraded, paying, canceled} {
		_, err := repo.GetOrCreateUsagePeriod(ctx, id, periodStart, periodEnd, 25000)
		require.NoError(t, err)
	}

	n, err := repo.ReconcileFreeTierLimits(ctx, periodStart, 250)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	p, err := repo.GetOrCreateUsagePeriod(ctx, paying, periodStart, periodEnd, 0)
	require.NoError(t, err)
	assert.Equal(t, 25000, p.MaxWordsAllowed)

	p, err = repo.GetOrCreateUsagePeriod(ctx, canceled, periodStart, periodEnd, 0)
	require.NoError(t, err)
	assert.Equal(t, 250, p.MaxWordsAllowed)
}

func TestDeleteSystemLogsBefore(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormRepository(db)
	now := time.Now().UTC()

	require.NoError(t, repo.CreateSystemLogs(context.Background(), []models.SystemLog{
		{Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"},
		{Timestamp: now, Level: "ERROR", Message: "new"},
	}))

	n, err := repo.DeleteSystemLogsBefore(context.Background(), now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
