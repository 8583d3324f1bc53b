package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepository implements every repository interface over one *gorm.DB.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *GormRepository) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"stripe_customer_id",
			"stripe_subscription_id",
			"plan_type",
			"status",
			"current_period_start",
			"current_period_end",
			"updated_at",
		}),
	}).Create(sub).Error
}

func (r *GormRepository) UpdateSubscriptionStatus(ctx context.Context, stripeSubscriptionID string, status plans.Status) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *GormRepository) GetOrCreateUsagePeriod(ctx context.Context, userID uuid.UUID, start, end time.Time, maxWords int) (*models.UsagePeriod, error) {
	db := r.db.WithContext(ctx)

	var period models.UsagePeriod
	err := db.Where("user_id = ? AND period_start = ?", userID, start).First(&period).Error
	if err == nil {
		return &period, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// A concurrent creator may win the insert; the unique key turns ours into a no-op.
	fresh := models.UsagePeriod{
		UserID:          userID,
		PeriodStart:     start,
		PeriodEnd:       end,
		WordCount:       0,
		MaxWordsAllowed: maxWords,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "period_start"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	if err := db.Where("user_id = ? AND period_start = ?", userID, start).First(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *GormRepository) UpdateUsageLimit(ctx context.Context, periodID uuid.UUID, maxWords int) error {
	result := r.db.WithContext(ctx).Model(&models.UsagePeriod{}).
		Where("id = ?", periodID).
		Updates(map[string]interface{}{
			"max_words_allowed": maxWords,
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) IncrementUsage(ctx context.Context, periodID uuid.UUID, words int) error {
	result := r.db.WithContext(ctx).Model(&models.UsagePeriod{}).
		Where("id = ?", periodID).
		Updates(map[string]interface{}{
			"word_count": gorm.Expr("word_count + ?", words),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) CreateHumanization(ctx context.Context, h *models.Humanization) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *GormRepository) ListHumanizations(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Humanization, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Humanization{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Humanization
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *GormRepository) GetBillingEvent(ctx context.Context, id string) (*models.BillingEvent, error) {
	var ev models.BillingEvent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *GormRepository) SaveBillingEvent(ctx context.Context, ev *models.BillingEvent) error {
	return r.db.WithContext(ctx).Save(ev).Error
}

var paidTiers = []plans.Tier{plans.Beginner, plans.Pro, plans.Ultimate}

var liveStatuses = []plans.Status{plans.StatusActive, plans.StatusTrialing, plans.StatusPastDue}

func (r *GormRepository) ReconcileFreeTierLimits(ctx context.Context, periodStart time.Time, freeLimit int) (int64, error) {
	db := r.db.WithContext(ctx)
	paying := db.Model(&models.Subscription{}).
		Select("user_id").
		Where("plan_type IN ? AND status IN ?", paidTiers, liveStatuses)

	result := db.Model(&models.UsagePeriod{}).
		Where("period_start = ? AND max_words_allowed <> ?", periodStart, freeLimit).
		Where("user_id NOT IN (?)", paying).
		Updates(map[string]interface{}{
			"max_words_allowed": freeLimit,
			"updated_at":        time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *GormRepository) CreateSystemLogs(ctx context.Context, logs []models.SystemLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 50).Error
}

func (r *GormRepository) DeleteSystemLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
