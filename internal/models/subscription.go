package models

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription is the one-per-user billing state, upserted by payment webhooks.
type Subscription struct {
	ID                   uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	StripeCustomerID     string       `gorm:"size:255;index" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string       `gorm:"size:255;index" json:"stripe_subscription_id,omitempty"`
	PlanType             plans.Tier   `gorm:"size:20;not null;default:'free'" json:"plan_type"`
	Status               plans.Status `gorm:"size:30;not null;default:'active'" json:"status"`
	CurrentPeriodStart   *time.Time   `json:"current_period_start"`
	CurrentPeriodEnd     *time.Time   `json:"current_period_end"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// EffectiveTier is the tier this row grants given its status.
func (s *Subscription) EffectiveTier() plans.Tier {
	if s == nil {
		return plans.Free
	}
	return plans.EffectiveTier(s.PlanType, s.Status)
}
