package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/google/uuid"
)

// Snapshot is a user's plan and current-month usage.
// Subscription is nil for users who never subscribed.
type Snapshot struct {
	Subscription *models.Subscription
	Entitlement  plans.Entitlement
	Period       *models.UsagePeriod
}

type SubscriptionService struct {
	entitlements *EntitlementService
	usage        *UsageService
}

func NewSubscriptionService(entitlements *EntitlementService, usage *UsageService) *SubscriptionService {
	return &SubscriptionService{entitlements: entitlements, usage: usage}
}

// Snapshot resolves the plan and opens the current usage period if needed.
func (s *SubscriptionService) Snapshot(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	res, err := s.entitlements.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	period, err := s.usage.CurrentPeriod(ctx, userID, res.Entitlement)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Subscription: res.Subscription,
		Entitlement:  res.Entitlement,
		Period:       period,
	}, nil
}
