package services

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/repository"
	"github.com/google/uuid"
)

// Resolution is a user's entitlement plus the subscription row it came from (nil if none).
type Resolution struct {
	plans.Entitlement
	Subscription *models.Subscription
}

type EntitlementService struct {
	subs repository.SubscriptionRepository
}

func NewEntitlementService(subs repository.SubscriptionRepository) *EntitlementService {
	return &EntitlementService{subs: subs}
}

// Resolve looks up the user's subscription. No row means free tier.
func (s *EntitlementService) Resolve(ctx context.Context, userID uuid.UUID) (*Resolution, error) {
	sub, err := s.subs.GetSubscription(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &Resolution{
		Entitlement:  plans.For(sub.EffectiveTier()),
		Subscription: sub,
	}, nil
}
