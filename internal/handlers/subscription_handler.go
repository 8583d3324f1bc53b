package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// Get returns the caller's plan and current-month usage. Users without a
// subscription row see the free plan as active.
func (h *SubscriptionHandler) Get(c *fiber.Ctx) error {
	snap, err := h.subscriptionService.Snapshot(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to fetch subscription")
	}

	info := dto.SubscriptionInfo{
		PlanType: string(plans.Free),
		Status:   string(plans.StatusActive),
	}
	if sub := snap.Subscription; sub != nil {
		info = dto.SubscriptionInfo{
			PlanType:           string(sub.PlanType),
			Status:             string(sub.Status),
			StripeCustomerID:   sub.StripeCustomerID,
			CurrentPeriodStart: formatTime(sub.CurrentPeriodStart),
			CurrentPeriodEnd:   formatTime(sub.CurrentPeriodEnd),
		}
	}

	return c.JSON(dto.SubscriptionResponse{
		Subscription: info,
		Usage: dto.UsageInfo{
			Used:            snap.Period.WordCount,
			Limit:           snap.Entitlement.MonthlyWordLimit,
			PerRequestLimit: snap.Entitlement.PerRequestWordLimit,
			PeriodStart:     snap.Period.PeriodStart.UTC().Format(time.RFC3339),
			PeriodEnd:       snap.Period.PeriodEnd.UTC().Format(time.RFC3339),
		},
	})
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
