package handlers

import (
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/gofiber/fiber/v2"
)

type PlansHandler struct {
	catalog *plans.Catalog
}

func NewPlansHandler(catalog *plans.Catalog) *PlansHandler {
	return &PlansHandler{catalog: catalog}
}

// List is public: every tier with its limits and purchasable prices.
func (h *PlansHandler) List(c *fiber.Ctx) error {
	prices := make(map[plans.Tier][]dto.PlanPrice)
	for _, p := range h.catalog.Purchasable() {
		prices[p.Tier] = append(prices[p.Tier], dto.PlanPrice{ID: p.ID, Interval: string(p.Interval)})
	}

	out := make([]dto.PlanResponse, 0, len(plans.Tiers))
	for _, tier := range plans.Tiers {
		ent := plans.For(tier)
		tierPrices := prices[tier]
		if tierPrices == nil {
			tierPrices = []dto.PlanPrice{}
		}
		out = append(out, dto.PlanResponse{
			PlanType:        string(tier),
			PerRequestLimit: ent.PerRequestWordLimit,
			MonthlyLimit:    ent.MonthlyWordLimit,
			Prices:          tierPrices,
		})
	}
	return c.JSON(out)
}
