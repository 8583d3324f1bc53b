package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type HistoryHandler struct {
	historyService *services.HistoryService
}

func NewHistoryHandler(historyService *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

func (h *HistoryHandler) List(c *fiber.Ctx) error {
	page, err := h.historyService.List(c.UserContext(), middleware.GetUserID(c),
		c.QueryInt("page", 1), c.QueryInt("limit", services.DefaultHistoryPageSize))
	if err != nil {
		return respondError(c, err, "Failed to fetch history")
	}

	items := make([]dto.HistoryItem, 0, len(page.Items))
	for _, rec := range page.Items {
		items = append(items, dto.HistoryItem{
			ID:            rec.ID.String(),
			OriginalText:  rec.OriginalText,
			HumanizedText: rec.HumanizedText,
			Status:        rec.Status,
			TokensUsed:    rec.TokensUsed,
			CreatedAt:     rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(dto.HistoryResponse{
		Items: items,
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}
