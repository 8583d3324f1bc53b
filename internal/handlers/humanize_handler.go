package handlers

import (
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type HumanizeHandler struct {
	humanizeService *services.HumanizeService
}

func NewHumanizeHandler(humanizeService *services.HumanizeService) *HumanizeHandler {
	return &HumanizeHandler{humanizeService: humanizeService}
}

// Humanize runs behind SessionAware: anonymous callers reach the service,
// which validates the body before rejecting them.
func (h *HumanizeHandler) Humanize(c *fiber.Ctx) error {
	var req dto.HumanizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	result, err := h.humanizeService.Humanize(c.UserContext(), middleware.GetUserID(c), req.Text)
	if err != nil {
		return respondError(c, err, "Failed to humanize text")
	}

	return c.JSON(dto.HumanizeResponse{
		HumanizedText: result.Text,
		WordCount:     result.WordCount,
		DBSaveError:   result.Degraded,
	})
}
