package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type BillingHandler struct {
	billingService *services.BillingService
}

func NewBillingHandler(billingService *services.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

func (h *BillingHandler) Checkout(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	url, err := h.billingService.CreateCheckout(c.UserContext(),
		middleware.GetUserID(c), middleware.GetEmail(c), req.PriceID)
	if err != nil {
		return respondError(c, err, "Failed to create checkout session")
	}
	return c.JSON(dto.URLResponse{URL: url})
}

func (h *BillingHandler) Portal(c *fiber.Ctx) error {
	url, err := h.billingService.CreatePortal(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to create portal session")
	}
	return c.JSON(dto.URLResponse{URL: url})
}

// Webhook acknowledges Stripe deliveries. Any failure is a 400 so Stripe retries.
func (h *BillingHandler) Webhook(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "No signature found",
		})
	}

	if err := h.billingService.HandleWebhook(c.UserContext(), c.Body(), signature); err != nil {
		if !errors.Is(err, services.ErrInvalidSignature) {
			capture(c, err)
		}
		slog.Error("error handling webhook",
			"request_id", requestID(c),
			"action", "billing.webhook",
			"error", err.Error(),
		)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhook handler failed",
		})
	}

	return c.JSON(dto.WebhookAck{Received: true})
}
