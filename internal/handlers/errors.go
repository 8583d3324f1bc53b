package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

const (
	CodePerRequestLimit = "PER_REQUEST_LIMIT"
	CodeMonthlyLimit    = "MONTHLY_LIMIT"
)

// ErrorHandler is the app-wide fallback. 5xx details are never exposed.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// respondError maps service errors onto status codes. fallback is the
// message used for anything unexpected.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var ve *services.ValidationError
	var ee *services.EntitlementError
	var ue *services.UpstreamError

	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: ve.Message,
		})
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	case errors.As(err, &ee):
		code := CodeMonthlyLimit
		if ee.Kind == services.LimitPerRequest {
			code = CodePerRequestLimit
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: ee.Error(), Code: code,
		})
	case errors.Is(err, services.ErrNoBillingCustomer):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "No billing account found",
		})
	case errors.As(err, &ue):
		capture(c, err)
	}

	slog.Error(fallback,
		"method", c.Method(),
		"path", c.Path(),
		"request_id", requestID(c),
		"error", err.Error(),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}

func capture(c *fiber.Ctx, err error) {
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
