package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const webhookPath = "/api/stripe/webhook"

func Setup(
	app *fiber.App,
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	plansHandler *handlers.PlansHandler,
	humanizeHandler *handlers.HumanizeHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	historyHandler *handlers.HistoryHandler,
	billingHandler *handlers.BillingHandler,
) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP. Stripe deliveries are exempt.
	api.Use(limiter.New(limiter.Config{
		Next:              func(c *fiber.Ctx) bool { return c.Path() == webhookPath },
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Public
	api.Get("/health", healthHandler.Check)
	api.Get("/plans", plansHandler.List)

	// Humanize: stricter 20 req/min per IP. Session is optional at the
	// middleware layer so empty text is rejected before auth.
	api.Post("/humanize",
		limiter.New(limiter.Config{
			Max:               20,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		}),
		middleware.SessionAware(cfg),
		humanizeHandler.Humanize,
	)

	// Protected routes (JWT required), sharing one verifier
	protected := middleware.JWTProtected(cfg)
	api.Get("/subscription", protected, subscriptionHandler.Get)
	api.Get("/history", protected, historyHandler.List)
	api.Post("/stripe", protected, billingHandler.Checkout)
	api.Post("/stripe/portal", protected, billingHandler.Portal)

	// Stripe webhook: signature-verified, no session
	api.Post("/stripe/webhook", billingHandler.Webhook)
}
