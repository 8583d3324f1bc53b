package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if !cfg.HasSessionVerifier() {
		slog.Error("SUPABASE_JWT_SECRET or SUPABASE_JWKS_URL environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}
	if cfg.OpenAIAPIKey == "" {
		slog.Warn("OPENAI_API_KEY not set; humanize requests will fail")
	}
	if cfg.StripeWebhookSecret == "" {
		slog.Warn("STRIPE_WEBHOOK_SECRET not set; webhook deliveries will be rejected")
	}

	// Price catalog
	catalog, err := plans.LoadCatalogFromFile(cfg.PriceCatalogPath)
	if err != nil {
		slog.Error("failed to load price catalog", "path", cfg.PriceCatalogPath, "error", err)
		os.Exit(1)
	}
	slog.Info("price catalog loaded", "purchasable", len(catalog.Purchasable()))

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	repo := repository.NewGormRepository(database.DB)

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.AttachStore(repo)

	// Scheduled maintenance
	scheduler := jobs.NewScheduler(repo, cfg.LogRetentionDays)
	if err := scheduler.Start(); err != nil {
		slog.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}

	// Services
	entitlementService := services.NewEntitlementService(repo)
	usageService := services.NewUsageService(repo)
	humanizeService := services.NewHumanizeService(entitlementService, usageService, repo, services.NewOpenAIClient(cfg))
	subscriptionService := services.NewSubscriptionService(entitlementService, usageService)
	historyService := services.NewHistoryService(repo)
	billingService := services.NewBillingService(repo, repo, catalog,
		services.NewStripeGateway(cfg.StripeSecretKey), cfg.StripeWebhookSecret, cfg.AppURL)

	// Handlers
	healthHandler := handlers.NewHealthHandler(repo)
	plansHandler := handlers.NewPlansHandler(catalog)
	humanizeHandler := handlers.NewHumanizeHandler(humanizeService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	historyHandler := handlers.NewHistoryHandler(historyService)
	billingHandler := handlers.NewBillingHandler(billingService)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, healthHandler, plansHandler, humanizeHandler, subscriptionHandler, historyHandler, billingHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	scheduler.Stop(ctx)
	cancel()

	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
