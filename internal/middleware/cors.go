package middleware

import (
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS admits the web frontend. The Stripe webhook is server-to-server and
// never preflighted.
func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowMethods:     "GET, POST, OPTIONS",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: false,
	})
}
