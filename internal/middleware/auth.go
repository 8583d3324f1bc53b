package middleware

import (
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// sessionConfig verifies Supabase access tokens, preferring the JWKS endpoint when configured.
func sessionConfig(cfg *config.Config) jwtware.Config {
	if cfg.SupabaseJWKSURL != "" {
		return jwtware.Config{JWKSetURLs: []string{cfg.SupabaseJWKSURL}}
	}
	return jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.SupabaseJWTSecret)},
	}
}

// JWTProtected rejects requests without a valid session.
func JWTProtected(cfg *config.Config) fiber.Handler {
	jc := sessionConfig(cfg)
	jc.ErrorHandler = func(c *fiber.Ctx, err error) error {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Unauthorized",
		})
	}
	return jwtware.New(jc)
}

// SessionAware attaches the session when one is present and lets anonymous
// requests through, so the handler decides when authentication matters.
func SessionAware(cfg *config.Config) fiber.Handler {
	jc := sessionConfig(cfg)
	jc.ErrorHandler = func(c *fiber.Ctx, err error) error {
		return c.Next()
	}
	return jwtware.New(jc)
}
