package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func claims(c *fiber.Ctx) jwt.MapClaims {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || !token.Valid {
		return nil
	}
	mc, _ := token.Claims.(jwt.MapClaims)
	return mc
}

// GetUserID returns the session subject, or uuid.Nil for anonymous requests.
func GetUserID(c *fiber.Ctx) uuid.UUID {
	sub, _ := claims(c)["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// GetEmail returns the email claim of the session, if any.
func GetEmail(c *fiber.Ctx) string {
	email, _ := claims(c)["email"].(string)
	return email
}
