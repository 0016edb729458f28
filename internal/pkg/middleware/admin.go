package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/SurplusYard/SurplusYard/internal/pkg/env"
)

// RequireAdmin gates moderation endpoints behind a static admin token.
// Interactive session auth lives in the upstream identity layer; this keeps
// the moderation API usable from ops tooling.
func RequireAdmin() fiber.Handler {
	token := strings.TrimSpace(env.GetEnv("ADMIN_API_TOKEN", ""))
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "admin_disabled"})
		}
		got := strings.TrimSpace(c.Get("X-Admin-Token"))
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
