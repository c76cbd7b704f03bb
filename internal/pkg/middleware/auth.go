package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pathcraft-app/pathcraft/internal/pkg/usercontext"
)

// RequireAPIAuth ensures an authenticated identity for API routes and returns
// JSON 401 instead of a redirect.
func RequireAPIAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "authentication required",
		})
	}
	return c.Next()
}
