package controllers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pathcraft-app/pathcraft/internal/pkg/billing"
)

// respondServiceError maps a billing error onto the API error shape. Unknown
// errors become a generic 500; internals are logged, never leaked.
func respondServiceError(c *fiber.Ctx, err error) error {
	if se, ok := billing.AsServiceError(err); ok {
		body := fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    se.Code,
				"message": se.Message,
			},
		}
		if len(se.Details) > 0 {
			body["error"].(fiber.Map)["details"] = se.Details
		}
		return c.Status(se.HTTPStatus).JSON(body)
	}

	log.Printf("unexpected error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    billing.CodeInternalError,
			"message": "internal server error",
		},
	})
}

func firstHeaderValue(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		v := strings.TrimSpace(c.Get(k))
		if v != "" {
			return v
		}
	}
	return ""
}
