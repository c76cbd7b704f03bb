package usercontext

import "github.com/gofiber/fiber/v2"

const contextKey = "USER_CONTEXT"

// UserContext represents the authenticated identity for a request.
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
}

// SetUserContext stores the resolved identity on the fiber context.
func SetUserContext(c *fiber.Ctx, ctx UserContext) {
	c.Locals(contextKey, ctx)
}

// GetUserContext retrieves the user context from fiber context.
// Returns a default anonymous context if none is set.
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(contextKey); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current user is logged in.
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the current user's ID, or 0 if not logged in.
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}
