// Package session carries the authenticated user between fiber handlers.
package session

import "github.com/gofiber/fiber/v2"

const userIDKey = "user_id"

func SetUserID(c *fiber.Ctx, userID string) {
	c.Locals(userIDKey, userID)
}

// UserID returns the authenticated user id, or "" when the route is public.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

// Require is UserID for routes behind the auth middleware.
func Require(c *fiber.Ctx) (string, error) {
	id := UserID(c)
	if id == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "missing user")
	}
	return id, nil
}
