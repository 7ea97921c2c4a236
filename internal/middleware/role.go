package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/apperr"
)

func RequireRoles(allowed ...string) fiber.Handler {
	allowedSet := map[string]bool{}
	for _, r := range allowed {
		allowedSet[strings.ToLower(r)] = true
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		if role == "" {
			return apperr.UnauthorizedErr("Please sign in first.")
		}
		if !allowedSet[role] {
			return apperr.ForbiddenErr("Your account cannot use this feature.")
		}
		return c.Next()
	}
}
