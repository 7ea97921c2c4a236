package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/utils"
)

const localClaims = "claims"

// JWTFromCookie verifies the session cookie (or a Bearer header for API
// clients) and stores its claims for AttachJWTLocals.
func JWTFromCookie(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(utils.CookieName)
		if tokenStr == "" {
			if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
				tokenStr = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			}
		}
		if tokenStr == "" {
			return apperr.UnauthorizedErr("Please sign in first.")
		}

		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return apperr.UnauthorizedErr("Your session has expired, please sign in again.")
		}

		c.Locals(localClaims, claims)
		return c.Next()
	}
}
