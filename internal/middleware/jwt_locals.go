package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/utils"
)

const (
	LocalUserID = "userId"
	LocalRole   = "role"
)

// AttachJWTLocals exposes the verified user id (uuid.UUID) and role.
func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(localClaims).(*utils.Claims)
		if !ok || claims == nil {
			return apperr.UnauthorizedErr("Please sign in first.")
		}

		uid, err := uuid.Parse(strings.TrimSpace(claims.UserID))
		if err != nil {
			return apperr.UnauthorizedErr("Please sign in first.")
		}

		c.Locals(LocalUserID, uid)
		c.Locals(LocalRole, strings.ToLower(strings.TrimSpace(claims.Role)))
		return c.Next()
	}
}

// UserID returns the id stored by AttachJWTLocals.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	uid, ok := c.Locals(LocalUserID).(uuid.UUID)
	if !ok || uid == uuid.Nil {
		return uuid.Nil, apperr.UnauthorizedErr("Please sign in first.")
	}
	return uid, nil
}
