package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/apperr"
)

// ErrorHandler renders any error returned by a handler as the JSON envelope
// {success: false, message, fields?, request_id}.
func ErrorHandler(l *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := apperr.HTTPStatus(err)
		rid := GetRequestID(c)

		if status >= fiber.StatusInternalServerError {
			l.Error("request_failed", zap.String("request_id", rid), zap.Int("status", status), zap.Error(err))
		}

		payload := fiber.Map{
			"success":    false,
			"message":    apperr.PublicMessage(err),
			"request_id": rid,
		}
		if ae, ok := apperr.As(err); ok && len(ae.Fields) > 0 {
			payload["fields"] = ae.Fields
		}
		return c.Status(status).JSON(payload)
	}
}
