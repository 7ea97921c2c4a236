package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = fiber.HeaderXRequestID
	CtxKeyRequestID = "request_id"
)

func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     HeaderRequestID,
		ContextKey: CtxKeyRequestID,
		Generator:  uuid.NewString,
	})
}

func GetRequestID(c *fiber.Ctx) string {
	if s, ok := c.Locals(CtxKeyRequestID).(string); ok {
		return s
	}
	return ""
}
