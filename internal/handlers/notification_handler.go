package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/realtime"
)

type NotificationHandler struct {
	Hub *realtime.Hub
}

// Upgrade only lets authenticated websocket requests through.
func (h *NotificationHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	c.Locals(middleware.LocalUserID, uid)
	return c.Next()
}

func (h *NotificationHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals(middleware.LocalUserID).(uuid.UUID)
		if !ok {
			_ = conn.Close()
			return
		}
		h.Hub.Serve(conn, uid)
	})
}
