package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/middleware"
)

func ok(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func badBody() error {
	return apperr.InvalidErr("Invalid request body.", nil)
}

func currentUser(c *fiber.Ctx) (uuid.UUID, error) {
	return middleware.UserID(c)
}
