package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/storage"
)

type CategoryHandler struct {
	Products storage.Products
}

func NewCategoryHandler(p storage.Products) *CategoryHandler {
	return &CategoryHandler{Products: p}
}

func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.Products.Categories(c.UserContext())
	if err != nil {
		return apperr.Wrap(err)
	}
	if categories == nil {
		categories = []string{}
	}
	return ok(c, "", categories)
}
