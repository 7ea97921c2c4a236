package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/models"
)

type Router struct {
	JWTSecret     string
	Auth          *AuthHandler
	Google        *GoogleOAuthHandler
	Categories    *CategoryHandler
	Products      *ProductHandler
	Wizard        *WizardHandler
	Notifications *NotificationHandler
}

func (r *Router) Mount(app *fiber.App) {
	api := app.Group("/api")

	// public
	api.Post("/auth/register", r.Auth.Register)
	api.Post("/auth/login", r.Auth.Login)
	api.Post("/auth/logout", r.Auth.Logout)
	if r.Google != nil {
		api.Get("/auth/google/start", r.Google.GoogleStart)
		api.Get("/auth/google/callback", r.Google.GoogleCallback)
	}
	api.Get("/categories", r.Categories.GetCategories)
	api.Get("/products", r.Products.ListPublic)
	api.Get("/products/:id", r.Products.GetDetail)

	auth := []fiber.Handler{
		middleware.JWTFromCookie(r.JWTSecret),
		middleware.AttachJWTLocals(),
	}

	protected := api.Group("/", auth...)
	protected.Get("/me", r.Auth.Me)

	seller := api.Group("/seller", append(auth, middleware.RequireRoles(string(models.RoleSeller)))...)

	// static segments before :step
	seller.Get("/wizard/preview", r.Wizard.Preview)
	seller.Post("/wizard/submit", r.Wizard.Submit)
	seller.Delete("/wizard/drafts", r.Wizard.ClearDrafts)
	seller.Get("/wizard/:step", r.Wizard.Enter)
	seller.Post("/wizard/:step/next", r.Wizard.Next)
	seller.Post("/wizard/:step/back", r.Wizard.Back)

	seller.Post("/products/submit", r.Products.Submit)
	seller.Get("/products", r.Products.ListMine)
	seller.Get("/products/:id", r.Products.GetOne)

	if r.Notifications != nil {
		app.Get("/ws/notifications",
			append(auth, r.Notifications.Upgrade, r.Notifications.Stream())...,
		)
	}
}
