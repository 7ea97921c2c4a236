package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/models"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/storage"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/utils"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/validation"
)

type AuthHandler struct {
	Users        storage.Users
	JWTSecret    string
	Expires      int
	CookieSecure bool
	Log          *zap.Logger
}

type RegisterReq struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,min=8,max=30"`
	Role     string `json:"role" validate:"omitempty,oneof=customer seller"` // admin and rider are never self-registered
}

type LoginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) setSession(c *fiber.Ctx, token string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     utils.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: "Lax",
		MaxAge:   maxAge,
	})
}

func userData(u *models.User) fiber.Map {
	return fiber.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"phone": u.Phone,
		"role":  u.Role,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))

	if err := validation.Struct(req); err != nil {
		return apperr.InvalidErr("Validation error", validation.FromError(err))
	}

	role := models.RoleCustomer
	if req.Role == string(models.RoleSeller) {
		role = models.RoleSeller
	}

	pw, err := utils.HashPassword(req.Password)
	if err != nil {
		return apperr.Wrap(err)
	}

	u := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: pw,
		Role:     role,
		IsActive: true,
	}
	if req.Phone != "" {
		u.Phone = &req.Phone
	}

	if err := h.Users.Create(c.UserContext(), u); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return apperr.InvalidErr("Validation error", map[string]string{"email": "email or phone is already registered"})
		}
		return apperr.Wrap(err)
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return apperr.Wrap(err)
	}
	h.setSession(c, token, h.Expires*60)
	h.Log.Info("user registered", zap.String("user", u.ID.String()), zap.String("role", string(u.Role)))

	return created(c, "Registered", fiber.Map{"user": userData(u)})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.Struct(req); err != nil {
		return apperr.InvalidErr("Validation error", validation.FromError(err))
	}

	u, err := h.Users.ByEmail(c.UserContext(), req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.UnauthorizedErr("Wrong email or password.")
	}
	if err != nil {
		return apperr.Wrap(err)
	}
	if !utils.CheckPassword(u.Password, req.Password) {
		return apperr.UnauthorizedErr("Wrong email or password.")
	}
	if !u.IsActive {
		return apperr.ForbiddenErr("This account is not active.")
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return apperr.Wrap(err)
	}
	h.setSession(c, token, h.Expires*60)

	return ok(c, "Signed in", fiber.Map{"user": userData(u)})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.setSession(c, "", -1)
	return ok(c, "Signed out", nil)
}

// Me returns the signed in user.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	u, err := h.Users.ByID(c.UserContext(), uid)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.UnauthorizedErr("Please sign in first.")
	}
	if err != nil {
		return apperr.Wrap(err)
	}
	return ok(c, "", userData(u))
}
