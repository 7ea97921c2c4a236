package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/models"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/storage"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/utils"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleOAuthHandler struct {
	Users           storage.Users
	JWTSecret       string
	Expires         int
	CookieSecure    bool
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
	Log             *zap.Logger

	// Endpoint and UserInfoURL default to Google's.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

func (h *GoogleOAuthHandler) oauthCfg() *oauth2.Config {
	endpoint := h.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	return &oauth2.Config{
		ClientID:     h.GoogleClientID,
		ClientSecret: h.GoogleSecret,
		RedirectURL:  h.GoogleRedirect,
		Endpoint:     endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (h *GoogleOAuthHandler) shortCookie(c *fiber.Ctx, name, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: "Lax",
		MaxAge:   maxAge,
	})
}

// safeNext keeps post-login redirects on the frontend.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	st := randomState(32)
	h.shortCookie(c, "oauth_state", st, 10*60)
	h.shortCookie(c, "oauth_next", safeNext(c.Query("next", "/")), 10*60)

	authURL := h.oauthCfg().AuthCodeURL(st, oauth2.AccessTypeOffline)
	return c.Redirect(authURL, http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (h *GoogleOAuthHandler) loginError(c *fiber.Ctx, msg string) error {
	u := h.FrontendBaseURL + "/auth/login?err=" + url.QueryEscape(msg)
	return c.Redirect(u, http.StatusTemporaryRedirect)
}

func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return h.loginError(c, "Google sign in was cancelled.")
	}
	if st := c.Cookies("oauth_state"); st == "" || st != state {
		return h.loginError(c, "Google sign in expired, please try again.")
	}
	next := safeNext(c.Cookies("oauth_next"))

	ctx := c.UserContext()
	cfg := h.oauthCfg()
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		h.Log.Warn("google code exchange failed", zap.Error(err))
		return h.loginError(c, "Google sign in failed.")
	}

	infoURL := h.UserInfoURL
	if infoURL == "" {
		infoURL = googleUserInfoURL
	}
	resp, err := cfg.Client(ctx, tok).Get(infoURL)
	if err != nil {
		h.Log.Warn("google userinfo failed", zap.Error(err))
		return h.loginError(c, "Google sign in failed.")
	}
	defer resp.Body.Close()

	var gu googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return h.loginError(c, "Google sign in failed.")
	}
	email := strings.ToLower(strings.TrimSpace(gu.Email))
	name := strings.TrimSpace(gu.Name)
	if email == "" {
		return h.loginError(c, "Your Google account has no email address.")
	}

	u, err := h.Users.ByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// password is required by the model; a random one can never be typed
		hashed, herr := utils.HashPassword(randomState(24))
		if herr != nil {
			return herr
		}
		if name == "" {
			name = email
		}
		u = &models.User{
			Name:     name,
			Email:    email,
			Password: hashed,
			Role:     models.RoleCustomer,
			IsActive: true,
		}
		if err := h.Users.Create(ctx, u); err != nil {
			h.Log.Error("create google user", zap.Error(err))
			return h.loginError(c, "Could not create your account.")
		}
	case err != nil:
		return err
	default:
		if name != "" && u.Name != name {
			if err := h.Users.Rename(ctx, u.ID, name); err != nil {
				h.Log.Warn("rename google user", zap.Error(err))
			}
		}
	}

	if !u.IsActive {
		return h.loginError(c, "This account is not active.")
	}

	jwtToken, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     utils.CookieName,
		Value:    jwtToken,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})
	h.shortCookie(c, "oauth_state", "", -1)
	h.shortCookie(c, "oauth_next", "", -1)

	return c.Redirect(h.FrontendBaseURL+next, http.StatusTemporaryRedirect)
}
