package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/services/preview"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/services/submission"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/storage"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/utils"
)

const testSecret = "handler-test-secret"

type testServer struct {
	app    *fiber.App
	store  *storage.MemoryStore
	seller uuid.UUID
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	log := zap.NewNop()
	store := storage.NewMemoryStore(log)
	ids, err := utils.NewIDCodec("0123456789abcdef")
	require.NoError(t, err)

	fin := submission.NewFinalizer(store, nil, log)
	products := NewProductHandler(store.Products(), fin, ids, log)
	r := &Router{
		JWTSecret:  testSecret,
		Auth:       &AuthHandler{Users: store.Users(), JWTSecret: testSecret, Expires: 60, Log: log},
		Categories: NewCategoryHandler(store.Products()),
		Products:   products,
		Wizard: &WizardHandler{
			Store:     store,
			Finalizer: fin,
			Renderer:  preview.NewRenderer(store.Drafts(), log),
			Products:  products,
			Log:       log,
		},
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	app.Use(middleware.RequestID(), middleware.Recovery(log))
	r.Mount(app)
	return &testServer{app: app, store: store, seller: uuid.New()}
}

func (s *testServer) token(t *testing.T, uid uuid.UUID, role string) string {
	t.Helper()
	tok, err := utils.SignJWT(testSecret, uid.String(), role, 60)
	require.NoError(t, err)
	return tok
}

type reply struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Fields  map[string]string `json:"fields"`
	Meta    map[string]any    `json:"meta"`

	Status  int
	cookies []*http.Cookie
}

func (s *testServer) call(t *testing.T, method, path, token, body string) reply {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: utils.CookieName, Value: token})
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := reply{Status: resp.StatusCode, cookies: resp.Cookies()}
	require.NoError(t, json.Unmarshal(b, &out), string(b))
	return out
}

func (s *testServer) sellerCall(t *testing.T, method, path, body string) reply {
	t.Helper()
	return s.call(t, method, path, s.token(t, s.seller, "seller"), body)
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestSellerRoutes_RequireSellerRole(t *testing.T) {
	s := newServer(t)

	r := s.call(t, http.MethodGet, "/api/seller/wizard/1", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, r.Status)

	r = s.call(t, http.MethodGet, "/api/seller/wizard/1", s.token(t, uuid.New(), "customer"), "")
	assert.Equal(t, fiber.StatusForbidden, r.Status)
	assert.False(t, r.Success)
}

func TestWizard_EnterUnknownStep(t *testing.T) {
	s := newServer(t)
	r := s.sellerCall(t, http.MethodGet, "/api/seller/wizard/4", "")
	assert.Equal(t, fiber.StatusNotFound, r.Status)
}

func TestWizard_FlowCreatesProduct(t *testing.T) {
	s := newServer(t)

	r := s.sellerCall(t, http.MethodPost, "/api/seller/wizard/1/next",
		`{"productName":"Cap","category":"Accessories","price":"1250.5","images":["https://cdn.example.com/cap.png"],"colour":"red"}`)
	require.Equal(t, fiber.StatusOK, r.Status, r.Message)
	next := decode[map[string]any](t, r.Data)
	assert.Equal(t, "/seller/products/new/description", next["redirect"])
	assert.Equal(t, []any{"colour"}, next["ignored"])

	r = s.sellerCall(t, http.MethodGet, "/api/seller/wizard/basic-info", "")
	require.Equal(t, fiber.StatusOK, r.Status)
	page := decode[map[string]any](t, r.Data)
	assert.Equal(t, float64(1), page["number"])
	assert.Equal(t, "Cap", page["draft"].(map[string]any)["productName"])

	r = s.sellerCall(t, http.MethodPost, "/api/seller/wizard/2/next", `{"description":"Nice cap","tags":["summer"]}`)
	require.Equal(t, fiber.StatusOK, r.Status, r.Message)

	r = s.sellerCall(t, http.MethodGet, "/api/seller/wizard/preview", "")
	require.Equal(t, fiber.StatusOK, r.Status)
	view := decode[preview.View](t, r.Data)
	assert.Equal(t, "Cap", view.Name)
	assert.Equal(t, "₱1,250.50", view.Price)
	assert.False(t, view.Empty)
	assert.False(t, view.Lightbox.Open)

	r = s.sellerCall(t, http.MethodGet, "/api/seller/wizard/preview?image=0", "")
	require.Equal(t, fiber.StatusOK, r.Status)
	view = decode[preview.View](t, r.Data)
	assert.True(t, view.Lightbox.Open)
	require.NotNil(t, view.Lightbox.Current)
	assert.Equal(t, "https://cdn.example.com/cap.png", view.Lightbox.Current.Full)

	r = s.sellerCall(t, http.MethodGet, "/api/seller/wizard/preview?image=3", "")
	assert.Equal(t, fiber.StatusNotFound, r.Status)
	r = s.sellerCall(t, http.MethodGet, "/api/seller/wizard/preview?image=x", "")
	assert.Equal(t, fiber.StatusBadRequest, r.Status)

	r = s.sellerCall(t, http.MethodPost, "/api/seller/wizard/submit",
		`{"variants":[{"sku":"CAP-1","color":"Red","size":"M","stock":4}],"totalStock":4}`)
	require.Equal(t, fiber.StatusCreated, r.Status, r.Message)
	res := decode[struct {
		Product struct {
			ID       string          `json:"id"`
			Name     string          `json:"name"`
			SKU      string          `json:"sku"`
			Stock    int             `json:"stock"`
			CoverURL string          `json:"cover_url"`
			Full     json.RawMessage `json:"_full"`
		} `json:"product"`
		Redirect string `json:"redirect"`
	}](t, r.Data)
	assert.Equal(t, submission.ListingRoute, res.Redirect)
	assert.Equal(t, "Cap", res.Product.Name)
	assert.Equal(t, "CAP-1", res.Product.SKU)
	assert.Equal(t, 4, res.Product.Stock)
	assert.Equal(t, "https://cdn.example.com/cap.png", res.Product.CoverURL)
	assert.Contains(t, string(res.Product.Full), `"step3"`)
	assert.NotEqual(t, "1", res.Product.ID)

	r = s.sellerCall(t, http.MethodGet, "/api/seller/wizard/preview", "")
	assert.True(t, decode[preview.View](t, r.Data).Empty)

	r = s.sellerCall(t, http.MethodGet, "/api/seller/products", "")
	mine := decode[[]map[string]any](t, r.Data)
	require.Len(t, mine, 1)
	assert.Equal(t, res.Product.ID, mine[0]["id"])

	r = s.sellerCall(t, http.MethodGet, "/api/seller/products/"+res.Product.ID, "")
	require.Equal(t, fiber.StatusOK, r.Status)
	one := decode[map[string]any](t, r.Data)
	assert.NotNil(t, one["_full"])
	assert.Len(t, one["variants"], 1)

	r = s.call(t, http.MethodGet, "/api/seller/products/"+res.Product.ID, s.token(t, uuid.New(), "seller"), "")
	assert.Equal(t, fiber.StatusNotFound, r.Status)

	r = s.call(t, http.MethodGet, "/api/products/"+res.Product.ID, "", "")
	require.Equal(t, fiber.StatusOK, r.Status)
	assert.Equal(t, "₱1,250.50", decode[map[string]any](t, r.Data)["price_text"])

	r = s.call(t, http.MethodGet, "/api/categories", "", "")
	assert.Equal(t, []string{"Accessories"}, decode[[]string](t, r.Data))
}

func TestWizard_SubmitIncomplete(t *testing.T) {
	s := newServer(t)
	s.sellerCall(t, http.MethodPost, "/api/seller/wizard/1/next", `{"productName":"Cap"}`)

	r := s.sellerCall(t, http.MethodPost, "/api/seller/wizard/submit", `{"totalStock":2}`)
	assert.Equal(t, fiber.StatusBadRequest, r.Status)
	assert.Contains(t, r.Fields, "price")
	assert.Contains(t, r.Fields, "category")

	r = s.sellerCall(t, http.MethodGet, "/api/seller/products", "")
	assert.Empty(t, decode[[]map[string]any](t, r.Data))
}

func TestWizard_NextRejectsBadKinds(t *testing.T) {
	s := newServer(t)
	r := s.sellerCall(t, http.MethodPost, "/api/seller/wizard/stock/next", `{"totalStock":"many"}`)
	assert.Equal(t, fiber.StatusBadRequest, r.Status)
	assert.Contains(t, r.Fields, "totalStock")

	r = s.sellerCall(t, http.MethodPost, "/api/seller/wizard/stock/next", `not json`)
	assert.Equal(t, fiber.StatusBadRequest, r.Status)
}

func TestWizard_BackAndClear(t *testing.T) {
	s := newServer(t)
	s.sellerCall(t, http.MethodPost, "/api/seller/wizard/1/next", `{"productName":"Cap"}`)
	s.sellerCall(t, http.MethodPost, "/api/seller/wizard/2/next", `{"description":"Nice"}`)

	r := s.sellerCall(t, http.MethodPost, "/api/seller/wizard/2/back", "")
	require.Equal(t, fiber.StatusOK, r.Status)
	assert.Equal(t, "/seller/products/new/basic-info", decode[map[string]any](t, r.Data)["redirect"])

	r = s.sellerCall(t, http.MethodDelete, "/api/seller/wizard/drafts?step=description", "")
	require.Equal(t, fiber.StatusOK, r.Status)
	view := decode[preview.View](t, s.sellerCall(t, http.MethodGet, "/api/seller/wizard/preview", "").Data)
	assert.Equal(t, "Cap", view.Name)
	assert.Equal(t, preview.Placeholder, view.Description)

	r = s.sellerCall(t, http.MethodDelete, "/api/seller/wizard/drafts?step=9", "")
	assert.Equal(t, fiber.StatusBadRequest, r.Status)

	s.sellerCall(t, http.MethodDelete, "/api/seller/wizard/drafts", "")
	view = decode[preview.View](t, s.sellerCall(t, http.MethodGet, "/api/seller/wizard/preview", "").Data)
	assert.True(t, view.Empty)
}

func TestProducts_WireSubmit(t *testing.T) {
	s := newServer(t)

	r := s.sellerCall(t, http.MethodPost, "/api/seller/products/submit", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, r.Status)
	assert.Equal(t, "There is no product draft to submit.", r.Message)

	r = s.sellerCall(t, http.MethodPost, "/api/seller/products/submit",
		`{"step1":{"productName":"Shirt","price":300,"sku":"SH-1"},"step3":{"totalStock":5}}`)
	require.Equal(t, fiber.StatusCreated, r.Status, r.Message)

	r = s.call(t, http.MethodGet, "/api/products?q=shirt&limit=1", "", "")
	require.Equal(t, fiber.StatusOK, r.Status)
	list := decode[[]map[string]any](t, r.Data)
	require.Len(t, list, 1)
	assert.Equal(t, "Shirt", list[0]["name"])
	assert.Equal(t, float64(1), r.Meta["total_pages"])

	r = s.call(t, http.MethodGet, "/api/products/not-a-ref", "", "")
	assert.Equal(t, fiber.StatusBadRequest, r.Status)
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	s := newServer(t)

	r := s.call(t, http.MethodPost, "/api/auth/register", "",
		`{"name":"Ana","email":"Ana@Example.com","password":"secret1","role":"seller"}`)
	require.Equal(t, fiber.StatusCreated, r.Status, r.Message)

	r = s.call(t, http.MethodPost, "/api/auth/register", "",
		`{"name":"Ana","email":"ana@example.com","password":"secret1"}`)
	assert.Equal(t, fiber.StatusBadRequest, r.Status)
	assert.Contains(t, r.Fields, "email")

	r = s.call(t, http.MethodPost, "/api/auth/login", "", `{"email":"ana@example.com","password":"wrong!"}`)
	assert.Equal(t, fiber.StatusUnauthorized, r.Status)

	r = s.call(t, http.MethodPost, "/api/auth/login", "", `{"email":"ana@example.com","password":"secret1"}`)
	require.Equal(t, fiber.StatusOK, r.Status)
	var session string
	for _, c := range r.cookies {
		if c.Name == utils.CookieName {
			session = c.Value
		}
	}
	require.NotEmpty(t, session)

	r = s.call(t, http.MethodGet, "/api/me", session, "")
	require.Equal(t, fiber.StatusOK, r.Status)
	me := decode[map[string]any](t, r.Data)
	assert.Equal(t, "ana@example.com", me["email"])
	assert.Equal(t, "seller", me["role"])
}
