package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/drafts"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/models"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/services/preview"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/services/submission"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/storage"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/utils"
)

type ProductHandler struct {
	Products  storage.Products
	Finalizer *submission.Finalizer
	IDs       *utils.IDCodec
	Log       *zap.Logger
}

func NewProductHandler(p storage.Products, fin *submission.Finalizer, ids *utils.IDCodec, log *zap.Logger) *ProductHandler {
	return &ProductHandler{Products: p, Finalizer: fin, IDs: ids, Log: log}
}

type productSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	PriceText string    `json:"price_text"`
	Stock     int       `json:"stock"`
	Category  string    `json:"category"`
	SKU       string    `json:"sku"`
	CoverURL  string    `json:"cover_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type productDetail struct {
	productSummary
	Variants []models.ProductVariant `json:"variants"`
	Full     json.RawMessage         `json:"_full"`
}

func (h *ProductHandler) summary(p models.Product) (productSummary, error) {
	ref, err := h.IDs.Encode(p.ID)
	if err != nil {
		return productSummary{}, err
	}
	return productSummary{
		ID:        ref,
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
		PriceText: preview.FormatPeso(p.Price),
		Stock:     p.Stock,
		Category:  p.Category,
		SKU:       p.SKU,
		CoverURL:  p.CoverURL,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}, nil
}

func (h *ProductHandler) detail(p *models.Product) (productDetail, error) {
	s, err := h.summary(*p)
	if err != nil {
		return productDetail{}, err
	}
	d := productDetail{productSummary: s, Variants: p.Variants, Full: json.RawMessage(p.Full)}
	if d.Variants == nil {
		d.Variants = []models.ProductVariant{}
	}
	if len(d.Full) == 0 {
		d.Full = json.RawMessage("null")
	}
	return d, nil
}

func (h *ProductHandler) lookup(c *fiber.Ctx) (*models.Product, error) {
	id, err := h.IDs.Decode(c.Params("id"))
	if err != nil {
		return nil, apperr.InvalidErr("Invalid product ID.", nil)
	}
	p, err := h.Products.Get(c.UserContext(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFoundErr("Product not found.")
	}
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return p, nil
}

// Submit finalizes a {step1, step2, step3} payload posted in one request.
func (h *ProductHandler) Submit(c *fiber.Ctx) error {
	seller, err := currentUser(c)
	if err != nil {
		return err
	}
	var wire drafts.WirePayload
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &wire); err != nil {
			return badBody()
		}
	}
	res := h.Finalizer.Finalize(c.UserContext(), seller, &wire)
	if !res.OK {
		return res.Err
	}
	return h.submitted(c, res)
}

func (h *ProductHandler) submitted(c *fiber.Ctx, res submission.Result) error {
	d, err := h.detail(res.Product)
	if err != nil {
		return apperr.Wrap(err)
	}
	return created(c, "Product created", fiber.Map{
		"product":  d,
		"sources":  res.Sources,
		"ignored":  res.Ignored,
		"redirect": res.Redirect,
	})
}

func (h *ProductHandler) ListMine(c *fiber.Ctx) error {
	seller, err := currentUser(c)
	if err != nil {
		return err
	}
	products, err := h.Products.ListBySeller(c.UserContext(), seller)
	if err != nil {
		return apperr.Wrap(err)
	}
	out := make([]productSummary, 0, len(products))
	for _, p := range products {
		s, err := h.summary(p)
		if err != nil {
			return apperr.Wrap(err)
		}
		out = append(out, s)
	}
	return ok(c, "", out)
}

// GetOne is the seller's own detail view, including the stored drafts.
func (h *ProductHandler) GetOne(c *fiber.Ctx) error {
	seller, err := currentUser(c)
	if err != nil {
		return err
	}
	p, err := h.lookup(c)
	if err != nil {
		return err
	}
	if p.SellerID != seller {
		return apperr.NotFoundErr("Product not found.")
	}
	d, err := h.detail(p)
	if err != nil {
		return apperr.Wrap(err)
	}
	return ok(c, "", d)
}

func (h *ProductHandler) ListPublic(c *fiber.Ctx) error {
	f := storage.ProductFilter{
		Query:    c.Query("q"),
		Category: c.Query("cat"),
		MinPrice: int64(c.QueryInt("min", 0)),
		MaxPrice: int64(c.QueryInt("max", 0)),
		Sort:     storage.ProductSort(c.Query("sort", string(storage.SortLatest))),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 20),
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	products, total, err := h.Products.ListPublished(c.UserContext(), f)
	if err != nil {
		return apperr.Wrap(err)
	}
	out := make([]productSummary, 0, len(products))
	for _, p := range products {
		s, err := h.summary(p)
		if err != nil {
			return apperr.Wrap(err)
		}
		out = append(out, s)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
		"meta": fiber.Map{
			"page":        f.Page,
			"limit":       f.Limit,
			"total_items": total,
			"total_pages": int(math.Ceil(float64(total) / float64(f.Limit))),
		},
	})
}

func (h *ProductHandler) GetDetail(c *fiber.Ctx) error {
	p, err := h.lookup(c)
	if err != nil {
		return err
	}
	if p.Status != models.ProductStatusPublished {
		return apperr.NotFoundErr("Product not found.")
	}
	d, err := h.detail(p)
	if err != nil {
		return apperr.Wrap(err)
	}
	return ok(c, "", d)
}
