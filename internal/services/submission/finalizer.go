// Package submission turns a seller's wizard drafts into a product record.
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/drafts"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/models"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/storage"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/validation"
)

// ListingRoute is where the seller lands after a successful submission.
const ListingRoute = "/seller/products"

// id allocation races with concurrent submissions; a conflicting insert is
// retried with a fresh id
const maxAttempts = 3

type Result struct {
	OK       bool                     `json:"ok"`
	Product  *models.Product          `json:"product,omitempty"`
	Sources  map[string]drafts.Source `json:"sources,omitempty"`
	Ignored  []string                 `json:"ignored,omitempty"`
	Reason   string                   `json:"reason,omitempty"`
	Redirect string                   `json:"redirect,omitempty"`

	// Err is the cause of a failed submission (an *apperr.AppError for
	// caller mistakes).
	Err error `json:"-"`
}

type Finalizer struct {
	store storage.Store
	pub   realtime.Publisher
	log   *zap.Logger
}

func NewFinalizer(store storage.Store, pub realtime.Publisher, log *zap.Logger) *Finalizer {
	if pub == nil {
		pub = realtime.NopPublisher
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Finalizer{store: store, pub: pub, log: log}
}

// Finalize creates the product from the seller's drafts. Steps present in
// incoming are merged into the drafts first. Merging, creating the product
// and clearing the drafts happen in one transaction: on failure the drafts
// are left exactly as they were.
func (f *Finalizer) Finalize(ctx context.Context, seller uuid.UUID, incoming *drafts.WirePayload) Result {
	edits, ignored, err := sanitizeWire(incoming)
	if err != nil {
		return f.fail(seller, err)
	}
	if len(ignored) > 0 {
		f.log.Warn("submission fields ignored", zap.String("seller", seller.String()), zap.Strings("fields", ignored))
	}

	var (
		product *models.Product
		res     drafts.Resolution
	)
	for attempt := 1; ; attempt++ {
		product, res, err = f.commit(ctx, seller, edits)
		if err == nil || !errors.Is(err, storage.ErrConflict) || attempt == maxAttempts {
			break
		}
		f.log.Info("product id taken, retrying", zap.String("seller", seller.String()), zap.Int("attempt", attempt))
	}
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			err = apperr.ConflictErr("Another product was saved at the same time, please submit again.", err)
		}
		r := f.fail(seller, err)
		r.Ignored = ignored
		return r
	}

	f.log.Info("product created",
		zap.String("seller", seller.String()),
		zap.Uint("product_id", product.ID),
		zap.Any("sources", res.Sources()),
	)
	if err := f.pub.Publish(ctx, seller, realtime.Event{Type: realtime.EventProductCreated, ProductID: product.ID}); err != nil {
		f.log.Warn("publish product_created failed", zap.String("seller", seller.String()), zap.Error(err))
	}

	return Result{
		OK:       true,
		Product:  product,
		Sources:  res.Sources(),
		Ignored:  ignored,
		Redirect: ListingRoute,
	}
}

func (f *Finalizer) commit(ctx context.Context, seller uuid.UUID, edits drafts.Composite) (*models.Product, drafts.Resolution, error) {
	var (
		product *models.Product
		res     drafts.Resolution
	)
	err := f.store.Transaction(ctx, func(tx storage.Repos) error {
		for _, step := range drafts.Steps {
			if e := edits.Get(step); len(e) > 0 {
				if err := tx.Drafts().Save(ctx, seller, step, e); err != nil {
					return err
				}
			}
		}

		c, err := storage.LoadComposite(ctx, tx.Drafts(), seller)
		if err != nil {
			return err
		}
		if c.Empty() {
			return apperr.InvalidErr("There is no product draft to submit.", nil)
		}

		res = drafts.Resolve(c)
		id, err := tx.Products().NextID(ctx)
		if err != nil {
			return err
		}
		p, err := f.buildProduct(id, seller, c, res)
		if err != nil {
			return err
		}
		if err := tx.Products().Create(ctx, p); err != nil {
			return err
		}
		if err := tx.Drafts().Clear(ctx, seller); err != nil {
			return err
		}
		product = p
		return nil
	})
	return product, res, err
}

func (f *Finalizer) fail(seller uuid.UUID, err error) Result {
	if apperr.KindOf(err) == apperr.Internal {
		f.log.Error("submission failed", zap.String("seller", seller.String()), zap.Error(err))
	} else {
		f.log.Info("submission rejected", zap.String("seller", seller.String()), zap.Error(err))
	}
	return Result{OK: false, Reason: apperr.PublicMessage(err), Err: err}
}

// sanitizeWire checks every step of a posted payload against its schema.
// Field errors are keyed "<step>.<field>".
func sanitizeWire(w *drafts.WirePayload) (drafts.Composite, []string, error) {
	var out drafts.Composite
	if w == nil {
		return out, nil, nil
	}
	in := w.Composite()
	var ignored []string
	bad := map[string]string{}
	for _, step := range drafts.Steps {
		fields := in.Get(step)
		if len(fields) == 0 {
			continue
		}
		clean, skipped, err := drafts.Sanitize(step, fields)
		for _, name := range skipped {
			ignored = append(ignored, string(step)+"."+name)
		}
		var verr *drafts.ValidationError
		if errors.As(err, &verr) {
			for k, v := range verr.Fields {
				bad[string(step)+"."+k] = v
			}
			continue
		}
		if err != nil {
			return out, ignored, err
		}
		out.Put(step, clean)
	}
	if len(bad) > 0 {
		return out, ignored, apperr.InvalidErr("Some product fields are invalid.", bad)
	}
	return out, ignored, nil
}

func (f *Finalizer) buildProduct(id uint, seller uuid.UUID, c drafts.Composite, res drafts.Resolution) (*models.Product, error) {
	full, err := c.Wire().Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode composite: %w", err)
	}
	p := &models.Product{
		ID:       id,
		SellerID: seller,
		Name:     res.Name.Value,
		Price:    res.Price.Value.Round(2),
		Stock:    res.Stock.Value,
		Category: res.Category.Value,
		SKU:      res.SKU.Value,
		Status:   models.ProductStatusPublished,
		Full:     datatypes.JSON(full),
	}
	if images, ok := c.BasicInfo.Strings(drafts.FieldImages); ok && len(images) > 0 {
		p.CoverURL = images[0]
	}
	rows, _ := c.Stock.Variants()
	seen := map[string]bool{}
	for i, row := range rows {
		if row.SKU != "" && seen[row.SKU] {
			f.log.Warn("duplicate variant sku", zap.Uint("product_id", id), zap.String("sku", row.SKU))
		}
		seen[row.SKU] = true
		p.Variants = append(p.Variants, models.ProductVariant{
			Position:          i,
			SKU:               row.SKU,
			Color:             row.Color,
			ColorHex:          row.ColorHex,
			Size:              row.Size,
			Stock:             row.Stock,
			LowStockThreshold: row.LowStockThreshold,
		})
	}
	return p, nil
}

type checkedVariant struct {
	SKU   string `json:"sku" validate:"required,max=64"`
	Stock int    `json:"stock" validate:"gte=0"`
}

type checkedProduct struct {
	ProductName string           `json:"productName" validate:"required,max=200"`
	Price       decimal.Decimal  `json:"price" validate:"gt=0"`
	Category    string           `json:"category" validate:"required,max=120"`
	SKU         string           `json:"sku" validate:"max=64"`
	Variants    []checkedVariant `json:"variants" validate:"dive"`
}

// Check applies the wizard's submit-time constraints to a composite: a name,
// a category and a positive price must come from some draft, and every
// variant row needs a SKU. Returns nil when the composite can be submitted.
// Finalize itself does not call it; missing values fall back to defaults.
func Check(c drafts.Composite) *drafts.ValidationError {
	res := drafts.Resolve(c)
	in := checkedProduct{SKU: res.SKU.Value}
	if res.Name.Source != drafts.SourceDefault {
		in.ProductName = res.Name.Value
	}
	if res.Category.Source != drafts.SourceDefault {
		in.Category = res.Category.Value
	}
	if res.Price.Source != drafts.SourceDefault {
		in.Price = res.Price.Value
	}
	rows, _ := c.Stock.Variants()
	for _, row := range rows {
		in.Variants = append(in.Variants, checkedVariant{SKU: row.SKU, Stock: row.Stock})
	}

	err := validation.Struct(in)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &drafts.ValidationError{Fields: map[string]string{"_": err.Error()}}
	}
	out := &drafts.ValidationError{Fields: map[string]string{}}
	for _, fe := range ve {
		name := fe.Namespace()
		if i := strings.Index(name, "."); i >= 0 {
			name = name[i+1:]
		}
		out.Fields[name] = validation.MessageForTag(fe.Tag(), fe.Param())
	}
	return out
}
