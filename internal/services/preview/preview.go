// Package preview renders the read-only summary shown before a product is
// submitted.
package preview

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/drafts"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/storage"
)

// Placeholder stands in for any missing value.
const Placeholder = "-"

const currencySymbol = "₱"

const thumbWidth = "320"

type Image struct {
	Index int    `json:"index"`
	Thumb string `json:"thumb"`
	Full  string `json:"full"`
}

type VariantRow struct {
	Label    string `json:"label"`
	SKU      string `json:"sku"`
	Color    string `json:"color"`
	ColorHex string `json:"color_hex,omitempty"`
	Size     string `json:"size"`
	Stock    string `json:"stock"`
	LowStock bool   `json:"low_stock"`
}

type View struct {
	Name        string       `json:"name"`
	Price       string       `json:"price"`
	Description string       `json:"description"`
	Brand       string       `json:"brand"`
	Condition   string       `json:"condition"`
	Material    string       `json:"material"`
	SKU         string       `json:"sku"`
	Stock       string       `json:"stock"`
	Categories  []string     `json:"categories"`
	Shipping    []string     `json:"shipping"`
	Features    []string     `json:"features"`
	Images      []Image      `json:"images"`
	Tags        []string     `json:"tags"`
	Variants    []VariantRow `json:"variants"`
	// VariantsText is "-" when there are no variant rows.
	VariantsText string       `json:"variants_text"`
	Empty        bool         `json:"empty"`
	Lightbox     LightboxView `json:"lightbox"`
}

// Build renders c. It never fails: missing or unreadable values become
// placeholders.
func Build(c drafts.Composite) View {
	res := drafts.Resolve(c)
	v := View{
		Name:        orPlaceholder(res.Name.Value, res.Name.Source),
		Description: text(c, drafts.FieldDescription),
		Brand:       text(c, drafts.FieldBrand),
		Condition:   text(c, drafts.FieldCondition),
		Material:    text(c, drafts.FieldMaterial),
		SKU:         orPlaceholder(res.SKU.Value, res.SKU.Source),
		Price:       Placeholder,
		Stock:       Placeholder,
		Categories:  Categories(c),
		Shipping:    list(c, drafts.FieldShipping),
		Features:    list(c, drafts.FieldFeatures),
		Images:      images(c),
		Empty:       c.Empty(),
	}
	if res.Price.Source != drafts.SourceDefault {
		v.Price = FormatPeso(res.Price.Value)
	}
	if res.Stock.Source != drafts.SourceDefault {
		v.Stock = strconv.Itoa(res.Stock.Value)
	}

	rows, _ := c.Stock.Variants()
	defaultLow, _ := c.Stock.Int(drafts.FieldLowStockThreshold)
	for _, r := range rows {
		v.Variants = append(v.Variants, variantRow(r, defaultLow))
	}
	if v.Variants == nil {
		v.Variants = []VariantRow{}
	}
	v.VariantsText = Placeholder
	if len(v.Variants) > 0 {
		labels := make([]string, len(v.Variants))
		for i, r := range v.Variants {
			labels[i] = r.Label
		}
		v.VariantsText = strings.Join(labels, ", ")
	}
	v.Tags = FilterTags(list(c, drafts.FieldTags), rows)
	v.Lightbox = NewLightbox(v.Images).View()
	return v
}

// FormatPeso renders an amount as ₱ with thousands grouping. Whole amounts
// have no decimals, others two: ₱250, ₱1,250.50.
func FormatPeso(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	if d.IsInteger() {
		return sign + currencySymbol + humanize.Comma(d.IntPart())
	}
	whole := humanize.Comma(d.IntPart())
	cents := d.Sub(decimal.NewFromInt(d.IntPart())).StringFixed(2) // "0.50"
	if strings.HasPrefix(cents, "1") {
		// rounding carried into the whole part
		whole = humanize.Comma(d.Round(0).IntPart())
		cents = "0.00"
	}
	return sign + currencySymbol + whole + strings.TrimPrefix(cents, "0")
}

// Categories collects every non-blank category, subcategory and subitem of
// the three steps in step order. Repeats across steps are kept.
func Categories(c drafts.Composite) []string {
	out := []string{}
	for _, step := range drafts.Steps {
		f := c.Get(step)
		for _, name := range []string{drafts.FieldCategory, drafts.FieldSubcategory, drafts.FieldSubitem} {
			if v, ok := f.String(name); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// FilterTags returns the explicit tags followed by variant colors and sizes,
// without case-insensitive repeats. The first spelling seen wins.
func FilterTags(tags []string, rows []drafts.Variant) []string {
	out := []string{}
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}
	for _, t := range tags {
		add(t)
	}
	for _, r := range rows {
		add(r.Color)
	}
	for _, r := range rows {
		add(r.Size)
	}
	return out
}

func variantRow(r drafts.Variant, defaultLow int) VariantRow {
	parts := []string{}
	for _, p := range []string{r.SKU, r.Color, r.Size} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	label := strings.Join(parts, " / ")
	if label == "" {
		label = Placeholder
	}
	low := r.LowStockThreshold
	if low == 0 {
		low = defaultLow
	}
	return VariantRow{
		Label:    label,
		SKU:      r.SKU,
		Color:    r.Color,
		ColorHex: r.ColorHex,
		Size:     r.Size,
		Stock:    strconv.Itoa(r.Stock),
		LowStock: low > 0 && r.Stock <= low,
	}
}

func images(c drafts.Composite) []Image {
	urls, _ := c.BasicInfo.Strings(drafts.FieldImages)
	out := []Image{}
	for _, u := range urls {
		if u == "" {
			continue
		}
		out = append(out, Image{Index: len(out), Thumb: thumbnail(u), Full: u})
	}
	return out
}

// thumbnail asks the image host for a narrow rendition; data URLs and
// unparsable values are used as they are.
func thumbnail(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "data" || u.Host == "" {
		return raw
	}
	q := u.Query()
	q.Set("w", thumbWidth)
	u.RawQuery = q.Encode()
	return u.String()
}

func text(c drafts.Composite, field string) string {
	for _, step := range drafts.Steps {
		if v, ok := c.Get(step).String(field); ok {
			return v
		}
	}
	return Placeholder
}

func list(c drafts.Composite, field string) []string {
	for _, step := range drafts.Steps {
		if v, ok := c.Get(step).Strings(field); ok && len(v) > 0 {
			return v
		}
	}
	return []string{}
}

func orPlaceholder(v string, src drafts.Source) string {
	if src == drafts.SourceDefault || v == "" {
		return Placeholder
	}
	return v
}

// Renderer reads a seller's drafts and builds the preview. It only reads.
type Renderer struct {
	drafts storage.Drafts
	log    *zap.Logger
}

func NewRenderer(d storage.Drafts, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{drafts: d, log: log}
}

func (r *Renderer) Render(ctx context.Context, seller uuid.UUID) View {
	c, err := storage.LoadComposite(ctx, r.drafts, seller)
	if err != nil {
		r.log.Warn("preview drafts unavailable", zap.String("seller", seller.String()), zap.Error(err))
		c = drafts.Composite{}
	}
	return Build(c)
}
