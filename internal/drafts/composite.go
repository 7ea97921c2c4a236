package drafts

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Composite is the union of the three step drafts of one in-progress product.
type Composite struct {
	BasicInfo   Fields `json:"basic_info"`
	Description Fields `json:"description"`
	Stock       Fields `json:"stock"`
}

func (c Composite) Get(step Step) Fields {
	switch step {
	case BasicInfo:
		return c.BasicInfo
	case Description:
		return c.Description
	case Stock:
		return c.Stock
	}
	return nil
}

func (c *Composite) Put(step Step, f Fields) {
	switch step {
	case BasicInfo:
		c.BasicInfo = f
	case Description:
		c.Description = f
	case Stock:
		c.Stock = f
	}
}

func (c Composite) Empty() bool {
	return len(c.BasicInfo) == 0 && len(c.Description) == 0 && len(c.Stock) == 0
}

// Wire returns the submission payload form of the composite.
func (c Composite) Wire() WirePayload {
	return WirePayload{
		Step1: nonNil(c.BasicInfo),
		Step2: nonNil(c.Description),
		Step3: nonNil(c.Stock),
	}
}

// WirePayload is the JSON body of a final submission:
// {"step1": {...}, "step2": {...}, "step3": {...}}.
type WirePayload struct {
	Step1 Fields `json:"step1"`
	Step2 Fields `json:"step2"`
	Step3 Fields `json:"step3"`
}

func (w WirePayload) Composite() Composite {
	return Composite{BasicInfo: w.Step1, Description: w.Step2, Stock: w.Step3}
}

func (w WirePayload) Marshal() ([]byte, error) {
	return json.Marshal(w)
}

func nonNil(f Fields) Fields {
	if f == nil {
		return Fields{}
	}
	return f
}

// Source names where a resolved value came from.
type Source string

const (
	SourceBasicInfo   Source = Source(BasicInfo)
	SourceDescription Source = Source(Description)
	SourceStock       Source = Source(Stock)
	SourceVariants    Source = "variants"
	SourceDefault     Source = "default"
)

type Resolved[T any] struct {
	Value  T      `json:"value"`
	Source Source `json:"source"`
}

// Defaults used when no draft supplies a value.
const (
	DefaultName     = "Untitled Product"
	DefaultCategory = "Uncategorized"
)

// Resolution holds the product-level values derived from a composite.
type Resolution struct {
	Name     Resolved[string]          `json:"name"`
	Price    Resolved[decimal.Decimal] `json:"price"`
	Stock    Resolved[int]             `json:"stock"`
	Category Resolved[string]          `json:"category"`
	SKU      Resolved[string]          `json:"sku"`
}

// Sources reports the source of every resolved field, keyed by product field.
func (r Resolution) Sources() map[string]Source {
	return map[string]Source{
		"name":     r.Name.Source,
		"price":    r.Price.Source,
		"stock":    r.Stock.Source,
		"category": r.Category.Source,
		"sku":      r.SKU.Source,
	}
}

// Resolve folds the composite into product values. Every field is looked up
// in basic_info, then description, then stock; the first non-blank value
// wins. Fallbacks after the three drafts:
//
//	name      "Untitled Product"
//	price     0
//	stock     stock.totalStock, then the sum of variant stock, then 0
//	category  "Uncategorized"
//	sku       the first variant row carrying a SKU, then ""
func Resolve(c Composite) Resolution {
	var r Resolution

	r.Name = firstString(c, FieldProductName, DefaultName)
	r.Category = firstString(c, FieldCategory, DefaultCategory)

	r.Price = Resolved[decimal.Decimal]{Value: decimal.Zero, Source: SourceDefault}
	for _, step := range Steps {
		if d, ok := c.Get(step).Decimal(FieldPrice); ok {
			r.Price = Resolved[decimal.Decimal]{Value: d, Source: Source(step)}
			break
		}
	}

	r.Stock = resolveStock(c)

	r.SKU = firstString(c, FieldSKU, "")
	if r.SKU.Source == SourceDefault {
		if rows, ok := c.Stock.Variants(); ok {
			for _, row := range rows {
				if row.SKU != "" {
					r.SKU = Resolved[string]{Value: row.SKU, Source: SourceVariants}
					break
				}
			}
		}
	}
	return r
}

func firstString(c Composite, field, def string) Resolved[string] {
	for _, step := range Steps {
		if v, ok := c.Get(step).String(field); ok {
			return Resolved[string]{Value: v, Source: Source(step)}
		}
	}
	return Resolved[string]{Value: def, Source: SourceDefault}
}

func resolveStock(c Composite) Resolved[int] {
	for _, step := range Steps {
		if n, ok := c.Get(step).Int(FieldStock); ok {
			return Resolved[int]{Value: n, Source: Source(step)}
		}
	}
	if n, ok := c.Stock.Int(FieldTotalStock); ok {
		return Resolved[int]{Value: n, Source: SourceStock}
	}
	if rows, ok := c.Stock.Variants(); ok {
		total := 0
		for _, row := range rows {
			total += row.Stock
		}
		return Resolved[int]{Value: total, Source: SourceVariants}
	}
	return Resolved[int]{Value: 0, Source: SourceDefault}
}
