package drafts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/validation"
)

// Field names.
const (
	FieldProductName       = "productName"
	FieldPrice             = "price"
	FieldCategory          = "category"
	FieldSubcategory       = "subcategory"
	FieldSubitem           = "subitem"
	FieldSKU               = "sku"
	FieldStock             = "stock"
	FieldBrand             = "brand"
	FieldCondition         = "condition"
	FieldImages            = "images"
	FieldShipping          = "shipping"
	FieldDescription       = "description"
	FieldTags              = "tags"
	FieldMaterial          = "material"
	FieldFeatures          = "features"
	FieldVariants          = "variants"
	FieldTotalStock        = "totalStock"
	FieldLowStockThreshold = "lowStockThreshold"
)

type Kind int

const (
	KindText Kind = iota
	KindStrings
	KindDecimal
	KindCount
	KindChoice
	KindChoices
	KindVariants
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindStrings:
		return "list"
	case KindDecimal:
		return "decimal"
	case KindCount:
		return "count"
	case KindChoice:
		return "choice"
	case KindChoices:
		return "choices"
	case KindVariants:
		return "variants"
	}
	return "unknown"
}

type FieldSpec struct {
	Name    string
	Kind    Kind
	Options []string // allowed values for KindChoice / KindChoices
}

var sharedFields = []FieldSpec{
	{Name: FieldProductName, Kind: KindText},
	{Name: FieldPrice, Kind: KindDecimal},
	{Name: FieldCategory, Kind: KindText},
	{Name: FieldSubcategory, Kind: KindText},
	{Name: FieldSubitem, Kind: KindText},
	{Name: FieldSKU, Kind: KindText},
	{Name: FieldStock, Kind: KindCount},
}

var ConditionOptions = []string{"new", "used", "refurbished"}
var ShippingOptions = []string{"standard", "express", "pickup"}
var FeatureOptions = []string{"waterproof", "handmade", "eco_friendly", "imported", "warranty"}

var stepFields = map[Step][]FieldSpec{
	BasicInfo: {
		{Name: FieldBrand, Kind: KindText},
		{Name: FieldCondition, Kind: KindChoice, Options: ConditionOptions},
		{Name: FieldImages, Kind: KindStrings},
		{Name: FieldShipping, Kind: KindChoices, Options: ShippingOptions},
	},
	Description: {
		{Name: FieldDescription, Kind: KindText},
		{Name: FieldTags, Kind: KindStrings},
		{Name: FieldMaterial, Kind: KindText},
		{Name: FieldFeatures, Kind: KindChoices, Options: FeatureOptions},
	},
	Stock: {
		{Name: FieldVariants, Kind: KindVariants},
		{Name: FieldTotalStock, Kind: KindCount},
		{Name: FieldLowStockThreshold, Kind: KindCount},
	},
}

// Schema returns the known fields of a step keyed by name.
func Schema(step Step) map[string]FieldSpec {
	out := map[string]FieldSpec{}
	if !step.Valid() {
		return out
	}
	for _, f := range sharedFields {
		out[f.Name] = f
	}
	for _, f := range stepFields[step] {
		out[f.Name] = f
	}
	return out
}

// Variant is one stock row of the stock step.
type Variant struct {
	SKU               string `json:"sku" validate:"max=64"`
	Color             string `json:"color" validate:"max=60"`
	ColorHex          string `json:"colorHex,omitempty" validate:"omitempty,hexcolor"`
	Size              string `json:"size" validate:"max=30"`
	Stock             int    `json:"stock" validate:"gte=0"`
	LowStockThreshold int    `json:"lowStockThreshold" validate:"gte=0"`
}

// UnmarshalJSON accepts counts sent either as numbers or as form strings.
func (v *Variant) UnmarshalJSON(b []byte) error {
	var raw struct {
		SKU               string          `json:"sku"`
		Color             string          `json:"color"`
		ColorHex          string          `json:"colorHex"`
		Size              string          `json:"size"`
		Stock             json.RawMessage `json:"stock"`
		LowStockThreshold json.RawMessage `json:"lowStockThreshold"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	stock, err := rawInt(raw.Stock)
	if err != nil {
		return fmt.Errorf("stock %w", err)
	}
	low, err := rawInt(raw.LowStockThreshold)
	if err != nil {
		return fmt.Errorf("lowStockThreshold %w", err)
	}
	*v = Variant{
		SKU:               strings.TrimSpace(raw.SKU),
		Color:             strings.TrimSpace(raw.Color),
		ColorHex:          strings.TrimSpace(raw.ColorHex),
		Size:              strings.TrimSpace(raw.Size),
		Stock:             stock,
		LowStockThreshold: low,
	}
	return nil
}

var errNotCount = errors.New("must be a whole number of at least 0")

// rawInt reads a JSON number or numeric string; negatives are kept so the
// validator can report them.
func rawInt(raw json.RawMessage) (int, error) {
	s, ok := scalarText(raw)
	if !ok || strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsInteger() || d.Abs().GreaterThan(maxCount) {
		return 0, errNotCount
	}
	return int(d.IntPart()), nil
}

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid draft: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

var validate = validation.New()

// Sanitize checks in against the step schema. Unknown fields are dropped and
// returned in ignored; values of the wrong kind fail with a *ValidationError.
// Values that pass are kept verbatim.
func Sanitize(step Step, in Fields) (clean Fields, ignored []string, err error) {
	if !step.Valid() {
		return nil, nil, fmt.Errorf("unknown step %q", step)
	}
	schema := Schema(step)
	clean = Fields{}
	verr := &ValidationError{}
	for _, name := range in.Names() {
		spec, ok := schema[name]
		if !ok {
			ignored = append(ignored, name)
			continue
		}
		raw := bytes.TrimSpace(in[name])
		if len(raw) == 0 {
			raw = []byte("null")
		}
		if msg := checkKind(spec, raw); msg != "" {
			verr.add(name, msg)
			continue
		}
		clean[name] = append(json.RawMessage(nil), raw...)
	}
	if len(verr.Fields) > 0 {
		return nil, ignored, verr
	}
	return clean, ignored, nil
}

func checkKind(spec FieldSpec, raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch spec.Kind {
	case KindText:
		if _, ok := scalarText(raw); !ok {
			return "must be text"
		}
	case KindStrings:
		if !isStringList(raw) {
			return "must be a list of text values"
		}
	case KindDecimal:
		s, ok := scalarText(raw)
		if !ok {
			return "must be a number"
		}
		if strings.TrimSpace(s) == "" {
			return ""
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
		if err != nil {
			return "must be a number"
		}
		if d.IsNegative() {
			return "must not be negative"
		}
		if d.GreaterThan(MaxPrice) {
			return "must be at most " + MaxPrice.StringFixed(2)
		}
	case KindCount:
		s, ok := scalarText(raw)
		if !ok {
			return "must be a whole number"
		}
		if strings.TrimSpace(s) == "" {
			return ""
		}
		if _, err := parseCount(s); err != nil {
			return "must be a whole number of at least 0"
		}
	case KindChoice:
		s, ok := scalarText(raw)
		if !ok {
			return "must be one of " + strings.Join(spec.Options, ", ")
		}
		if s != "" && !contains(spec.Options, s) {
			return "must be one of " + strings.Join(spec.Options, ", ")
		}
	case KindChoices:
		if !isStringList(raw) {
			return "must be a list of choices"
		}
		vals, _ := Fields{spec.Name: raw}.Strings(spec.Name)
		for _, v := range vals {
			if !contains(spec.Options, v) {
				return fmt.Sprintf("%q is not one of %s", v, strings.Join(spec.Options, ", "))
			}
		}
	case KindVariants:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return "must be a list of variant rows"
		}
		for i, item := range items {
			var row Variant
			if err := json.Unmarshal(item, &row); err != nil {
				if errors.Is(err, errNotCount) {
					return fmt.Sprintf("row %d: %v", i+1, err)
				}
				return "must be a list of variant rows"
			}
			if err := validate.Struct(row); err != nil {
				return fmt.Sprintf("row %d: %s", i+1, describe(err))
			}
		}
	}
	return ""
}

func isStringList(raw json.RawMessage) bool {
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return true
	}
	var s string
	return json.Unmarshal(raw, &s) == nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// describe turns validator errors into short field messages.
func describe(err error) string {
	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return err.Error()
	}
	fe := ve[0]
	return fe.Field() + " " + validation.MessageForTag(fe.Tag(), fe.Param())
}
