package wizard

import (
	"encoding/json"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/drafts"
)

type InputType string

const (
	InputText     InputType = "text"
	InputNumber   InputType = "number"
	InputTextarea InputType = "textarea"
	InputRadio    InputType = "radio"
	InputCheckbox InputType = "checkbox"
	InputList     InputType = "list"
	InputVariants InputType = "variants"
)

type Option struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

type Input struct {
	Name     string          `json:"name"`
	Label    string          `json:"label"`
	Type     InputType       `json:"type"`
	Required bool            `json:"required,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	Options  []Option        `json:"options,omitempty"`
}

type Form struct {
	Step   drafts.Step `json:"step"`
	Title  string      `json:"title"`
	Inputs []Input     `json:"inputs"`
}

var optionLabels = map[string]string{
	"new":          "New",
	"used":         "Used",
	"refurbished":  "Refurbished",
	"standard":     "Standard delivery",
	"express":      "Express delivery",
	"pickup":       "Store pickup",
	"waterproof":   "Waterproof",
	"handmade":     "Handmade",
	"eco_friendly": "Eco friendly",
	"imported":     "Imported",
	"warranty":     "With warranty",
}

func options(values []string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		label := optionLabels[v]
		if label == "" {
			label = v
		}
		out = append(out, Option{Value: v, Label: label})
	}
	return out
}

// FormFor returns the blank form definition of a step.
func FormFor(step drafts.Step) Form {
	switch step {
	case drafts.BasicInfo:
		return Form{Step: step, Title: "Basic information", Inputs: []Input{
			{Name: drafts.FieldProductName, Label: "Product name", Type: InputText, Required: true},
			{Name: drafts.FieldPrice, Label: "Price", Type: InputNumber, Required: true},
			{Name: drafts.FieldCategory, Label: "Category", Type: InputText, Required: true},
			{Name: drafts.FieldSubcategory, Label: "Subcategory", Type: InputText},
			{Name: drafts.FieldSubitem, Label: "Sub item", Type: InputText},
			{Name: drafts.FieldBrand, Label: "Brand", Type: InputText},
			{Name: drafts.FieldCondition, Label: "Condition", Type: InputRadio, Options: options(drafts.ConditionOptions)},
			{Name: drafts.FieldImages, Label: "Images", Type: InputList},
			{Name: drafts.FieldShipping, Label: "Shipping", Type: InputCheckbox, Options: options(drafts.ShippingOptions)},
			{Name: drafts.FieldSKU, Label: "SKU", Type: InputText},
		}}
	case drafts.Description:
		return Form{Step: step, Title: "Description", Inputs: []Input{
			{Name: drafts.FieldDescription, Label: "Description", Type: InputTextarea},
			{Name: drafts.FieldMaterial, Label: "Material", Type: InputText},
			{Name: drafts.FieldTags, Label: "Tags", Type: InputList},
			{Name: drafts.FieldFeatures, Label: "Features", Type: InputCheckbox, Options: options(drafts.FeatureOptions)},
		}}
	case drafts.Stock:
		return Form{Step: step, Title: "Stock", Inputs: []Input{
			{Name: drafts.FieldVariants, Label: "Variants", Type: InputVariants},
			{Name: drafts.FieldTotalStock, Label: "Total stock", Type: InputNumber},
			{Name: drafts.FieldLowStockThreshold, Label: "Low stock alert", Type: InputNumber},
		}}
	}
	return Form{Step: step}
}

// Populate fills a form from a stored draft. Radio and checkbox options are
// checked when their value is among the stored values; every other input
// receives the stored value as is.
func Populate(form Form, f drafts.Fields) Form {
	out := form
	out.Inputs = make([]Input, len(form.Inputs))
	for i, in := range form.Inputs {
		in.Options = append([]Option(nil), in.Options...)
		switch in.Type {
		case InputRadio, InputCheckbox:
			chosen, _ := f.Strings(in.Name)
			for j := range in.Options {
				in.Options[j].Checked = containsValue(chosen, in.Options[j].Value)
			}
		default:
			if raw, ok := f[in.Name]; ok {
				in.Value = append(json.RawMessage(nil), raw...)
			}
		}
		out.Inputs[i] = in
	}
	return out
}

func containsValue(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
