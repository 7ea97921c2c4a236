// Package validation holds the shared go-playground validator and turns its
// errors into {json field: message} maps.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type FieldErrors map[string]string

var validate = New()

// New builds a validator that reports json field names and compares
// decimal.Decimal values with gt/gte.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			n, _ := d.Float64()
			return n
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func Struct(s any) error {
	return validate.Struct(s)
}

// FromError maps validator errors to field messages. Any other error ends
// up under "_".
func FromError(err error) FieldErrors {
	out := FieldErrors{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["_"] = "Invalid input."
		return out
	}
	for _, fe := range ve {
		out[fe.Field()] = MessageForTag(fe.Tag(), fe.Param())
	}
	return out
}

func MessageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case "gte":
		return "must be at least " + param
	case "gt":
		return "must be greater than " + param
	case "oneof":
		return "must be one of " + param
	case "hexcolor":
		return "must be a hex color"
	default:
		return "is invalid"
	}
}
