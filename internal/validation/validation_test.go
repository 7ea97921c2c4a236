package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email string          `json:"email" validate:"required,email"`
	Role  string          `json:"role" validate:"omitempty,oneof=customer seller"`
	Price decimal.Decimal `json:"price" validate:"gt=0"`
}

func TestFromError_UsesJSONNames(t *testing.T) {
	err := Struct(signup{Email: "nope", Role: "admin", Price: decimal.Zero})
	require.Error(t, err)

	fields := FromError(err)
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be one of customer seller", fields["role"])
	assert.Equal(t, "must be greater than 0", fields["price"])
}

func TestStruct_DecimalComparison(t *testing.T) {
	assert.NoError(t, Struct(signup{Email: "a@b.co", Price: decimal.RequireFromString("0.01")}))
}

func TestFromError_OtherErrors(t *testing.T) {
	assert.Equal(t, FieldErrors{"_": "Invalid input."}, FromError(errors.New("boom")))
}
