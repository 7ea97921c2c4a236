package drafts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStep(t *testing.T) {
	cases := map[string]Step{
		"basic_info":             BasicInfo,
		"basic-info":             BasicInfo,
		"1":                      BasicInfo,
		"productForm":            BasicInfo,
		"product_form_data":      BasicInfo,
		"2":                      Description,
		"productDescriptionForm": Description,
		"stock":                  Stock,
		"productStocksForm":      Stock,
		"3":                      Stock,
	}
	for in, want := range cases {
		got, ok := ParseStep(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "0", "4", "preview", "shipping"} {
		_, ok := ParseStep(bad)
		assert.False(t, ok, bad)
	}
}

func TestStep_Metadata(t *testing.T) {
	assert.Equal(t, 1, BasicInfo.Number())
	assert.Equal(t, KeyDescription, Description.StorageKey())
	assert.True(t, Stock.IsFinal())
	assert.False(t, BasicInfo.IsFinal())
	assert.Equal(t, 0, Step("other").Number())
}

func TestSanitize_DropsUnknownFields(t *testing.T) {
	in := mustFields(t, `{"productName":"Cap","price":"250","colour":"red","_debug":true}`)

	clean, ignored, err := Sanitize(BasicInfo, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"_debug", "colour"}, ignored)
	assert.Equal(t, []string{"price", "productName"}, clean.Names())
}

func TestSanitize_StepSpecificFields(t *testing.T) {
	in := mustFields(t, `{"description":"Nice cap","variants":[]}`)

	clean, ignored, err := Sanitize(Description, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"variants"}, ignored)
	assert.True(t, clean.Has(FieldDescription))
}

func TestSanitize_KindErrors(t *testing.T) {
	tests := []struct {
		name  string
		step  Step
		json  string
		field string
	}{
		{"price not a number", BasicInfo, `{"price":"cheap"}`, FieldPrice},
		{"negative price", BasicInfo, `{"price":-1}`, FieldPrice},
		{"negative stock", BasicInfo, `{"stock":-2}`, FieldStock},
		{"fractional stock", Stock, `{"totalStock":"1.5"}`, FieldTotalStock},
		{"radio outside options", BasicInfo, `{"condition":"broken"}`, FieldCondition},
		{"checkbox outside options", BasicInfo, `{"shipping":["standard","teleport"]}`, FieldShipping},
		{"text given an object", Description, `{"description":{"x":1}}`, FieldDescription},
		{"images not a list", BasicInfo, `{"images":{"a":"b"}}`, FieldImages},
		{"variant negative stock", Stock, `{"variants":[{"sku":"A","stock":-1}]}`, FieldVariants},
		{"variant bad color", Stock, `{"variants":[{"sku":"A","colorHex":"red"}]}`, FieldVariants},
		{"variants not rows", Stock, `{"variants":"A1"}`, FieldVariants},
		{"stock beyond int64", BasicInfo, `{"stock":"9223372036854775808"}`, FieldStock},
		{"total stock beyond max count", Stock, `{"totalStock":2147483648}`, FieldTotalStock},
		{"variant stock beyond uint64", Stock, `{"variants":[{"sku":"A","stock":"18446744073709551617"}]}`, FieldVariants},
		{"variant threshold beyond max count", Stock, `{"variants":[{"sku":"A","lowStockThreshold":-9223372036854775809}]}`, FieldVariants},
		{"price beyond column", BasicInfo, `{"price":1e20}`, FieldPrice},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Sanitize(tc.step, mustFields(t, tc.json))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestSanitize_VariantMessageNamesJSONField(t *testing.T) {
	_, _, err := Sanitize(Stock, mustFields(t, `{"variants":[{"sku":"A","stock":1},{"sku":"B","stock":-4}]}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "row 2: stock must be at least 0", verr.Fields[FieldVariants])
}

func TestSanitize_OversizedCountsAreRejectedNotWrapped(t *testing.T) {
	_, _, err := Sanitize(Stock, mustFields(t, `{"variants":[{"sku":"A","stock":1},{"sku":"B","stock":"18446744073709551617"}]}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "row 2: stock must be a whole number of at least 0", verr.Fields[FieldVariants])

	_, _, err = Sanitize(BasicInfo, mustFields(t, `{"stock":"9223372036854775808","price":"1000000000000"}`))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be a whole number of at least 0", verr.Fields[FieldStock])
	assert.Equal(t, "must be at most 999999999999.99", verr.Fields[FieldPrice])
}

func TestSanitize_AcceptsLimits(t *testing.T) {
	clean, _, err := Sanitize(Stock, mustFields(t, `{"totalStock":2147483647,"variants":[{"sku":"A","stock":"2147483647"}]}`))
	require.NoError(t, err)
	n, ok := clean.Int(FieldTotalStock)
	assert.True(t, ok)
	assert.Equal(t, MaxCount, n)
	rows, ok := clean.Variants()
	require.True(t, ok)
	assert.Equal(t, MaxCount, rows[0].Stock)

	_, _, err = Sanitize(BasicInfo, mustFields(t, `{"price":"999999999999.99"}`))
	assert.NoError(t, err)
}

func TestSanitize_AcceptsBlankAndNull(t *testing.T) {
	clean, _, err := Sanitize(BasicInfo, mustFields(t, `{"price":"","stock":null,"condition":""}`))
	require.NoError(t, err)
	assert.Len(t, clean, 3)
}

func TestSanitize_UnknownStep(t *testing.T) {
	_, _, err := Sanitize(Step("preview"), Fields{})
	assert.Error(t, err)
}
