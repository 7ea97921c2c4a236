// Package drafts holds the per-step product drafts written by the seller
// product wizard: step identities, field bags, per-step schemas and the
// precedence rules used when the three drafts are folded into one product.
package drafts

import (
	"strconv"
	"strings"
)

type Step string

const (
	BasicInfo   Step = "basic_info"
	Description Step = "description"
	Stock       Step = "stock"
)

// Storage keys, as the storefront names them.
const (
	KeyBasicInfo       = "productForm"
	KeyDescription     = "productDescriptionForm"
	KeyStock           = "productStocksForm"
	KeyLegacyBasicInfo = "product_form_data"
)

// Steps lists the wizard steps in page order.
var Steps = []Step{BasicInfo, Description, Stock}

func (s Step) Valid() bool {
	return s == BasicInfo || s == Description || s == Stock
}

func (s Step) Number() int {
	switch s {
	case BasicInfo:
		return 1
	case Description:
		return 2
	case Stock:
		return 3
	}
	return 0
}

func (s Step) StorageKey() string {
	switch s {
	case BasicInfo:
		return KeyBasicInfo
	case Description:
		return KeyDescription
	case Stock:
		return KeyStock
	}
	return ""
}

func (s Step) IsFinal() bool { return s == Stock }

func StepByNumber(n int) (Step, bool) {
	if n < 1 || n > len(Steps) {
		return "", false
	}
	return Steps[n-1], true
}

// ParseStep accepts a step name ("basic_info" or "basic-info"), its page
// number ("1") or its storage key ("productForm").
func ParseStep(raw string) (Step, bool) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return StepByNumber(n)
	}
	norm := Step(strings.ReplaceAll(strings.ToLower(raw), "-", "_"))
	if norm.Valid() {
		return norm, true
	}
	for _, s := range Steps {
		if s.StorageKey() == raw {
			return s, true
		}
	}
	if raw == KeyLegacyBasicInfo {
		return BasicInfo, true
	}
	return "", false
}
