package drafts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Fields is one step's form snapshot. Values are kept as raw JSON so a
// draft can be stored and handed back verbatim.
type Fields map[string]json.RawMessage

// ParseFields decodes a JSON object into Fields. Empty input is an empty draft.
func ParseFields(b []byte) (Fields, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return Fields{}, nil
	}
	out := Fields{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Merge returns a copy of f with every field of in written over it.
// Fields of f that are absent from in are kept.
func (f Fields) Merge(in Fields) Fields {
	out := f.Clone()
	for k, v := range in {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func (f Fields) Names() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

func (f Fields) Set(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode field %q: %w", name, err)
	}
	f[name] = b
	return nil
}

func (f Fields) Marshal() ([]byte, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]json.RawMessage(f))
}

// String returns the field as text. Numbers are returned in their JSON
// spelling. Missing, null and blank values report false.
func (f Fields) String(name string) (string, bool) {
	raw, ok := f[name]
	if !ok {
		return "", false
	}
	s, ok := scalarText(raw)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// Strings returns an array field. A single string is treated as a one
// element array, the way a lone checked checkbox is submitted.
func (f Fields) Strings(name string) ([]string, bool) {
	raw, ok := f[name]
	if !ok {
		return nil, false
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		out := arr[:0:0]
		for _, s := range arr {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, len(out) > 0
	}
	if s, ok := f.String(name); ok {
		return []string{s}, true
	}
	return nil, false
}

// Int returns a non-negative whole number stored as a number or numeric string.
func (f Fields) Int(name string) (int, bool) {
	s, ok := f.String(name)
	if !ok {
		return 0, false
	}
	n, err := parseCount(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (f Fields) Decimal(name string) (decimal.Decimal, bool) {
	s, ok := f.String(name)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Variants decodes the variant rows of a stock draft.
func (f Fields) Variants() ([]Variant, bool) {
	raw, ok := f[FieldVariants]
	if !ok {
		return nil, false
	}
	var rows []Variant
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, false
	}
	return rows, len(rows) > 0
}

func scalarText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String(), true
	}
	return "", false
}

// MaxCount bounds every stock-like count.
const MaxCount = math.MaxInt32

// MaxPrice is the largest price a products row (numeric(14,2)) can hold.
var MaxPrice = decimal.RequireFromString("999999999999.99")

var maxCount = decimal.NewFromInt(MaxCount)

func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative count %d", n)
		}
		if n > MaxCount {
			return 0, fmt.Errorf("count %d above %d", n, MaxCount)
		}
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%s is not a whole number", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative count %s", s)
	}
	if d.GreaterThan(maxCount) {
		return 0, fmt.Errorf("count %s above %d", s, MaxCount)
	}
	return int(d.IntPart()), nil
}
