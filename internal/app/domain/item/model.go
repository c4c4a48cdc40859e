package item

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNotFound is returned when no item carries the requested id.
var ErrNotFound = errors.New("item not found")

// Item is a single inventory record.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Category string  `json:"category"`
}

// Input carries the fields accepted when an item is created. Quantity is kept
// raw so that the store can apply the same coercion to every client payload.
type Input struct {
	Name     string          `json:"name"`
	Quantity json.RawMessage `json:"quantity,omitempty"`
	Category string          `json:"category"`
}

// Valid reports whether the required creation fields are present.
func (in Input) Valid() bool {
	return in.Name != "" && in.Category != ""
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name     *string          `json:"name,omitempty"`
	Quantity *json.RawMessage `json:"quantity,omitempty"`
	Category *string          `json:"category,omitempty"`
}

// UnmarshalJSON keeps track of an explicit `"quantity": null`, which the
// default decoder would collapse into an absent field.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("patch must be a JSON object")
	}

	*p = Patch{}
	if raw, ok := fields["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return errors.New("name must be a string")
		}
		p.Name = &name
	}
	if raw, ok := fields["category"]; ok {
		var category string
		if err := json.Unmarshal(raw, &category); err != nil {
			return errors.New("category must be a string")
		}
		p.Category = &category
	}
	if raw, ok := fields["quantity"]; ok {
		q := append(json.RawMessage(nil), raw...)
		p.Quantity = &q
	}
	return nil
}

// QuantityPatch builds a raw quantity value for a Patch.
func QuantityPatch(q float64) *json.RawMessage {
	raw := json.RawMessage(strconv.FormatFloat(q, 'f', -1, 64))
	return &raw
}

// QuantityValue builds a raw quantity value for an Input.
func QuantityValue(q float64) json.RawMessage {
	return *QuantityPatch(q)
}

// Apply merges the patch into it and returns the result. The id never changes.
func (p Patch) Apply(it Item) Item {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Quantity != nil {
		it.Quantity = CoerceQuantity(*p.Quantity)
	}
	return it
}

// CoerceQuantity converts an arbitrary JSON value into a quantity. Numbers
// pass through, numeric strings are parsed, booleans map to 1 and 0, and
// everything else (absent, null, objects, arrays, junk strings) yields 0.
func CoerceQuantity(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}

	var q float64
	switch t := v.(type) {
	case float64:
		q = t
	case bool:
		if t {
			q = 1
		}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		q = f
	default:
		return 0
	}

	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return q
}

// Filter narrows a listing.
type Filter struct {
	Q string
}

// Matches reports whether it matches q case-insensitively on name or category.
// An empty query matches everything.
func (f Filter) Matches(it Item) bool {
	q := strings.ToLower(f.Q)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Name), q) ||
		strings.Contains(strings.ToLower(it.Category), q)
}
