package item

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceQuantity(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"", 0},
		{"5", 5},
		{"2.5", 2.5},
		{"-3", -3},
		{`"7"`, 7},
		{`" 12 "`, 12},
		{`""`, 0},
		{`"abc"`, 0},
		{`"NaN"`, 0},
		{`"Infinity"`, 0},
		{"true", 1},
		{"false", 0},
		{"null", 0},
		{"{}", 0},
		{"[1]", 0},
		{"not json", 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceQuantity(json.RawMessage(tt.raw)))
		})
	}
}

func TestPatchUnmarshalTracksPresence(t *testing.T) {
	var p Patch
	require.NoError(t, json.Unmarshal([]byte(`{"quantity": null}`), &p))
	require.NotNil(t, p.Quantity)
	assert.Nil(t, p.Name)
	assert.Nil(t, p.Category)

	p = Patch{}
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Bolt", "id": "99"}`), &p))
	require.NotNil(t, p.Name)
	assert.Equal(t, "Bolt", *p.Name)
	assert.Nil(t, p.Quantity)

	assert.Error(t, json.Unmarshal([]byte(`null`), &p))
	assert.Error(t, json.Unmarshal([]byte(`[]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"name": 5}`), &p))
}

func TestPatchApply(t *testing.T) {
	base := Item{ID: "1", Name: "Widget", Quantity: 5, Category: "A"}

	assert.Equal(t, base, Patch{}.Apply(base))

	got := Patch{Quantity: QuantityPatch(10)}.Apply(base)
	assert.Equal(t, Item{ID: "1", Name: "Widget", Quantity: 10, Category: "A"}, got)

	name := "Gizmo"
	got = Patch{Name: &name}.Apply(base)
	assert.Equal(t, "Gizmo", got.Name)
	assert.Equal(t, 5.0, got.Quantity)

	junk := json.RawMessage(`"lots"`)
	got = Patch{Quantity: &junk}.Apply(base)
	assert.Equal(t, 0.0, got.Quantity)
}

func TestPatchMarshalOmitsUnset(t *testing.T) {
	data, err := json.Marshal(Patch{Quantity: QuantityPatch(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"quantity":3}`, string(data))
}

func TestFilterMatches(t *testing.T) {
	it := Item{ID: "1", Name: "Blue Widget", Category: "Hardware"}

	assert.True(t, Filter{}.Matches(it))
	assert.True(t, Filter{Q: "widget"}.Matches(it))
	assert.True(t, Filter{Q: "HARD"}.Matches(it))
	assert.False(t, Filter{Q: "gadget"}.Matches(it))
}

func TestInputValid(t *testing.T) {
	assert.True(t, Input{Name: "a", Category: "b"}.Valid())
	assert.False(t, Input{Name: "a"}.Valid())
	assert.False(t, Input{Category: "b"}.Valid())
}
