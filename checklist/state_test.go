package checklist

import (
	"encoding/json"
	"testing"

	"listscribe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"empty", `{}`},
		{"single", `{"milk":{"name":"milk","category":"Dairy","checked":false,"emoji":"🥛"}}`},
		{
			"keeps key order",
			`{"zucchini":{"name":"zucchini","category":"Produce","checked":true,"emoji":"🥬"},` +
				`"apples":{"name":"apples","category":"Produce","checked":false,"emoji":"🥬"},` +
				`"milk":{"name":"milk","category":"Dairy","checked":false,"emoji":"🥛"}}`,
		},
		{"unicode names", `{"jalapeño":{"name":"jalapeño","category":"Produce","checked":false,"emoji":"🌶️"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s State
			require.NoError(t, json.Unmarshal([]byte(tt.json), &s))

			out, err := json.Marshal(s)
			require.NoError(t, err)
			assert.Equal(t, tt.json, string(out))

			// Items -> NewState -> Items is stable too.
			assert.Equal(t, s.Items(), NewState(s.Items()).Items())
		})
	}
}

func TestState_Items(t *testing.T) {
	var s State
	require.NoError(t, json.Unmarshal([]byte(
		`{"eggs":{"category":"Dairy","checked":true,"emoji":"🥚"},"bread":{"name":"bread","category":"Bakery","checked":false,"emoji":"🍞"}}`,
	), &s))

	assert.Equal(t, []listscribe.GroceryItem{
		{Name: "eggs", Category: "Dairy", Emoji: "🥚", Checked: true},
		{Name: "bread", Category: "Bakery", Emoji: "🍞"},
	}, s.Items())
}

func TestState_Unmarshal(t *testing.T) {
	var s State
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.Zero(t, s.Len())

	assert.Error(t, json.Unmarshal([]byte(`[]`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"milk":"yes"}`), &s))
}

func TestState_UnmarshalDuplicateKeys(t *testing.T) {
	var s State
	require.NoError(t, json.Unmarshal([]byte(
		`{"milk":{"category":"Dairy"},"bread":{"category":"Bakery"},"milk":{"category":"Other","checked":true}}`,
	), &s))

	assert.Equal(t, []listscribe.GroceryItem{
		{Name: "milk", Category: "Other", Checked: true},
		{Name: "bread", Category: "Bakery"},
	}, s.Items())
}

func TestState_ZeroValue(t *testing.T) {
	var s State
	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
	assert.Empty(t, s.Items())

	_, ok := s.Get("milk")
	assert.False(t, ok)
}

func TestNewState_DuplicateNames(t *testing.T) {
	s := NewState([]listscribe.GroceryItem{
		{Name: "milk", Category: "Dairy"},
		{Name: "bread", Category: "Bakery"},
		{Name: "milk", Category: "Other"},
	})

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "milk", items[0].Name)
	assert.Equal(t, "Other", items[0].Category)
	assert.Equal(t, "bread", items[1].Name)
}
