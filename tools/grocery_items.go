package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// Item is one parsed grocery entry as returned by the model.
type Item struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Emoji    string `json:"emoji"`
}

type GroceryItems struct{}

func NewGroceryItems() *GroceryItems { return &GroceryItems{} }

func (t *GroceryItems) Name() string  { return GroceryItemsName }
func (t *GroceryItems) Title() string { return "Grocery Items" }
func (t *GroceryItems) Description() string {
	return "Parse a list of grocery items from a string"
}

func (t *GroceryItems) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "List of grocery items with name and category",
		Properties: map[string]*jsonschema.Schema{
			"items": {
				Type:        "array",
				Description: "Array of grocery items with name and category",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"category": {Type: "string", Description: "The category of the item"},
						"name":     {Type: "string", Description: "The name of the item"},
						"emoji":    {Type: "string", Description: "The emoji or emojis for the item's category"},
					},
					Required: []string{"category", "name", "emoji"},
				},
			},
		},
		Required: []string{"items"},
	}
}

// Run checks the shape of the model's arguments. Entries without a name are
// dropped; a missing category falls back to "Other".
func (t *GroceryItems) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	items, err := t.Decode(input)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"name":     it.Name,
			"category": it.Category,
			"emoji":    it.Emoji,
		})
	}
	return map[string]any{"items": out}, nil
}

// Decode converts raw tool arguments into items.
func (t *GroceryItems) Decode(input map[string]any) ([]Item, error) {
	raw, ok := input["items"]
	if !ok {
		return nil, fmt.Errorf("%w: %s: missing items", ErrInvalidInput, t.Name())
	}

	// Some models send the array as a JSON string.
	if s, ok := raw.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, fmt.Errorf("%w: %s: items is not an array", ErrInvalidInput, t.Name())
		}
		raw = decoded
	}

	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: items is not an array", ErrInvalidInput, t.Name())
	}

	items := make([]Item, 0, len(arr))
	for _, entry := range arr {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name := strings.TrimSpace(stringField(m, "name"))
		if name == "" {
			continue
		}
		category := strings.TrimSpace(stringField(m, "category"))
		if category == "" {
			category = "Other"
		}
		items = append(items, Item{
			Name:     name,
			Category: category,
			Emoji:    strings.TrimSpace(stringField(m, "emoji")),
		})
	}
	return items, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
