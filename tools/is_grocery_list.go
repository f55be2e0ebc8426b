package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// GroceryListFlag is the argument the classifier tool must set.
const GroceryListFlag = "isGrocerylist"

type IsGroceryList struct{}

func NewIsGroceryList() *IsGroceryList { return &IsGroceryList{} }

func (t *IsGroceryList) Name() string  { return IsGroceryListName }
func (t *IsGroceryList) Title() string { return "Is Grocery List" }
func (t *IsGroceryList) Description() string {
	return "Determine if a string is a grocery list or not"
}

func (t *IsGroceryList) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Whether or not the message is a grocery list",
		Properties: map[string]*jsonschema.Schema{
			GroceryListFlag: {
				Type:        "boolean",
				Description: "Whether or not the message is a grocery list",
			},
		},
		Required: []string{GroceryListFlag},
	}
}

func (t *IsGroceryList) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	v, err := t.Decode(input)
	if err != nil {
		return nil, err
	}
	return map[string]any{GroceryListFlag: v}, nil
}

// Decode reads the boolean flag, accepting "true"/"false" strings.
func (t *IsGroceryList) Decode(input map[string]any) (bool, error) {
	switch v := input[GroceryListFlag].(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalidInput, t.Name(), v)
		}
		return b, nil
	case nil:
		return false, fmt.Errorf("%w: %s: missing %s", ErrInvalidInput, t.Name(), GroceryListFlag)
	default:
		return false, fmt.Errorf("%w: %s: %s has type %T", ErrInvalidInput, t.Name(), GroceryListFlag, v)
	}
}
