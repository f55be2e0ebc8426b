package tools

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// ErrInvalidInput is wrapped by tools whose arguments fail validation.
var ErrInvalidInput = errors.New("invalid tool input")

// Tool describes a structured output the model is asked to fill in. Run
// validates the model's arguments and returns them in normalized form.
type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() *jsonschema.Schema
	Run(ctx context.Context, input map[string]any) (output map[string]any, err error)
}

type Call struct {
	Name      string         `json:"name"`
	Input     map[string]any `json:"input"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
}

// FindCall returns the first call to the named tool.
func FindCall(calls []Call, name string) (Call, bool) {
	for _, c := range calls {
		if c.Name == name {
			return c, true
		}
	}
	return Call{}, false
}
