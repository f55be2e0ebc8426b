package bedrock

import (
	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"listscribe/tools"
)

type MessagePart struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Image     []byte `json:"-"`
	MediaType string `json:"media_type,omitempty"`
}

type MessageParts []MessagePart

// Join concatenates the text parts.
func (mp MessageParts) Join() string {
	var result string
	for _, part := range mp {
		if part.Type == "text" {
			result += part.Text
		}
	}
	return result
}

type Message struct {
	Role    string       `json:"role"`
	Content MessageParts `json:"content"`
}

type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"input_schema"`
}

// Prompt is a single-turn request. ToolChoice, when set, forces the model to
// answer through the named tool.
type Prompt struct {
	Messages   []Message `json:"messages"`
	Tools      []Tool    `json:"tools,omitempty"`
	ToolChoice string    `json:"tool_choice,omitempty"`
}

// Response represents the model's response structure.
type Response struct {
	Content   string       `json:"content,omitempty"`
	ToolCalls []tools.Call `json:"tool_calls,omitempty"`
}

func toolFrom(t tools.Tool) Tool {
	return Tool{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: t.InputSchema(),
	}
}
