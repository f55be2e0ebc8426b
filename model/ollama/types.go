package ollama

import "listscribe/tools"

// Message is an Ollama chat message. Images holds raw base64 payloads
// without a data URL prefix.
type Message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// Prompt is the request-level input to the chat endpoint.
type Prompt struct {
	Messages []Message `json:"messages"`
	Tools    []Tool    `json:"tools,omitempty"`
}

// Tool represents a tool in Ollama's native format
type Tool struct {
	Type     string     `json:"type"`
	Function ToolSchema `json:"function"`
}

// ToolSchema represents the function schema for Ollama tools
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Response represents the response structure from Ollama's API
type Response struct {
	Content   string       `json:"content,omitempty"`
	ToolCalls []tools.Call `json:"tool_calls,omitempty"`
}

// toolFrom converts a registry tool into Ollama's function format.
func toolFrom(t tools.Tool) Tool {
	schema := t.InputSchema()
	parameters := map[string]any{
		"type":       "object",
		"properties": schema.Properties,
	}
	if len(schema.Required) > 0 {
		parameters["required"] = schema.Required
	}

	return Tool{
		Type: "function",
		Function: ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  parameters,
		},
	}
}
