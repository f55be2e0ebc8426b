package listscribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"listscribe/tools"
)

var (
	// ErrNoToolCall is returned when a model response carries no tool call.
	ErrNoToolCall = errors.New("model response contained no tool call")

	// ErrInvalidToolArguments is returned when tool call arguments are not a JSON object.
	ErrInvalidToolArguments = errors.New("tool call arguments are not a valid JSON object")
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

type ToolProvider interface {
	GetTools() []tools.Tool
	GetTool(name string) (tools.Tool, error)
}

// ModelClient is implemented by every model backend. Each call is a single
// blocking request to the upstream model; nothing is retried.
type ModelClient interface {
	TranscribeImage(ctx context.Context, imageBase64 string) (string, error)
	IsGroceryList(ctx context.Context, text string) (bool, error)
	ParseItems(ctx context.Context, text string) (ChatMessage, error)
}

type Transcriber interface {
	Run(ctx context.Context, images ...string) (TranscriptionResult, error)
}

// GroceryItem is a single entry on the checklist.
type GroceryItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Emoji    string `json:"emoji"`
	Checked  bool   `json:"checked"`
}

// ChatMessage is an assistant message in chat-completion form. The browser
// client reads tool_calls[0].function.arguments from it.
type ChatMessage struct {
	Role      string     `json:"role"`
	Content   *string    `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// TranscriptionResult carries exactly one of Text or Error.
type TranscriptionResult struct {
	Text  *ChatMessage `json:"text,omitempty"`
	Error string       `json:"error,omitempty"`
}

// MarshalJSON always emits exactly one of the two keys.
func (r TranscriptionResult) MarshalJSON() ([]byte, error) {
	if r.Text != nil {
		return json.Marshal(struct {
			Text *ChatMessage `json:"text"`
		}{r.Text})
	}
	return json.Marshal(struct {
		Error string `json:"error"`
	}{r.Error})
}

// IsList reports whether the result holds a parsed grocery list.
func (r TranscriptionResult) IsList() bool {
	return r.Text != nil
}

// NewToolCallMessage wraps a single tool call in an assistant message.
func NewToolCallMessage(id, name string, args map[string]any) (ChatMessage, error) {
	b, err := json.Marshal(args)
	if err != nil {
		return ChatMessage{}, fmt.Errorf("marshal %s arguments: %w", name, err)
	}
	return ChatMessage{
		Role: "assistant",
		ToolCalls: []ToolCall{{
			ID:   id,
			Type: "function",
			Function: FunctionCall{
				Name:      name,
				Arguments: string(b),
			},
		}},
	}, nil
}

// GroceryItems parses the arguments of the message's first tool call into
// unchecked items. Entries without a name are skipped.
func (m ChatMessage) GroceryItems() ([]GroceryItem, error) {
	if len(m.ToolCalls) == 0 {
		return nil, ErrNoToolCall
	}

	var args map[string]json.RawMessage
	if err := json.Unmarshal([]byte(m.ToolCalls[0].Function.Arguments), &args); err != nil || args == nil {
		return nil, ErrInvalidToolArguments
	}
	raw, ok := args["items"]
	if !ok {
		return nil, fmt.Errorf("%w: missing items", ErrInvalidToolArguments)
	}

	var entries []GroceryItem
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: items: %v", ErrInvalidToolArguments, err)
	}

	items := make([]GroceryItem, 0, len(entries))
	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			continue
		}
		e.Checked = false
		items = append(items, e)
	}
	return items, nil
}
