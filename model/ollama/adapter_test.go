package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"listscribe"
	"listscribe/tools"
)

const testPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type fakeLLM struct {
	resp    Response
	err     error
	prompts []Prompt
}

func (f *fakeLLM) Invoke(ctx context.Context, prompt Prompt) (Response, error) {
	f.prompts = append(f.prompts, prompt)
	return f.resp, f.err
}

func TestAdapter_TranscribeImage(t *testing.T) {
	llm := &fakeLLM{resp: Response{Content: "Produce 🥬\n- kale\n"}}
	a := NewAdapter(llm, tools.NewRegistry())

	got, err := a.TranscribeImage(context.Background(), "data:image/png;base64,"+testPNG)
	if err != nil {
		t.Fatalf("TranscribeImage() error = %v", err)
	}
	if got != "Produce 🥬\n- kale" {
		t.Errorf("TranscribeImage() = %q", got)
	}

	msg := llm.prompts[0].Messages[0]
	if msg.Content != tools.TranscribePrompt {
		t.Errorf("prompt text was not the transcription prompt")
	}
	if len(msg.Images) != 1 || strings.HasPrefix(msg.Images[0], "data:") {
		t.Errorf("images = %v, want one bare base64 payload", msg.Images)
	}
}

func TestAdapter_TranscribeImage_InvalidImage(t *testing.T) {
	llm := &fakeLLM{}
	a := NewAdapter(llm, tools.NewRegistry())

	_, err := a.TranscribeImage(context.Background(), "")
	if !errors.Is(err, listscribe.ErrEmptyImage) {
		t.Errorf("TranscribeImage() error = %v, want ErrEmptyImage", err)
	}
	if len(llm.prompts) != 0 {
		t.Errorf("model was called for an empty image")
	}
}

func TestAdapter_IsGroceryList(t *testing.T) {
	tests := []struct {
		name    string
		resp    Response
		want    bool
		wantErr error
	}{
		{
			name: "string flag",
			resp: Response{ToolCalls: []tools.Call{{Name: tools.IsGroceryListName, Input: map[string]any{"isGrocerylist": "true"}}}},
			want: true,
		},
		{
			name:    "answered in prose",
			resp:    Response{Content: "Yes, that's a grocery list."},
			wantErr: listscribe.ErrNoToolCall,
		},
		{
			name:    "wrong tool",
			resp:    Response{ToolCalls: []tools.Call{{Name: tools.GroceryItemsName, Input: map[string]any{}}}},
			wantErr: listscribe.ErrNoToolCall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(&fakeLLM{resp: tt.resp}, tools.NewRegistry())
			got, err := a.IsGroceryList(context.Background(), "milk")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("IsGroceryList() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("IsGroceryList() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsGroceryList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdapter_ParseItems(t *testing.T) {
	llm := &fakeLLM{resp: Response{ToolCalls: []tools.Call{{
		Name:  tools.GroceryItemsName,
		Input: map[string]any{"items": `[{"name":"eggs","category":"Dairy","emoji":"🥚"}]`},
	}}}}
	a := NewAdapter(llm, tools.NewRegistry())

	msg, err := a.ParseItems(context.Background(), "Dairy\n- eggs")
	if err != nil {
		t.Fatalf("ParseItems() error = %v", err)
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("tool calls = %d, want 1", len(msg.ToolCalls))
	}
	call := msg.ToolCalls[0]
	if !strings.HasPrefix(call.ID, "call_") {
		t.Errorf("call id = %q, want generated id", call.ID)
	}

	var args struct {
		Items []tools.Item `json:"items"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		t.Fatalf("arguments are not JSON: %v", err)
	}
	if len(args.Items) != 1 || args.Items[0].Name != "eggs" {
		t.Errorf("items = %#v", args.Items)
	}

	sent := llm.prompts[0]
	if len(sent.Tools) != 1 || sent.Tools[0].Function.Name != tools.GroceryItemsName {
		t.Errorf("offered tools = %#v", sent.Tools)
	}
}
