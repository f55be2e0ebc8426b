package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"listscribe"
	"listscribe/tools"

	"github.com/google/uuid"
)

type llmClient interface {
	Invoke(ctx context.Context, prompt Prompt) (Response, error)
}

// Adapter implements listscribe.ModelClient against a local Ollama server.
// Ollama cannot force a tool choice, so each step offers exactly one tool
// and treats a reply without a call to it as ErrNoToolCall.
type Adapter struct {
	llm          llmClient
	toolProvider listscribe.ToolProvider
}

func NewAdapter(llm llmClient, tp listscribe.ToolProvider) *Adapter {
	return &Adapter{llm: llm, toolProvider: tp}
}

func (a *Adapter) TranscribeImage(ctx context.Context, imageBase64 string) (string, error) {
	img, err := listscribe.DecodeImage(imageBase64)
	if err != nil {
		return "", err
	}

	res, err := a.llm.Invoke(ctx, Prompt{
		Messages: []Message{{
			Role:    "user",
			Content: tools.TranscribePrompt,
			Images:  []string{img.Base64()},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("transcribe image: %w", err)
	}

	text := strings.TrimSpace(res.Content)
	if text == "" {
		return "", errors.New("transcribe image: model returned no text")
	}
	return text, nil
}

func (a *Adapter) IsGroceryList(ctx context.Context, text string) (bool, error) {
	out, _, err := a.invokeTool(ctx, tools.IsGroceryListName, tools.ClassifyPrompt(text))
	if err != nil {
		return false, err
	}
	isList, _ := out[tools.GroceryListFlag].(bool)
	slog.Info("LLM_CLIENT: Classified transcription", "is_grocery_list", isList)
	return isList, nil
}

func (a *Adapter) ParseItems(ctx context.Context, text string) (listscribe.ChatMessage, error) {
	out, call, err := a.invokeTool(ctx, tools.GroceryItemsName, tools.ParsePrompt(text))
	if err != nil {
		return listscribe.ChatMessage{}, err
	}
	return listscribe.NewToolCallMessage(call.ToolUseID, call.Name, out)
}

func (a *Adapter) invokeTool(ctx context.Context, name, prompt string) (map[string]any, tools.Call, error) {
	tool, err := a.toolProvider.GetTool(name)
	if err != nil {
		return nil, tools.Call{}, err
	}

	res, err := a.llm.Invoke(ctx, Prompt{
		Messages: []Message{{Role: "user", Content: prompt}},
		Tools:    []Tool{toolFrom(tool)},
	})
	if err != nil {
		return nil, tools.Call{}, fmt.Errorf("%s: %w", name, err)
	}

	call, ok := tools.FindCall(res.ToolCalls, name)
	if !ok {
		return nil, tools.Call{}, fmt.Errorf("%s: %w", name, listscribe.ErrNoToolCall)
	}
	// Ollama does not assign call ids.
	if call.ToolUseID == "" {
		call.ToolUseID = "call_" + uuid.NewString()
	}

	out, err := tool.Run(ctx, call.Input)
	if err != nil {
		return nil, tools.Call{}, err
	}
	return out, call, nil
}
