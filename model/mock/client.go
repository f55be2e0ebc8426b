package mock

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"listscribe"
	"listscribe/tools"
)

// DefaultTranscription is what the mock "sees" in every image.
const DefaultTranscription = `Hot take: whoever wrote this needs a spellchecker, but fine.

Dairy 🥛
- milk
- eggs

Produce 🥬
- kale
- bananas

Bakery 🍞
- sourdough`

// Client is a deterministic listscribe.ModelClient for local development
// and tests. It never talks to a model: classification and parsing are
// done by reading the transcript's headings and bullets.
type Client struct {
	transcription string
	tp            listscribe.ToolProvider
}

func NewClient(transcription string, tp listscribe.ToolProvider) *Client {
	if transcription == "" {
		transcription = DefaultTranscription
	}
	return &Client{transcription: transcription, tp: tp}
}

func (c *Client) TranscribeImage(ctx context.Context, imageBase64 string) (string, error) {
	if _, err := listscribe.DecodeImage(imageBase64); err != nil {
		return "", err
	}
	slog.Info("LLM_CLIENT: Returning canned transcription")
	return c.transcription, nil
}

// IsGroceryList reports true when the classifier excerpt of text has at
// least one bullet line.
func (c *Client) IsGroceryList(ctx context.Context, text string) (bool, error) {
	excerpt := tools.Excerpt(text, tools.ClassifierExcerptLen)
	for _, line := range strings.Split(excerpt, "\n") {
		if _, ok := bullet(line); ok {
			return true, nil
		}
	}
	return false, nil
}

// ParseItems reads "Heading emoji" lines as categories and "- item" lines
// as items, then runs the result through the grocery_items tool so the
// output matches what a real backend produces.
func (c *Client) ParseItems(ctx context.Context, text string) (listscribe.ChatMessage, error) {
	var (
		items    []any
		category = "Other"
		emoji    = ""
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if name, ok := bullet(line); ok {
			items = append(items, map[string]any{"name": name, "category": category, "emoji": emoji})
			continue
		}
		category, emoji = heading(line)
	}

	tool, err := c.tp.GetTool(tools.GroceryItemsName)
	if err != nil {
		return listscribe.ChatMessage{}, err
	}
	out, err := tool.Run(ctx, map[string]any{"items": items})
	if err != nil {
		return listscribe.ChatMessage{}, err
	}
	return listscribe.NewToolCallMessage("mock_call_1", tools.GroceryItemsName, out)
}

func bullet(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, p := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, p) {
			name := strings.TrimSpace(strings.TrimPrefix(line, p))
			return name, name != ""
		}
	}
	return "", false
}

// heading splits "Dairy 🥛" into its words and trailing symbols.
func heading(line string) (string, string) {
	end := strings.LastIndexFunc(line, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
	if end < 0 {
		return "Other", strings.TrimSpace(line)
	}
	_, size := utf8.DecodeRuneInString(line[end:])
	return strings.TrimSpace(line[:end+size]), strings.TrimSpace(strings.TrimLeft(line[end+size:], ":"))
}
