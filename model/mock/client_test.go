package mock

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"listscribe"
	"listscribe/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func TestClient_TranscribeImage(t *testing.T) {
	c := NewClient("", tools.NewRegistry())

	text, err := c.TranscribeImage(context.Background(), testPNG)
	require.NoError(t, err)
	assert.Equal(t, DefaultTranscription, text)

	_, err = c.TranscribeImage(context.Background(), "")
	assert.ErrorIs(t, err, listscribe.ErrEmptyImage)
}

func TestClient_IsGroceryList(t *testing.T) {
	c := NewClient("", tools.NewRegistry())

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"bulleted list", "Dairy 🥛\n- milk", true},
		{"star bullets", "* bread", true},
		{"prose", "This is a photo of a cat sitting on a couch.", false},
		{"empty bullet", "-  ", false},
		{"bullet past the excerpt", strings.Repeat("x", tools.ClassifierExcerptLen) + "\n- milk", false},
		{"bullet inside the excerpt", "- milk\n" + strings.Repeat("x", tools.ClassifierExcerptLen), true},
		{"default transcription", DefaultTranscription, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.IsGroceryList(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_ParseItems(t *testing.T) {
	c := NewClient("", tools.NewRegistry())

	msg, err := c.ParseItems(context.Background(), DefaultTranscription)
	require.NoError(t, err)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, tools.GroceryItemsName, msg.ToolCalls[0].Function.Name)

	var args struct {
		Items []tools.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(msg.ToolCalls[0].Function.Arguments), &args))

	assert.Equal(t, []tools.Item{
		{Name: "milk", Category: "Dairy", Emoji: "🥛"},
		{Name: "eggs", Category: "Dairy", Emoji: "🥛"},
		{Name: "kale", Category: "Produce", Emoji: "🥬"},
		{Name: "bananas", Category: "Produce", Emoji: "🥬"},
		{Name: "sourdough", Category: "Bakery", Emoji: "🍞"},
	}, args.Items)
}

func TestHeading(t *testing.T) {
	tests := []struct {
		line, name, emoji string
	}{
		{"Dairy 🥛", "Dairy", "🥛"},
		{"Frozen Foods 🧊🍦", "Frozen Foods", "🧊🍦"},
		{"Snacks:", "Snacks", ""},
		{"🍎🍐", "Other", "🍎🍐"},
	}

	for _, tt := range tests {
		name, emoji := heading(tt.line)
		assert.Equal(t, tt.name, name, tt.line)
		assert.Equal(t, tt.emoji, emoji, tt.line)
	}
}
