package checklist

import (
	"context"
	"errors"
	"testing"

	"listscribe"
	"listscribe/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingKV struct {
	storage.KV
	setErr error
}

func (f failingKV) Set(ctx context.Context, key string, value []byte) error {
	return f.setErr
}

var groceries = []listscribe.GroceryItem{
	{Name: "milk", Category: "Dairy", Emoji: "🥛"},
	{Name: "kale", Category: "Produce", Emoji: "🥬"},
	{Name: "eggs", Category: "Dairy", Emoji: "🥛"},
}

func TestChecklist_LoadMissing(t *testing.T) {
	c := New(storage.NewMemoryStore())
	require.NoError(t, c.Load(context.Background()))
	assert.Empty(t, c.Items())
}

func TestChecklist_LoadCorrupt(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), StorageKey, []byte(`not json`)))

	assert.Error(t, New(kv).Load(context.Background()))
}

func TestChecklist_ReplacePersists(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()

	checkedInput := append([]listscribe.GroceryItem(nil), groceries...)
	checkedInput[0].Checked = true

	c := New(kv)
	require.NoError(t, c.Replace(ctx, checkedInput))

	for _, it := range c.Items() {
		assert.False(t, it.Checked, "replaced items start unchecked: %s", it.Name)
	}

	reloaded := New(kv)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, c.Items(), reloaded.Items())
	assert.Equal(t, []string{"milk", "kale", "eggs"}, names(reloaded.Items()))
}

func TestChecklist_Toggle(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	c := New(kv)
	require.NoError(t, c.Replace(ctx, groceries))

	require.NoError(t, c.Toggle(ctx, "kale", true))

	reloaded := New(kv)
	require.NoError(t, reloaded.Load(ctx))
	items := reloaded.Items()
	assert.Equal(t, []bool{false, true, false}, checkedFlags(items))
	assert.Equal(t, groceries[0].Category, items[0].Category)

	require.NoError(t, c.Toggle(ctx, "kale", false))
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, []bool{false, false, false}, checkedFlags(reloaded.Items()))
}

func TestChecklist_ToggleUnknown(t *testing.T) {
	c := New(storage.NewMemoryStore())
	require.NoError(t, c.Replace(context.Background(), groceries))

	err := c.Toggle(context.Background(), "caviar", true)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestChecklist_FailedSaveKeepsState(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	c := New(mem)
	require.NoError(t, c.Replace(ctx, groceries))

	c.kv = failingKV{KV: mem, setErr: errors.New("disk full")}
	assert.Error(t, c.Toggle(ctx, "milk", true))
	assert.Equal(t, []bool{false, false, false}, checkedFlags(c.Items()))
}

func TestChecklist_Clear(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	c := New(kv)
	require.NoError(t, c.Replace(ctx, groceries))

	require.NoError(t, c.Clear(ctx))
	assert.Empty(t, c.Items())
	_, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseTranscription(t *testing.T) {
	msg, err := listscribe.NewToolCallMessage("call_1", "grocery_items", map[string]any{
		"items": []any{
			map[string]any{"name": " milk ", "category": "Dairy", "emoji": "🥛"},
			map[string]any{"name": "", "category": "Dairy", "emoji": "🥛"},
		},
	})
	require.NoError(t, err)

	items, err := ParseTranscription(msg)
	require.NoError(t, err)
	assert.Equal(t, []listscribe.GroceryItem{{Name: "milk", Category: "Dairy", Emoji: "🥛"}}, items)

	tests := []struct {
		name string
		msg  listscribe.ChatMessage
	}{
		{"no tool calls", listscribe.ChatMessage{Role: "assistant"}},
		{"arguments not json", listscribe.ChatMessage{ToolCalls: []listscribe.ToolCall{{Function: listscribe.FunctionCall{Arguments: "{"}}}}},
		{"missing items", listscribe.ChatMessage{ToolCalls: []listscribe.ToolCall{{Function: listscribe.FunctionCall{Arguments: `{"other":1}`}}}}},
		{"items not array", listscribe.ChatMessage{ToolCalls: []listscribe.ToolCall{{Function: listscribe.FunctionCall{Arguments: `{"items":"milk"}`}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTranscription(tt.msg)
			assert.Error(t, err)
		})
	}
}

func names(items []listscribe.GroceryItem) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func checkedFlags(items []listscribe.GroceryItem) []bool {
	var out []bool
	for _, it := range items {
		out = append(out, it.Checked)
	}
	return out
}
