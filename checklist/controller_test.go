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

type fakeAPI struct {
	res listscribe.TranscriptionResult
	err error
	got [][]byte
}

func (f *fakeAPI) Transcribe(ctx context.Context, images ...[]byte) (listscribe.TranscriptionResult, error) {
	f.got = images
	return f.res, f.err
}

func parsedResult(t *testing.T, items ...map[string]any) listscribe.TranscriptionResult {
	t.Helper()
	list := make([]any, len(items))
	for i, it := range items {
		list[i] = it
	}
	msg, err := listscribe.NewToolCallMessage("call_1", "grocery_items", map[string]any{"items": list})
	require.NoError(t, err)
	return listscribe.TranscriptionResult{Text: &msg}
}

func seeded(t *testing.T) (*Checklist, storage.KV) {
	t.Helper()
	kv := storage.NewMemoryStore()
	list := New(kv)
	require.NoError(t, list.Replace(context.Background(), groceries))
	require.NoError(t, list.Toggle(context.Background(), "milk", true))
	return list, kv
}

func TestController_ScanList(t *testing.T) {
	list, kv := seeded(t)
	api := &fakeAPI{res: parsedResult(t,
		map[string]any{"name": "bread", "category": "Bakery", "emoji": "🍞"},
		map[string]any{"name": "butter", "category": "Dairy", "emoji": "🧈"},
	)}
	c := NewController(list, api)

	status, _ := c.State()
	assert.Equal(t, StatusIdle, status)

	require.NoError(t, c.Scan(context.Background(), []byte("jpeg bytes")))

	status, msg := c.State()
	assert.Equal(t, StatusDisplaying, status)
	assert.Empty(t, msg)
	assert.Equal(t, [][]byte{[]byte("jpeg bytes")}, api.got)
	assert.Equal(t, []string{"bread", "butter"}, names(c.Items()))

	reloaded := New(kv)
	require.NoError(t, reloaded.Load(context.Background()))
	assert.Equal(t, []string{"bread", "butter"}, names(reloaded.Items()))
}

func TestController_ScanNotAList(t *testing.T) {
	list, kv := seeded(t)
	before, _, err := kv.Get(context.Background(), StorageKey)
	require.NoError(t, err)

	roast := "Such penmanship could curdle milk at forty paces."
	c := NewController(list, &fakeAPI{res: listscribe.TranscriptionResult{Error: roast}})

	require.NoError(t, c.Scan(context.Background(), []byte("cat photo")))

	status, msg := c.State()
	assert.Equal(t, StatusError, status)
	assert.Equal(t, roast, msg)

	after, _, err := kv.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	assert.Equal(t, before, after, "stored checklist must be untouched")
	assert.Equal(t, []bool{true, false, false}, checkedFlags(c.Items()))
}

func TestController_ScanFailures(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeAPI
	}{
		{"network", &fakeAPI{err: errors.New("dial tcp: connection refused")}},
		{"server error", &fakeAPI{err: &ResponseError{Code: 500, Body: `{"error":"An error occurred while processing the image."}`}}},
		{"unparseable tool call", &fakeAPI{res: listscribe.TranscriptionResult{Text: &listscribe.ChatMessage{Role: "assistant"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, _ := seeded(t)
			c := NewController(list, tt.api)

			err := c.Scan(context.Background(), []byte("img"))
			assert.Error(t, err)

			status, msg := c.State()
			assert.Equal(t, StatusError, status)
			assert.Equal(t, GenericErrorMessage, msg)
			assert.Equal(t, []string{"milk", "kale", "eggs"}, names(c.Items()))
		})
	}
}

func TestController_Toggle(t *testing.T) {
	list, _ := seeded(t)
	c := NewController(list, &fakeAPI{})

	require.NoError(t, c.Toggle(context.Background(), "eggs", true))
	assert.Equal(t, []bool{true, false, true}, checkedFlags(c.Items()))

	assert.ErrorIs(t, c.Toggle(context.Background(), "nope", true), ErrUnknownItem)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}
