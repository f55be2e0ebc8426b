// Package checklist holds the client side of listscribe: the persisted
// checklist, the scan controller and the terminal view.
package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"listscribe"
	"listscribe/storage"
)

// StorageKey is where the checklist state lives in the KV store.
const StorageKey = "groceryList"

// ErrUnknownItem is returned by Toggle for names not on the list.
var ErrUnknownItem = errors.New("unknown item")

// Checklist is the persisted list of items and their checked flags.
type Checklist struct {
	mu    sync.Mutex
	kv    storage.KV
	state State
}

func New(kv storage.KV) *Checklist {
	return &Checklist{kv: kv}
}

// Load reads the stored state. A missing key is an empty list.
func (c *Checklist) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok, err := c.kv.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("load checklist: %w", err)
	}
	if !ok || len(b) == 0 {
		c.state = State{}
		return nil
	}

	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("load checklist: %w", err)
	}
	c.state = s
	return nil
}

// Items returns the current items in stored order.
func (c *Checklist) Items() []listscribe.GroceryItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Items()
}

// State returns the current state. It is never mutated in place.
func (c *Checklist) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Replace swaps in a new list with every item unchecked and persists it.
func (c *Checklist) Replace(ctx context.Context, items []listscribe.GroceryItem) error {
	fresh := make([]listscribe.GroceryItem, len(items))
	for i, it := range items {
		it.Checked = false
		fresh[i] = it
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, NewState(fresh))
}

// Toggle sets one item's checked flag and persists immediately.
func (c *Checklist) Toggle(ctx context.Context, name string, checked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.state.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}

	next := State{order: append([]string(nil), c.state.order...), entries: make(map[string]Entry, len(c.state.entries))}
	for k, v := range c.state.entries {
		next.entries[k] = v
	}
	e.Checked = checked
	next.entries[name] = e

	return c.save(ctx, next)
}

// Clear removes the stored list.
func (c *Checklist) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear checklist: %w", err)
	}
	c.state = State{}
	return nil
}

// save persists s and only then makes it current.
func (c *Checklist) save(ctx context.Context, s State) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode checklist: %w", err)
	}
	if err := c.kv.Set(ctx, StorageKey, b); err != nil {
		return fmt.Errorf("save checklist: %w", err)
	}
	c.state = s
	return nil
}

// ParseTranscription extracts items from a transcription's tool call.
func ParseTranscription(msg listscribe.ChatMessage) ([]listscribe.GroceryItem, error) {
	return msg.GroceryItems()
}
