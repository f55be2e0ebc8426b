package checklist

import (
	"bytes"
	"fmt"

	"listscribe"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Entry is the stored form of one item.
type Entry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Checked  bool   `json:"checked"`
	Emoji    string `json:"emoji"`
}

// State maps item name to entry and remembers insertion order. It encodes
// as a JSON object whose key order is the insertion order.
type State struct {
	entries *orderedmap.OrderedMap[string, Entry]
}

// NewState builds a state from items. A repeated name keeps its first
// position and takes the later values.
func NewState(items []listscribe.GroceryItem) State {
	s := State{entries: orderedmap.New[string, Entry](len(items))}
	for _, it := range items {
		s.entries.Set(it.Name, Entry{Name: it.Name, Category: it.Category, Checked: it.Checked, Emoji: it.Emoji})
	}
	return s
}

// Len returns the number of entries.
func (s State) Len() int {
	if s.entries == nil {
		return 0
	}
	return s.entries.Len()
}

// Get returns the entry stored under name.
func (s State) Get(name string) (Entry, bool) {
	if s.entries == nil {
		return Entry{}, false
	}
	return s.entries.Get(name)
}

// Items reconstructs the items in stored order.
func (s State) Items() []listscribe.GroceryItem {
	items := make([]listscribe.GroceryItem, 0, s.Len())
	if s.entries == nil {
		return items
	}
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		items = append(items, listscribe.GroceryItem{
			Name:     pair.Key,
			Category: pair.Value.Category,
			Emoji:    pair.Value.Emoji,
			Checked:  pair.Value.Checked,
		})
	}
	return items
}

func (s State) MarshalJSON() ([]byte, error) {
	if s.entries == nil {
		return []byte("{}"), nil
	}
	return s.entries.MarshalJSON()
}

func (s *State) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = State{}
		return nil
	}

	entries := orderedmap.New[string, Entry]()
	if err := entries.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("checklist state: %w", err)
	}
	// The key is authoritative for the name.
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.Name = pair.Key
	}

	*s = State{entries: entries}
	return nil
}
