package tools

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	GroceryItemsName  = "grocery_items"
	IsGroceryListName = "is_grocery_list"
)

// ErrUnknownTool is wrapped by GetTool when no tool has the given name.
var ErrUnknownTool = errors.New("unknown tool")

// Registry is the set of tools every model backend offers. Tools are
// listed in name order so prompts are stable between runs.
type Registry struct {
	byName map[string]Tool
}

// NewRegistry holds the classifier and item parser tools.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Tool)}
	for _, t := range []Tool{NewIsGroceryList(), NewGroceryItems()} {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds t. Names must be unique.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if name == "" {
		return errors.New("tool has no name")
	}
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("tool %q registered twice", name)
	}
	r.byName[name] = t
	return nil
}

func (r *Registry) GetTools() []Tool {
	out := make([]Tool, 0, len(r.byName))
	for _, t := range r.byName {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Tool) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

func (r *Registry) GetTool(name string) (Tool, error) {
	if t, ok := r.byName[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}
