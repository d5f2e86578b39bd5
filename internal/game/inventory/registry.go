package inventory

import (
	"fmt"
	"sort"
)

// Registry holds item definitions indexed by ID.
type Registry struct {
	items map[string]*ItemDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: the internal map is initialised.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*ItemDef)}
}

// RegisterItem adds d to the registry.
//
// Precondition:  d must not be nil.
// Postcondition: Item(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterItem(d *ItemDef) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterItem: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	return nil
}

// Item returns the ItemDef for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// ByCategory returns the definitions in category c sorted by ID.
//
// Postcondition: the order is stable across calls so random picks replay.
func (r *Registry) ByCategory(c Category) []*ItemDef {
	var out []*ItemDef
	for _, d := range r.items {
		if d.Category == c {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int { return len(r.items) }

// DefaultRegistry returns a Registry holding DefaultItems.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range DefaultItems() {
		// IDs in DefaultItems are unique.
		_ = r.RegisterItem(d)
	}
	return r
}

// LoadRegistry builds a Registry from DefaultItems overlaid with the item
// files in dir. Definitions in dir replace defaults with the same ID.
// An empty dir yields DefaultRegistry.
//
// Postcondition: returns a wrapped error if dir cannot be read or holds duplicates.
func LoadRegistry(dir string) (*Registry, error) {
	r := DefaultRegistry()
	if dir == "" {
		return r, nil
	}
	defs, err := LoadItems(dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, d := range defs {
		if seen[d.ID] {
			return nil, fmt.Errorf("inventory: LoadRegistry: duplicate item ID %q in %q", d.ID, dir)
		}
		seen[d.ID] = true
		r.items[d.ID] = d
	}
	return r, nil
}
