package inventory

import "sort"

// Store is the item container consulted by the engines.
type Store interface {
	// AddItem deposits item and reports whether it fit.
	AddItem(item Item) bool
	// RemoveItem removes qty units from the stack identified by id.
	RemoveItem(id string, qty int) bool
	// EquippedEffects returns the effects of every equipped item.
	EquippedEffects() []Effect
	// Items returns the items matching filter ordered by key.
	Items(filter Filter, key SortKey) []Item
}

// Filter selects items. The zero Filter matches everything.
type Filter struct {
	Category     Category
	EquippedOnly bool
	MinQuality   Quality
}

// SortKey orders Items results.
type SortKey int

const (
	// SortNone keeps insertion order.
	SortNone SortKey = iota
	SortByName
	SortByQuality
	SortByQuantity
)

func sortItems(items []Item, key SortKey) {
	switch key {
	case SortByName:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	case SortByQuality:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Quality > items[j].Quality })
	case SortByQuantity:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Quantity > items[j].Quantity })
	}
}
