package inventory

import (
	"fmt"

	"github.com/google/uuid"
)

// Backpack is a slot-limited Store with equipment slots.
// It is not safe for concurrent use; callers serialise access.
type Backpack struct {
	MaxSlots int
	items    []Item
	equipped map[Slot]string
}

// BackpackState is the serialisable content of a Backpack.
type BackpackState struct {
	Items    []Item          `json:"items"`
	Equipped map[Slot]string `json:"equipped,omitempty"`
}

// NewBackpack creates a Backpack with the given slot limit.
//
// Precondition: maxSlots >= 0.
// Postcondition: returned Backpack has zero items and nothing equipped.
func NewBackpack(maxSlots int) *Backpack {
	return &Backpack{
		MaxSlots: maxSlots,
		equipped: make(map[Slot]string),
	}
}

// AddItem places item into the backpack, merging stackable items into
// existing stacks with the same definition and quality first.
// It is atomic: if the slot limit would be exceeded, no state is modified.
//
// Precondition: item.Quantity > 0.
// Postcondition: returns true iff the whole quantity was stored.
func (b *Backpack) AddItem(item Item) bool {
	if item.Quantity <= 0 {
		return false
	}
	if item.MaxStack < 1 {
		item.MaxStack = 1
	}
	if !item.Stackable {
		item.MaxStack = 1
	}

	// Phase 1: compute how much fits into existing stacks and how many new slots are needed.
	remaining := item.Quantity
	merges := make(map[int]int)
	if item.Stackable {
		for i := range b.items {
			if remaining <= 0 {
				break
			}
			cur := b.items[i]
			if cur.DefID != item.DefID || cur.Quality != item.Quality || cur.Quantity >= cur.MaxStack {
				continue
			}
			take := min(remaining, cur.MaxStack-cur.Quantity)
			merges[i] = take
			remaining -= take
		}
	}
	newSlots := (remaining + item.MaxStack - 1) / item.MaxStack
	if len(b.items)+newSlots > b.MaxSlots {
		return false
	}

	// Phase 2: apply.
	for i, take := range merges {
		b.items[i].Quantity += take
	}
	for remaining > 0 {
		q := min(remaining, item.MaxStack)
		inst := item
		inst.Quantity = q
		inst.Effects = append([]Effect(nil), item.Effects...)
		if inst.ID == "" || b.indexOf(inst.ID) >= 0 {
			inst.ID = uuid.New().String()
		}
		b.items = append(b.items, inst)
		remaining -= q
	}
	return true
}

// RemoveItem removes qty units from the stack identified by id.
//
// Precondition: qty > 0.
// Postcondition: returns false and leaves state unchanged if the stack is
// missing or holds fewer than qty; an emptied stack is removed and unequipped.
func (b *Backpack) RemoveItem(id string, qty int) bool {
	i := b.indexOf(id)
	if i < 0 || qty <= 0 || qty > b.items[i].Quantity {
		return false
	}
	if qty == b.items[i].Quantity {
		if b.items[i].Slot != "" && b.equipped[b.items[i].Slot] == id {
			delete(b.equipped, b.items[i].Slot)
		}
		b.items = append(b.items[:i], b.items[i+1:]...)
		return true
	}
	b.items[i].Quantity -= qty
	return true
}

// Equip places the item identified by id into its slot, replacing any
// item already there.
//
// Postcondition: returns an error if the item is missing or not equipment.
func (b *Backpack) Equip(id string) error {
	i := b.indexOf(id)
	if i < 0 {
		return fmt.Errorf("backpack: item %q not found", id)
	}
	if !b.items[i].Equippable() {
		return fmt.Errorf("backpack: item %q is not equipment", id)
	}
	b.equipped[b.items[i].Slot] = id
	return nil
}

// Unequip clears slot. It reports whether an item was equipped there.
func (b *Backpack) Unequip(slot Slot) bool {
	if _, ok := b.equipped[slot]; !ok {
		return false
	}
	delete(b.equipped, slot)
	return true
}

// Equipped returns the item in slot, if any.
func (b *Backpack) Equipped(slot Slot) (Item, bool) {
	id, ok := b.equipped[slot]
	if !ok {
		return Item{}, false
	}
	return b.items[b.indexOf(id)], true
}

// EquippedEffects returns the effects of all equipped items in slot order.
func (b *Backpack) EquippedEffects() []Effect {
	var out []Effect
	for _, slot := range []Slot{SlotWeapon, SlotRobe, SlotRing, SlotAmulet, SlotTalisman} {
		if it, ok := b.Equipped(slot); ok {
			out = append(out, it.Effects...)
		}
	}
	return out
}

// Items returns a filtered, sorted copy of the backpack content.
//
// Postcondition: returned slice is a copy; mutations do not affect the backpack.
func (b *Backpack) Items(filter Filter, key SortKey) []Item {
	var out []Item
	for _, it := range b.items {
		if filter.Category != "" && it.Category != filter.Category {
			continue
		}
		if filter.EquippedOnly && !b.isEquipped(it) {
			continue
		}
		if it.Quality < filter.MinQuality {
			continue
		}
		it.Effects = append([]Effect(nil), it.Effects...)
		out = append(out, it)
	}
	sortItems(out, key)
	return out
}

// Get returns the stack identified by id.
func (b *Backpack) Get(id string) (Item, bool) {
	i := b.indexOf(id)
	if i < 0 {
		return Item{}, false
	}
	return b.items[i], true
}

// UsedSlots returns the number of occupied slots.
//
// Postcondition: result >= 0 and <= MaxSlots.
func (b *Backpack) UsedSlots() int {
	return len(b.items)
}

// State captures the backpack content for persistence.
func (b *Backpack) State() BackpackState {
	st := BackpackState{
		Items:    b.Items(Filter{}, SortNone),
		Equipped: make(map[Slot]string, len(b.equipped)),
	}
	for k, v := range b.equipped {
		st.Equipped[k] = v
	}
	return st
}

// Restore replaces the backpack content with st. Equipped references to
// missing items are dropped.
func (b *Backpack) Restore(st BackpackState) {
	b.items = append([]Item(nil), st.Items...)
	b.equipped = make(map[Slot]string)
	for slot, id := range st.Equipped {
		if i := b.indexOf(id); i >= 0 && b.items[i].Slot == slot {
			b.equipped[slot] = id
		}
	}
}

func (b *Backpack) isEquipped(it Item) bool {
	return it.Slot != "" && b.equipped[it.Slot] == it.ID
}

func (b *Backpack) indexOf(id string) int {
	for i := range b.items {
		if b.items[i].ID == id {
			return i
		}
	}
	return -1
}
