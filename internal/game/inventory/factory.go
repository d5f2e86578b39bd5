package inventory

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/cory-johannsen/cultivation/internal/game/dice"
)

// Factory produces Item instances from registered definitions.
type Factory struct {
	reg *Registry
}

// NewFactory creates a Factory backed by reg.
//
// Precondition: reg must not be nil.
func NewFactory(reg *Registry) *Factory {
	if reg == nil {
		panic("inventory: NewFactory called with nil registry")
	}
	return &Factory{reg: reg}
}

// Registry returns the backing registry.
func (f *Factory) Registry() *Registry { return f.reg }

// Create builds qty units of the definition defID at quality q.
// Effect values are scaled by q.Multiplier and rounded to two decimals.
//
// Precondition: qty > 0.
// Postcondition: returns an error if defID is not registered.
func (f *Factory) Create(defID string, q Quality, qty int) (Item, error) {
	def, ok := f.reg.Item(defID)
	if !ok {
		return Item{}, fmt.Errorf("inventory: Factory.Create: unknown item %q", defID)
	}
	if qty <= 0 {
		return Item{}, fmt.Errorf("inventory: Factory.Create: quantity must be > 0, got %d", qty)
	}
	return instantiate(def, q, qty), nil
}

// Random picks a definition of category c uniformly and rolls its quality
// for realm. Draw order: definition pick, then quality roll.
//
// Postcondition: returns an error if no definition has category c.
func (f *Factory) Random(c Category, realm int, qty int, rng *dice.Rand) (Item, error) {
	defs := f.reg.ByCategory(c)
	if len(defs) == 0 {
		return Item{}, fmt.Errorf("inventory: Factory.Random: no items in category %q", c)
	}
	def := dice.Pick(rng, defs)
	q := RollQuality(rng, realm)
	return instantiate(def, q, max(qty, 1)), nil
}

func instantiate(def *ItemDef, q Quality, qty int) Item {
	effects := make([]Effect, len(def.Effects))
	for i, e := range def.Effects {
		e.Value = math.Round(e.Value*q.Multiplier()*100) / 100
		effects[i] = e
	}
	name := def.Name
	if q != Common {
		name = fmt.Sprintf("%s %s", qualityTitles[q], def.Name)
	}
	maxStack := def.MaxStack
	if !def.Stackable {
		maxStack = 1
	}
	return Item{
		ID:        uuid.New().String(),
		DefID:     def.ID,
		Name:      name,
		Category:  def.Category,
		Quality:   q,
		Quantity:  qty,
		Stackable: def.Stackable,
		MaxStack:  maxStack,
		Slot:      def.Slot,
		Effects:   effects,
	}
}

var qualityTitles = [...]string{"", "Fine", "Superior", "Exquisite", "Heavenly"}
