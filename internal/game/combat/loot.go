package combat

import (
	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
)

// LootEntry is one potential drop carried by an enemy.
type LootEntry struct {
	Item     inventory.Item
	DropRate float64
	Quantity int
}

// LootRule gates one item category on enemy generation. Quantity is a dice
// expression; DropRate is the chance the entry actually drops on victory.
type LootRule struct {
	Category inventory.Category
	Chance   float64
	DropRate float64
	Quantity dice.Expression
}

// DefaultLootRules is the ordered loot table: spirit stones, elemental
// herbs, then pills.
func DefaultLootRules() []LootRule {
	return []LootRule{
		{Category: inventory.CategorySpiritStone, Chance: 0.6, DropRate: 0.9, Quantity: dice.MustParse("1d3")},
		{Category: inventory.CategoryHerb, Chance: 0.3, DropRate: 0.6, Quantity: dice.MustParse("1d2")},
		{Category: inventory.CategoryPill, Chance: 0.1, DropRate: 0.4, Quantity: dice.MustParse("1")},
	}
}

// LootTable turns LootRules into concrete entries with a Factory.
type LootTable struct {
	Rules   []LootRule
	Factory *inventory.Factory
}

// Roll evaluates every rule in order.
// Draw order per rule: the category gate; on a pass, the quantity dice, the
// item pick and the quality roll. A nil Factory yields no loot and no draws.
func (t LootTable) Roll(rng *dice.Rand, realm character.Realm) []LootEntry {
	if t.Factory == nil {
		return nil
	}
	var out []LootEntry
	for _, rule := range t.Rules {
		if !rng.Chance(rule.Chance) {
			continue
		}
		qty := max(1, rng.Roll(rule.Quantity).Total())
		item, err := t.Factory.Random(rule.Category, int(realm), qty, rng)
		if err != nil {
			continue
		}
		out = append(out, LootEntry{Item: item, DropRate: rule.DropRate, Quantity: qty})
	}
	return out
}
