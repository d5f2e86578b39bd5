package inventory

import "github.com/cory-johannsen/cultivation/internal/game/character"

// EffectType tags what an item effect modifies.
type EffectType string

const (
	// Equipped effects aggregated into Bonuses.
	EffectQiAbsorption        EffectType = "qi_absorption"
	EffectCombatPower         EffectType = "combat_power"
	EffectDefense             EffectType = "defense"
	EffectCritChance          EffectType = "crit_chance"
	EffectElementalBoost      EffectType = "elemental_boost"
	EffectElementalResistance EffectType = "elemental_resistance"

	// Consumed effects applied once when an item is used.
	EffectQiRestore     EffectType = "qi_restore"
	EffectHealing       EffectType = "healing"
	EffectElementGrowth EffectType = "element_growth"
)

var validEffectTypes = map[EffectType]bool{
	EffectQiAbsorption:        true,
	EffectCombatPower:         true,
	EffectDefense:             true,
	EffectCritChance:          true,
	EffectElementalBoost:      true,
	EffectElementalResistance: true,
	EffectQiRestore:           true,
	EffectHealing:             true,
	EffectElementGrowth:       true,
}

// Effect is one numeric modifier carried by an item.
// An empty Element applies an elemental effect to every element.
type Effect struct {
	Type         EffectType `yaml:"type" json:"type"`
	Value        float64    `yaml:"value" json:"value"`
	Element      string     `yaml:"element,omitempty" json:"element,omitempty"`
	Duration     int        `yaml:"duration,omitempty" json:"duration,omitempty"`
	IsPercentage bool       `yaml:"is_percentage" json:"is_percentage"`
}

// Elements returns the elements the effect targets.
func (e Effect) Elements() []character.Element {
	if e.Element == "" {
		return character.AllElements[:]
	}
	el, err := character.ParseElement(e.Element)
	if err != nil {
		return nil
	}
	return []character.Element{el}
}

// Bonuses is the aggregate of equipped effects read by the engines.
// QiAbsorption, Defense, CritChance and the elemental arrays are percentages;
// CombatPower is a flat addition to player power.
type Bonuses struct {
	QiAbsorption        float64
	CombatPower         float64
	Defense             float64
	CritChance          float64
	ElementalBoost      [character.ElementCount]float64
	ElementalResistance [character.ElementCount]float64
}

// Aggregate sums effects into Bonuses. Consumed effect types are ignored.
func Aggregate(effects []Effect) Bonuses {
	var b Bonuses
	for _, e := range effects {
		switch e.Type {
		case EffectQiAbsorption:
			b.QiAbsorption += e.Value
		case EffectCombatPower:
			b.CombatPower += e.Value
		case EffectDefense:
			b.Defense += e.Value
		case EffectCritChance:
			b.CritChance += e.Value
		case EffectElementalBoost:
			for _, el := range e.Elements() {
				b.ElementalBoost[el] += e.Value
			}
		case EffectElementalResistance:
			for _, el := range e.Elements() {
				b.ElementalResistance[el] += e.Value
			}
		}
	}
	return b
}

// EquippedBonuses aggregates the equipped effects of s. A nil store yields zero bonuses.
func EquippedBonuses(s Store) Bonuses {
	if s == nil {
		return Bonuses{}
	}
	return Aggregate(s.EquippedEffects())
}
