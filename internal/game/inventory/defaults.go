package inventory

import "github.com/cory-johannsen/cultivation/internal/game/character"

// DefaultItems returns the built-in item definitions.
func DefaultItems() []*ItemDef {
	defs := []*ItemDef{
		{
			ID: "low_spirit_stone", Name: "Low-Grade Spirit Stone", Category: CategorySpiritStone,
			Description: "A pebble of condensed qi.",
			Stackable:   true, MaxStack: 99, Value: 1,
			Effects: []Effect{{Type: EffectQiRestore, Value: 50}},
		},
		{
			ID: "mid_spirit_stone", Name: "Mid-Grade Spirit Stone", Category: CategorySpiritStone,
			Description: "A clear crystal humming with qi.",
			Stackable:   true, MaxStack: 99, Value: 10,
			Effects: []Effect{{Type: EffectQiRestore, Value: 5, IsPercentage: true}},
		},
		{
			ID: "qi_gathering_pill", Name: "Qi Gathering Pill", Category: CategoryPill,
			Description: "Refined elixir that floods the meridians with qi.",
			Stackable:   true, MaxStack: 20, Value: 25,
			Effects: []Effect{{Type: EffectQiRestore, Value: 10, IsPercentage: true}},
		},
		{
			ID: "bone_mending_pill", Name: "Bone Mending Pill", Category: CategoryPill,
			Description: "Knits flesh and bone overnight.",
			Stackable:   true, MaxStack: 20, Value: 20,
			Effects: []Effect{{Type: EffectHealing, Value: 30, IsPercentage: true}},
		},
		{
			ID: "iron_sword", Name: "Iron Sword", Category: CategoryEquipment, Slot: SlotWeapon,
			Description: "Plain but sharp.", MaxStack: 1, Value: 15,
			Effects: []Effect{{Type: EffectCombatPower, Value: 20}},
		},
		{
			ID: "cloud_silk_robe", Name: "Cloud Silk Robe", Category: CategoryEquipment, Slot: SlotRobe,
			Description: "Light as mist, tough as hide.", MaxStack: 1, Value: 20,
			Effects: []Effect{{Type: EffectDefense, Value: 10, IsPercentage: true}},
		},
		{
			ID: "jade_ring", Name: "Jade Gathering Ring", Category: CategoryEquipment, Slot: SlotRing,
			Description: "Draws ambient qi toward its wearer.", MaxStack: 1, Value: 30,
			Effects: []Effect{{Type: EffectQiAbsorption, Value: 10, IsPercentage: true}},
		},
		{
			ID: "phoenix_amulet", Name: "Phoenix Feather Amulet", Category: CategoryEquipment, Slot: SlotAmulet,
			Description: "Warm to the touch.", MaxStack: 1, Value: 30,
			Effects: []Effect{{Type: EffectElementalBoost, Value: 15, Element: "fire", IsPercentage: true}},
		},
		{
			ID: "warding_talisman", Name: "Warding Talisman", Category: CategoryEquipment, Slot: SlotTalisman,
			Description: "Paper charm inked with protective sigils.", MaxStack: 1, Value: 25,
			Effects: []Effect{
				{Type: EffectElementalResistance, Value: 10, IsPercentage: true},
				{Type: EffectCritChance, Value: 5, IsPercentage: true},
			},
		},
	}
	herbNames := map[character.Element]string{
		character.Metal: "Ironleaf Grass",
		character.Wood:  "Evergreen Lingzhi",
		character.Water: "Frostdew Lotus",
		character.Fire:  "Blazing Sunflower",
		character.Earth: "Yellow Earth Root",
	}
	for _, el := range character.AllElements {
		defs = append(defs, &ItemDef{
			ID:          el.String() + "_herb",
			Name:        herbNames[el],
			Category:    CategoryHerb,
			Description: "A spirit herb saturated with " + el.String() + " essence.",
			Stackable:   true,
			MaxStack:    50,
			Value:       5,
			Effects:     []Effect{{Type: EffectElementGrowth, Value: 2, Element: el.String()}},
		})
	}
	return defs
}
