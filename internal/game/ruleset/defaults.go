package ruleset

// Default returns the built-in tables. Each call returns a fresh copy.
func Default() *Ruleset {
	return &Ruleset{
		Realms: []RealmRule{
			{
				Name: "mortal", BaseAbsorption: 0.1, TalentDivisor: 500, QiMultiplier: 1,
				Breakthrough: &BreakthroughRule{
					QiRequirement:   100,
					Meridians:       MeridianRequirement{Count: 1},
					Elements:        ElementRequirement{Mode: ElementsAny, Count: 1},
					Tribulation:     Lightning,
					BaseSuccessRate: 0.8,
				},
			},
			{
				Name: "qi_condensation", BaseAbsorption: 0.5, TalentDivisor: 400, QiMultiplier: 1.5,
				Breakthrough: &BreakthroughRule{
					QiRequirement:   1e4,
					Meridians:       MeridianRequirement{Count: 3},
					Elements:        ElementRequirement{Mode: ElementsAny, Count: 2},
					Tribulation:     Lightning,
					BaseSuccessRate: 0.7,
				},
			},
			{
				Name: "foundation_establishment", BaseAbsorption: 2, TalentDivisor: 300, QiMultiplier: 2.5,
				Breakthrough: &BreakthroughRule{
					QiRequirement:   1e6,
					Meridians:       MeridianRequirement{Count: 6},
					Elements:        ElementRequirement{Mode: ElementsPrimaryComplementary},
					Tribulation:     Elemental,
					BaseSuccessRate: 0.6,
				},
			},
			{
				Name: "core_formation", BaseAbsorption: 8, TalentDivisor: 250, QiMultiplier: 4,
				Breakthrough: &BreakthroughRule{
					QiRequirement:   1e8,
					Meridians:       MeridianRequirement{Count: 8, MinPurity: 80},
					Elements:        ElementRequirement{Mode: ElementsPrimaryComplementary},
					Tribulation:     HeartDemon,
					BaseSuccessRate: 0.5,
				},
			},
			{
				Name: "nascent_soul", BaseAbsorption: 30, TalentDivisor: 200, QiMultiplier: 7,
				Breakthrough: &BreakthroughRule{
					QiRequirement:   1e10,
					Meridians:       MeridianRequirement{Count: 10, MinPurity: 80},
					Elements:        ElementRequirement{Mode: ElementsPrimaryComplementary},
					Tribulation:     Elemental,
					BaseSuccessRate: 0.4,
				},
			},
			{
				Name: "soul_transformation", BaseAbsorption: 100, TalentDivisor: 150, QiMultiplier: 12,
				Breakthrough: &BreakthroughRule{
					QiRequirement:   1e12,
					Meridians:       MeridianRequirement{Count: 12, MinPurity: 95},
					Elements:        ElementRequirement{Mode: ElementsAny, Count: 4},
					Tribulation:     Karmic,
					BaseSuccessRate: 0.3,
				},
			},
			{
				Name: "divine_transformation", BaseAbsorption: 400, TalentDivisor: 100, QiMultiplier: 20, KarmicScaling: true,
				Breakthrough: &BreakthroughRule{
					QiRequirement:   1e14,
					Meridians:       MeridianRequirement{Count: 12, MinPurity: 100},
					Elements:        ElementRequirement{Mode: ElementsAny, Count: 5},
					Tribulation:     HeartDemon,
					BaseSuccessRate: 0.2,
				},
			},
			{
				Name: "immortal_ascension", BaseAbsorption: 1500, TalentDivisor: 100, QiMultiplier: 35, KarmicScaling: true,
			},
		},
		Events: EventRules{
			DailyChance: 0.1,
			Encounter:   0.4,
			Epiphany:    0.15,
			Karma:       0.2,
			Windfall:    0.15,
			Treasure:    0.1,
		},
	}
}
