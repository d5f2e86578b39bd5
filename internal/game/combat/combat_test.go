package combat_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/combat"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
	"github.com/cory-johannsen/cultivation/internal/game/message"
	"github.com/cory-johannsen/cultivation/internal/testutil"
)

func newPlayer(qi float64, talent int) *character.Progression {
	p := &character.Progression{Character: character.Character{
		Name: "Lin", Realm: character.Mortal, Qi: qi, MaxQi: 1000, Talent: talent,
	}}
	p.Character.RecomputeHealth()
	return p
}

func newEnemy(qi, maxQi float64, health int) *combat.Enemy {
	return &combat.Enemy{Name: "Wild Wolf", Realm: character.Mortal, Qi: qi, MaxQi: maxQi,
		Health: health, MaxHealth: health, Aggression: 50}
}

func TestElementalBonus(t *testing.T) {
	var wood, fire, earth, metal character.Affinities
	wood[character.Wood] = 10
	fire[character.Fire] = 10
	earth[character.Earth] = 10
	metal[character.Metal] = 10

	assert.Equal(t, 1.25, combat.ElementalBonus(wood, fire), "wood generates fire")
	assert.Equal(t, 0.75, combat.ElementalBonus(wood, earth), "wood controls earth")
	assert.Equal(t, 1.0, combat.ElementalBonus(wood, metal))
	assert.Equal(t, 1.0, combat.ElementalBonus(fire, wood))
}

func TestPowerFormulas(t *testing.T) {
	p := newPlayer(100, 50)
	p.Character.Realm = character.QiCondensation
	e := newEnemy(200, 400, 100)
	e.Realm = character.QiCondensation

	b := inventory.Bonuses{CombatPower: 20, Defense: 10}
	// (100 + 100 + 100 + 20) * 1.1, metal vs metal is neutral.
	assert.InDelta(t, 352.0, combat.PlayerPower(&p.Character, e, b), 1e-9)
	assert.InDelta(t, 250.0, combat.EnemyPower(e, &p.Character, b), 1e-9)

	b.ElementalBoost[character.Metal] = 10
	b.ElementalResistance[character.Metal] = 20
	assert.InDelta(t, 387.2, combat.PlayerPower(&p.Character, e, b), 1e-9)
	assert.InDelta(t, 200.0, combat.EnemyPower(e, &p.Character, b), 1e-9)
}

func TestCritChance_Capped(t *testing.T) {
	assert.Equal(t, 0.05, combat.CritChance(inventory.Bonuses{CritChance: 5}))
	assert.Equal(t, 0.5, combat.CritChance(inventory.Bonuses{CritChance: 90}))
	assert.Equal(t, 0.0, combat.CritChance(inventory.Bonuses{}))
}

func TestWinChance_NaNIsUndefined(t *testing.T) {
	_, ok := combat.WinChance(0, 0)
	assert.False(t, ok)
	w, ok := combat.WinChance(3, 1)
	assert.True(t, ok)
	assert.Equal(t, 0.75, w)
}

func TestRealmScaling(t *testing.T) {
	assert.Equal(t, 1.0, combat.RealmScaling(0))
	assert.Equal(t, 1.5, combat.RealmScaling(2))
	assert.Equal(t, 0.5, combat.RealmScaling(-1))
	assert.Equal(t, 0.25, combat.RealmScaling(-5))
}

func TestDamage(t *testing.T) {
	// ratio 0.5 -> 25 + 10 = 35; spread 1.04.
	assert.Equal(t, 36, combat.Damage(testutil.Constant(0.6), 10, 10, false, 0))
	assert.Equal(t, 72, combat.Damage(testutil.Constant(0.6), 10, 10, true, 0))
	// 35 * 1.25 * 0.8 = 35
	assert.Equal(t, 35, combat.Damage(testutil.Constant(0), 10, 10, false, 1))
	// Undefined ratio falls back to the floor damage.
	assert.Equal(t, 8, combat.Damage(testutil.Constant(0), 0, 0, false, 0))
}

func TestDamage_AtLeastOne_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.Float64Range(0, 1e9).Draw(rt, "a")
		d := rapid.Float64Range(0, 1e9).Draw(rt, "d")
		diff := rapid.IntRange(-7, 7).Draw(rt, "diff")
		f := rapid.Float64Range(0, 0.999999).Draw(rt, "f")
		if dmg := combat.Damage(testutil.Constant(f), a, d, rapid.Bool().Draw(rt, "crit"), diff); dmg < 1 {
			rt.Fatalf("damage %d < 1", dmg)
		}
	})
}

func TestGenerateEnemy_DrawOrder(t *testing.T) {
	rng, src := testutil.Scripted(0.0, 0.0, 0.0, 0.5, 0.5, 0, 0, 0, 0, 0, 0.6, 0.0)
	e := combat.NewEngine(rng, nil, nil, nil).GenerateEnemy()

	assert.Equal(t, 12, src.Consumed())
	assert.Equal(t, "Wild Wolf", e.Name)
	assert.Equal(t, character.Mortal, e.Realm)
	assert.Equal(t, 100.0, e.MaxQi)
	assert.Equal(t, 75.0, e.Qi)
	assert.Equal(t, character.Affinities{}, e.Elements)
	assert.Equal(t, combat.Ranged, e.CombatType)
	assert.Equal(t, 30, e.Aggression)
	assert.Equal(t, 115, e.MaxHealth)
	assert.Equal(t, e.MaxHealth, e.Health)
	assert.Empty(t, e.Loot)
}

func TestGenerateEnemy_SameSeedSameEnemy(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64Range(1, 1<<40).Draw(rt, "seed")
		factory := inventory.NewFactory(inventory.DefaultRegistry())
		a := combat.NewEngine(dice.NewSeeded(seed), nil, nil, factory).GenerateEnemy()
		b := combat.NewEngine(dice.NewSeeded(seed), nil, nil, factory).GenerateEnemy()
		assert.Equal(rt, a.Name, b.Name)
		assert.Equal(rt, a.Realm, b.Realm)
		assert.Equal(rt, a.Qi, b.Qi)
		assert.Equal(rt, a.MaxQi, b.MaxQi)
		assert.Equal(rt, a.Elements, b.Elements)
		assert.Equal(rt, a.CombatType, b.CombatType)
		assert.Equal(rt, a.Aggression, b.Aggression)
		require.Equal(rt, len(a.Loot), len(b.Loot))
		for i := range a.Loot {
			assert.Equal(rt, a.Loot[i].Item.DefID, b.Loot[i].Item.DefID)
			assert.Equal(rt, a.Loot[i].Item.Quality, b.Loot[i].Item.Quality)
		}
	})
}

func TestGenerateEnemy_Invariants_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		eng := combat.NewEngine(dice.NewSeeded(rapid.Int64Range(1, 1<<40).Draw(rt, "seed")), nil, nil,
			inventory.NewFactory(inventory.DefaultRegistry()))
		e := eng.GenerateEnemy()
		if e.Realm > character.FoundationEstablishment {
			rt.Fatalf("realm %s", e.Realm)
		}
		if e.Qi < e.MaxQi*0.5-1 || e.Qi > e.MaxQi {
			rt.Fatalf("qi %v outside [50%%, 100%%] of %v", e.Qi, e.MaxQi)
		}
		for _, v := range e.Elements {
			if v < 0 || v > 50 {
				rt.Fatalf("affinity %v", v)
			}
		}
		if e.Aggression < 30 || e.Aggression > 90 {
			rt.Fatalf("aggression %d", e.Aggression)
		}
		if e.MaxHealth != combat.EnemyMaxHealth(e.Realm, e.Qi) {
			rt.Fatalf("health %d", e.MaxHealth)
		}
		for _, l := range e.Loot {
			if l.Quantity < 1 || l.DropRate <= 0 || l.DropRate > 1 {
				rt.Fatalf("loot entry %+v", l)
			}
		}
	})
}

func TestLootTable_RollOrder(t *testing.T) {
	table := combat.LootTable{Rules: combat.DefaultLootRules(), Factory: inventory.NewFactory(inventory.DefaultRegistry())}
	// stone gate passes, 1d3 -> 3, pick first stone, common; herb gate fails; pill gate fails.
	rng, src := testutil.Scripted(0.0, 0.99, 0.0, 0.0, 0.99, 0.99)
	loot := table.Roll(rng, character.Mortal)
	assert.Equal(t, 6, src.Consumed())
	require.Len(t, loot, 1)
	assert.Equal(t, inventory.CategorySpiritStone, loot[0].Item.Category)
	assert.Equal(t, 3, loot[0].Quantity)
	assert.Equal(t, 0.9, loot[0].DropRate)
}

func TestResolveCombat_ZeroPowersAtFullHealthIsFlee(t *testing.T) {
	p := newPlayer(0, 0)
	full := p.Character.MaxHealth()
	e := newEnemy(0, 100, 50)
	// crit roll, then one enemy damage draw.
	rng, src := testutil.Scripted(0.0, 0.5)
	res := combat.NewEngine(rng, nil, nil, nil).ResolveCombat(p, e)

	assert.Equal(t, combat.Flee, res.Outcome)
	assert.Equal(t, 2, src.Consumed())
	assert.False(t, math.IsNaN(res.WinChance))
	assert.Zero(t, res.WinChance)
	assert.GreaterOrEqual(t, res.PlayerDamage, 8)
	assert.LessOrEqual(t, res.PlayerDamage, 12)
	assert.Equal(t, full-res.PlayerDamage, p.Character.Health())
	assert.Equal(t, 50, e.Health)
}

func TestResolveCombat_ZeroPowersAtLowHealthIsEnemyWin(t *testing.T) {
	p := newPlayer(0, 0)
	p.Character.SetHealth(5)
	e := newEnemy(0, 100, 50)
	rng, src := testutil.Scripted(0.0, 0.5, 0.99)
	rec := message.NewRecorder()
	res := combat.NewEngine(rng, rec, nil, nil).ResolveCombat(p, e)

	assert.Equal(t, combat.EnemyWin, res.Outcome)
	assert.Equal(t, 3, src.Consumed(), "no win roll is drawn for an undefined ratio")
	assert.Zero(t, res.EnemyDamage)
	assert.Equal(t, 0, p.Character.Health())
	require.NotNil(t, res.Defeat)
	assert.False(t, res.Defeat.Injured)
	assert.Contains(t, rec.Keys(), message.CombatDefeat)
}

func TestResolveCombat_PlayerWinGrantsRewards(t *testing.T) {
	p := newPlayer(500, 50)
	e := newEnemy(10, 1000, 1)
	bp := inventory.NewBackpack(10)
	factory := inventory.NewFactory(inventory.DefaultRegistry())
	stone, err := factory.Create("low_spirit_stone", inventory.Common, 2)
	require.NoError(t, err)
	e.Loot = []combat.LootEntry{
		{Item: stone, DropRate: 0.9, Quantity: 2},
		{Item: stone, DropRate: 0.1, Quantity: 1},
	}
	// crit(0) no, win, damage, talent 3, first drop, second misses.
	rng, src := testutil.Scripted(0.5, 0.0, 0.5, 0.99, 0.0, 0.5)
	res := combat.NewEngine(rng, nil, bp, factory).ResolveCombat(p, e)

	require.Equal(t, combat.PlayerWin, res.Outcome)
	assert.Equal(t, 6, src.Consumed())
	require.NotNil(t, res.Victory)
	assert.Equal(t, 100.0, res.Victory.QiGained)
	assert.Equal(t, 600.0, p.Character.Qi)
	assert.Equal(t, 3, res.Victory.TalentGained)
	assert.Equal(t, 53, p.Character.Talent)
	require.Len(t, res.Victory.Looted, 1)
	assert.Equal(t, 2, bp.Items(inventory.Filter{}, inventory.SortNone)[0].Quantity)
}

func TestResolveCombat_FullInventoryDropsLoot(t *testing.T) {
	p := newPlayer(500, 50)
	e := newEnemy(10, 100, 1)
	stone := inventory.Item{DefID: "s", Name: "s", Quantity: 1, MaxStack: 1}
	e.Loot = []combat.LootEntry{{Item: stone, DropRate: 1, Quantity: 1}}
	rng, _ := testutil.Scripted(0.5, 0.0, 0.5, 0.0, 0.0)
	rec := message.NewRecorder()
	res := combat.NewEngine(rng, rec, inventory.NewBackpack(0), nil).ResolveCombat(p, e)

	require.NotNil(t, res.Victory)
	assert.Empty(t, res.Victory.Looted)
	assert.Len(t, res.Victory.Lost, 1)
	assert.Contains(t, rec.Keys(), message.LootLost)
}

func TestResolveCombat_BothSurviveIsFlee(t *testing.T) {
	p := newPlayer(100, 50)
	e := newEnemy(100, 200, 10000)
	rng, src := testutil.Scripted(0.5, 0.0, 0.5, 0.5)
	res := combat.NewEngine(rng, nil, nil, nil).ResolveCombat(p, e)
	assert.Equal(t, combat.Flee, res.Outcome)
	assert.Equal(t, 4, src.Consumed())
	assert.Positive(t, res.EnemyDamage)
	assert.Positive(t, res.PlayerDamage)
	assert.Equal(t, p.Character.MaxHealth()-res.PlayerDamage, p.Character.Health())
}

func TestResolveCombat_DefeatInjuresOpenMeridian(t *testing.T) {
	p := newPlayer(0, 1)
	p.Character.Meridians[4] = character.Meridian{Open: true, Purity: 30}
	p.Character.SetHealth(1)
	e := newEnemy(500, 1000, 100)
	// crit, win roll lost, enemy damage, injury, pick, purity loss 5.
	rng, src := testutil.Scripted(0.5, 0.99, 0.5, 0.1, 0.0, 0.99)
	res := combat.NewEngine(rng, nil, nil, nil).ResolveCombat(p, e)

	require.Equal(t, combat.EnemyWin, res.Outcome)
	assert.Equal(t, 6, src.Consumed())
	require.True(t, res.Defeat.Injured)
	assert.Equal(t, 4, res.Defeat.MeridianIndex)
	assert.Equal(t, 5.0, res.Defeat.PurityLost)
	assert.Equal(t, 25.0, p.Character.Meridians[4].Purity)
	assert.Equal(t, 0.0, p.Character.Qi, "defeat costs no qi")
}

func TestResolveCombat_CritEmits(t *testing.T) {
	bp := inventory.NewBackpack(2)
	require.True(t, bp.AddItem(inventory.Item{DefID: "t", Name: "t", Category: inventory.CategoryEquipment,
		Quantity: 1, MaxStack: 1, Slot: inventory.SlotTalisman,
		Effects: []inventory.Effect{{Type: inventory.EffectCritChance, Value: 100}}}))
	require.NoError(t, bp.Equip(bp.Items(inventory.Filter{}, inventory.SortNone)[0].ID))

	p := newPlayer(100, 50)
	e := newEnemy(100, 200, 10000)
	rng, _ := testutil.Scripted(0.4, 0.0, 0.5, 0.5)
	rec := message.NewRecorder()
	res := combat.NewEngine(rng, rec, bp, nil).ResolveCombat(p, e)
	assert.True(t, res.Crit)
	assert.Contains(t, rec.Keys(), message.CombatCritical)
}

func TestPlayerAndEnemyAttack(t *testing.T) {
	p := newPlayer(100, 50)
	e := newEnemy(100, 200, 1000)
	rng, src := testutil.Scripted(0.5, 0.5, 0.5)
	eng := combat.NewEngine(rng, nil, nil, nil)

	hit := eng.PlayerAttack(p, e)
	assert.Equal(t, 2, src.Consumed())
	assert.Equal(t, e.Health, hit.TargetHealth)
	assert.Equal(t, 1000-hit.Damage, hit.TargetHealth)
	assert.False(t, hit.Crit)

	back := eng.EnemyAttack(p, e)
	assert.Equal(t, 3, src.Consumed())
	assert.Equal(t, p.Character.Health(), back.TargetHealth)
	assert.False(t, back.Defeated)
}

func TestFlee(t *testing.T) {
	rng, _ := testutil.Scripted(0.69, 0.7)
	eng := combat.NewEngine(rng, nil, nil, nil)
	e := newEnemy(1, 1, 1)
	assert.True(t, eng.Flee(e))
	assert.False(t, eng.Flee(e))
}

func TestEnemyMaxHealth(t *testing.T) {
	assert.Equal(t, 115, combat.EnemyMaxHealth(character.Mortal, 75))
	assert.Equal(t, int(math.Floor((100+2000*0.2)*1.5)), combat.EnemyMaxHealth(character.QiCondensation, 2000))
}
