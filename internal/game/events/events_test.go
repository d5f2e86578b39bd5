package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/combat"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/game/events"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
	"github.com/cory-johannsen/cultivation/internal/game/message"
	"github.com/cory-johannsen/cultivation/internal/game/ruleset"
	"github.com/cory-johannsen/cultivation/internal/testutil"
)

type fixture struct {
	d   *events.Dispatcher
	rec *message.Recorder
	bp  *inventory.Backpack
}

func newFixture(rng *dice.Rand, logger *zap.Logger, rules ruleset.EventRules) fixture {
	rec := message.NewRecorder()
	bp := inventory.NewBackpack(5)
	factory := inventory.NewFactory(inventory.DefaultRegistry())
	fights := combat.NewEngine(rng, rec, bp, factory)
	return fixture{
		d:   events.NewDispatcher(rules, dice.NewLoggedRoller(rng, logger), rec, fights, factory, bp),
		rec: rec,
		bp:  bp,
	}
}

func newPlayer() *character.Progression {
	p := &character.Progression{Character: character.Character{
		Name: "Lin", Realm: character.Mortal, Qi: 50, MaxQi: 1000, Talent: 40,
	}}
	p.Character.RecomputeHealth()
	return p
}

func TestRoll_NoEventConsumesOneDraw(t *testing.T) {
	rng, src := testutil.Scripted(0.5)
	f := newFixture(rng, nil, ruleset.Default().Events)
	res := f.d.Roll(newPlayer())
	assert.False(t, res.Fired)
	assert.Equal(t, 1, src.Consumed())
	assert.Empty(t, f.rec.Events())
}

func TestRoll_PicksKindByWeight(t *testing.T) {
	// Default weights 0.4/0.15/0.2/0.15/0.1: 0.5 lands on epiphany.
	rng, src := testutil.Scripted(0.0, 0.5)
	f := newFixture(rng, nil, ruleset.Default().Events)
	p := newPlayer()
	res := f.d.Roll(p)
	require.True(t, res.Fired)
	assert.Equal(t, events.Epiphany, res.Kind)
	assert.Equal(t, 2, src.Consumed())
	assert.Equal(t, 41, p.Character.Talent)
	assert.Equal(t, 1, res.Talent)
	assert.Equal(t, []message.Key{message.EventEpiphany}, f.rec.Keys())
}

func TestFire_EpiphanyAtMaxTalent(t *testing.T) {
	f := newFixture(testutil.Constant(0), nil, ruleset.Default().Events)
	p := newPlayer()
	p.Character.Talent = character.MaxTalent
	res := f.d.Fire(p, events.Epiphany)
	assert.Zero(t, res.Talent)
	assert.Equal(t, character.MaxTalent, p.Character.Talent)
}

func TestFire_KarmaSignAndMagnitude(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rng, src := testutil.Scripted(0.2, 0.99, 0.7, 0.0)
	f := newFixture(rng, zap.New(core), ruleset.Default().Events)
	p := newPlayer()

	good := f.d.Fire(p, events.Karma)
	assert.Equal(t, 20, good.Karma)
	bad := f.d.Fire(p, events.Karma)
	assert.Equal(t, -5, bad.Karma)
	assert.Equal(t, 15, p.Soul.KarmicBalance)
	assert.Equal(t, 4, src.Consumed())
	assert.Equal(t, 2, logs.FilterMessage("dice roll").Len())
}

func TestFire_KarmaInRange_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(dice.NewSeeded(rapid.Int64Range(1, 1<<40).Draw(rt, "seed")), nil, ruleset.Default().Events)
		res := f.d.Fire(newPlayer(), events.Karma)
		mag := res.Karma
		if mag < 0 {
			mag = -mag
		}
		if mag < 5 || mag > 20 {
			rt.Fatalf("karma %d outside ±[5, 20]", res.Karma)
		}
	})
}

func TestFire_Windfall(t *testing.T) {
	f := newFixture(testutil.Constant(0), nil, ruleset.Default().Events)
	p := newPlayer()
	res := f.d.Fire(p, events.Windfall)
	assert.Equal(t, 50.0, res.QiGained)
	assert.Equal(t, 100.0, p.Character.Qi)

	p.Character.Qi = 990
	res = f.d.Fire(p, events.Windfall)
	assert.Equal(t, 10.0, res.QiGained, "windfall is clamped to max qi")
}

func TestFire_TreasureStoresSpiritStone(t *testing.T) {
	rng, src := testutil.Scripted(0.0, 0.0)
	f := newFixture(rng, nil, ruleset.Default().Events)
	res := f.d.Fire(newPlayer(), events.Treasure)
	assert.Equal(t, 2, src.Consumed())
	require.NotNil(t, res.Item)
	assert.Equal(t, inventory.CategorySpiritStone, res.Item.Category)
	assert.True(t, res.ItemStored)
	assert.Equal(t, 1, f.bp.UsedSlots())
	ev, ok := f.rec.Last(message.EventTreasure)
	require.True(t, ok)
	assert.Equal(t, true, ev.Params["stored"])
}

func TestFire_EncounterResolvesCombat(t *testing.T) {
	f := newFixture(dice.NewSeeded(42), nil, ruleset.Default().Events)
	res := f.d.Fire(newPlayer(), events.Encounter)
	require.NotNil(t, res.Enemy)
	require.NotNil(t, res.Combat)
	assert.Equal(t, message.CombatEncounter, f.rec.Keys()[0])
}

func TestRoll_SameSeedSameDays_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64Range(1, 1<<40).Draw(rt, "seed")
		rules := ruleset.Default().Events
		rules.DailyChance = 0.5
		a, b := newFixture(dice.NewSeeded(seed), nil, rules), newFixture(dice.NewSeeded(seed), nil, rules)
		pa, pb := newPlayer(), newPlayer()
		for range 20 {
			ra, rb := a.d.Roll(pa), b.d.Roll(pb)
			if ra.Fired != rb.Fired || ra.Kind != rb.Kind {
				rt.Fatalf("diverged: %+v vs %+v", ra, rb)
			}
		}
		assert.Equal(rt, pa.Character.Qi, pb.Character.Qi)
		assert.Equal(rt, pa.Soul.KarmicBalance, pb.Soul.KarmicBalance)
		assert.Equal(rt, a.rec.Keys(), b.rec.Keys())
	})
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "treasure", events.Treasure.String())
	assert.Equal(t, "kind(9)", events.Kind(9).String())
}
