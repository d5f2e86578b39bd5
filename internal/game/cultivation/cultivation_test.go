package cultivation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/cultivation"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
	"github.com/cory-johannsen/cultivation/internal/game/message"
	"github.com/cory-johannsen/cultivation/internal/game/ruleset"
)

func newProgression(realm character.Realm, talent int) *character.Progression {
	p := &character.Progression{Character: character.Character{
		Name: "Lin", Realm: realm, MaxQi: 100, Talent: talent,
	}}
	for i := range p.Character.Meridians {
		p.Character.Meridians[i].Name = character.MeridianNames[i]
	}
	p.Character.RecomputeHealth()
	return p
}

func TestAdvanceOneDay_MortalNoMeridians(t *testing.T) {
	p := newProgression(character.Mortal, 50)
	p.Character.Elements[character.Fire] = 15
	rec := message.NewRecorder()
	eng := cultivation.NewEngine(ruleset.Default(), rec, nil)

	res := eng.AdvanceOneDay(p)
	assert.InDelta(t, 0.11, p.Character.Qi, 1e-12)
	assert.InDelta(t, 0.11, res.QiGained, 1e-12)
	assert.InDelta(t, 15.15, p.Character.Elements[character.Fire], 1e-12)
	assert.Equal(t, []message.Key{message.CultivationDaily}, rec.Keys())
}

func TestAdvanceOneDay_MortalOpenMeridiansBoostGain(t *testing.T) {
	p := newProgression(character.Mortal, 50)
	p.Character.Meridians[0].Open = true
	p.Character.Meridians[1].Open = true
	eng := cultivation.NewEngine(ruleset.Default(), nil, nil)
	eng.AdvanceOneDay(p)
	assert.InDelta(t, 0.1*1.1*2, p.Character.Qi, 1e-12)
}

func TestQiGain_HigherRealm(t *testing.T) {
	p := newProgression(character.QiCondensation, 100)
	p.Character.MaxQi = 1e4
	p.Character.Meridians[0].Open = true
	p.Character.Meridians[0].Purity = 50
	eng := cultivation.NewEngine(ruleset.Default(), nil, nil)

	// 0.5 * (1 + 100/400) * (1 + 0.2 + 0.2) * 1.5
	assert.InDelta(t, 0.5*1.25*1.4*1.5, eng.QiGain(p), 1e-12)
}

func TestQiGain_KarmicScalingOnlyForTopRealms(t *testing.T) {
	eng := cultivation.NewEngine(ruleset.Default(), nil, nil)

	low := newProgression(character.SoulTransformation, 50)
	base := eng.QiGain(low)
	low.Soul.KarmicBalance = -5000
	assert.Equal(t, base, eng.QiGain(low))

	high := newProgression(character.DivineTransformation, 50)
	neutral := eng.QiGain(high)
	high.Soul.KarmicBalance = 500
	assert.InDelta(t, neutral*1.5, eng.QiGain(high), 1e-9)
	high.Soul.KarmicBalance = -5000
	assert.InDelta(t, neutral*0.1, eng.QiGain(high), 1e-9)
}

func TestQiGain_AbsorptionBonus(t *testing.T) {
	bp := inventory.NewBackpack(4)
	ring := inventory.Item{DefID: "ring", Name: "ring", Category: inventory.CategoryEquipment, Quantity: 1, MaxStack: 1,
		Slot: inventory.SlotRing, Effects: []inventory.Effect{{Type: inventory.EffectQiAbsorption, Value: 50, IsPercentage: true}}}
	require.True(t, bp.AddItem(ring))
	require.NoError(t, bp.Equip(bp.Items(inventory.Filter{}, inventory.SortNone)[0].ID))

	p := newProgression(character.Mortal, 50)
	eng := cultivation.NewEngine(ruleset.Default(), nil, bp)
	assert.InDelta(t, 0.11*1.5, eng.QiGain(p), 1e-12)
}

func TestCultivate_DoublesGainAndPurifies(t *testing.T) {
	p := newProgression(character.Mortal, 50)
	p.Character.Meridians[3].Open = true
	p.Character.Meridians[3].Purity = 10
	rec := message.NewRecorder()
	eng := cultivation.NewEngine(ruleset.Default(), rec, nil)

	gained := eng.Cultivate(p)
	assert.InDelta(t, 0.1*1.1*1.5*2, gained, 1e-12)
	assert.InDelta(t, 10.15, p.Character.Meridians[3].Purity, 1e-12)
	ev, ok := rec.Last(message.CultivationManual)
	require.True(t, ok)
	assert.Equal(t, gained, ev.Params["gained"])
}

func TestCultivate_ReturnsClampedGain(t *testing.T) {
	p := newProgression(character.Mortal, 50)
	p.Character.Qi = 99.9
	eng := cultivation.NewEngine(ruleset.Default(), nil, nil)
	assert.InDelta(t, 0.1, eng.Cultivate(p), 1e-9)
	assert.Equal(t, 100.0, p.Character.Qi)
}

func TestPurify_StopsAtStageCap(t *testing.T) {
	c := newProgression(character.Mortal, 100).Character
	c.Meridians[0] = character.Meridian{Open: true, Purity: 49.9}
	c.Meridians[1] = character.Meridian{Open: true, Purity: 50, Stage: 1}
	c.Meridians[2] = character.Meridian{Open: false, Purity: 0}
	cultivation.Purify(&c)
	assert.Equal(t, 50.0, c.Meridians[0].Purity)
	assert.InDelta(t, 50.25, c.Meridians[1].Purity, 1e-12)
	assert.Equal(t, 0.0, c.Meridians[2].Purity)
}

func TestGrowElements_Complementary(t *testing.T) {
	c := newProgression(character.CoreFormation, 100).Character
	c.Elements[character.Wood] = 20
	gained := cultivation.GrowElements(&c)
	assert.InDelta(t, 0.2, gained[character.Wood], 1e-12)
	assert.InDelta(t, 0.1, gained[character.Fire], 1e-12)
	assert.InDelta(t, 0.1, gained[character.Earth], 1e-12)
	assert.Zero(t, gained[character.Metal])
	assert.Zero(t, gained[character.Water])
}

func TestDailyInvariants_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		realm := character.Realm(rapid.IntRange(0, 7).Draw(rt, "realm"))
		p := newProgression(realm, rapid.IntRange(1, 100).Draw(rt, "talent"))
		p.Character.Elements[character.Water] = rapid.Float64Range(0, 100).Draw(rt, "water")
		p.Soul.KarmicBalance = rapid.IntRange(-2000, 2000).Draw(rt, "karma")
		for i := range p.Character.Meridians {
			m := &p.Character.Meridians[i]
			m.Open = rapid.Bool().Draw(rt, "open")
			m.Stage = rapid.IntRange(0, 3).Draw(rt, "stage")
			m.Purity = rapid.Float64Range(0, m.Cap()).Draw(rt, "purity")
		}
		eng := cultivation.NewEngine(ruleset.Default(), nil, nil)
		days := rapid.IntRange(1, 50).Draw(rt, "days")
		for d := 0; d < days; d++ {
			eng.AdvanceOneDay(p)
		}
		if err := p.Character.Validate(); err != nil {
			rt.Fatal(err)
		}
	})
}
