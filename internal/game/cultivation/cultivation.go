// Package cultivation advances qi, meridian purity and elemental affinity,
// once per simulated day and on demand through manual cultivation.
package cultivation

import (
	"math"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
	"github.com/cory-johannsen/cultivation/internal/game/message"
	"github.com/cory-johannsen/cultivation/internal/game/ruleset"
)

// ManualMultiplier scales the qi gain of a manual cultivation session.
const ManualMultiplier = 2.0

// Engine applies the growth formulas. It draws no randomness.
type Engine struct {
	rules *ruleset.Ruleset
	sink  message.Sink
	inv   inventory.Store
}

// NewEngine creates an Engine.
//
// Precondition: rules must be non-nil and valid. sink and inv may be nil.
func NewEngine(rules *ruleset.Ruleset, sink message.Sink, inv inventory.Store) *Engine {
	return &Engine{rules: rules, sink: message.OrDiscard(sink), inv: inv}
}

// DayResult summarises one simulated day of passive growth.
type DayResult struct {
	QiGained       float64
	PurityGained   float64
	ElementsGained [character.ElementCount]float64
}

// AdvanceOneDay applies passive qi gain, silent meridian purification and
// element growth, in that order.
//
// Postcondition: qi, purity and affinities stay within their bounds.
func (e *Engine) AdvanceOneDay(p *character.Progression) DayResult {
	c := &p.Character
	var res DayResult
	res.QiGained = c.AddQi(e.QiGain(p))
	res.PurityGained = Purify(c)
	res.ElementsGained = GrowElements(c)
	e.sink.Emit(message.CultivationDaily, message.Params{
		"day":    p.Day,
		"gained": res.QiGained,
		"qi":     c.Qi,
		"max_qi": c.MaxQi,
	})
	return res
}

// Cultivate runs a manual session: double qi gain, an immediate purification
// pass and element growth.
//
// Postcondition: returns the qi actually added after clamping.
func (e *Engine) Cultivate(p *character.Progression) float64 {
	c := &p.Character
	gained := c.AddQi(e.QiGain(p) * ManualMultiplier)
	purity := Purify(c)
	GrowElements(c)
	e.sink.Emit(message.CultivationManual, message.Params{
		"gained": gained,
		"purity": purity,
		"qi":     c.Qi,
		"max_qi": c.MaxQi,
	})
	return gained
}

// QiGain returns the unclamped passive qi gain for one day, including the
// equipped qi-absorption bonus.
//
// Postcondition: result >= 0.
func (e *Engine) QiGain(p *character.Progression) float64 {
	c := &p.Character
	rule := e.rules.Realm(c.Realm)
	talentFactor := 1 + float64(c.Talent)/rule.TalentDivisor
	open := float64(c.OpenMeridianCount())

	var gain float64
	if c.Realm == character.Mortal {
		gain = rule.BaseAbsorption * talentFactor * (1 + 0.5*open)
	} else {
		gain = rule.BaseAbsorption * talentFactor * MeridianBonus(c) * rule.QiMultiplier
		if rule.KarmicScaling {
			gain *= KarmicBonus(p.Soul.KarmicBalance)
		}
	}
	bonus := inventory.EquippedBonuses(e.inv).QiAbsorption
	return math.Max(0, gain*(1+bonus/100))
}

// MeridianBonus is 1 + 2*(0.1*open) + 4*sum(purity/1000) over open meridians.
func MeridianBonus(c *character.Character) float64 {
	open := 0
	purity := 0.0
	for _, m := range c.Meridians {
		if m.Open {
			open++
			purity += m.Purity / 1000
		}
	}
	return 1 + 2*(0.1*float64(open)) + 4*purity
}

// KarmicBonus maps karma to a multiplier with a floor of 0.1.
func KarmicBonus(karma int) float64 {
	return math.Max(0.1, 1+float64(karma)/1000)
}

// PurityRate is the daily purity gain of an open meridian at stage.
func PurityRate(talent, stage int) float64 {
	return 0.1 + float64(talent)/1000 + float64(stage)*0.05
}

// Purify raises every open meridian below its cap and returns the total gained.
//
// Postcondition: every purity <= its stage cap.
func Purify(c *character.Character) float64 {
	total := 0.0
	for i := range c.Meridians {
		m := &c.Meridians[i]
		if !m.Open || m.Purity >= m.Cap() {
			continue
		}
		before := m.Purity
		m.AddPurity(PurityRate(c.Talent, m.Stage))
		total += m.Purity - before
	}
	return total
}

// ElementGrowthRate is the daily primary-element gain for talent.
func ElementGrowthRate(talent int) float64 {
	return 0.1 + float64(talent)/1000
}

// GrowElements raises the primary element by the growth rate and each
// complementary element by half of it.
//
// Postcondition: every affinity <= 100.
func GrowElements(c *character.Character) [character.ElementCount]float64 {
	var gained [character.ElementCount]float64
	rate := ElementGrowthRate(c.Talent)
	primary := c.PrimaryElement()
	grow := func(el character.Element, delta float64) {
		before := c.Elements[el]
		c.Elements.Add(el, delta)
		gained[el] += c.Elements[el] - before
	}
	complementary := c.ComplementaryElements()
	grow(primary, rate)
	for _, el := range complementary {
		grow(el, rate/2)
	}
	return gained
}
