package inventory

import (
	"math"

	"github.com/cory-johannsen/cultivation/internal/game/character"
)

// ConsumeResult reports what consuming one unit of an item changed.
type ConsumeResult struct {
	QiRestored float64
	Healed     int
	Growth     [character.ElementCount]float64
}

// Consumable reports whether it carries any consumed effect.
func (i Item) Consumable() bool {
	for _, e := range i.Effects {
		switch e.Type {
		case EffectQiRestore, EffectHealing, EffectElementGrowth:
			return true
		}
	}
	return false
}

// Consume applies the consumed effects of one unit of it to c.
// Percentage values are relative to MaxQi or MaxHealth.
//
// Precondition: c must not be nil.
// Postcondition: qi, health and affinities stay within their bounds;
// healing is skipped when health is uninitialised.
func Consume(c *character.Character, it Item) ConsumeResult {
	var res ConsumeResult
	for _, e := range it.Effects {
		switch e.Type {
		case EffectQiRestore:
			amt := e.Value
			if e.IsPercentage {
				amt = c.MaxQi * e.Value / 100
			}
			res.QiRestored += c.AddQi(amt)
		case EffectHealing:
			if !c.HealthInitialized() {
				continue
			}
			amt := e.Value
			if e.IsPercentage {
				amt = float64(c.MaxHealth()) * e.Value / 100
			}
			before := c.Health()
			c.SetHealth(before + int(math.Floor(amt)))
			res.Healed += c.Health() - before
		case EffectElementGrowth:
			for _, el := range e.Elements() {
				before := c.Elements[el]
				c.Elements.Add(el, e.Value)
				res.Growth[el] += c.Elements[el] - before
			}
		}
	}
	return res
}
