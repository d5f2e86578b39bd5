package combat

import (
	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
	"github.com/cory-johannsen/cultivation/internal/game/message"
)

// AttackResult holds the outcome of a single isolated attack.
type AttackResult struct {
	Damage       int
	Crit         bool
	TargetHealth int
	Defeated     bool
}

// PlayerAttack applies one player hit to e, using the same power and crit
// computation as ResolveCombat. Victory rewards are granted when the hit
// defeats the enemy.
// Draw order: crit roll, damage draw, then the victory draws if defeated.
func (g *Engine) PlayerAttack(p *character.Progression, e *Enemy) AttackResult {
	c := &p.Character
	b := inventory.EquippedBonuses(g.inv)
	crit := g.rng.Chance(CritChance(b))
	pp := PlayerPower(c, e, b)
	if crit {
		pp *= critMultiplier
		g.sink.Emit(message.CombatCritical, message.Params{"enemy": e.Name})
	}
	dmg := Damage(g.rng, pp, EnemyPower(e, c, b), crit, int(c.Realm)-int(e.Realm))
	e.ApplyDamage(dmg)
	res := AttackResult{Damage: dmg, Crit: crit, TargetHealth: e.Health, Defeated: e.Defeated()}
	if res.Defeated {
		g.victory(p, e)
	}
	return res
}

// EnemyAttack applies one enemy hit to the player. Defeat consequences apply
// when the hit drops the player to zero health.
// Draw order: damage draw, then the defeat draws if defeated.
//
// Precondition: player health is initialised.
func (g *Engine) EnemyAttack(p *character.Progression, e *Enemy) AttackResult {
	c := &p.Character
	b := inventory.EquippedBonuses(g.inv)
	dmg := Damage(g.rng, EnemyPower(e, c, b), PlayerPower(c, e, b), false, int(e.Realm)-int(c.Realm))
	c.SetHealth(c.Health() - dmg)
	res := AttackResult{Damage: dmg, TargetHealth: c.Health(), Defeated: c.Health() <= 0}
	if res.Defeated {
		g.defeat(p, e)
	}
	return res
}
