package combat

import (
	"math"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
	"github.com/cory-johannsen/cultivation/internal/game/message"
)

// Reward and penalty tuning.
const (
	victoryQiFraction  = 0.1
	minTalentReward    = 1
	maxTalentReward    = 3
	defeatInjuryChance = 0.3
	minPurityInjury    = 1
	maxPurityInjury    = 5
	fleeChance         = 0.7
)

// Engine generates enemies and resolves fights against a shared random
// source.
type Engine struct {
	rng  *dice.Rand
	sink message.Sink
	inv  inventory.Store
	loot LootTable
}

// NewEngine creates an Engine. A nil factory disables loot; a nil inventory
// discards every drop.
//
// Precondition: rng must be non-nil.
func NewEngine(rng *dice.Rand, sink message.Sink, inv inventory.Store, factory *inventory.Factory) *Engine {
	return &Engine{
		rng:  rng,
		sink: message.OrDiscard(sink),
		inv:  inv,
		loot: LootTable{Rules: DefaultLootRules(), Factory: factory},
	}
}

// SetLootRules replaces the loot rules used by GenerateEnemy.
func (g *Engine) SetLootRules(rules []LootRule) { g.loot.Rules = rules }

// Result reports a ResolveCombat call.
type Result struct {
	Outcome      Outcome
	WinChance    float64
	Crit         bool
	PlayerDamage int
	EnemyDamage  int
	Victory      *Victory
	Defeat       *Defeat
}

// Victory reports the rewards of a won fight.
type Victory struct {
	QiGained     float64
	TalentGained int
	Looted       []inventory.Item
	Lost         []inventory.Item
}

// Defeat reports the consequence of a lost fight.
type Defeat struct {
	Injured       bool
	MeridianIndex int
	PurityLost    float64
}

// ResolveCombat runs one exchange. A won exchange damages the enemy and,
// if it survives, the enemy counterattacks; a lost exchange lets only the
// enemy attack. Both surviving is reported as Flee.
// Draw order: crit roll, win roll (skipped when the power ratio is
// undefined), one damage draw per attack, then the victory or defeat draws.
//
// Precondition: player health is initialised.
func (g *Engine) ResolveCombat(p *character.Progression, e *Enemy) Result {
	c := &p.Character
	b := inventory.EquippedBonuses(g.inv)
	crit := g.rng.Chance(CritChance(b))
	pp := PlayerPower(c, e, b)
	ep := EnemyPower(e, c, b)
	effective := pp
	if crit {
		effective *= critMultiplier
		g.sink.Emit(message.CombatCritical, message.Params{"enemy": e.Name})
	}

	res := Result{Crit: crit}
	w, ok := WinChance(effective, ep)
	res.WinChance = w
	playerWon := ok && g.rng.Chance(w)
	g.sink.Emit(message.CombatExchange, message.Params{
		"enemy":        e.Name,
		"player_power": effective,
		"enemy_power":  ep,
		"win_chance":   w,
		"player_won":   playerWon,
	})

	if playerWon {
		res.EnemyDamage = Damage(g.rng, effective, ep, crit, int(c.Realm)-int(e.Realm))
		e.ApplyDamage(res.EnemyDamage)
		if e.Defeated() {
			res.Outcome = PlayerWin
			res.Victory = g.victory(p, e)
			return res
		}
	}
	res.PlayerDamage = Damage(g.rng, ep, pp, false, int(e.Realm)-int(c.Realm))
	c.SetHealth(c.Health() - res.PlayerDamage)
	if c.Health() <= 0 {
		res.Outcome = EnemyWin
		res.Defeat = g.defeat(p, e)
		return res
	}
	res.Outcome = Flee
	g.sink.Emit(message.CombatStalemate, message.Params{
		"enemy":         e.Name,
		"player_health": c.Health(),
		"enemy_health":  e.Health,
	})
	return res
}

// victory grants qi, talent and loot.
// Draw order: talent reward, then one drop roll per loot entry.
func (g *Engine) victory(p *character.Progression, e *Enemy) *Victory {
	c := &p.Character
	v := &Victory{}
	v.QiGained = c.AddQi(math.Floor(e.MaxQi * victoryQiFraction))
	v.TalentGained = g.rng.IntRange(minTalentReward, maxTalentReward)
	c.AddTalent(v.TalentGained)
	g.sink.Emit(message.CombatVictory, message.Params{
		"enemy":  e.Name,
		"realm":  e.Realm.String(),
		"qi":     v.QiGained,
		"talent": v.TalentGained,
	})
	for _, entry := range e.Loot {
		if !g.rng.Chance(entry.DropRate) {
			continue
		}
		item := entry.Item
		item.Quantity = entry.Quantity
		if g.inv != nil && g.inv.AddItem(item) {
			v.Looted = append(v.Looted, item)
			g.sink.Emit(message.LootDropped, message.Params{
				"item": item.Name, "quality": item.Quality.String(), "quantity": item.Quantity,
			})
			continue
		}
		v.Lost = append(v.Lost, item)
		g.sink.Emit(message.LootLost, message.Params{"item": item.Name, "quantity": item.Quantity})
	}
	return v
}

// defeat may injure a random open meridian.
// Draw order: injury roll; on a hit with open meridians, the meridian pick
// and the purity loss.
func (g *Engine) defeat(p *character.Progression, e *Enemy) *Defeat {
	c := &p.Character
	d := &Defeat{MeridianIndex: -1}
	g.sink.Emit(message.CombatDefeat, message.Params{"enemy": e.Name, "realm": e.Realm.String()})
	if !g.rng.Chance(defeatInjuryChance) {
		return d
	}
	open := c.OpenMeridianIndices()
	if len(open) == 0 {
		return d
	}
	idx := dice.Pick(g.rng, open)
	m := &c.Meridians[idx]
	before := m.Purity
	m.Damage(float64(g.rng.IntRange(minPurityInjury, maxPurityInjury)))
	d.Injured = true
	d.MeridianIndex = idx
	d.PurityLost = before - m.Purity
	g.sink.Emit(message.MeridianPurityDamaged, message.Params{
		"index": idx, "meridian": character.MeridianNames[idx], "purity_lost": d.PurityLost,
	})
	return d
}

// Flee attempts to escape with a flat 70% chance.
// Draw order: exactly one Chance draw.
func (g *Engine) Flee(e *Enemy) bool {
	if g.rng.Chance(fleeChance) {
		g.sink.Emit(message.CombatFled, message.Params{"enemy": e.Name})
		return true
	}
	g.sink.Emit(message.CombatFleeFail, message.Params{"enemy": e.Name})
	return false
}

// Encounter announces e and resolves one exchange.
func (g *Engine) Encounter(p *character.Progression, e *Enemy) Result {
	g.sink.Emit(message.CombatEncounter, message.Params{
		"enemy":       e.Name,
		"realm":       e.Realm.String(),
		"combat_type": e.CombatType.String(),
		"health":      e.Health,
	})
	return g.ResolveCombat(p, e)
}
