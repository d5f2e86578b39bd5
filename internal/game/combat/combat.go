// Package combat generates enemies and resolves fights between the
// cultivator and an enemy.
package combat

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
)

// Outcome is the result of ResolveCombat.
type Outcome int

const (
	PlayerWin Outcome = iota
	EnemyWin
	Flee
)

// String returns a snake_case outcome label.
func (o Outcome) String() string {
	switch o {
	case PlayerWin:
		return "player_win"
	case EnemyWin:
		return "enemy_win"
	case Flee:
		return "flee"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Elemental bonus multipliers.
const (
	GeneratingBonus  = 1.25
	ControllingBonus = 0.75
)

// Damage tuning.
const (
	baseDamageScale   = 50.0
	baseDamageFloor   = 10
	critMultiplier    = 2.0
	maxCritChance     = 0.5
	higherRealmStep   = 0.25
	lowerRealmStep    = 0.5
	lowerRealmFloor   = 0.25
	damageSpreadLow   = 0.8
	damageSpreadHigh  = 1.2
	playerTalentPower = 2.0
	playerRealmPower  = 100.0
	enemyRealmPower   = 50.0
)

// ElementalBonus compares the primary elements of attacker and defender.
// It returns 1.25 when the attacker's element generates the defender's,
// 0.75 when it controls it, and 1.0 otherwise.
func ElementalBonus(attacker, defender character.Affinities) float64 {
	a, d := attacker.Primary(), defender.Primary()
	switch {
	case a.Generates() == d:
		return GeneratingBonus
	case a.Controls() == d:
		return ControllingBonus
	default:
		return 1.0
	}
}

// PlayerPower is (qi + talent*2 + realm*100 + combat bonus) * (1 + defense/100),
// scaled by the elemental bonus against the enemy and the equipped boost
// for the player's primary element.
//
// Postcondition: result >= 0.
func PlayerPower(c *character.Character, e *Enemy, b inventory.Bonuses) float64 {
	raw := (c.Qi + float64(c.Talent)*playerTalentPower + float64(c.Realm)*playerRealmPower + b.CombatPower) *
		(1 + b.Defense/100)
	boost := 1 + b.ElementalBoost[c.PrimaryElement()]/100
	return math.Max(0, raw*ElementalBonus(c.Elements, e.Elements)*boost)
}

// EnemyPower is (qi + realm*50) scaled by the elemental bonus against the
// player and reduced by the player's equipped resistance to the enemy's
// primary element.
//
// Postcondition: result >= 0.
func EnemyPower(e *Enemy, c *character.Character, b inventory.Bonuses) float64 {
	raw := e.Qi + float64(e.Realm)*enemyRealmPower
	resist := 1 - b.ElementalResistance[e.Elements.Primary()]/100
	return math.Max(0, raw*ElementalBonus(e.Elements, c.Elements)*resist)
}

// CritChance is min(crit bonus/100, 0.5).
func CritChance(b inventory.Bonuses) float64 {
	return math.Max(0, math.Min(b.CritChance/100, maxCritChance))
}

// WinChance returns pp/(pp+ep) and false when the ratio is undefined.
func WinChance(pp, ep float64) (float64, bool) {
	w := pp / (pp + ep)
	if math.IsNaN(w) {
		return 0, false
	}
	return w, true
}

// RealmScaling returns the damage multiplier for an attacker diff realms
// above (positive) or below (negative) the defender.
func RealmScaling(diff int) float64 {
	switch {
	case diff > 0:
		return 1 + float64(diff)*higherRealmStep
	case diff < 0:
		return math.Max(lowerRealmFloor, 1+float64(diff)*lowerRealmStep)
	default:
		return 1
	}
}

// Damage computes one hit: floor(ratio*50)+10, doubled on crit, scaled by
// realm difference, randomised by U(0.8, 1.2), floored and at least 1.
// Draw order: exactly one FloatRange draw.
//
// Postcondition: result >= 1.
func Damage(rng *dice.Rand, attackerPower, defenderPower float64, crit bool, realmDiff int) int {
	ratio := attackerPower / (attackerPower + defenderPower)
	if math.IsNaN(ratio) {
		ratio = 0
	}
	dmg := math.Floor(ratio*baseDamageScale) + baseDamageFloor
	if crit {
		dmg *= critMultiplier
	}
	dmg *= RealmScaling(realmDiff)
	dmg *= rng.FloatRange(damageSpreadLow, damageSpreadHigh)
	return max(1, int(math.Floor(dmg)))
}
