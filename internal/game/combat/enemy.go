package combat

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
)

// CombatType is an enemy's fighting style.
type CombatType int

const (
	Melee CombatType = iota
	Ranged
)

// String returns the lowercase style name.
func (t CombatType) String() string {
	switch t {
	case Melee:
		return "melee"
	case Ranged:
		return "ranged"
	default:
		return fmt.Sprintf("combat_type(%d)", int(t))
	}
}

var combatTypes = []CombatType{Melee, Ranged}

// Enemy is a procedurally generated opponent. It is discarded when the
// fight that produced it resolves.
//
// Invariant: 0 <= Qi <= MaxQi; 0 <= Health <= MaxHealth; 30 <= Aggression <= 90.
type Enemy struct {
	Name       string
	Realm      character.Realm
	Qi         float64
	MaxQi      float64
	Elements   character.Affinities
	Health     int
	MaxHealth  int
	CombatType CombatType
	Aggression int
	Loot       []LootEntry
}

// ApplyDamage reduces Health by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: Health >= 0.
func (e *Enemy) ApplyDamage(amount int) {
	e.Health = max(0, e.Health-amount)
}

// Defeated reports whether the enemy has no health left.
func (e *Enemy) Defeated() bool { return e.Health <= 0 }

// enemyRealms are the realms enemies spawn at with their weights.
var (
	enemyRealms       = []character.Realm{character.Mortal, character.QiCondensation, character.FoundationEstablishment}
	enemyRealmWeights = []float64{0.5, 0.3, 0.2}
)

// maxQiRange is the inclusive maxQi spawn range per enemy realm.
var maxQiRange = map[character.Realm][2]int{
	character.Mortal:                  {50, 150},
	character.QiCondensation:          {1000, 8000},
	character.FoundationEstablishment: {20000, 500000},
}

// nameWords are the realm-tiered adjective and noun pools.
var nameWords = map[character.Realm][2][]string{
	character.Mortal: {
		{"Wild", "Feral", "Rabid", "Starving", "Rogue"},
		{"Wolf", "Boar", "Bandit", "Serpent", "Monkey"},
	},
	character.QiCondensation: {
		{"Spirit", "Jade-Eyed", "Iron-Hide", "Shadow", "Mist"},
		{"Tiger", "Ape", "Disciple", "Python", "Crane"},
	},
	character.FoundationEstablishment: {
		{"Demonic", "Ancient", "Blood", "Thunder", "Frost"},
		{"Cultivator", "Lion", "Scorpion", "Elder", "Hawk"},
	},
}

const (
	enemyAffinityMax  = 50
	minAggression     = 30
	maxAggression     = 90
	enemyHealthBase   = 100.0
	enemyHealthPerQi  = 0.2
	enemyQiLowFactor  = 0.5
	enemyQiHighFactor = 1.0
)

// EnemyMaxHealth is floor((100 + qi*0.2) * realm multiplier).
//
// Postcondition: result >= 1.
func EnemyMaxHealth(realm character.Realm, qi float64) int {
	return max(1, int(math.Floor((enemyHealthBase+qi*enemyHealthPerQi)*realm.HealthMultiplier())))
}

// GenerateEnemy rolls a new enemy and its loot table.
// Draw order: realm, name adjective, name noun, maxQi, qi fraction, five
// affinities in element order, combat type, aggression, then the loot table.
//
// Postcondition: the returned enemy satisfies its invariants at full health.
func (g *Engine) GenerateEnemy() *Enemy {
	realm := dice.PickWeighted(g.rng, enemyRealms, enemyRealmWeights)
	words := nameWords[realm]
	name := dice.Pick(g.rng, words[0]) + " " + dice.Pick(g.rng, words[1])

	bounds := maxQiRange[realm]
	maxQi := float64(g.rng.IntRange(bounds[0], bounds[1]))
	qi := math.Floor(maxQi * g.rng.FloatRange(enemyQiLowFactor, enemyQiHighFactor))

	var elements character.Affinities
	for _, el := range character.AllElements {
		elements[el] = float64(g.rng.IntRange(0, enemyAffinityMax))
	}

	e := &Enemy{
		Name:       name,
		Realm:      realm,
		Qi:         qi,
		MaxQi:      maxQi,
		Elements:   elements,
		CombatType: dice.Pick(g.rng, combatTypes),
		Aggression: g.rng.IntRange(minAggression, maxAggression),
	}
	e.MaxHealth = EnemyMaxHealth(realm, qi)
	e.Health = e.MaxHealth
	e.Loot = g.loot.Roll(g.rng, realm)
	return e
}
