// Package events dispatches the daily random events: enemy encounters,
// epiphanies, karmic deeds, qi windfalls and spirit stone finds.
package events

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/combat"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
	"github.com/cory-johannsen/cultivation/internal/game/message"
	"github.com/cory-johannsen/cultivation/internal/game/ruleset"
)

// Kind identifies a random event.
type Kind int

const (
	Encounter Kind = iota
	Epiphany
	Karma
	Windfall
	Treasure
)

// kinds is the dispatch order matching ruleset.EventRules.Weights.
var kinds = []Kind{Encounter, Epiphany, Karma, Windfall, Treasure}

// String returns the lowercase event name.
func (k Kind) String() string {
	switch k {
	case Encounter:
		return "encounter"
	case Epiphany:
		return "epiphany"
	case Karma:
		return "karma"
	case Windfall:
		return "windfall"
	case Treasure:
		return "treasure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	epiphanyTalent  = 1
	windfallFactor  = 0.05
	karmaGoodChance = 0.5
)

// karmaMagnitude rolls the size of a karmic deed in [5, 20].
var karmaMagnitude = dice.MustParse("1d16+4")

// Result reports one day's dispatch.
type Result struct {
	Fired      bool
	Kind       Kind
	Enemy      *combat.Enemy
	Combat     *combat.Result
	Talent     int
	Karma      int
	QiGained   float64
	Item       *inventory.Item
	ItemStored bool
}

// Dispatcher rolls the daily event against the shared random source.
type Dispatcher struct {
	rules   ruleset.EventRules
	roller  *dice.Roller
	sink    message.Sink
	fights  *combat.Engine
	factory *inventory.Factory
	inv     inventory.Store
}

// NewDispatcher wires a Dispatcher. A nil factory disables treasure finds;
// a nil inventory loses every found item.
//
// Precondition: roller and fights must be non-nil and share the same source.
func NewDispatcher(rules ruleset.EventRules, roller *dice.Roller, sink message.Sink, fights *combat.Engine,
	factory *inventory.Factory, inv inventory.Store) *Dispatcher {
	if roller == nil || fights == nil {
		panic("events: NewDispatcher called with nil roller or combat engine")
	}
	return &Dispatcher{
		rules:   rules,
		roller:  roller,
		sink:    message.OrDiscard(sink),
		fights:  fights,
		factory: factory,
		inv:     inv,
	}
}

// Roll decides whether an event fires today and applies it to p.
// Draw order: the daily chance; on a hit, the weighted kind pick followed
// by the draws of that kind (combat generation and resolution for an
// encounter, sign then magnitude for karma, item pick then quality for
// treasure; none for epiphany and windfall).
//
// Precondition: player health is initialised.
func (d *Dispatcher) Roll(p *character.Progression) Result {
	rng := d.roller.Rand()
	if !rng.Chance(d.rules.DailyChance) {
		return Result{}
	}
	kind := dice.PickWeighted(rng, kinds, d.rules.Weights())
	return d.Fire(p, kind)
}

// Fire applies an event of kind to p without the daily chance or kind pick.
//
// Precondition: player health is initialised for Encounter.
func (d *Dispatcher) Fire(p *character.Progression, kind Kind) Result {
	res := Result{Fired: true, Kind: kind}
	c := &p.Character
	switch kind {
	case Encounter:
		res.Enemy = d.fights.GenerateEnemy()
		out := d.fights.Encounter(p, res.Enemy)
		res.Combat = &out
	case Epiphany:
		before := c.Talent
		c.AddTalent(epiphanyTalent)
		res.Talent = c.Talent - before
		d.sink.Emit(message.EventEpiphany, message.Params{"talent": c.Talent, "gained": res.Talent})
	case Karma:
		good := d.roller.Rand().Chance(karmaGoodChance)
		res.Karma = d.roller.Roll(karmaMagnitude).Total()
		if !good {
			res.Karma = -res.Karma
		}
		p.Soul.KarmicBalance += res.Karma
		d.sink.Emit(message.EventKarma, message.Params{"delta": res.Karma, "balance": p.Soul.KarmicBalance})
	case Windfall:
		res.QiGained = c.AddQi(math.Floor(c.MaxQi * windfallFactor))
		d.sink.Emit(message.EventWindfall, message.Params{"qi": res.QiGained})
	case Treasure:
		d.treasure(p, &res)
	default:
		panic(fmt.Sprintf("events: unhandled event kind %d", int(kind)))
	}
	return res
}

func (d *Dispatcher) treasure(p *character.Progression, res *Result) {
	if d.factory == nil {
		return
	}
	item, err := d.factory.Random(inventory.CategorySpiritStone, int(p.Character.Realm), 1, d.roller.Rand())
	if err != nil {
		return
	}
	res.Item = &item
	res.ItemStored = d.inv != nil && d.inv.AddItem(item)
	d.sink.Emit(message.EventTreasure, message.Params{
		"item":    item.Name,
		"quality": item.Quality.String(),
		"stored":  res.ItemStored,
	})
}
