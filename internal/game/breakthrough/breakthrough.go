// Package breakthrough drives the realm state machine: requirement checks,
// the tribulation roll, and the consequences of success or failure.
package breakthrough

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/game/message"
	"github.com/cory-johannsen/cultivation/internal/game/ruleset"
)

// Consequence constants.
const (
	qiRetainedOnSuccess   = 0.1
	minQiAfterSuccess     = 10.0
	maxQiGrowth           = 100.0
	lightningQiLoss       = 0.5
	maxHeartDemonRegress  = 2
	elementalAffinityLoss = 0.3
	karmicPenalty         = 50
)

// Outcome classifies a realm breakthrough attempt.
type Outcome int

const (
	// RequirementsUnmet means no tribulation was attempted.
	RequirementsUnmet Outcome = iota
	// TerminalRealm means the character cannot advance further.
	TerminalRealm
	// Succeeded means the tribulation was survived and the realm advanced.
	Succeeded
	// Failed means the tribulation was failed and its consequence applied.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case RequirementsUnmet:
		return "requirements_unmet"
	case TerminalRealm:
		return "terminal"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Requirements is the snapshot checked before a tribulation.
type Requirements struct {
	Qi                float64
	QiRequired        float64
	Meridians         int
	MeridiansRequired int
	MinPurity         float64
	Elements          int
	ElementsRequired  int
	ElementMode       ruleset.ElementMode
	// Terminal is set for the last realm, which has no breakthrough.
	Terminal bool
}

// QiMet reports whether the qi threshold holds.
func (r Requirements) QiMet() bool { return r.Qi >= r.QiRequired }

// MeridiansMet reports whether the meridian threshold holds.
func (r Requirements) MeridiansMet() bool { return r.Meridians >= r.MeridiansRequired }

// ElementsMet reports whether the element threshold holds.
func (r Requirements) ElementsMet() bool { return r.Elements >= r.ElementsRequired }

// Met reports whether every threshold holds. It is always false in the
// terminal realm.
func (r Requirements) Met() bool {
	return !r.Terminal && r.QiMet() && r.MeridiansMet() && r.ElementsMet()
}

// Result reports a realm breakthrough attempt.
type Result struct {
	Outcome      Outcome
	From         character.Realm
	To           character.Realm
	Requirements Requirements
	Tribulation  ruleset.Tribulation
	Chance       float64
	Unlocked     []character.Element
}

// Engine runs realm breakthroughs against a shared random source.
type Engine struct {
	rules *ruleset.Ruleset
	rng   *dice.Rand
	sink  message.Sink
}

// NewEngine creates an Engine.
//
// Precondition: rules and rng must be non-nil. sink may be nil.
func NewEngine(rules *ruleset.Ruleset, rng *dice.Rand, sink message.Sink) *Engine {
	return &Engine{rules: rules, rng: rng, sink: message.OrDiscard(sink)}
}

// Check computes the requirement snapshot for leaving the current realm.
// It reads state only.
//
// Postcondition: in the terminal realm only Qi and Terminal are set.
func (e *Engine) Check(p *character.Progression) Requirements {
	c := &p.Character
	rule := e.rules.Realm(c.Realm).Breakthrough
	if c.Realm.Terminal() || rule == nil {
		return Requirements{Qi: c.Qi, Terminal: true}
	}
	req := Requirements{
		Qi:                c.Qi,
		QiRequired:        rule.QiRequirement,
		MeridiansRequired: rule.Meridians.Count,
		MinPurity:         rule.Meridians.MinPurity,
		Meridians:         c.CountMeridians(rule.Meridians.MinPurity),
		ElementMode:       rule.Elements.Mode,
	}
	switch rule.Elements.Mode {
	case ruleset.ElementsPrimaryComplementary:
		set := append([]character.Element{c.PrimaryElement()}, c.ComplementaryElements()...)
		req.ElementsRequired = len(set)
		req.Elements = c.Elements.CountAtLeast(character.MaxAffinity, set)
	default:
		req.ElementsRequired = rule.Elements.Count
		req.Elements = c.Elements.CountAtLeast(character.MaxAffinity, nil)
	}
	return req
}

// Attempt tries to advance to the next realm. Unmet requirements and the
// terminal realm end the attempt without state change.
// Draw order: exactly one tribulation roll when requirements are met.
func (e *Engine) Attempt(p *character.Progression) Result {
	c := &p.Character
	res := Result{From: c.Realm, To: c.Realm}
	if c.Realm.Terminal() {
		res.Outcome = TerminalRealm
		e.sink.Emit(message.BreakthroughTerminal, message.Params{"realm": c.Realm.String()})
		return res
	}

	res.Requirements = e.Check(p)
	rule := e.rules.Realm(c.Realm).Breakthrough
	res.Tribulation = rule.Tribulation
	e.sink.Emit(message.BreakthroughAttempt, message.Params{
		"realm":              c.Realm.String(),
		"qi":                 res.Requirements.Qi,
		"qi_required":        res.Requirements.QiRequired,
		"meridians":          res.Requirements.Meridians,
		"meridians_required": res.Requirements.MeridiansRequired,
		"elements":           res.Requirements.Elements,
		"elements_required":  res.Requirements.ElementsRequired,
	})
	if !res.Requirements.Met() {
		res.Outcome = RequirementsUnmet
		e.sink.Emit(message.BreakthroughUnmet, message.Params{
			"realm":        c.Realm.String(),
			"qi_met":       res.Requirements.QiMet(),
			"meridian_met": res.Requirements.MeridiansMet(),
			"element_met":  res.Requirements.ElementsMet(),
		})
		return res
	}

	res.Chance = TribulationChance(p, rule.Tribulation, rule.BaseSuccessRate)
	if e.PerformTribulation(p, rule.Tribulation, rule.BaseSuccessRate) {
		res.Outcome = Succeeded
		res.Unlocked = e.PerformBreakthrough(p, c.Realm.Next())
	} else {
		res.Outcome = Failed
	}
	res.To = c.Realm
	return res
}

// TribulationChance is base + talent/1000, plus primary affinity/1000 for
// elemental trials, plus the karma term for karmic and heart-demon trials.
// Negative karma counts double.
func TribulationChance(p *character.Progression, kind ruleset.Tribulation, base float64) float64 {
	c := &p.Character
	rate := base + float64(c.Talent)/1000
	switch kind {
	case ruleset.Elemental:
		rate += c.Elements[c.PrimaryElement()] / 1000
	case ruleset.Karmic, ruleset.HeartDemon:
		karma := float64(p.Soul.KarmicBalance)
		if karma > 0 {
			rate += karma / 1000
		} else {
			rate += 2 * karma / 1000
		}
	case ruleset.Lightning:
	default:
		panic(fmt.Sprintf("breakthrough: unhandled tribulation %d", int(kind)))
	}
	return rate
}

// PerformTribulation rolls the trial and applies the failure consequence
// on a loss. It reports whether the trial was survived.
// Draw order: exactly one Chance draw.
func (e *Engine) PerformTribulation(p *character.Progression, kind ruleset.Tribulation, base float64) bool {
	chance := TribulationChance(p, kind, base)
	e.sink.Emit(message.TribulationBegin, message.Params{
		"kind":   kind.String(),
		"chance": chance,
		"realm":  p.Character.Realm.String(),
	})
	if e.rng.Chance(chance) {
		p.Soul.TribulationSurvivals++
		e.sink.Emit(message.TribulationSurvived, message.Params{"kind": kind.String(), "chance": chance})
		return true
	}
	e.sink.Emit(message.TribulationFailed, message.Params{"kind": kind.String(), "chance": chance})
	e.applyFailure(p, kind)
	return false
}

func (e *Engine) applyFailure(p *character.Progression, kind ruleset.Tribulation) {
	c := &p.Character
	switch kind {
	case ruleset.Lightning:
		c.SpendQi(c.Qi * lightningQiLoss)
	case ruleset.HeartDemon:
		levels := min(maxHeartDemonRegress, int(c.Realm))
		if levels == 0 {
			return
		}
		from := c.Realm
		c.Realm -= character.Realm(levels)
		c.MaxQi /= math.Pow(maxQiGrowth, float64(levels))
		c.AddQi(0)
		c.RecomputeHealth()
		e.sink.Emit(message.TribulationRealmRegress, message.Params{
			"from":   from.String(),
			"to":     c.Realm.String(),
			"levels": levels,
		})
	case ruleset.Elemental:
		primary := c.PrimaryElement()
		c.Elements.Add(primary, -c.Elements[primary]*elementalAffinityLoss)
	case ruleset.Karmic:
		p.Soul.KarmicBalance -= karmicPenalty
	default:
		panic(fmt.Sprintf("breakthrough: unhandled tribulation %d", int(kind)))
	}
}

// PerformBreakthrough moves the character into next: max qi grows a
// hundredfold, qi resets to max(10, qi*0.1), newly complementary elements
// are announced, and the soul records the transition.
// It returns the elements that became complementary.
//
// Precondition: next.Valid().
// Postcondition: Realm == next; health is recomputed.
func (e *Engine) PerformBreakthrough(p *character.Progression, next character.Realm) []character.Element {
	c := &p.Character
	from := c.Realm
	before := c.ComplementaryElements()

	c.Realm = next
	c.MaxQi *= maxQiGrowth
	c.Qi = math.Min(c.MaxQi, math.Max(minQiAfterSuccess, c.Qi*qiRetainedOnSuccess))

	var unlocked []character.Element
	for _, el := range c.ComplementaryElements() {
		if !containsElement(before, el) {
			unlocked = append(unlocked, el)
			e.sink.Emit(message.ElementUnlocked, message.Params{"element": el.String(), "realm": next.String()})
		}
	}

	p.Soul.RecordBreakthrough(from, next, p.Day)
	c.RecomputeHealth()
	e.sink.Emit(message.BreakthroughSuccess, message.Params{
		"from":   from.String(),
		"to":     next.String(),
		"max_qi": c.MaxQi,
		"qi":     c.Qi,
	})
	return unlocked
}

func containsElement(set []character.Element, el character.Element) bool {
	for _, s := range set {
		if s == el {
			return true
		}
	}
	return false
}
