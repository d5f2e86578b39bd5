// Package meridian opens closed meridians and pushes open ones through
// their breakthrough stages.
package meridian

import (
	"math"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/game/message"
)

// Tuning constants.
const (
	openBaseRequirement  = 50.0
	openStepRequirement  = 25.0
	openCostFraction     = 0.25
	openMaxChance        = 0.8
	openedPurity         = 10.0
	breakBaseCost        = 100.0
	breakStageCostFactor = 10.0
	breakPaidFraction    = 0.5
	breakBaseChance      = 0.6
	breakMaxChance       = 0.95
	heartDemonChance     = 0.1
	heartDemonQiFraction = 0.2
	purityLossChance     = 0.5
	purityLossFraction   = 0.1
)

// Engine performs meridian actions against a shared random source.
type Engine struct {
	rng  *dice.Rand
	sink message.Sink
}

// NewEngine creates an Engine.
//
// Precondition: rng must be non-nil. sink may be nil.
func NewEngine(rng *dice.Rand, sink message.Sink) *Engine {
	return &Engine{rng: rng, sink: message.OrDiscard(sink)}
}

// OpenResult reports an opening attempt. Attempted is false when every
// meridian was already open.
type OpenResult struct {
	Attempted   bool
	Index       int
	Requirement float64
	Chance      float64
	Cost        float64
	Success     bool
}

// OpenRequirement returns the qi requirement for opening meridian index.
func OpenRequirement(index int) float64 {
	return openBaseRequirement + openStepRequirement*float64(index)
}

// OpenChance returns min(0.8, (qi/requirement) * (0.5 + talent/200)).
func OpenChance(qi, requirement float64, talent int) float64 {
	return math.Min(openMaxChance, (qi/requirement)*(0.5+float64(talent)/200))
}

// AttemptOpen tries to open a closed meridian. A nil target picks uniformly
// among closed meridians. The cost of 25% of the requirement is paid
// regardless of outcome.
// Draw order: target pick (only when target is nil), then the success roll.
//
// Postcondition: a successful attempt leaves the meridian open at purity 10.
func (e *Engine) AttemptOpen(p *character.Progression, target *int) OpenResult {
	c := &p.Character
	closed := c.ClosedMeridianIndices()
	if len(closed) == 0 {
		e.sink.Emit(message.MeridianAllOpen, nil)
		return OpenResult{}
	}

	var index int
	if target == nil {
		index = dice.Pick(e.rng, closed)
	} else {
		index = *target
		if index < 0 || index >= character.MeridianCount {
			e.sink.Emit(message.MeridianInvalid, message.Params{"index": index})
			return OpenResult{Index: index}
		}
		if c.Meridians[index].Open {
			e.sink.Emit(message.MeridianInvalid, message.Params{"index": index, "reason": "already_open"})
			return OpenResult{Index: index}
		}
	}

	req := OpenRequirement(index)
	res := OpenResult{
		Attempted:   true,
		Index:       index,
		Requirement: req,
		Chance:      OpenChance(c.Qi, req, c.Talent),
	}
	res.Cost = c.SpendQi(math.Floor(req * openCostFraction))
	e.sink.Emit(message.MeridianOpenAttempt, message.Params{
		"index":       index,
		"meridian":    character.MeridianNames[index],
		"requirement": req,
		"chance":      res.Chance,
		"cost":        res.Cost,
	})

	res.Success = e.rng.Chance(res.Chance)
	if !res.Success {
		e.sink.Emit(message.MeridianOpenFailed, message.Params{"index": index, "meridian": character.MeridianNames[index]})
		return res
	}
	m := &c.Meridians[index]
	m.Open = true
	m.Purity = openedPurity
	e.sink.Emit(message.MeridianOpened, message.Params{"index": index, "meridian": character.MeridianNames[index]})
	return res
}

// BreakthroughResult reports a stage breakthrough attempt. Attempted is false
// when a precondition rejected the call without cost.
type BreakthroughResult struct {
	Attempted     bool
	Index         int
	Cost          float64
	Paid          float64
	Chance        float64
	Success       bool
	NewStage      int
	HeartDemon    bool
	HeartDemonQi  float64
	PurityDamaged float64
}

// BreakthroughCost returns (index+1)*100*(1+stage*10).
func BreakthroughCost(index, stage int) float64 {
	return float64(index+1) * breakBaseCost * (1 + float64(stage)*breakStageCostFactor)
}

// BreakthroughChance returns min(0.95, 0.6 + talent/200).
func BreakthroughChance(talent int) float64 {
	return math.Min(breakMaxChance, breakBaseChance+float64(talent)/200)
}

// AttemptBreakthrough pushes an open meridian whose purity has reached its
// cap to the next stage. Half of the cost is always paid.
// Draw order: success roll; on success the heart-demon roll; on failure the
// purity-loss roll.
//
// Postcondition: Stage never decreases; purity stays within its cap.
func (e *Engine) AttemptBreakthrough(p *character.Progression, index int) BreakthroughResult {
	c := &p.Character
	res := BreakthroughResult{Index: index}
	if index < 0 || index >= character.MeridianCount {
		e.sink.Emit(message.MeridianInvalid, message.Params{"index": index})
		return res
	}
	m := &c.Meridians[index]
	name := character.MeridianNames[index]
	switch {
	case !m.Open:
		e.sink.Emit(message.MeridianNotOpen, message.Params{"index": index, "meridian": name})
		return res
	case m.Purity >= character.MaxPurity:
		e.sink.Emit(message.MeridianAlreadyMax, message.Params{"index": index, "meridian": name})
		return res
	case m.Purity < m.Cap():
		e.sink.Emit(message.MeridianPurityLow, message.Params{
			"index": index, "meridian": name, "purity": m.Purity, "cap": m.Cap(),
		})
		return res
	}

	res.Attempted = true
	res.Cost = BreakthroughCost(index, m.Stage)
	res.Paid = c.SpendQi(res.Cost * breakPaidFraction)
	res.Chance = BreakthroughChance(c.Talent)
	res.Success = e.rng.Chance(res.Chance)
	if res.Success {
		m.Stage++
		res.NewStage = m.Stage
		e.sink.Emit(message.MeridianBreakthrough, message.Params{
			"index": index, "meridian": name, "stage": m.Stage, "cap": m.Cap(),
			"chance": res.Chance, "cost": res.Paid,
		})
		if e.rng.Chance(heartDemonChance) {
			res.HeartDemon = true
			res.HeartDemonQi = c.SpendQi(c.Qi * heartDemonQiFraction)
			e.sink.Emit(message.MeridianHeartDemon, message.Params{"index": index, "meridian": name, "qi_lost": res.HeartDemonQi})
		}
		return res
	}

	res.NewStage = m.Stage
	e.sink.Emit(message.MeridianBreakFailed, message.Params{
		"index": index, "meridian": name, "chance": res.Chance, "cost": res.Paid,
	})
	if e.rng.Chance(purityLossChance) {
		before := m.Purity
		m.Damage(m.Purity * purityLossFraction)
		res.PurityDamaged = before - m.Purity
		e.sink.Emit(message.MeridianPurityDamaged, message.Params{"index": index, "meridian": name, "purity_lost": res.PurityDamaged})
	}
	return res
}
