package simulation

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cultivation/internal/game/breakthrough"
	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
	"github.com/cory-johannsen/cultivation/internal/game/meridian"
)

// lowHealthFraction is the health share below which the autopilot eats
// healing consumables.
const lowHealthFraction = 0.5

// Action names one autopilot decision.
type Action string

const (
	ActionBreakthrough Action = "breakthrough"
	ActionOpen         Action = "open_meridian"
	ActionRefine       Action = "refine_meridian"
	ActionCultivate    Action = "cultivate"
	ActionRest         Action = "rest"
)

// Summary totals an Autopilot run.
type Summary struct {
	Days          int
	Actions       map[Action]int
	Breakthroughs int
	Events        int
	ItemsUsed     int
	FinalRealm    character.Realm
}

// Autopilot plays a Game with a fixed strategy: after each day it attempts
// a realm breakthrough when the requirements are met, otherwise opens the
// next affordable meridian, otherwise refines a meridian at its purity cap,
// otherwise cultivates.
type Autopilot struct {
	game   *Game
	logger *zap.Logger
}

// NewAutopilot returns an Autopilot driving g.
//
// Precondition: g must be non-nil.
func NewAutopilot(g *Game, logger *zap.Logger) *Autopilot {
	if g == nil {
		panic("simulation.NewAutopilot: game must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Autopilot{game: g, logger: logger}
}

// Run plays days days, stopping early if ctx is cancelled.
//
// Postcondition: Summary.Days is the number of days completed.
func (a *Autopilot) Run(ctx context.Context, days int) (Summary, error) {
	sum := Summary{Actions: make(map[Action]int)}
	for i := 0; i < days; i++ {
		if err := ctx.Err(); err != nil {
			return a.finish(sum), err
		}
		report, err := a.game.Tick(ctx)
		if err != nil {
			return a.finish(sum), err
		}
		sum.Days++
		if report.Event.Fired {
			sum.Events++
		}
		sum.ItemsUsed += a.heal()
		act, advanced := a.Step()
		sum.Actions[act]++
		if advanced {
			sum.Breakthroughs++
		}
	}
	return a.finish(sum), nil
}

func (a *Autopilot) finish(sum Summary) Summary {
	st := a.game.State()
	sum.FinalRealm = st.Character.Realm
	a.logger.Info("autopilot finished",
		zap.Int("days", sum.Days),
		zap.Int("breakthroughs", sum.Breakthroughs),
		zap.Int("events", sum.Events),
		zap.String("realm", sum.FinalRealm.String()),
	)
	return sum
}

// Step takes one action and reports it, plus whether a realm was gained.
func (a *Autopilot) Step() (Action, bool) {
	st := a.game.State()
	c := st.Character

	if !c.Realm.Terminal() && a.game.Requirements().Met() {
		res := a.game.AttemptBreakthrough()
		return ActionBreakthrough, res.Outcome == breakthrough.Succeeded
	}

	if idx, ok := nextOpenable(c); ok {
		a.game.OpenMeridian(&idx)
		return ActionOpen, false
	}

	if idx, ok := nextRefinable(c); ok {
		a.game.RefineMeridian(idx)
		return ActionRefine, false
	}

	if c.Qi >= c.MaxQi {
		return ActionRest, false
	}
	a.game.Cultivate()
	return ActionCultivate, false
}

// heal eats healing consumables until health reaches half or none remain.
func (a *Autopilot) heal() int {
	used := 0
	for {
		st := a.game.State()
		c := st.Character
		if !c.HealthInitialized() || float64(c.Health()) >= float64(c.MaxHealth())*lowHealthFraction {
			return used
		}
		id, ok := a.healingItem()
		if !ok {
			return used
		}
		if _, err := a.game.UseItem(id); err != nil {
			return used
		}
		used++
	}
}

func (a *Autopilot) healingItem() (string, bool) {
	for _, it := range a.game.Items(inventory.Filter{}, inventory.SortByQuality) {
		for _, e := range it.Effects {
			if e.Type == inventory.EffectHealing {
				return it.ID, true
			}
		}
	}
	return "", false
}

// nextOpenable returns the lowest closed meridian whose requirement the
// current qi covers.
func nextOpenable(c character.Character) (int, bool) {
	closed := c.ClosedMeridianIndices()
	if len(closed) == 0 || c.Qi < meridian.OpenRequirement(closed[0]) {
		return 0, false
	}
	return closed[0], true
}

// nextRefinable returns the open meridian at its purity cap with the lowest
// stage whose breakthrough cost the current qi covers.
func nextRefinable(c character.Character) (int, bool) {
	best, found := 0, false
	for _, i := range c.OpenMeridianIndices() {
		m := c.Meridians[i]
		if m.Purity < m.Cap() || m.Purity >= character.MaxPurity {
			continue
		}
		if c.Qi < meridian.BreakthroughCost(i, m.Stage) {
			continue
		}
		if !found || m.Stage < c.Meridians[best].Stage {
			best, found = i, true
		}
	}
	return best, found
}
