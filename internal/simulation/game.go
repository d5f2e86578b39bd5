// Package simulation owns one running game: the shared random source, the
// progression state, the engines that mutate it and the clock that drives
// the daily tick.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cultivation/internal/config"
	"github.com/cory-johannsen/cultivation/internal/game/breakthrough"
	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/combat"
	"github.com/cory-johannsen/cultivation/internal/game/cultivation"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/game/events"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
	"github.com/cory-johannsen/cultivation/internal/game/meridian"
	"github.com/cory-johannsen/cultivation/internal/game/message"
	"github.com/cory-johannsen/cultivation/internal/game/ruleset"
	"github.com/cory-johannsen/cultivation/internal/scripting"
	"github.com/cory-johannsen/cultivation/internal/storage"
)

// regenFraction is the share of max health restored every day.
const regenFraction = 0.1

var (
	// ErrNoEnemy is returned by Fight and Flee when no enemy is engaged.
	ErrNoEnemy = errors.New("no enemy engaged")
	// ErrItemNotFound is returned when an item id is not in the backpack.
	ErrItemNotFound = errors.New("item not found")
	// ErrNotConsumable is returned by UseItem for items with no consumed effect.
	ErrNotConsumable = errors.New("item is not consumable")
)

// Options configures New.
type Options struct {
	// Seed for a new game. Zero draws an entropy seed. Ignored when a
	// snapshot is restored.
	Seed          int64
	Name          string
	Talent        int
	Slot          string
	AutosaveEvery int
	Slots         int

	ScriptDir        string
	InstructionLimit int

	Content Content
	// Store may be nil, in which case nothing is loaded or saved.
	Store storage.Store
	// Sink receives every emitted event in addition to the zap sink.
	Sink   message.Sink
	Logger *zap.Logger
}

// OptionsFromConfig maps cfg onto Options. Store, Sink and Logger are left
// for the caller.
func OptionsFromConfig(cfg config.Config, content Content) Options {
	return Options{
		Seed:             cfg.Simulation.Seed,
		Name:             cfg.Simulation.CharacterName,
		Talent:           cfg.Simulation.Talent,
		Slot:             cfg.Simulation.SaveSlot,
		AutosaveEvery:    cfg.Simulation.AutosaveEvery,
		Slots:            cfg.Inventory.Slots,
		ScriptDir:        cfg.Content.ScriptDir,
		InstructionLimit: cfg.Content.InstructionLimit,
		Content:          content,
	}
}

// DayReport summarises one Tick.
type DayReport struct {
	Day         int
	Cultivation cultivation.DayResult
	Event       events.Result
	Saved       bool
}

// Game serialises the daily tick and player actions over one progression.
//
// Invariant: every random draw comes from src; at most one operation runs
// at a time.
type Game struct {
	mu sync.Mutex

	src    *dice.ParkMiller
	rng    *dice.Rand
	roller *dice.Roller

	progression *character.Progression
	backpack    *inventory.Backpack
	factory     *inventory.Factory

	cultivation  *cultivation.Engine
	meridians    *meridian.Engine
	breakthrough *breakthrough.Engine
	combat       *combat.Engine
	events       *events.Dispatcher
	scripts      *scripting.Manager

	enemy *combat.Enemy

	store         storage.Store
	slot          string
	autosaveEvery int

	sink   message.Sink
	logger *zap.Logger
}

// New builds a Game. When opts.Store holds a snapshot in opts.Slot it is
// restored, otherwise a fresh character is created.
//
// Precondition: opts.Slots >= 1 and opts.Name non-empty for a new game.
// Postcondition: Returns a ready Game or a wrapped error.
func New(ctx context.Context, opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := opts.Content.Rules
	if rules == nil {
		rules = ruleset.Default()
	}
	registry := opts.Content.Registry
	if registry == nil {
		registry = inventory.DefaultRegistry()
	}
	if opts.Slots < 1 {
		return nil, fmt.Errorf("inventory slots must be >= 1, got %d", opts.Slots)
	}

	var snap *storage.Snapshot
	if opts.Store != nil {
		s, err := opts.Store.Load(ctx, opts.Slot)
		switch {
		case err == nil:
			snap = &s
		case errors.Is(err, storage.ErrNotFound):
		default:
			return nil, fmt.Errorf("loading slot %q: %w", opts.Slot, err)
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = dice.EntropySeed()
	}
	src := dice.NewParkMiller(seed)
	if snap != nil {
		src.Restore(snap.RNGState)
	}
	rng := dice.New(src)
	roller := dice.NewLoggedRoller(rng, logger)

	sink := message.Fanout{message.NewZapSink(logger), message.OrDiscard(opts.Sink)}

	backpack := inventory.NewBackpack(opts.Slots)
	if snap != nil {
		backpack.Restore(snap.Backpack)
	}
	factory := inventory.NewFactory(registry)
	fights := combat.NewEngine(rng, sink, backpack, factory)

	g := &Game{
		src:           src,
		rng:           rng,
		roller:        roller,
		backpack:      backpack,
		factory:       factory,
		cultivation:   cultivation.NewEngine(rules, sink, backpack),
		meridians:     meridian.NewEngine(rng, sink),
		breakthrough:  breakthrough.NewEngine(rules, rng, sink),
		combat:        fights,
		events:        events.NewDispatcher(rules.Events, roller, sink, fights, factory, backpack),
		scripts:       scripting.NewManager(roller, sink, logger),
		store:         opts.Store,
		slot:          opts.Slot,
		autosaveEvery: opts.AutosaveEvery,
		sink:          sink,
		logger:        logger,
	}

	if opts.ScriptDir != "" {
		if err := g.scripts.Load(opts.ScriptDir, opts.InstructionLimit); err != nil {
			return nil, fmt.Errorf("loading scripts: %w", err)
		}
	}

	if snap != nil {
		p := snap.Progression
		if !p.Character.HealthInitialized() {
			p.Character.RecomputeHealth()
		}
		g.progression = &p
		logger.Info("game restored",
			zap.String("slot", opts.Slot),
			zap.Int("day", p.Day),
			zap.String("realm", p.Character.Realm.String()),
		)
		return g, nil
	}

	p, err := character.New(opts.Name, opts.Talent, rng)
	if err != nil {
		return nil, fmt.Errorf("creating character: %w", err)
	}
	g.progression = p
	logger.Info("game created",
		zap.String("slot", opts.Slot),
		zap.Int64("seed", seed),
		zap.String("name", p.Character.Name),
		zap.Int("talent", p.Character.Talent),
		zap.String("primary_element", p.Character.PrimaryElement().String()),
	)
	return g, nil
}

// Close releases the scripting VM.
func (g *Game) Close() {
	g.scripts.Close()
}

// Tick advances one day: passive cultivation, health regeneration, the
// random event roll, the on_day hook and, on the autosave cadence, a save.
//
// Postcondition: Day has increased by exactly one.
func (g *Game) Tick(ctx context.Context) (DayReport, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.progression
	p.Day++
	report := DayReport{Day: p.Day}
	report.Cultivation = g.cultivation.AdvanceOneDay(p)
	p.Character.Regenerate(regenFraction)
	report.Event = g.events.Roll(p)
	g.scripts.OnDay(p)

	if g.store != nil && g.autosaveEvery > 0 && p.Day%g.autosaveEvery == 0 {
		if err := g.saveLocked(ctx); err != nil {
			return report, err
		}
		report.Saved = true
	}
	return report, nil
}

// Cultivate runs a manual cultivation session.
func (g *Game) Cultivate() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cultivation.Cultivate(g.progression)
}

// OpenMeridian attempts to open target, or a random closed meridian when
// target is nil.
func (g *Game) OpenMeridian(target *int) meridian.OpenResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.meridians.AttemptOpen(g.progression, target)
}

// RefineMeridian attempts a stage breakthrough on meridian index.
func (g *Game) RefineMeridian(index int) meridian.BreakthroughResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.meridians.AttemptBreakthrough(g.progression, index)
}

// Requirements reports progress toward the next realm.
func (g *Game) Requirements() breakthrough.Requirements {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.breakthrough.Check(g.progression)
}

// AttemptBreakthrough attempts the next realm. A success runs the
// on_breakthrough hook with the realm reached.
func (g *Game) AttemptBreakthrough() breakthrough.Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	res := g.breakthrough.Attempt(g.progression)
	if res.Outcome == breakthrough.Succeeded {
		g.scripts.OnBreakthrough(g.progression, res.To)
	}
	return res
}

// Hunt seeks out a new enemy and resolves the first exchange. An enemy that
// survives the exchange stays engaged for Fight or Flee.
// Draw order: enemy generation, then the exchange.
func (g *Game) Hunt() (*combat.Enemy, combat.Result) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e := g.combat.GenerateEnemy()
	res := g.combat.Encounter(g.progression, e)
	g.settle(e, res)
	return e, res
}

// Fight resolves another exchange against the engaged enemy.
//
// Postcondition: returns ErrNoEnemy when nothing is engaged.
func (g *Game) Fight() (combat.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.enemy == nil {
		g.sink.Emit(message.CombatNoEnemy, message.Params{"action": "fight"})
		return combat.Result{}, ErrNoEnemy
	}
	e := g.enemy
	res := g.combat.ResolveCombat(g.progression, e)
	g.settle(e, res)
	return res, nil
}

// Flee attempts to escape the engaged enemy. A successful escape disengages.
func (g *Game) Flee() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.enemy == nil {
		g.sink.Emit(message.CombatNoEnemy, message.Params{"action": "flee"})
		return false, ErrNoEnemy
	}
	if g.combat.Flee(g.enemy) {
		g.enemy = nil
		return true, nil
	}
	return false, nil
}

// Enemy returns a copy of the engaged enemy, if any.
func (g *Game) Enemy() (combat.Enemy, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.enemy == nil {
		return combat.Enemy{}, false
	}
	return *g.enemy, true
}

func (g *Game) settle(e *combat.Enemy, res combat.Result) {
	if res.Outcome == combat.Flee {
		g.enemy = e
		return
	}
	g.enemy = nil
}

// UseItem consumes one unit of the item identified by id.
//
// Postcondition: returns ErrItemNotFound or ErrNotConsumable without
// changing state.
func (g *Game) UseItem(id string) (inventory.ConsumeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	it, ok := g.backpack.Get(id)
	if !ok {
		g.sink.Emit(message.ItemUnavailable, message.Params{"id": id, "action": "use"})
		return inventory.ConsumeResult{}, ErrItemNotFound
	}
	if !it.Consumable() {
		g.sink.Emit(message.ItemUnavailable, message.Params{"id": id, "item": it.Name, "action": "use"})
		return inventory.ConsumeResult{}, ErrNotConsumable
	}
	res := inventory.Consume(&g.progression.Character, it)
	g.backpack.RemoveItem(id, 1)
	g.sink.Emit(message.ItemConsumed, message.Params{
		"item":    it.Name,
		"quality": it.Quality.String(),
		"qi":      res.QiRestored,
		"healed":  res.Healed,
	})
	return res, nil
}

// Equip equips the item identified by id.
func (g *Game) Equip(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.backpack.Equip(id); err != nil {
		g.sink.Emit(message.ItemUnavailable, message.Params{"id": id, "action": "equip"})
		return err
	}
	it, _ := g.backpack.Get(id)
	g.sink.Emit(message.ItemEquipped, message.Params{"item": it.Name, "slot": string(it.Slot)})
	return nil
}

// Unequip clears slot and reports whether anything was equipped there.
func (g *Game) Unequip(slot inventory.Slot) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	ok := g.backpack.Unequip(slot)
	g.sink.Emit(message.ItemUnequipped, message.Params{"slot": string(slot), "removed": ok})
	return ok
}

// Items lists backpack contents.
func (g *Game) Items(filter inventory.Filter, key inventory.SortKey) []inventory.Item {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.backpack.Items(filter, key)
}

// Reincarnate ends the current life and starts a new one with the same soul.
func (g *Game) Reincarnate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.progression
	from := p.Character.Realm
	character.Reincarnate(p, g.rng)
	g.enemy = nil
	g.sink.Emit(message.LifeReincarnate, message.Params{
		"lifetimes":       p.Soul.Lifetimes,
		"previous_realm":  from.String(),
		"talent":          p.Character.Talent,
		"primary_element": p.Character.PrimaryElement().String(),
	})
}

// State returns a deep copy of the progression.
func (g *Game) State() character.Progression {
	g.mu.Lock()
	defer g.mu.Unlock()
	return cloneProgression(g.progression)
}

// Snapshot captures the resumable state of the game.
func (g *Game) Snapshot() storage.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// Save writes a snapshot to the configured slot. It is a no-op without a store.
func (g *Game) Save(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.store == nil {
		return nil
	}
	return g.saveLocked(ctx)
}

func (g *Game) snapshotLocked() storage.Snapshot {
	return storage.Snapshot{
		Version:     storage.SnapshotVersion,
		Progression: cloneProgression(g.progression),
		RNGState:    g.src.State(),
		Backpack:    g.backpack.State(),
		SavedAt:     time.Now().UTC(),
	}
}

func (g *Game) saveLocked(ctx context.Context) error {
	snap := g.snapshotLocked()
	if err := g.store.Save(ctx, g.slot, snap); err != nil {
		return fmt.Errorf("saving slot %q: %w", g.slot, err)
	}
	g.sink.Emit(message.GameSaved, message.Params{"slot": g.slot, "day": snap.Progression.Day})
	return nil
}

func cloneProgression(p *character.Progression) character.Progression {
	out := *p
	if p.Character.Vitals != nil {
		v := *p.Character.Vitals
		out.Character.Vitals = &v
	}
	if p.Soul.RealmBreakthroughs != nil {
		out.Soul.RealmBreakthroughs = append([]character.BreakthroughRecord(nil), p.Soul.RealmBreakthroughs...)
	}
	return out
}
