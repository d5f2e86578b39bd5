// Package message defines the semantic event channel the engines report
// through. Engines emit keys and parameters; rendering is left to adapters.
package message

import "sync"

// Key names one kind of emitted event. The vocabulary is closed: engines only
// emit the constants declared here.
type Key string

const (
	CultivationDaily  Key = "cultivation.daily"
	CultivationManual Key = "cultivation.manual"
	ElementUnlocked   Key = "element.unlocked"

	MeridianOpenAttempt   Key = "meridian.open.attempt"
	MeridianOpened        Key = "meridian.opened"
	MeridianOpenFailed    Key = "meridian.open.failed"
	MeridianAllOpen       Key = "meridian.all_open"
	MeridianInvalid       Key = "meridian.invalid"
	MeridianNotOpen       Key = "meridian.not_open"
	MeridianPurityLow     Key = "meridian.purity_low"
	MeridianAlreadyMax    Key = "meridian.already_max"
	MeridianBreakthrough  Key = "meridian.breakthrough"
	MeridianBreakFailed   Key = "meridian.breakthrough.failed"
	MeridianHeartDemon    Key = "meridian.heart_demon"
	MeridianPurityDamaged Key = "meridian.purity_damaged"

	BreakthroughAttempt     Key = "breakthrough.attempt"
	BreakthroughUnmet       Key = "breakthrough.requirements_unmet"
	BreakthroughTerminal    Key = "breakthrough.terminal"
	BreakthroughSuccess     Key = "breakthrough.success"
	TribulationBegin        Key = "tribulation.begin"
	TribulationSurvived     Key = "tribulation.survived"
	TribulationFailed       Key = "tribulation.failed"
	TribulationRealmRegress Key = "tribulation.realm_regressed"

	CombatEncounter Key = "combat.encounter"
	CombatExchange  Key = "combat.exchange"
	CombatCritical  Key = "combat.critical"
	CombatVictory   Key = "combat.victory"
	CombatDefeat    Key = "combat.defeat"
	CombatStalemate Key = "combat.stalemate"
	CombatFled      Key = "combat.fled"
	CombatFleeFail  Key = "combat.flee_failed"
	LootDropped     Key = "combat.loot"
	LootLost        Key = "combat.loot_lost"

	EventEpiphany   Key = "event.epiphany"
	EventKarma      Key = "event.karma"
	EventWindfall   Key = "event.windfall"
	EventTreasure   Key = "event.treasure"
	EventScripted   Key = "event.scripted"
	LifeReincarnate Key = "life.reincarnated"

	ItemConsumed    Key = "item.consumed"
	ItemEquipped    Key = "item.equipped"
	ItemUnequipped  Key = "item.unequipped"
	ItemUnavailable Key = "item.unavailable"
	CombatNoEnemy   Key = "combat.no_enemy"
	GameSaved       Key = "game.saved"
)

// Params carries the numeric and string arguments of an event.
type Params map[string]any

// Event is one emitted key with its parameters.
type Event struct {
	Key    Key
	Params Params
}

// Sink receives emitted events.
type Sink interface {
	// Emit reports key with params. Implementations must not retain params
	// after returning unless they copy it.
	Emit(key Key, params Params)
}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Key, Params) {}

// Recorder is a Sink that keeps every event in emission order.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Emit appends a copy of the event.
func (r *Recorder) Emit(key Key, params Params) {
	cp := make(Params, len(params))
	for k, v := range params {
		cp[k] = v
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Key: key, Params: cp})
}

// Events returns a snapshot of recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Keys returns the recorded keys in order.
func (r *Recorder) Keys() []Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Key, len(r.events))
	for i, e := range r.events {
		out[i] = e.Key
	}
	return out
}

// Last returns the most recent event with key, if any.
func (r *Recorder) Last(key Key) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Key == key {
			return r.events[i], true
		}
	}
	return Event{}, false
}

// Reset drops every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Fanout forwards each event to every sink in order.
type Fanout []Sink

// Emit forwards to each sink.
func (f Fanout) Emit(key Key, params Params) {
	for _, s := range f {
		s.Emit(key, params)
	}
}

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}
