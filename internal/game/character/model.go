// Package character defines the mutable progression state shared by the
// cultivation, meridian, breakthrough and combat engines.
package character

import (
	"errors"
	"fmt"
	"math"
)

// InitialMaxQi is the qi capacity of a newly created mortal.
const InitialMaxQi = 100.0

// Talent bounds.
const (
	MinTalent = 1
	MaxTalent = 100
)

// Vitals holds derived health. It is nil until RecomputeHealth runs.
type Vitals struct {
	Health    int `json:"health"`
	MaxHealth int `json:"max_health"`
}

// Character is the player-controlled cultivator.
//
// Invariant: 0 <= Qi <= MaxQi; MinTalent <= Talent <= MaxTalent.
type Character struct {
	Name      string                  `json:"name"`
	Realm     Realm                   `json:"realm"`
	Qi        float64                 `json:"qi"`
	MaxQi     float64                 `json:"max_qi"`
	Talent    int                     `json:"talent"`
	Meridians [MeridianCount]Meridian `json:"meridians"`
	Elements  Affinities              `json:"elements"`
	Vitals    *Vitals                 `json:"vitals,omitempty"`
}

// BreakthroughRecord is one completed realm transition.
type BreakthroughRecord struct {
	From     Realm `json:"from"`
	To       Realm `json:"to"`
	Day      int   `json:"day"`
	Lifetime int   `json:"lifetime"`
}

// Soul is the record that persists across reincarnation.
type Soul struct {
	KarmicBalance        int                  `json:"karmic_balance"`
	MaxRealmAchieved     Realm                `json:"max_realm_achieved"`
	RealmBreakthroughs   []BreakthroughRecord `json:"realm_breakthroughs"`
	TribulationSurvivals int                  `json:"tribulation_survivals"`
	Lifetimes            int                  `json:"lifetimes"`
}

// Progression bundles the character, its soul and the simulated day.
// Engines receive a *Progression for the duration of a single call.
type Progression struct {
	Character Character `json:"character"`
	Soul      Soul      `json:"soul"`
	Day       int       `json:"day"`
}

// AddQi adds delta to Qi, clamped to [0, MaxQi], and returns the change applied.
//
// Postcondition: 0 <= Qi <= MaxQi.
func (c *Character) AddQi(delta float64) float64 {
	before := c.Qi
	c.Qi = clamp(c.Qi+delta, 0, c.MaxQi)
	return c.Qi - before
}

// SpendQi removes up to amount qi and returns the amount actually removed.
//
// Precondition: amount >= 0.
// Postcondition: Qi >= 0.
func (c *Character) SpendQi(amount float64) float64 {
	if amount > c.Qi {
		amount = c.Qi
	}
	c.Qi -= amount
	return amount
}

// AddTalent adjusts Talent by delta, clamped to [MinTalent, MaxTalent].
func (c *Character) AddTalent(delta int) {
	t := c.Talent + delta
	if t < MinTalent {
		t = MinTalent
	}
	if t > MaxTalent {
		t = MaxTalent
	}
	c.Talent = t
}

// OpenMeridianIndices returns the indices of open meridians in order.
func (c *Character) OpenMeridianIndices() []int {
	var out []int
	for i, m := range c.Meridians {
		if m.Open {
			out = append(out, i)
		}
	}
	return out
}

// ClosedMeridianIndices returns the indices of closed meridians in order.
func (c *Character) ClosedMeridianIndices() []int {
	var out []int
	for i, m := range c.Meridians {
		if !m.Open {
			out = append(out, i)
		}
	}
	return out
}

// OpenMeridianCount returns the number of open meridians.
func (c *Character) OpenMeridianCount() int {
	return len(c.OpenMeridianIndices())
}

// CountMeridians returns how many open meridians have purity >= minPurity.
func (c *Character) CountMeridians(minPurity float64) int {
	n := 0
	for _, m := range c.Meridians {
		if m.Open && m.Purity >= minPurity {
			n++
		}
	}
	return n
}

// PrimaryElement returns the highest-affinity element.
func (c *Character) PrimaryElement() Element { return c.Elements.Primary() }

// ComplementaryElements returns the complementary set for the current realm.
func (c *Character) ComplementaryElements() []Element {
	return ComplementaryElements(c.PrimaryElement(), c.Realm)
}

// HealthInitialized reports whether derived health has been computed.
func (c *Character) HealthInitialized() bool { return c.Vitals != nil }

// Health returns current health.
//
// Precondition: RecomputeHealth has been called. Violations panic because
// they indicate a construction-order bug.
func (c *Character) Health() int {
	c.mustVitals()
	return c.Vitals.Health
}

// MaxHealth returns maximum health.
//
// Precondition: RecomputeHealth has been called.
func (c *Character) MaxHealth() int {
	c.mustVitals()
	return c.Vitals.MaxHealth
}

// SetHealth sets current health clamped to [0, MaxHealth].
//
// Precondition: RecomputeHealth has been called.
func (c *Character) SetHealth(h int) {
	c.mustVitals()
	if h < 0 {
		h = 0
	}
	if h > c.Vitals.MaxHealth {
		h = c.Vitals.MaxHealth
	}
	c.Vitals.Health = h
}

// Regenerate restores fraction of max health, capped at max.
//
// Precondition: RecomputeHealth has been called.
func (c *Character) Regenerate(fraction float64) {
	c.mustVitals()
	gain := int(math.Ceil(float64(c.Vitals.MaxHealth) * fraction))
	c.SetHealth(c.Vitals.Health + gain)
}

func (c *Character) mustVitals() {
	if c.Vitals == nil {
		panic("character: health accessed before initialization")
	}
}

// PlayerMaxHealth is the derived-health formula for a cultivator.
//
// Postcondition: Returns >= 1.
func PlayerMaxHealth(realm Realm, qi float64, talent int) int {
	h := int(math.Floor((100 + qi*0.5 + float64(talent)*2) * realm.HealthMultiplier()))
	if h < 1 {
		h = 1
	}
	return h
}

// RecomputeHealth derives max health from realm, qi and talent and fully
// restores current health.
//
// Postcondition: HealthInitialized() and Health() == MaxHealth().
func (c *Character) RecomputeHealth() {
	maxHealth := PlayerMaxHealth(c.Realm, c.Qi, c.Talent)
	c.Vitals = &Vitals{Health: maxHealth, MaxHealth: maxHealth}
}

// Validate checks every state invariant.
//
// Postcondition: Returns nil iff all invariants hold, otherwise an error
// joining every violation.
func (c *Character) Validate() error {
	var errs []error
	if !c.Realm.Valid() {
		errs = append(errs, fmt.Errorf("realm %d out of range", int(c.Realm)))
	}
	if !finite(c.MaxQi) || c.MaxQi <= 0 {
		errs = append(errs, fmt.Errorf("max qi must be > 0, got %v", c.MaxQi))
	}
	if !finite(c.Qi) || c.Qi < 0 || c.Qi > c.MaxQi {
		errs = append(errs, fmt.Errorf("qi %v outside [0, %v]", c.Qi, c.MaxQi))
	}
	if c.Talent < MinTalent || c.Talent > MaxTalent {
		errs = append(errs, fmt.Errorf("talent %d outside [%d, %d]", c.Talent, MinTalent, MaxTalent))
	}
	for i, m := range c.Meridians {
		if m.Stage < 0 || m.Stage > MaxStage {
			errs = append(errs, fmt.Errorf("meridian %d stage %d outside [0, %d]", i, m.Stage, MaxStage))
		}
		if !finite(m.Purity) || m.Purity < 0 || m.Purity > m.Cap() {
			errs = append(errs, fmt.Errorf("meridian %d purity %v outside [0, %v]", i, m.Purity, m.Cap()))
		}
	}
	for _, e := range AllElements {
		if v := c.Elements[e]; !finite(v) || v < 0 || v > MaxAffinity {
			errs = append(errs, fmt.Errorf("element %s affinity %v outside [0, %v]", e, v, MaxAffinity))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("character: invalid state: %w", errors.Join(errs...))
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// RecordBreakthrough appends a completed transition and raises the high-water mark.
//
// Postcondition: RealmBreakthroughs grows by exactly one entry.
func (s *Soul) RecordBreakthrough(from, to Realm, day int) {
	s.RealmBreakthroughs = append(s.RealmBreakthroughs, BreakthroughRecord{
		From:     from,
		To:       to,
		Day:      day,
		Lifetime: s.Lifetimes,
	})
	if to > s.MaxRealmAchieved {
		s.MaxRealmAchieved = to
	}
}
