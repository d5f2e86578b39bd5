// Package ruleset holds the tunable tables behind the cultivation formulas:
// per-realm absorption curves, breakthrough requirements and tribulations,
// and the random-event weights. Tables load from YAML over built-in defaults.
package ruleset

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cultivation/internal/game/character"
)

// ElementMode selects how a breakthrough counts perfected elements.
type ElementMode string

const (
	// ElementsAny counts any elements at full affinity.
	ElementsAny ElementMode = "any"
	// ElementsPrimaryComplementary requires the primary element and every
	// complementary element of the current realm at full affinity.
	ElementsPrimaryComplementary ElementMode = "primary_complementary"
)

// MeridianRequirement counts open meridians with at least MinPurity.
type MeridianRequirement struct {
	Count     int     `yaml:"count"`
	MinPurity float64 `yaml:"min_purity"`
}

// ElementRequirement describes the perfected-element gate.
// Count is only used by ElementsAny.
type ElementRequirement struct {
	Mode  ElementMode `yaml:"mode"`
	Count int         `yaml:"count"`
}

// BreakthroughRule gates the transition out of a realm.
type BreakthroughRule struct {
	QiRequirement   float64             `yaml:"qi_requirement"`
	Meridians       MeridianRequirement `yaml:"meridians"`
	Elements        ElementRequirement  `yaml:"elements"`
	Tribulation     Tribulation         `yaml:"tribulation"`
	BaseSuccessRate float64             `yaml:"base_success_rate"`
}

// RealmRule holds the absorption curve and breakthrough gate of one realm.
// Breakthrough is nil for the terminal realm.
type RealmRule struct {
	Name           string            `yaml:"name"`
	BaseAbsorption float64           `yaml:"base_absorption"`
	TalentDivisor  float64           `yaml:"talent_divisor"`
	QiMultiplier   float64           `yaml:"qi_multiplier"`
	KarmicScaling  bool              `yaml:"karmic_scaling"`
	Breakthrough   *BreakthroughRule `yaml:"breakthrough"`
}

// EventRules configures the daily random-event dispatcher.
type EventRules struct {
	// DailyChance is the probability that any event fires on a given day.
	DailyChance float64 `yaml:"daily_chance"`
	Encounter   float64 `yaml:"encounter"`
	Epiphany    float64 `yaml:"epiphany"`
	Karma       float64 `yaml:"karma"`
	Windfall    float64 `yaml:"windfall"`
	Treasure    float64 `yaml:"treasure"`
}

// Weights returns the event weights in dispatch order:
// encounter, epiphany, karma, windfall, treasure.
func (e EventRules) Weights() []float64 {
	return []float64{e.Encounter, e.Epiphany, e.Karma, e.Windfall, e.Treasure}
}

// Ruleset is the full set of tuning tables.
type Ruleset struct {
	Realms []RealmRule `yaml:"realms"`
	Events EventRules  `yaml:"events"`
}

// Realm returns the rule for realm.
//
// Precondition: r has passed Validate; realm.Valid().
func (r *Ruleset) Realm(realm character.Realm) RealmRule {
	return r.Realms[realm]
}

// Validate checks every table invariant.
//
// Postcondition: Returns nil iff the ruleset is usable, or an error listing all violations.
func (r *Ruleset) Validate() error {
	var errs []string
	if len(r.Realms) != character.RealmCount {
		errs = append(errs, fmt.Sprintf("realms must list %d entries, got %d", character.RealmCount, len(r.Realms)))
	}
	for i, rule := range r.Realms {
		if i >= character.RealmCount {
			break
		}
		realm := character.Realm(i)
		if rule.Name != realm.String() {
			errs = append(errs, fmt.Sprintf("realms[%d].name must be %q, got %q", i, realm.String(), rule.Name))
		}
		if rule.BaseAbsorption <= 0 {
			errs = append(errs, fmt.Sprintf("realms[%d].base_absorption must be > 0", i))
		}
		if rule.TalentDivisor <= 0 {
			errs = append(errs, fmt.Sprintf("realms[%d].talent_divisor must be > 0", i))
		}
		if rule.QiMultiplier <= 0 {
			errs = append(errs, fmt.Sprintf("realms[%d].qi_multiplier must be > 0", i))
		}
		if realm.Terminal() {
			if rule.Breakthrough != nil {
				errs = append(errs, fmt.Sprintf("realms[%d] is terminal and must not define a breakthrough", i))
			}
			continue
		}
		if rule.Breakthrough == nil {
			errs = append(errs, fmt.Sprintf("realms[%d].breakthrough is required", i))
			continue
		}
		errs = append(errs, validateBreakthrough(i, *rule.Breakthrough)...)
	}
	errs = append(errs, validateEvents(r.Events)...)
	if len(errs) > 0 {
		return fmt.Errorf("ruleset validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBreakthrough(i int, b BreakthroughRule) []string {
	var errs []string
	if b.QiRequirement < 0 {
		errs = append(errs, fmt.Sprintf("realms[%d].breakthrough.qi_requirement must be >= 0", i))
	}
	if b.Meridians.Count < 0 || b.Meridians.Count > character.MeridianCount {
		errs = append(errs, fmt.Sprintf("realms[%d].breakthrough.meridians.count must be 0-%d", i, character.MeridianCount))
	}
	if b.Meridians.MinPurity < 0 || b.Meridians.MinPurity > character.MaxPurity {
		errs = append(errs, fmt.Sprintf("realms[%d].breakthrough.meridians.min_purity must be 0-100", i))
	}
	switch b.Elements.Mode {
	case ElementsAny:
		if b.Elements.Count < 0 || b.Elements.Count > character.ElementCount {
			errs = append(errs, fmt.Sprintf("realms[%d].breakthrough.elements.count must be 0-%d", i, character.ElementCount))
		}
	case ElementsPrimaryComplementary:
	default:
		errs = append(errs, fmt.Sprintf("realms[%d].breakthrough.elements.mode must be one of [any, primary_complementary], got %q", i, b.Elements.Mode))
	}
	if !b.Tribulation.Valid() {
		errs = append(errs, fmt.Sprintf("realms[%d].breakthrough.tribulation is invalid", i))
	}
	if b.BaseSuccessRate <= 0 || b.BaseSuccessRate > 1 {
		errs = append(errs, fmt.Sprintf("realms[%d].breakthrough.base_success_rate must be in (0, 1]", i))
	}
	return errs
}

func validateEvents(e EventRules) []string {
	var errs []string
	if e.DailyChance < 0 || e.DailyChance > 1 {
		errs = append(errs, fmt.Sprintf("events.daily_chance must be in [0, 1], got %v", e.DailyChance))
	}
	total := 0.0
	for _, w := range e.Weights() {
		if w < 0 {
			errs = append(errs, "events weights must be >= 0")
			break
		}
		total += w
	}
	if total <= 0 {
		errs = append(errs, "events weights must sum to > 0")
	}
	return errs
}

// LoadFromBytes decodes YAML over a copy of Default and validates the result.
// Lists in the document replace the default lists wholesale.
//
// Postcondition: Returns a validated *Ruleset or a non-nil error.
func LoadFromBytes(data []byte) (*Ruleset, error) {
	rs := Default()
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("parsing ruleset YAML: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Load reads a ruleset file. An empty path returns Default.
//
// Postcondition: Returns a validated *Ruleset or a non-nil error.
func Load(path string) (*Ruleset, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ruleset %q: %w", path, err)
	}
	rs, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading ruleset %q: %w", path, err)
	}
	return rs, nil
}
