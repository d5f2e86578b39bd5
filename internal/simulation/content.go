package simulation

import (
	"fmt"

	"github.com/cory-johannsen/cultivation/internal/config"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
	"github.com/cory-johannsen/cultivation/internal/game/ruleset"
)

// Content is the static data a Game runs against.
type Content struct {
	Rules    *ruleset.Ruleset
	Registry *inventory.Registry
}

// LoadContent reads the ruleset and item templates named by cfg and applies
// the simulation's daily event chance to the ruleset.
//
// Postcondition: returns a wrapped error if any file fails to load or the
// resulting ruleset is invalid.
func LoadContent(content config.ContentConfig, sim config.SimulationConfig) (Content, error) {
	rules, err := ruleset.Load(content.RulesetFile)
	if err != nil {
		return Content{}, fmt.Errorf("loading ruleset: %w", err)
	}
	rules.Events.DailyChance = sim.EventChance
	if err := rules.Validate(); err != nil {
		return Content{}, fmt.Errorf("validating ruleset: %w", err)
	}
	reg, err := inventory.LoadRegistry(content.ItemDir)
	if err != nil {
		return Content{}, fmt.Errorf("loading items: %w", err)
	}
	return Content{Rules: rules, Registry: reg}, nil
}
