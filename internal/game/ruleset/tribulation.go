package ruleset

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tribulation is the closed set of realm-advancement trials.
type Tribulation int

const (
	Lightning Tribulation = iota
	HeartDemon
	Elemental
	Karmic
)

var tribulationNames = map[Tribulation]string{
	Lightning:  "lightning",
	HeartDemon: "heart_demon",
	Elemental:  "elemental",
	Karmic:     "karmic",
}

// String returns the snake_case tribulation key.
func (t Tribulation) String() string {
	if name, ok := tribulationNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tribulation(%d)", int(t))
}

// Valid reports whether t is a defined tribulation.
func (t Tribulation) Valid() bool {
	_, ok := tribulationNames[t]
	return ok
}

// ParseTribulation resolves a snake_case key.
func ParseTribulation(s string) (Tribulation, error) {
	for t, name := range tribulationNames {
		if name == s {
			return t, nil
		}
	}
	return Lightning, fmt.Errorf("ruleset: unknown tribulation %q", s)
}

// UnmarshalYAML decodes a tribulation key.
func (t *Tribulation) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := ParseTribulation(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalYAML encodes the tribulation key.
func (t Tribulation) MarshalYAML() (any, error) {
	return t.String(), nil
}
