package character

import (
	"errors"

	"github.com/cory-johannsen/cultivation/internal/game/dice"
)

// Starting primary affinity bounds.
const (
	minStartingAffinity = 10
	maxStartingAffinity = 20
)

// reincarnationTalentFloor is the lowest talent a reincarnated soul keeps.
const reincarnationTalentFloor = 10

// newCharacter builds a mortal with closed meridians and one seeded element.
// Draw order: primary element, then its starting affinity.
func newCharacter(name string, talent int, rng *dice.Rand) Character {
	c := Character{
		Name:   name,
		Realm:  Mortal,
		MaxQi:  InitialMaxQi,
		Talent: talent,
	}
	for i := range c.Meridians {
		c.Meridians[i] = Meridian{Name: MeridianNames[i]}
	}
	primary := dice.Pick(rng, AllElements[:])
	c.Elements[primary] = float64(rng.IntRange(minStartingAffinity, maxStartingAffinity))
	c.RecomputeHealth()
	return c
}

// New creates a fresh Progression on day zero with an empty soul.
// A talent of zero is rolled uniformly in [MinTalent, MaxTalent] before any
// other draw.
//
// Precondition: name must be non-empty; talent must be 0 or within bounds.
// Postcondition: Returns a Progression whose Character passes Validate, or an error.
func New(name string, talent int, rng *dice.Rand) (*Progression, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if rng == nil {
		return nil, errors.New("random source must not be nil")
	}
	if talent == 0 {
		talent = rng.IntRange(MinTalent, MaxTalent)
	}
	if talent < MinTalent || talent > MaxTalent {
		return nil, errors.New("talent must be within [1, 100]")
	}
	return &Progression{
		Character: newCharacter(name, talent, rng),
		Soul:      Soul{MaxRealmAchieved: Mortal},
	}, nil
}

// Reincarnate starts a new life for p. The soul is kept, the lifetime counter
// increments, talent halves with a floor of 10, and every other character
// attribute resets to a fresh mortal. The day counter keeps running.
//
// Precondition: p and rng must be non-nil.
// Postcondition: p.Character.Realm == Mortal; p.Soul.Lifetimes incremented.
func Reincarnate(p *Progression, rng *dice.Rand) {
	talent := p.Character.Talent / 2
	if talent < reincarnationTalentFloor {
		talent = reincarnationTalentFloor
	}
	p.Soul.Lifetimes++
	p.Character = newCharacter(p.Character.Name, talent, rng)
}
