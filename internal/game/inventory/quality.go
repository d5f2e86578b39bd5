package inventory

import (
	"fmt"

	"github.com/cory-johannsen/cultivation/internal/game/dice"
)

// Quality grades an item instance.
type Quality int

const (
	Common Quality = iota
	Uncommon
	Rare
	Epic
	Legendary
)

var qualityNames = [...]string{"common", "uncommon", "rare", "epic", "legendary"}

var qualityMultipliers = [...]float64{1.0, 1.5, 2.25, 3.5, 5.0}

// baseQualityWeights is the quality distribution for a mortal-realm roll.
var baseQualityWeights = [...]float64{60, 25, 10, 4, 1}

var allQualities = []Quality{Common, Uncommon, Rare, Epic, Legendary}

// String returns the lowercase quality key.
func (q Quality) String() string {
	if q < Common || q > Legendary {
		return fmt.Sprintf("quality(%d)", int(q))
	}
	return qualityNames[q]
}

// Multiplier scales effect values for q.
func (q Quality) Multiplier() float64 {
	if q < Common || q > Legendary {
		return 1
	}
	return qualityMultipliers[q]
}

// RollQuality draws a quality biased upward by realm: each tier's weight is
// scaled by 1 + realm*tier*0.5.
//
// Postcondition: exactly one draw is consumed.
func RollQuality(rng *dice.Rand, realm int) Quality {
	weights := make([]float64, len(baseQualityWeights))
	for i, w := range baseQualityWeights {
		weights[i] = w * (1 + float64(realm)*float64(i)*0.5)
	}
	return dice.PickWeighted(rng, allQualities, weights)
}
