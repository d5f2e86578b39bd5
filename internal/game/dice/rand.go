package dice

import "math"

// Rand layers the integer, range, choice and probability helpers over a Source.
// Every helper consumes exactly one Float64 draw unless documented otherwise.
type Rand struct {
	src Source
}

// New wraps src.
//
// Precondition: src must be non-nil.
func New(src Source) *Rand {
	if src == nil {
		panic("dice: New called with nil source")
	}
	return &Rand{src: src}
}

// NewSeeded returns a Rand backed by a ParkMiller generator seeded with seed.
func NewSeeded(seed int64) *Rand {
	return New(NewParkMiller(seed))
}

// Source returns the underlying source.
func (r *Rand) Source() Source { return r.src }

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 { return r.src.Float64() }

// IntRange returns an integer in [min, max] inclusive.
//
// Precondition: min <= max.
func (r *Rand) IntRange(min, max int) int {
	if max < min {
		panic("dice: IntRange called with max < min")
	}
	return int(math.Floor(r.src.Float64()*float64(max-min+1))) + min
}

// Intn returns an integer in [0, n).
//
// Precondition: n > 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return r.IntRange(0, n-1)
}

// FloatRange returns a value in [min, max).
func (r *Rand) FloatRange(min, max float64) float64 {
	return r.src.Float64()*(max-min) + min
}

// Chance reports whether a single draw falls below p.
// p <= 0 never succeeds and p >= 1 always succeeds; a draw is consumed either way.
func (r *Rand) Chance(p float64) bool {
	return r.src.Float64() < p
}

// Pick returns a uniformly chosen element of list.
//
// Precondition: len(list) > 0.
func Pick[T any](r *Rand, list []T) T {
	if len(list) == 0 {
		panic("dice: Pick called with empty list")
	}
	return list[r.IntRange(0, len(list)-1)]
}

// PickWeighted returns an element of list chosen proportionally to weights.
// Weights need not be normalised. The first index whose running remainder
// reaches zero wins; a non-positive total or floating-point drift falls back
// to the last element.
//
// Precondition: len(list) > 0 and len(weights) == len(list).
// Postcondition: exactly one draw is consumed.
func PickWeighted[T any](r *Rand, list []T, weights []float64) T {
	return list[WeightedIndex(r, weights)]
}

// WeightedIndex is PickWeighted returning the chosen index.
//
// Precondition: len(weights) > 0.
func WeightedIndex(r *Rand, weights []float64) int {
	if len(weights) == 0 {
		panic("dice: WeightedIndex called with no weights")
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	roll := r.src.Float64() * total
	if total <= 0 {
		return len(weights) - 1
	}
	for i, w := range weights {
		roll -= w
		if roll <= 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Shuffle permutes list in place with Fisher-Yates.
//
// Postcondition: len(list)-1 draws are consumed for a non-empty list.
func Shuffle[T any](r *Rand, list []T) {
	for i := len(list) - 1; i > 0; i-- {
		j := r.IntRange(0, i)
		list[i], list[j] = list[j], list[i]
	}
}
