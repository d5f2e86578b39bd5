// Package dice provides the deterministic randomness used by every
// stochastic decision in the cultivation engines.
//
// A single seeded Source feeds a Rand; identical seeds and identical call
// sequences produce identical outcomes, which makes full playthroughs
// replayable.
package dice

// Source is the uniform float provider behind a Rand.
//
// Implementations are not required to be safe for concurrent use; the
// simulation serialises all access through its owner.
type Source interface {
	// Float64 returns a value in [0, 1) and advances the source state.
	Float64() float64
}

// StatefulSource is a Source whose position can be captured and restored.
type StatefulSource interface {
	Source
	// State returns the current internal state.
	State() int64
	// Restore replaces the internal state.
	//
	// Precondition: state was produced by State on the same implementation.
	Restore(state int64)
}
