package dice

const (
	// parkMillerModulus is the Mersenne prime 2^31 - 1.
	parkMillerModulus = 2147483647
	// parkMillerMultiplier is the minimal standard multiplier 7^5.
	parkMillerMultiplier = 16807
)

// ParkMiller is the Lehmer "minimal standard" linear congruential generator.
//
// Invariant: state is always in [1, 2^31-2].
type ParkMiller struct {
	state int64
}

// NewParkMiller returns a ParkMiller seeded with seed.
// A zero seed derives one from EntropySeed.
//
// Postcondition: State() is in [1, 2^31-2].
func NewParkMiller(seed int64) *ParkMiller {
	if seed == 0 {
		seed = EntropySeed()
	}
	return &ParkMiller{state: normalizeSeed(seed)}
}

// normalizeSeed maps any int64 into [1, 2^31-2]. State 0 is a fixed point
// of the generator and must never be produced.
func normalizeSeed(seed int64) int64 {
	s := seed % (parkMillerModulus - 1)
	if s <= 0 {
		s += parkMillerModulus - 1
	}
	return s
}

// Float64 advances the generator and returns a value in [0, 1).
//
// Postcondition: 0 <= result < 1.
func (p *ParkMiller) Float64() float64 {
	p.state = (p.state * parkMillerMultiplier) % parkMillerModulus
	return float64(p.state-1) / float64(parkMillerModulus-1)
}

// State returns the current generator state.
func (p *ParkMiller) State() int64 { return p.state }

// Restore sets the generator state, normalising out-of-range values.
func (p *ParkMiller) Restore(state int64) {
	p.state = normalizeSeed(state)
}
