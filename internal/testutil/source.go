package testutil

import (
	"fmt"

	"github.com/cory-johannsen/cultivation/internal/game/dice"
)

// ScriptedSource replays a fixed list of draws. It panics when exhausted so
// tests notice unexpected extra draws.
type ScriptedSource struct {
	values []float64
	pos    int
}

// NewScriptedSource returns a ScriptedSource replaying values in order.
//
// Precondition: every value is in [0, 1).
func NewScriptedSource(values ...float64) *ScriptedSource {
	return &ScriptedSource{values: append([]float64(nil), values...)}
}

// Float64 returns the next scripted value.
func (s *ScriptedSource) Float64() float64 {
	if s.pos >= len(s.values) {
		panic(fmt.Sprintf("testutil: scripted source exhausted after %d draws", s.pos))
	}
	v := s.values[s.pos]
	s.pos++
	return v
}

// Consumed returns the number of draws taken so far.
func (s *ScriptedSource) Consumed() int { return s.pos }

// Remaining returns the number of unconsumed draws.
func (s *ScriptedSource) Remaining() int { return len(s.values) - s.pos }

// Scripted returns a Rand over a ScriptedSource and the source itself.
func Scripted(values ...float64) (*dice.Rand, *ScriptedSource) {
	src := NewScriptedSource(values...)
	return dice.New(src), src
}

// ConstantSource returns the same value forever.
type ConstantSource float64

// Float64 returns the constant.
func (c ConstantSource) Float64() float64 { return float64(c) }

// Constant returns a Rand whose every draw is v.
func Constant(v float64) *dice.Rand {
	return dice.New(ConstantSource(v))
}
