package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/testutil"
)

func TestParkMiller_KnownSequence(t *testing.T) {
	pm := dice.NewParkMiller(1)
	pm.Float64()
	assert.Equal(t, int64(16807), pm.State())
	pm.Float64()
	assert.Equal(t, int64(282475249), pm.State())
	pm.Float64()
	assert.Equal(t, int64(1622650073), pm.State())
}

func TestParkMiller_SeedNormalisation(t *testing.T) {
	assert.Equal(t, int64(2147483645), dice.NewParkMiller(-1).State())
	assert.Equal(t, int64(1), dice.NewParkMiller(2147483647).State())
	assert.Equal(t, int64(2147483646), dice.NewParkMiller(2147483646).State())
	assert.Equal(t, int64(5), dice.NewParkMiller(5).State())
	assert.Equal(t, int64(2147483646), dice.NewParkMiller(-2147483646).State())
	assert.Equal(t, int64(2), dice.NewParkMiller(2147483647*2).State())
}

func TestParkMiller_NegativeBoundarySeedStaysInUnitInterval(t *testing.T) {
	p := dice.NewParkMiller(-2147483646)
	for i := 0; i < 3; i++ {
		f := p.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
	p.Restore(-2147483646)
	assert.NotZero(t, p.State())
}

func TestParkMiller_StateNeverZero_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		p := dice.NewParkMiller(1)
		p.Restore(seed)
		if p.State() < 1 || p.State() > 2147483646 {
			rt.Fatalf("state %d out of range for seed %d", p.State(), seed)
		}
	})
}

func TestParkMiller_ZeroSeedUsesEntropy(t *testing.T) {
	s := dice.NewParkMiller(0).State()
	assert.GreaterOrEqual(t, s, int64(1))
	assert.LessOrEqual(t, s, int64(2147483646))
}

func TestParkMiller_RestoreReplays(t *testing.T) {
	a := dice.NewParkMiller(42)
	a.Float64()
	a.Float64()
	state := a.State()
	want := []float64{a.Float64(), a.Float64(), a.Float64()}

	b := dice.NewParkMiller(7)
	b.Restore(state)
	got := []float64{b.Float64(), b.Float64(), b.Float64()}
	assert.Equal(t, want, got)
}

func TestParkMiller_Float64InUnitInterval_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		if seed == 0 {
			seed = 1
		}
		pm := dice.NewParkMiller(seed)
		for i := 0; i < 50; i++ {
			f := pm.Float64()
			if f < 0 || f >= 1 {
				rt.Fatalf("draw %d out of range: %v", i, f)
			}
		}
	})
}

func TestRand_SameSeedSameSequence_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64Range(1, 1<<40).Draw(rt, "seed")
		a, b := dice.NewSeeded(seed), dice.NewSeeded(seed)
		for i := 0; i < 20; i++ {
			if a.IntRange(-5, 50) != b.IntRange(-5, 50) {
				rt.Fatalf("sequences diverged at %d", i)
			}
		}
	})
}

func TestRand_IntRange_Inclusive(t *testing.T) {
	assert.Equal(t, 1, testutil.Constant(0).IntRange(1, 3))
	assert.Equal(t, 3, testutil.Constant(0.9999).IntRange(1, 3))
	assert.Equal(t, 2, testutil.Constant(0.5).IntRange(1, 3))
	assert.Equal(t, 7, testutil.Constant(0.3).IntRange(7, 7))
}

func TestRand_IntRange_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-100, 100).Draw(rt, "lo")
		hi := lo + rapid.IntRange(0, 100).Draw(rt, "span")
		f := rapid.Float64Range(0, 0.999999).Draw(rt, "f")
		v := testutil.Constant(f).IntRange(lo, hi)
		if v < lo || v > hi {
			rt.Fatalf("IntRange(%d,%d) with %v = %d", lo, hi, f, v)
		}
	})
}

func TestRand_IntRange_PanicsWhenInverted(t *testing.T) {
	assert.Panics(t, func() { testutil.Constant(0).IntRange(3, 1) })
}

func TestRand_Intn_PanicsOnZero(t *testing.T) {
	assert.PanicsWithValue(t, "dice: Intn called with n <= 0", func() { testutil.Constant(0).Intn(0) })
}

func TestRand_Chance(t *testing.T) {
	rng, src := testutil.Scripted(0.29, 0.3, 0.0, 0.99)
	assert.True(t, rng.Chance(0.3))
	assert.False(t, rng.Chance(0.3))
	assert.False(t, rng.Chance(0), "p <= 0 never succeeds")
	assert.True(t, rng.Chance(1), "p >= 1 always succeeds")
	assert.Equal(t, 4, src.Consumed())
}

func TestRand_FloatRange(t *testing.T) {
	assert.InDelta(t, 0.8, testutil.Constant(0).FloatRange(0.8, 1.2), 1e-12)
	assert.InDelta(t, 1.0, testutil.Constant(0.5).FloatRange(0.8, 1.2), 1e-12)
}

func TestPickWeighted(t *testing.T) {
	list := []string{"a", "b", "c"}
	weights := []float64{0.5, 0.3, 0.2}
	assert.Equal(t, "a", dice.PickWeighted(testutil.Constant(0.0), list, weights))
	assert.Equal(t, "a", dice.PickWeighted(testutil.Constant(0.5), list, weights))
	assert.Equal(t, "b", dice.PickWeighted(testutil.Constant(0.6), list, weights))
	assert.Equal(t, "c", dice.PickWeighted(testutil.Constant(0.95), list, weights))
}

func TestPickWeighted_NonPositiveTotalPicksLastAndConsumesOneDraw(t *testing.T) {
	rng, src := testutil.Scripted(0.1)
	got := dice.PickWeighted(rng, []int{1, 2, 3}, []float64{0, 0, 0})
	assert.Equal(t, 3, got)
	assert.Equal(t, 1, src.Consumed())
}

func TestPickWeighted_ConsumesExactlyOneDraw_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		weights := rapid.SliceOfN(rapid.Float64Range(0, 10), n, n).Draw(rt, "weights")
		f := rapid.Float64Range(0, 0.999999).Draw(rt, "f")
		rng, src := testutil.Scripted(f)
		idx := dice.WeightedIndex(rng, weights)
		if idx < 0 || idx >= n {
			rt.Fatalf("index %d out of range", idx)
		}
		if src.Consumed() != 1 {
			rt.Fatalf("consumed %d draws", src.Consumed())
		}
	})
}

func TestPick_PanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { dice.Pick(testutil.Constant(0), []int{}) })
}

func TestShuffle_IsPermutation_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		list := rapid.SliceOfDistinct(rapid.IntRange(0, 1000), rapid.ID[int]).Draw(rt, "list")
		seed := rapid.Int64Range(1, 1<<30).Draw(rt, "seed")
		shuffled := append([]int(nil), list...)
		dice.Shuffle(dice.NewSeeded(seed), shuffled)
		assert.ElementsMatch(rt, list, shuffled)
	})
}

func TestParse(t *testing.T) {
	e, err := dice.Parse("2d4+1")
	require.NoError(t, err)
	assert.Equal(t, 2, e.Count)
	assert.Equal(t, 4, e.Sides)
	assert.Equal(t, 1, e.Modifier)
	assert.Equal(t, 3, e.Min())
	assert.Equal(t, 9, e.Max())

	e, err = dice.Parse("d6")
	require.NoError(t, err)
	assert.Equal(t, 1, e.Count)

	e, err = dice.Parse("5")
	require.NoError(t, err)
	assert.Equal(t, 5, e.Min())
	assert.Equal(t, 5, e.Max())

	for _, bad := range []string{"", "2x6", "0d6", "d0", "2d6+"} {
		_, err := dice.Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestMustParse_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("bogus") })
}

func TestRoll_TotalWithinBounds_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 6).Draw(rt, "count")
		sides := rapid.IntRange(1, 20).Draw(rt, "sides")
		mod := rapid.IntRange(-5, 5).Draw(rt, "mod")
		e := dice.Expression{Raw: "x", Count: count, Sides: sides, Modifier: mod}
		res := dice.NewSeeded(rapid.Int64Range(1, 1<<30).Draw(rt, "seed")).Roll(e)
		if len(res.Dice) != count || res.Total() < e.Min() || res.Total() > e.Max() {
			rt.Fatalf("roll %v outside [%d,%d]", res, e.Min(), e.Max())
		}
	})
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestLoggedRoller_LogsAtDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	roller := dice.NewLoggedRoller(testutil.Constant(0), zap.New(core))
	res := roller.Roll(dice.MustParse("2d4+1"))
	assert.Equal(t, 3, res.Total())
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "dice roll", entry.Message)
	assert.Equal(t, int64(3), entry.ContextMap()["total"])
}

func TestEntropySeed_NonZero(t *testing.T) {
	assert.NotZero(t, dice.EntropySeed())
}
