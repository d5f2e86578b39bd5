package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/game/message"
	"github.com/cory-johannsen/cultivation/internal/scripting"
	"github.com/cory-johannsen/cultivation/internal/testutil"
)

func call(t *testing.T, mgr *scripting.Manager, p *character.Progression, src, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	require.NoError(t, mgr.LoadString(src, 0))
	ret, err := mgr.CallHook(p, hook, args...)
	require.NoError(t, err)
	return ret
}

func TestEngineLog_AllLevels(t *testing.T) {
	mgr, logs, _ := newTestManager(t)
	call(t, mgr, newProgression(), `
		function do_all_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`, "do_all_logs")

	levels := map[string]bool{}
	for _, e := range logs.All() {
		levels[e.Level.String()] = true
	}
	for _, l := range []string{"debug", "info", "warn", "error"} {
		assert.True(t, levels[l], "expected %s log", l)
	}
	assert.Equal(t, 1, logs.FilterMessage("lua: i").Len())
}

func TestEngineDice_Roll_ReturnsTable(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	rng, _ := testutil.Scripted(0.0, 0.99)
	mgr := scripting.NewManager(dice.NewLoggedRoller(rng, zap.New(core)), nil, zap.New(core))
	ret := call(t, mgr, newProgression(), `
		function roll()
			local r = engine.dice.roll("2d6+1")
			return r.total * 100 + r.dice[1] * 10 + r.dice[2]
		end
	`, "roll")
	// dice 1 and 6, total 8.
	assert.Equal(t, lua.LNumber(816), ret)
	assert.Equal(t, 1, logs.FilterMessage("dice roll").Len())
}

func TestEngineDice_Roll_InvalidExpression(t *testing.T) {
	mgr, logs, _ := newTestManager(t)
	ret := call(t, mgr, newProgression(), `function roll() return engine.dice.roll("banana") end`, "roll")
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestCultivator_ReadAccessors(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	p := newProgression()
	p.Character.Elements[character.Water] = 12
	p.Character.Meridians[2] = character.Meridian{Open: true, Purity: 33}
	p.Soul.KarmicBalance = -7
	ret := call(t, mgr, p, `
		function describe()
			return table.concat({
				cultivator.name(), cultivator.realm(), cultivator.primary_element(),
				cultivator.qi(), cultivator.max_qi(), cultivator.talent(), cultivator.karma(),
				cultivator.day(), cultivator.open_meridians(), cultivator.element("water"),
				cultivator.meridian_purity(3),
			}, ",")
		end
	`, "describe")
	assert.Equal(t, lua.LString("Lin,mortal,water,40,100,30,-7,12,1,12,33"), ret)
}

func TestCultivator_BadArgumentsRaise(t *testing.T) {
	mgr, logs, _ := newTestManager(t)
	require.NoError(t, mgr.LoadString(`
		function bad_element() return cultivator.element("void") end
		function bad_meridian() return cultivator.meridian_purity(13) end
	`, 0))
	for _, hook := range []string{"bad_element", "bad_meridian"} {
		ret, err := mgr.CallHook(newProgression(), hook)
		require.NoError(t, err)
		assert.Equal(t, lua.LNil, ret)
	}
	assert.Equal(t, 2, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestCultivator_AddQiIsBounded(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	p := newProgression()
	ret := call(t, mgr, p, `function grant() return cultivator.add_qi(1000) end`, "grant")
	assert.Equal(t, lua.LNumber(10), ret, "at most 10% of max qi per call")
	assert.Equal(t, 50.0, p.Character.Qi)
}

func TestCultivator_AddQiRejectsNonFinite(t *testing.T) {
	mgr, logs, _ := newTestManager(t)
	p := newProgression()
	require.NoError(t, mgr.LoadString(`
		function nan() return cultivator.add_qi(0/0) end
		function inf() return cultivator.add_qi(1/0) end
	`, 0))
	for _, hook := range []string{"nan", "inf"} {
		ret, err := mgr.CallHook(p, hook)
		require.NoError(t, err)
		assert.Equal(t, lua.LNil, ret)
	}
	assert.Equal(t, 40.0, p.Character.Qi)
	assert.NoError(t, p.Character.Validate())
	assert.Equal(t, 2, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestCultivator_AddTalentAndKarmaAreBounded(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	p := newProgression()
	call(t, mgr, p, `
		function nudge()
			cultivator.add_talent(50)
			cultivator.add_karma(-500)
		end
	`, "nudge")
	assert.Equal(t, 35, p.Character.Talent)
	assert.Equal(t, -50, p.Soul.KarmicBalance)
}

func TestCultivator_MutationsKeepInvariants_Property(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	require.NoError(t, mgr.LoadString(`
		function mutate(q, t) cultivator.add_qi(q); cultivator.add_talent(t) end
	`, 0))
	rapid.Check(t, func(rt *rapid.T) {
		p := newProgression()
		q := rapid.Float64Range(-1e6, 1e6).Draw(rt, "qi")
		tal := rapid.IntRange(-1000, 1000).Draw(rt, "talent")
		_, err := mgr.CallHook(p, "mutate", lua.LNumber(q), lua.LNumber(tal))
		require.NoError(rt, err)
		if err := p.Character.Validate(); err != nil {
			rt.Fatalf("invalid after script: %v", err)
		}
	})
}

func TestCultivator_RandomUsesSharedSource(t *testing.T) {
	rng, src := testutil.Scripted(0.25)
	mgr := scripting.NewManager(dice.NewLoggedRoller(rng, nil), nil, zap.NewNop())
	ret := call(t, mgr, newProgression(), `function r() return cultivator.random() end`, "r")
	assert.Equal(t, lua.LNumber(0.25), ret)
	assert.Equal(t, 1, src.Consumed())
}

func TestCultivator_Emit(t *testing.T) {
	mgr, _, rec := newTestManager(t)
	call(t, mgr, newProgression(), `function shout() cultivator.emit("omen", "a crane circles") end`, "shout")
	ev, ok := rec.Last(message.EventScripted)
	require.True(t, ok)
	assert.Equal(t, "omen", ev.Params["key"])
	assert.Equal(t, "a crane circles", ev.Params["message"])
	assert.Equal(t, 12, ev.Params["day"])
}

func TestHooks_OnDayAndOnBreakthrough(t *testing.T) {
	mgr, _, rec := newTestManager(t)
	require.NoError(t, mgr.LoadString(`
		function on_day(day)
			if day % 10 == 0 then cultivator.emit("tenth_day") end
		end
		function on_breakthrough(realm)
			cultivator.emit("ascended", realm)
		end
	`, 0))
	p := newProgression()
	p.Day = 20
	mgr.OnDay(p)
	p.Day = 21
	mgr.OnDay(p)
	mgr.OnBreakthrough(p, character.QiCondensation)

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "tenth_day", events[0].Params["key"])
	assert.Equal(t, "qi_condensation", events[1].Params["message"])
}
