package scripting

import (
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/game/message"
)

// Per-call bounds on scripted mutations.
const (
	maxScriptQiFraction = 0.1
	maxScriptTalent     = 5
	maxScriptKarma      = 50
)

// RegisterModules registers the engine.* and cultivator.* Lua tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine and cultivator globals are defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.newLogModule(L))
	L.SetField(engine, "dice", m.newDiceModule(L))
	L.SetGlobal("engine", engine)
	L.SetGlobal("cultivator", m.newCultivatorModule(L))
}

func (m *Manager) newLogModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	} {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn("lua: " + L.CheckString(1))
			return 0
		}))
	}
	return mod
}

// newDiceModule exposes engine.dice.roll(expr) returning
// {total=, dice={...}, modifier=}.
func (m *Manager) newDiceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		expr, err := dice.Parse(L.CheckString(1))
		if err != nil {
			L.RaiseError("engine.dice.roll: %s", err.Error())
			return 0
		}
		res := m.roller.Roll(expr)
		out := L.NewTable()
		rolled := L.NewTable()
		for _, d := range res.Dice {
			rolled.Append(lua.LNumber(d))
		}
		L.SetField(out, "total", lua.LNumber(res.Total()))
		L.SetField(out, "dice", rolled)
		L.SetField(out, "modifier", lua.LNumber(res.Modifier))
		L.Push(out)
		return 1
	}))
	return mod
}

// active returns the bound progression or raises a Lua error.
func (m *Manager) active(L *lua.LState) *character.Progression {
	if m.bound == nil {
		L.RaiseError("cultivator: no active character outside a hook")
	}
	return m.bound
}

func (m *Manager) newCultivatorModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	number := func(get func(p *character.Progression) float64) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			L.Push(lua.LNumber(get(m.active(L))))
			return 1
		})
	}

	L.SetField(mod, "name", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(m.active(L).Character.Name))
		return 1
	}))
	L.SetField(mod, "realm", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(m.active(L).Character.Realm.String()))
		return 1
	}))
	L.SetField(mod, "primary_element", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(m.active(L).Character.PrimaryElement().String()))
		return 1
	}))
	L.SetField(mod, "qi", number(func(p *character.Progression) float64 { return p.Character.Qi }))
	L.SetField(mod, "max_qi", number(func(p *character.Progression) float64 { return p.Character.MaxQi }))
	L.SetField(mod, "talent", number(func(p *character.Progression) float64 { return float64(p.Character.Talent) }))
	L.SetField(mod, "karma", number(func(p *character.Progression) float64 { return float64(p.Soul.KarmicBalance) }))
	L.SetField(mod, "day", number(func(p *character.Progression) float64 { return float64(p.Day) }))
	L.SetField(mod, "open_meridians", number(func(p *character.Progression) float64 {
		return float64(p.Character.OpenMeridianCount())
	}))

	L.SetField(mod, "element", L.NewFunction(func(L *lua.LState) int {
		p := m.active(L)
		el, err := character.ParseElement(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		L.Push(lua.LNumber(p.Character.Elements[el]))
		return 1
	}))
	L.SetField(mod, "meridian_purity", L.NewFunction(func(L *lua.LState) int {
		p := m.active(L)
		i := L.CheckInt(1)
		if i < 1 || i > character.MeridianCount {
			L.ArgError(1, "meridian index must be 1-12")
			return 0
		}
		L.Push(lua.LNumber(p.Character.Meridians[i-1].Purity))
		return 1
	}))

	L.SetField(mod, "add_qi", L.NewFunction(func(L *lua.LState) int {
		p := m.active(L)
		bound := p.Character.MaxQi * maxScriptQiFraction
		raw := float64(L.CheckNumber(1))
		if math.IsNaN(raw) || math.IsInf(raw, 0) {
			L.ArgError(1, "qi delta must be a finite number")
			return 0
		}
		delta := clampFloat(raw, -bound, bound)
		L.Push(lua.LNumber(p.Character.AddQi(delta)))
		return 1
	}))
	L.SetField(mod, "add_talent", L.NewFunction(func(L *lua.LState) int {
		p := m.active(L)
		before := p.Character.Talent
		p.Character.AddTalent(clampInt(L.CheckInt(1), -maxScriptTalent, maxScriptTalent))
		L.Push(lua.LNumber(p.Character.Talent - before))
		return 1
	}))
	L.SetField(mod, "add_karma", L.NewFunction(func(L *lua.LState) int {
		p := m.active(L)
		delta := clampInt(L.CheckInt(1), -maxScriptKarma, maxScriptKarma)
		p.Soul.KarmicBalance += delta
		L.Push(lua.LNumber(delta))
		return 1
	}))
	L.SetField(mod, "random", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(m.roller.Rand().Float64()))
		return 1
	}))
	L.SetField(mod, "emit", L.NewFunction(func(L *lua.LState) int {
		p := m.active(L)
		m.sink.Emit(message.EventScripted, message.Params{
			"key":     L.CheckString(1),
			"message": L.OptString(2, ""),
			"day":     p.Day,
		})
		return 0
	}))
	return mod
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
