package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/level"
)

// RegisterModules registers all engine.* Lua tables into L:
//   - engine.log.debug/info/warn/error(msg)
//   - engine.dice.roll(count, sides[, modifier]) -> {total=, dice={...}, expression=}
//   - engine.dice.intn(n) -> integer in [0, n)
//   - engine.arena: width, height, grid, cell, safe_zone_radius
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "arena", arenaTable(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, logFn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			logFn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		expr := dice.Expression{
			Count:    L.CheckInt(1),
			Sides:    L.CheckInt(2),
			Modifier: L.OptInt(3, 0),
		}
		res, err := m.roller.Roll(expr)
		if err != nil {
			L.RaiseError("engine.dice.roll: %s", err.Error())
			return 0
		}
		rolled := L.NewTable()
		for _, d := range res.Dice {
			rolled.Append(lua.LNumber(d))
		}
		out := L.NewTable()
		L.SetField(out, "total", lua.LNumber(res.Total()))
		L.SetField(out, "dice", rolled)
		L.SetField(out, "expression", lua.LString(res.Expression))
		L.Push(out)
		return 1
	}))
	L.SetField(mod, "intn", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 {
			L.ArgError(1, "n must be > 0")
			return 0
		}
		L.Push(lua.LNumber(m.roller.Intn(n)))
		return 1
	}))
	return mod
}

func arenaTable(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "width", lua.LNumber(level.ArenaWidth))
	L.SetField(t, "height", lua.LNumber(level.ArenaHeight))
	L.SetField(t, "grid", lua.LNumber(level.GridSize))
	L.SetField(t, "cell", lua.LNumber(level.CellSize))
	L.SetField(t, "safe_zone_radius", lua.LNumber(level.SafeZoneRadius))
	return t
}
