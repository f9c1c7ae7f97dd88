package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/arena/internal/game/level"
)

// ComposeHook is the Lua global consulted for level compositions.
const ComposeHook = "compose"

// Compose implements level.Composer by calling compose(level) in the loaded scripts.
// The hook returns nil to defer to the built-in rules, or a table with any of the
// integer fields basic, advanced, large, boss and boss_tier.
//
// Postcondition: Returns ok == false when no VM is loaded, the hook is undefined,
// it returned nil, or it raised a runtime error. Returns an error when the hook returned
// a non-table value or a field that is not a non-negative integer.
func (m *Manager) Compose(lvl int) (level.Composition, bool, error) {
	ret, err := m.CallHook(ComposeHook, lua.LNumber(lvl))
	if err != nil {
		return level.Composition{}, false, err
	}
	if ret == lua.LNil {
		return level.Composition{}, false, nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return level.Composition{}, false, fmt.Errorf("scripting: %s(%d) returned %s, want table", ComposeHook, lvl, ret.Type())
	}

	var comp level.Composition
	fields := []struct {
		name string
		dst  *int
	}{
		{"basic", &comp.Basic},
		{"advanced", &comp.Advanced},
		{"large", &comp.Large},
		{"boss", &comp.Boss},
		{"boss_tier", &comp.BossTier},
	}
	for _, f := range fields {
		v := tbl.RawGetString(f.name)
		if v == lua.LNil {
			continue
		}
		n, ok := v.(lua.LNumber)
		if !ok || n < 0 || float64(n) != float64(int(n)) {
			return level.Composition{}, false, fmt.Errorf("scripting: %s(%d).%s must be a non-negative integer, got %s", ComposeHook, lvl, f.name, v.String())
		}
		*f.dst = int(n)
	}
	if comp.Boss > 0 && comp.BossTier == 0 {
		comp.BossTier = max(lvl/5, 1)
	}
	return comp, true, nil
}

var _ level.Composer = (*Manager)(nil)
