// Package scripting provides a sandboxed GopherLua environment for level scripts.
// Scripts reach the game only through the engine.* modules and the hooks the
// Manager calls.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget granted to one hook call when
// no limit is configured.
const DefaultInstructionLimit = 100_000

// strippedGlobals are removed after the base library is opened.
var strippedGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require"}

// opcodeBudget is the context installed on an LState. The VM polls Done once
// per opcode, so each poll spends one unit; the context is cancelled when the
// budget runs out.
type opcodeBudget struct {
	context.Context
	left   atomic.Int64
	cancel context.CancelFunc
}

func (b *opcodeBudget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// effectiveLimit maps a configured limit to the one enforced.
func effectiveLimit(instLimit int) int {
	if instLimit <= 0 {
		return DefaultInstructionLimit
	}
	return instLimit
}

// armLimit installs a fresh budget of limit opcodes on L.
//
// Precondition: limit > 0.
// Postcondition: the next execution on L may run at most limit opcodes; the returned
// cancel func releases the budget's context.
func armLimit(L *lua.LState, limit int) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	b := &opcodeBudget{Context: ctx, cancel: cancel}
	b.left.Store(int64(limit))
	L.SetContext(b)
	return cancel
}

// NewSandboxedState returns an LState with only the base, table, string and math
// libraries, the file and loader globals stripped, and an opcode budget armed.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil LState ready for RegisterModules and DoFile, and the
// cancel func of its budget. The caller must call cancel and L.Close() when done.
func NewSandboxedState(instLimit int) (*lua.LState, context.CancelFunc) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range strippedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L, armLimit(L, effectiveLimit(instLimit))
}
