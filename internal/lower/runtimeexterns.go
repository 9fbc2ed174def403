package lower

import "github.com/jsa-lang/jsac/internal/runtime"

// runtimeExtern lazily declares (or reuses) the prototype for a runtime.Symbol
// (spec §6: "the lowering pass is allowed to call these without having
// declared them in source").
func (l *Lowerer) runtimeExtern(sym runtime.Symbol, params []IRType, ret IRType) Value {
	name := string(sym)
	if fn, ok := l.b.LookupFunction(name); ok {
		return fn
	}
	return l.b.DeclareFunction(name, params, ret, false)
}

func (l *Lowerer) runtimeCall(sym runtime.Symbol, params []IRType, ret IRType, args []Value, name string) Value {
	fn := l.runtimeExtern(sym, params, ret)
	return l.b.CreateCall(fn, args, name)
}
