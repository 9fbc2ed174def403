package lower

import (
	"github.com/jsa-lang/jsac/internal/loader"
	"github.com/jsa-lang/jsac/internal/types"
)

// declarePrototypes implements spec §4.H invariant 2: every specialization
// gets its function prototype declared before any body is lowered, so
// intra-module (and, via the module prefix, cross-module) mutual recursion
// resolves regardless of declaration order. `extern` (spec: "body == nil,
// linked externally") specializations get the same prototype treatment as
// an ordinary one, except that linkName declares them under their own
// unmangled name, and LowerModule skips their body. The runtime's own C
// symbols (printf, malloc, ...) are called directly by name via
// runtimeExtern instead and never go through a Specialization at all (see
// io.go, intrinsics.go, strings.go).
//
// Every specialization is registered under two keys: its bare
// Specialization.MangledName, which is what a call site *within the
// declaring module* resolves to (pass2_calls.go's ordinary, non-namespaced
// call path never applies the module prefix), and its fully qualified
// loader.MangleSymbol(mod.Prefix, ...) form, which is what a cross-module
// namespace call resolves to. A Lowerer is meant to be reused across every
// module of one compilation, called once per module in dependency order,
// with each module's body fully lowered (and its own bare-keyed lookups
// already consumed) before the next module's LowerModule runs — so a later
// module's same-named bare key safely overwriting an earlier one causes no
// harm.
func (l *Lowerer) declarePrototypes() {
	prefix := l.mod.Prefix
	for _, ft := range l.ctx.AllFunctions() {
		for _, spec := range types.AllSpecializations(ft) {
			fn := l.declareSpecialization(spec)
			l.funcValues[spec.MangledName] = fn
			l.funcValues[loader.MangleSymbol(prefix, spec.MangledName)] = fn
		}
	}
}

// linkName is the prototype's actual IR-level name. An extern keeps its
// declared function name, unmangled; every other specialization is
// module-prefix-mangled so two modules declaring a same-named
// specialization never collide at the IR level (spec §4.E).
func (l *Lowerer) linkName(spec *types.Specialization) string {
	if spec.IsExtern() && spec.Owner != nil {
		return spec.Owner.FuncName
	}
	return loader.MangleSymbol(l.mod.Prefix, spec.MangledName)
}

func (l *Lowerer) declareSpecialization(spec *types.Specialization) Value {
	name := l.linkName(spec)
	if fn, ok := l.b.LookupFunction(name); ok {
		return fn
	}
	paramTypes := make([]IRType, len(spec.ParamTypes))
	for i, pt := range spec.ParamTypes {
		paramTypes[i] = l.valueType(pt)
	}
	return l.b.DeclareFunction(name, paramTypes, l.valueType(spec.ReturnType), false)
}
