package infer

import (
	"strings"

	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/types"
)

// runPass1 resolves every function's signature, inserts it into the
// module scope, and — for fully typed functions (every parameter plus the
// return type have explicit hints, which is always true for externs) —
// eagerly synthesizes its single specialization (spec §4.F Pass 1).
func (e *Engine) runPass1(program *ast.Program) {
	for _, d := range program.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		e.declareFunction(fn)
	}
	for _, d := range program.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if fn.ResolvedType != nil && fn.ResolvedType.IsFullyTyped {
			e.specializeEagerly(fn)
		}
	}
}

// mangledFuncName returns the global registry key for fn (spec §4.E, §4.F:
// methods are registered under "S.m"; externs and built-ins keep their bare
// name; ordinary module functions are mangled by module prefix, applied by
// the caller once exported — pass 1 itself registers under the *unmangled*
// declared name inside this module's own Context; export-time mangling is
// a loader/lowering concern, not this pass's).
func mangledFuncName(fn *ast.FuncDecl) string {
	if fn.Receiver != "" {
		return fn.Receiver + "." + fn.Name
	}
	return fn.Name
}

func (e *Engine) declareFunction(fn *ast.FuncDecl) {
	name := mangledFuncName(fn)
	e.root.InsertFuncDecl(name, fn)

	params := make([]*types.TypeInfo, len(fn.Params))
	for i, p := range fn.Params {
		t, err := e.resolveTypeHint(p.TypeHint, e.root)
		if err != nil {
			t = types.Unknown
		}
		params[i] = t
	}
	ret, err := e.resolveTypeHint(fn.ReturnHint, e.root)
	if err != nil {
		ret = types.Unknown
	}

	fn.ResolvedType = e.ctx.CreateFunction(name, params, ret, fn, fn.IsVariadic)
}

// specializeEagerly creates the single specialization for a fully typed
// function up front (spec §4.F Pass 1): it inserts the parameters into the
// body's scope and attaches the declaration's own body, not a clone. An
// extern's specialization keeps a nil Body.
func (e *Engine) specializeEagerly(fn *ast.FuncDecl) {
	ft := fn.ResolvedType
	paramTypes := append([]*types.TypeInfo(nil), ft.Params...)
	if types.FindSpecialization(ft, paramTypes) != nil {
		return
	}

	specName := specializedName(fn.Name, paramTypes)
	spec := types.AddSpecialization(ft, paramTypes, specName)
	spec.ReturnType = ft.Return

	if fn.IsExtern {
		return // Specialization.Body stays nil -> extern, spec §3
	}

	scope := e.scopeFor(fn.Body, e.root)
	for i, p := range fn.Params {
		scope.InsertParam(p.Name, paramTypes[i], i)
	}
	spec.Body = fn.Body
}

// specializedName builds the `$`-separated mangled specialization suffix
// scenario S2 in spec §8 illustrates (`add$i32_i32`).
func specializedName(base string, args []*types.TypeInfo) string {
	out := base
	if len(args) == 0 {
		return out
	}
	out += "$"
	for i, a := range args {
		if i > 0 {
			out += "_"
		}
		out += typeSuffix(a)
	}
	return out
}

func typeSuffix(t *types.TypeInfo) string {
	if t == nil {
		return "unknown"
	}
	switch {
	case t.IsDouble():
		return "f64"
	case t.IsBool():
		return "bool"
	case t.IsString():
		return "str"
	case t.IsInteger():
		return strings.ToLower(t.Kind.String())
	case t.IsObject(), t.IsEnum():
		return t.TypeName
	case t.IsArray():
		return typeSuffix(t.ArrayOf()) + "arr"
	case t.IsRef():
		return "ref" + typeSuffix(t.RefTargetOf())
	default:
		return t.Kind.String()
	}
}

// childScopeFor is a convenience used by later passes to re-enter the
// side-table scope for a Block, creating it against root if this is the
// first visit.
func (e *Engine) childScopeFor(b *ast.Block) *symbols.Scope {
	return e.scopeFor(b, e.root)
}
