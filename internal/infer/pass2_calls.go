package infer

import (
	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/loader"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/types"
)

// inferCall implements analyze_call_sites (spec §4.F Pass 2): it
// classifies the call by its callee shape — plain, namespaced, static, or
// instance — and dispatches to the matching specialization logic.
func (e *Engine) inferCall(n *ast.CallExpr, scope *symbols.Scope) {
	switch callee := n.Callee.(type) {
	case *ast.Identifier:
		e.inferPlainCall(n, callee, scope)
	case *ast.MemberExpr:
		e.inferMemberCall(n, callee, scope)
	default:
		e.inferExpr(n.Callee, scope)
		e.inferArgs(n.Args, scope)
		n.SetType(types.Unknown)
	}
}

func (e *Engine) inferArgs(args []ast.Expr, scope *symbols.Scope) {
	for _, a := range args {
		e.inferExpr(a, scope)
	}
}

func exprTypes(args []ast.Expr) []*types.TypeInfo {
	out := make([]*types.TypeInfo, len(args))
	for i, a := range args {
		out[i] = a.Type()
	}
	return out
}

func (e *Engine) inferPlainCall(n *ast.CallExpr, callee *ast.Identifier, scope *symbols.Scope) {
	e.inferArgs(n.Args, scope)

	entry, found := scope.Lookup(callee.Name)
	if !found {
		e.sink.Addf(diag.SeverityError, diag.E102, "typecheck", "call to undefined function "+callee.Name)
		n.SetType(types.Unknown)
		return
	}
	fn, isFunc := entry.DeclNode.(*ast.FuncDecl)
	if !isFunc {
		e.sink.Addf(diag.SeverityError, diag.E102, "typecheck", "call to undefined function "+callee.Name)
		n.SetType(types.Unknown)
		return
	}

	spec := e.createSpecialization(e, fn, fn.ResolvedType, exprTypes(n.Args))
	e.finishCall(n, spec)
}

// paramEffectiveType resolves the concrete type a call-site argument binds
// a formal parameter to (spec §4.F: untyped params are discovered from the
// call site; int->double and value->ref(value) both coerce silently;
// anything else is a declared-type mismatch, E203).
func paramEffectiveType(sink *diag.Sink, declared, argType *types.TypeInfo) *types.TypeInfo {
	if declared == nil || declared.IsUnknown() {
		return argType
	}
	if declared == argType {
		return declared
	}
	if declared.IsDouble() && argType != nil && argType.IsInteger() {
		return declared
	}
	if declared.IsRef() && argType != nil && !argType.IsRef() && declared.RefTargetOf() == argType {
		return declared
	}
	if argType == nil || argType.IsUnknown() {
		return declared
	}
	sink.Addf(diag.SeverityError, diag.E203, "typecheck",
		"argument type "+argType.String()+" does not match declared parameter type "+declared.String())
	return declared
}

// createSpecialization implements create_specializations (spec §4.F Pass 2,
// §4.G): find-or-add a Specialization in ft's owner context, typing its
// cloned body (if any) with the engine that owns that context. Passing
// bodyEngine == e means "same module as the call site"; cross-module calls
// pass the imported module's own Engine (spec §4.F #2).
func (e *Engine) createSpecialization(bodyEngine *Engine, fn *ast.FuncDecl, ft *types.TypeInfo, argTypes []*types.TypeInfo) *types.Specialization {
	if ft == nil {
		return nil
	}
	if !ft.IsVariadic && len(argTypes) != len(ft.Params) {
		e.sink.Addf(diag.SeverityError, diag.E204, "typecheck",
			fn.Name+": wrong number of arguments at call site")
		return nil
	}

	effTypes := make([]*types.TypeInfo, len(ft.Params))
	for i, pt := range ft.Params {
		var at *types.TypeInfo
		if i < len(argTypes) {
			at = argTypes[i]
		}
		effTypes[i] = paramEffectiveType(e.sink, pt, at)
	}
	// Variadic trailing arguments (e.g. `@io` functions) beyond the typed
	// prefix pass through unchanged; spec §6 treats them opaquely.

	if existing := types.FindSpecialization(ft, effTypes); existing != nil {
		return existing
	}

	specName := specializedName(fn.Name, effTypes)
	spec := types.AddSpecialization(ft, effTypes, specName)

	if fn.IsExtern || fn.Body == nil {
		spec.ReturnType = ft.Return
		return spec
	}
	if !ft.Return.IsUnknown() {
		spec.ReturnType = ft.Return
	}

	cloned := ast.CloneBlock(fn.Body)
	spec.Body = cloned
	if bodyEngine == nil {
		return spec
	}

	childScope := bodyEngine.scopeFor(cloned, bodyEngine.root)
	for i, p := range fn.Params {
		if i < len(effTypes) {
			childScope.InsertParam(p.Name, effTypes[i], i)
		}
	}

	// Same-module specializations are picked up by the enclosing
	// runPass2to4 fixed-point loop (the specialization count just grew, so
	// at least one more outer iteration is guaranteed). Cross-module
	// specializations are created *after* the callee module already
	// finished its own fixed point, so they must be typed eagerly here.
	if bodyEngine != e {
		bodyEngine.inferBlock(cloned, childScope)
		if spec.ReturnType == nil || spec.ReturnType.IsUnknown() {
			if rt := bodyEngine.inferReturnType(cloned, childScope); rt != nil {
				spec.ReturnType = bodyEngine.reconcileReturnType(fn, ft.Return, rt)
			}
		}
	}
	return spec
}

func (e *Engine) finishCall(n *ast.CallExpr, spec *types.Specialization) {
	if spec == nil {
		n.SetType(types.Unknown)
		return
	}
	n.ResolvedName = spec.MangledName
	if spec.ReturnType != nil {
		n.SetType(spec.ReturnType)
	} else {
		n.SetType(types.Unknown)
	}
}

func (e *Engine) inferMemberCall(n *ast.CallExpr, callee *ast.MemberExpr, scope *symbols.Scope) {
	if id, ok := callee.Target.(*ast.Identifier); ok {
		if entry, found := scope.Lookup(id.Name); found && entry.IsNamespace() {
			e.inferNamespaceCall(n, callee, entry, scope)
			return
		}
		if _, ok := e.ctx.FindStruct(id.Name); ok {
			e.inferStaticCall(n, id.Name, callee.Name, scope)
			return
		}
		if _, ok := e.ctx.FindEnum(id.Name); ok {
			e.inferStaticCall(n, id.Name, callee.Name, scope)
			return
		}
	}
	e.inferInstanceCall(n, callee, scope)
}

func (e *Engine) inferNamespaceCall(n *ast.CallExpr, callee *ast.MemberExpr, entry *symbols.Entry, scope *symbols.Scope) {
	e.inferArgs(n.Args, scope)

	mod := namespaceModule(entry)
	if mod == nil {
		e.sink.Addf(diag.SeverityError, diag.E102, "typecheck", "call through unresolved namespace")
		n.SetType(types.Unknown)
		return
	}

	if mod.IsBuiltin() {
		loader.ValidateIOCall(e.sink, callee.Name, n.Args)
		ft, ok := mod.TypeCtx.FindFunction(callee.Name)
		n.ResolvedName = callee.Name // builtins are never mangled, spec §4.E
		if !ok {
			n.SetType(types.Void)
			return
		}
		n.SetType(ft.Return)
		return
	}

	ft, ok := mod.TypeCtx.FindFunction(callee.Name)
	if !ok {
		e.sink.Addf(diag.SeverityError, diag.E102, "typecheck", "module has no function "+callee.Name)
		n.SetType(types.Unknown)
		return
	}
	fnDecl, _ := ft.FuncBodyRef.(*ast.FuncDecl)
	if fnDecl == nil {
		n.SetType(types.Unknown)
		return
	}

	depEngine := e.driver.engineFor(mod)
	spec := e.createSpecialization(depEngine, fnDecl, ft, exprTypes(n.Args))
	if spec == nil {
		n.SetType(types.Unknown)
		return
	}
	n.ResolvedName = loader.MangleSymbol(mod.Prefix, spec.MangledName)
	if spec.ReturnType != nil {
		n.SetType(spec.ReturnType)
	} else {
		n.SetType(types.Unknown)
	}
}

func (e *Engine) inferStaticCall(n *ast.CallExpr, typeName, method string, scope *symbols.Scope) {
	e.inferArgs(n.Args, scope)

	ft, ok := e.ctx.FindFunction(typeName + "." + method)
	if !ok {
		e.sink.Addf(diag.SeverityError, diag.E102, "typecheck", "no static method "+typeName+"."+method)
		n.SetType(types.Unknown)
		return
	}
	fn, _ := ft.FuncBodyRef.(*ast.FuncDecl)
	if fn == nil {
		n.SetType(types.Unknown)
		return
	}
	spec := e.createSpecialization(e, fn, ft, exprTypes(n.Args))
	e.finishCall(n, spec)
}

func (e *Engine) inferInstanceCall(n *ast.CallExpr, callee *ast.MemberExpr, scope *symbols.Scope) {
	e.inferExpr(callee.Target, scope)
	e.inferArgs(n.Args, scope)

	recvType := callee.Target.Type()
	objType := recvType
	if objType.IsRef() {
		objType = objType.RefTargetOf()
	}
	if objType == nil || !objType.IsObject() {
		e.sink.Addf(diag.SeverityError, diag.E102, "typecheck", "method call "+callee.Name+" on a non-struct receiver")
		n.SetType(types.Unknown)
		return
	}

	ft, ok := e.ctx.FindFunction(objType.TypeName + "." + callee.Name)
	if !ok {
		e.sink.Addf(diag.SeverityError, diag.E102, "typecheck", "no method "+objType.TypeName+"."+callee.Name)
		n.SetType(types.Unknown)
		return
	}
	fn, _ := ft.FuncBodyRef.(*ast.FuncDecl)
	if fn == nil {
		n.SetType(types.Unknown)
		return
	}

	argTypes := append([]*types.TypeInfo{recvType}, exprTypes(n.Args)...)
	spec := e.createSpecialization(e, fn, ft, argTypes)
	e.finishCall(n, spec)
}
