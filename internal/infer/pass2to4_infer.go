package infer

import (
	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/consteval"
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/traits"
	"github.com/jsa-lang/jsac/internal/types"
)

// runPass2to4 iterates infer_literal_types / analyze_call_sites /
// create_specializations / infer_with_specializations to a fixed point
// (spec §4.F Pass 2-4): each outer iteration re-walks every top-level
// function body and every specialized body created so far, so a return
// type discovered late in one iteration is visible to every caller in the
// next. The loop stops when the total specialization count stabilizes, or
// after maxPassIterations (a warning, not an error — spec §5, §9).
func (e *Engine) runPass2to4(program *ast.Program) {
	for iter := 0; iter < maxPassIterations; iter++ {
		before := e.totalSpecializations()

		for _, d := range program.Decls {
			fn, ok := d.(*ast.FuncDecl)
			if !ok || fn.IsExtern {
				continue
			}
			e.inferFunctionSpecializations(fn)
		}

		after := e.totalSpecializations()
		if after == before {
			return
		}
	}
	e.sink.Warnf("E211", "typecheck", "type inference did not converge within %d iterations", maxPassIterations)
}

func (e *Engine) totalSpecializations() int {
	n := 0
	for _, ft := range e.ctx.AllFunctions() {
		for s := ft.Specializations; s != nil; s = s.Next {
			n++
		}
	}
	return n
}

// inferFunctionSpecializations re-walks every specialization body recorded
// for fn so far, typing statements/expressions and discovering new call
// sites as it goes.
func (e *Engine) inferFunctionSpecializations(fn *ast.FuncDecl) {
	ft := fn.ResolvedType
	if ft == nil {
		return
	}
	for s := ft.Specializations; s != nil; s = s.Next {
		body, ok := s.Body.(*ast.Block)
		if !ok || body == nil {
			continue // extern
		}
		scope := e.scopeFor(body, e.root)
		e.inferBlock(body, scope)
		if ft.Return.IsUnknown() || s.ReturnType == nil || s.ReturnType.IsUnknown() {
			if rt := e.inferReturnType(body, scope); rt != nil {
				s.ReturnType = e.reconcileReturnType(fn, ft.Return, rt)
			}
		}
	}
}

// reconcileReturnType applies spec §4.F's return-type rule: an explicit
// hint wins; an inferred type that contradicts the hint (and isn't a
// widening int->double) is an error.
func (e *Engine) reconcileReturnType(fn *ast.FuncDecl, hint, inferred *types.TypeInfo) *types.TypeInfo {
	if fn.ReturnHint == nil || hint == nil || hint.IsUnknown() {
		return inferred
	}
	if hint == inferred {
		return hint
	}
	if hint.IsDouble() && inferred.IsInteger() {
		return hint
	}
	e.sink.Addf(diag.SeverityError, "E202", "typecheck",
		"function "+fn.Name+": inferred return type "+inferred.String()+" does not match declared "+hint.String())
	return hint
}

// inferReturnType walks body looking for `return` statements; the first
// expression result that is neither Void nor Unknown wins (spec §4.F).
func (e *Engine) inferReturnType(body *ast.Block, scope *symbols.Scope) *types.TypeInfo {
	var found *types.TypeInfo
	var walk func(stmts []ast.Stmt, sc *symbols.Scope)
	walk = func(stmts []ast.Stmt, sc *symbols.Scope) {
		for _, st := range stmts {
			if found != nil {
				return
			}
			switch n := st.(type) {
			case *ast.Return:
				if n.Value == nil {
					continue
				}
				t := n.Value.Type()
				if t != nil && !t.IsUnknown() && !t.IsVoid() {
					found = t
				}
			case *ast.If:
				thenScope := e.scopeFor(n.Then, sc)
				walk(n.Then.Stmts, thenScope)
				if blk, ok := n.Else.(*ast.Block); ok {
					walk(blk.Stmts, e.scopeFor(blk, sc))
				} else if iff, ok := n.Else.(*ast.If); ok {
					walk([]ast.Stmt{iff}, sc)
				}
			case *ast.While:
				walk(n.Body.Stmts, e.scopeFor(n.Body, sc))
			case *ast.For:
				walk(n.Body.Stmts, e.scopeFor(n.Body, sc))
			case *ast.Block:
				walk(n.Stmts, e.scopeFor(n, sc))
			}
		}
	}
	walk(body.Stmts, scope)
	return found
}

// inferBlock types every statement of b in scope.
func (e *Engine) inferBlock(b *ast.Block, scope *symbols.Scope) {
	for _, st := range b.Stmts {
		e.inferStmt(st, scope)
	}
}

func (e *Engine) inferStmt(st ast.Stmt, scope *symbols.Scope) {
	switch n := st.(type) {
	case *ast.ConstDecl:
		n.ResolvedSize = e.resolveLocalArraySize(n.ArraySizeExp, scope)
		e.inferLocalDecl(n.Name, n.TypeHint, n.Value, n, n.ResolvedSize, scope, true)
	case *ast.VarDecl:
		n.ResolvedSize = e.resolveLocalArraySize(n.ArraySizeExp, scope)
		e.inferLocalDecl(n.Name, n.TypeHint, n.Value, n, n.ResolvedSize, scope, false)
	case *ast.ExprStmt:
		e.inferExpr(n.X, scope)
	case *ast.Assign:
		if ix, ok := n.Target.(*ast.IndexExpr); ok {
			ix.IsAssignTarget = true
		}
		e.inferExpr(n.Target, scope)
		e.inferExpr(n.Value, scope)
		e.checkAssignOp(n)
	case *ast.If:
		e.inferExpr(n.Cond, scope)
		thenScope := e.scopeFor(n.Then, scope)
		e.publishPatternBindings(n.Cond, thenScope)
		e.inferBlock(n.Then, thenScope)
		switch els := n.Else.(type) {
		case *ast.Block:
			e.inferBlock(els, e.scopeFor(els, scope))
		case *ast.If:
			e.inferStmt(els, scope)
		}
	case *ast.While:
		e.inferExpr(n.Cond, scope)
		e.inferBlock(n.Body, e.scopeFor(n.Body, scope))
	case *ast.For:
		forScope := e.scopeFor(n.Body, scope)
		if n.Init != nil {
			e.inferStmt(n.Init, forScope)
		}
		if n.Cond != nil {
			e.inferExpr(n.Cond, forScope)
		}
		if n.Update != nil {
			e.inferStmt(n.Update, forScope)
		}
		e.inferBlock(n.Body, forScope)
	case *ast.Return:
		if n.Value != nil {
			e.inferExpr(n.Value, scope)
		}
	case *ast.DeleteStmt:
		e.inferExpr(n.Target, scope)
		if t := n.Target.Type(); t != nil && !t.IsUnknown() && !t.IsRef() {
			e.sink.Addf(diag.SeverityError, "E208", "typecheck", "delete applied to a non-ref operand")
		}
	case *ast.Block:
		e.inferBlock(n, e.scopeFor(n, scope))
	}
}

func (e *Engine) inferLocalDecl(name string, hint ast.TypeHint, value ast.Expr, node ast.Node, arraySize int, scope *symbols.Scope, isConst bool) {
	var declared *types.TypeInfo
	if hint != nil {
		declared, _ = e.resolveTypeHint(hint, scope)
	}
	if value != nil {
		if ol, ok := value.(*ast.ObjectLiteral); ok && declared != nil && declared.IsObject() {
			ol.StructHint = declared.TypeName
		}
		e.inferExpr(value, scope)
	}
	t := declared
	if t == nil || t.IsUnknown() {
		if value != nil {
			t = value.Type()
		}
	}
	if t == nil {
		t = types.Unknown
	}
	scope.InsertVarDecl(name, t, node, arraySize).IsConst = isConst
}

// resolveLocalArraySize evaluates a local var/const declaration's array-size
// expression, if any (e.g. `var buf: u8[16];`), the same way pass 0 resolves
// one on a top-level const or struct field (see processConst): unlike
// those, a local's size expression can reference block-scoped names, so it
// is only resolvable here in pass 2-4, once scope is threaded through.
func (e *Engine) resolveLocalArraySize(sizeExp ast.Expr, scope *symbols.Scope) int {
	if sizeExp == nil {
		return 0
	}
	r := e.consts.Eval(sizeExp, scope, nil)
	if r.Kind != consteval.Success {
		return 0
	}
	return int(r.Value)
}

// publishPatternBindings introduces the bindings from an `is` pattern match
// into thenScope, unless the condition is an `||` expression (spec §9:
// values would be undefined on the right branch).
func (e *Engine) publishPatternBindings(cond ast.Expr, thenScope *symbols.Scope) {
	if b, ok := cond.(*ast.BinaryExpr); ok && b.Op == "||" {
		return
	}
	isExpr, ok := cond.(*ast.IsExpr)
	if !ok {
		return
	}
	for _, b := range isExpr.Bindings {
		if b.IsWildcard || b.ResolvedType == nil {
			continue
		}
		thenScope.InsertParam(b.Name, b.ResolvedType, -1)
	}
}

func (e *Engine) traitsRegistry() *traits.Registry { return e.traits }

// checkAssignOp validates a compound assignment's *Assign trait exists for
// the target/value pair (spec §4.C); plain `=` needs no trait lookup.
func (e *Engine) checkAssignOp(n *ast.Assign) {
	trait, method, ok := traits.CompoundAssignTrait(n.Op)
	if !ok {
		return
	}
	self := n.Target.Type()
	if self.IsUnknown() || n.Value.Type().IsUnknown() {
		return
	}
	impl, ok := e.traits.FindImpl(trait, self, nil)
	if !ok {
		e.sink.Addf(diag.SeverityError, diag.E205, "typecheck", "no implementation of "+string(trait)+" for "+self.String())
		return
	}
	if _, has := impl.Methods[method]; !has {
		e.sink.Addf(diag.SeverityError, diag.E205, "typecheck", "no implementation of "+string(trait)+" for "+self.String())
	}
}
