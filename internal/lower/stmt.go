package lower

import (
	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/runtime"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/traits"
)

// lowerBlock re-enters the scope inference already attached to b by node
// identity (spec §4.H "scopes from inference are reused") rather than
// building its own child scope.
func (l *Lowerer) lowerBlock(b *ast.Block, parent *symbols.Scope) {
	scope, ok := l.scopeOf[b]
	if !ok {
		l.sink.Addf(diag.SeverityError, diag.E901, "lower", "no scope recorded for block")
		scope = parent
	}
	for _, st := range b.Stmts {
		l.lowerStmt(st, scope)
	}
}

func (l *Lowerer) lowerStmt(st ast.Stmt, scope *symbols.Scope) {
	switch n := st.(type) {
	case *ast.ConstDecl:
		l.lowerLocalDecl(n.Name, n.Value, n.ResolvedSize, scope)
	case *ast.VarDecl:
		l.lowerLocalDecl(n.Name, n.Value, n.ResolvedSize, scope)
	case *ast.ExprStmt:
		l.lowerExpr(n.X, scope)
	case *ast.Assign:
		l.lowerAssign(n, scope)
	case *ast.If:
		l.lowerIf(n, scope)
	case *ast.While:
		l.lowerWhile(n, scope)
	case *ast.For:
		l.lowerFor(n, scope)
	case *ast.Break:
		l.lowerBreak()
	case *ast.Continue:
		l.lowerContinue()
	case *ast.Return:
		l.lowerReturn(n, scope)
	case *ast.DeleteStmt:
		l.lowerDelete(n, scope)
	case *ast.Block:
		l.lowerBlock(n, scope)
	}
}

// lowerLocalDecl allocates the entry-block slot for a `const`/`var` binding
// and stores its initializer, if any (spec §4.H: locals are boxed exactly
// like parameters — see lowerParams). A declaration with a known
// ResolvedSize (spec §4.H/infer pass 2-4's resolveLocalArraySize) instead
// allocates a sized stack array and never holds a pointer-to-element in its
// own slot; indexAddr recognizes this through entry.ArraySize.
func (l *Lowerer) lowerLocalDecl(name string, value ast.Expr, arraySize int, scope *symbols.Scope) {
	entry, ok := scope.LookupLocal(name)
	if !ok {
		return
	}
	if arraySize > 0 {
		elemType := entry.Type.ArrayOf()
		arrT := l.stackArrayType(elemType, arraySize)
		slot := l.entryAlloca(arrT, name)
		entry.IRValue = slot
		return
	}

	slot := l.entryAlloca(l.valueType(entry.Type), name)
	entry.IRValue = slot
	if value != nil {
		v := l.lowerExpr(value, scope)
		l.b.CreateStore(v, slot)
	}
}

// lowerAssign implements `=` and the compound `+=`/`-=`/`*=`/`/=` forms
// (spec §4.C/§4.H). A plain `=` into a struct-field or array-element
// target memcpy's a composite value in; every other target (a local or
// parameter's boxed slot) is a direct store, matching lowerParams/
// lowerLocalDecl. A compound assign loads the current value, dispatches
// through the same CompoundAssignTrait codegen inferLocalDecl's sibling
// checkAssignOp already validated exists, then stores the result back.
func (l *Lowerer) lowerAssign(n *ast.Assign, scope *symbols.Scope) {
	addr := l.lowerAddr(n.Target, scope)
	t := n.Target.Type()

	if n.Op == "=" {
		v := l.lowerExpr(n.Value, scope)
		// A field/element target is embedded storage (see fieldAddr/
		// indexAddr), so a composite value assigns by copying its bytes in
		// place; an Identifier target is always a boxed slot (see
		// lowerLocalDecl/lowerParams) regardless of t, so it only ever
		// stores the value — a pointer, for a composite — directly.
		if _, isIdent := n.Target.(*ast.Identifier); !isIdent && isComposite(t) {
			l.storeValue(addr, v, t)
			return
		}
		l.b.CreateStore(v, addr)
		return
	}

	trait, method, ok := traits.CompoundAssignTrait(n.Op)
	if !ok {
		return
	}
	old := l.b.CreateLoad(l.irType(t), addr, "")
	rhs := l.lowerExpr(n.Value, scope)
	impl, ok := l.traits.FindImpl(trait, t, nil)
	if !ok {
		return
	}
	m, ok := impl.Methods[method]
	if !ok || m.Codegen == nil {
		return
	}
	out := m.Codegen([]interface{}{old, rhs}, l)
	updated, _ := out.(Value)
	l.b.CreateStore(updated, addr)
}

// lowerIf lowers the condition, branches, and — when Cond is directly an
// IsExpr (spec §9/infer's publishPatternBindings: no tree-walk through
// `&&`, `||` is excluded entirely) — materializes its pattern bindings into
// the then-block's scope before lowering its body.
func (l *Lowerer) lowerIf(n *ast.If, scope *symbols.Scope) {
	cond := l.lowerExpr(n.Cond, scope)

	thenBlock := l.b.AppendBlock(l.currentFn, "if.then")
	elseBlock := l.b.AppendBlock(l.currentFn, "if.else")
	mergeBlock := l.b.AppendBlock(l.currentFn, "if.merge")
	l.b.CreateCondBr(cond, thenBlock, elseBlock)

	l.b.SetInsertPoint(thenBlock)
	if isExpr, ok := n.Cond.(*ast.IsExpr); ok {
		l.bindIsPattern(isExpr, n.Then, scope)
	}
	l.lowerBlock(n.Then, scope)
	if !l.b.HasTerminator(l.b.InsertBlock()) {
		l.b.CreateBr(mergeBlock)
	}

	l.b.SetInsertPoint(elseBlock)
	switch els := n.Else.(type) {
	case *ast.Block:
		l.lowerBlock(els, scope)
	case *ast.If:
		l.lowerIf(els, scope)
	}
	if !l.b.HasTerminator(l.b.InsertBlock()) {
		l.b.CreateBr(mergeBlock)
	}

	l.b.SetInsertPoint(mergeBlock)
}

// bindIsPattern fills in the IRValue inference already reserved (via
// InsertParam, IRValue left nil) for each non-wildcard binding of an `is`
// pattern match, once thenBlock's body is about to run. A WholeVariantBind
// binds straight to the matched enum's own storage pointer; an individual
// field binding copies its payload slot into a fresh boxed local so it
// behaves exactly like any other local (spec §4.H locals are always
// boxed — see lowerLocalDecl).
func (l *Lowerer) bindIsPattern(n *ast.IsExpr, then *ast.Block, scope *symbols.Scope) {
	thenScope, ok := l.scopeOf[then]
	if !ok {
		thenScope = scope
	}
	et, ok := l.ctx.FindEnum(n.EnumName)
	if !ok {
		return
	}
	targetAddr := l.isExprTargetAddr(n, scope)

	if n.WholeVariantBind {
		for _, b := range n.Bindings {
			if b.IsWildcard || b.ResolvedType == nil {
				continue
			}
			if entry, found := thenScope.LookupLocal(b.Name); found {
				entry.IRValue = targetAddr
			}
		}
		return
	}

	enumT := l.structTypes[et.TypeName]
	variantIdx := et.VariantIndex(n.Variant)
	slots := enumPayloadSlots(et)
	payloadT := l.b.ArrayType(l.b.IntType(64), slots)
	i32 := l.b.IntType(32)
	payloadAddr := l.b.CreateGEP(enumT, targetAddr, []Value{l.b.ConstInt(i32, 0), l.b.ConstInt(i32, 1)}, "")

	fieldTypes := et.VariantFieldTypes[variantIdx]
	for i, b := range n.Bindings {
		if b.IsWildcard || b.ResolvedType == nil {
			continue
		}
		entry, found := thenScope.LookupLocal(b.Name)
		if !found {
			continue
		}
		ft := fieldTypes[i]
		slotAddr := l.b.CreateGEP(payloadT, payloadAddr, []Value{l.b.ConstInt(i32, 0), l.b.ConstInt(i32, int64(i))}, "")
		slotAsField := l.b.CreateBitCast(slotAddr, l.b.PointerType(l.valueType(ft)), "")
		v := l.b.CreateLoad(l.valueType(ft), slotAsField, "")
		local := l.entryAlloca(l.valueType(ft), b.Name)
		l.b.CreateStore(v, local)
		entry.IRValue = local
	}
}

// lowerWhile implements a `while` loop: continue resolves to the condition
// block itself (spec §4.H "while sets continue = cond-block").
func (l *Lowerer) lowerWhile(n *ast.While, scope *symbols.Scope) {
	condBlock := l.b.AppendBlock(l.currentFn, "while.cond")
	bodyBlock := l.b.AppendBlock(l.currentFn, "while.body")
	exitBlock := l.b.AppendBlock(l.currentFn, "while.exit")

	l.b.CreateBr(condBlock)
	l.b.SetInsertPoint(condBlock)
	cond := l.lowerExpr(n.Cond, scope)
	l.b.CreateCondBr(cond, bodyBlock, exitBlock)

	l.b.SetInsertPoint(bodyBlock)
	l.pushLoop(exitBlock, condBlock)
	l.lowerBlock(n.Body, scope)
	l.popLoop()
	if !l.b.HasTerminator(l.b.InsertBlock()) {
		l.b.CreateBr(condBlock)
	}

	l.b.SetInsertPoint(exitBlock)
}

// lowerFor implements a `for` loop: continue resolves to the update block
// (spec §4.H "for sets continue = update-block"), run after the body and
// before the condition is re-checked.
func (l *Lowerer) lowerFor(n *ast.For, scope *symbols.Scope) {
	forScope, ok := l.scopeOf[n.Body]
	if !ok {
		forScope = scope
	}
	if n.Init != nil {
		l.lowerStmt(n.Init, forScope)
	}

	condBlock := l.b.AppendBlock(l.currentFn, "for.cond")
	bodyBlock := l.b.AppendBlock(l.currentFn, "for.body")
	updateBlock := l.b.AppendBlock(l.currentFn, "for.update")
	exitBlock := l.b.AppendBlock(l.currentFn, "for.exit")

	l.b.CreateBr(condBlock)
	l.b.SetInsertPoint(condBlock)
	if n.Cond != nil {
		cond := l.lowerExpr(n.Cond, forScope)
		l.b.CreateCondBr(cond, bodyBlock, exitBlock)
	} else {
		l.b.CreateBr(bodyBlock)
	}

	l.b.SetInsertPoint(bodyBlock)
	l.pushLoop(exitBlock, updateBlock)
	l.lowerBlock(n.Body, forScope)
	l.popLoop()
	if !l.b.HasTerminator(l.b.InsertBlock()) {
		l.b.CreateBr(updateBlock)
	}

	l.b.SetInsertPoint(updateBlock)
	if n.Update != nil {
		l.lowerStmt(n.Update, forScope)
	}
	l.b.CreateBr(condBlock)

	l.b.SetInsertPoint(exitBlock)
}

func (l *Lowerer) lowerBreak() {
	loop, ok := l.currentLoop()
	if !ok {
		l.sink.Addf(diag.SeverityError, diag.E902, "lower", "break outside any enclosing loop")
		return
	}
	l.b.CreateBr(loop.exitBlock)
}

func (l *Lowerer) lowerContinue() {
	loop, ok := l.currentLoop()
	if !ok {
		l.sink.Addf(diag.SeverityError, diag.E902, "lower", "continue outside any enclosing loop")
		return
	}
	l.b.CreateBr(loop.continueBlock)
}

func (l *Lowerer) lowerReturn(n *ast.Return, scope *symbols.Scope) {
	if n.Value == nil {
		l.b.CreateRetVoid()
		return
	}
	v := l.lowerExpr(n.Value, scope)
	l.b.CreateRet(v)
}

// lowerDelete frees a `ref` value (spec §6 `delete`). The target's own
// rvalue is the pointer to free, not its storage slot's address — exactly
// the same lowerExpr/lowerAddr distinction fieldAddr relies on.
func (l *Lowerer) lowerDelete(n *ast.DeleteStmt, scope *symbols.Scope) {
	v := l.lowerExpr(n.Target, scope)
	ptrT := l.b.PointerType(l.b.IntType(8))
	raw := l.b.CreateBitCast(v, ptrT, "")
	l.runtimeCall(runtime.SymFree, []IRType{ptrT}, l.b.VoidType(), []Value{raw}, "")
}
