package lower

import (
	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/loader"
	"github.com/jsa-lang/jsac/internal/runtime"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/traits"
	"github.com/jsa-lang/jsac/internal/types"
)

// lowerExpr lowers e to an rvalue SSA value. Scalars (including Ref, whose
// IR type is itself a pointer) come back loaded; Str/Object/Enum values
// come back as the pointer to their storage, never a loaded aggregate
// (spec §4.H "composite = pointer" simplification — see addr.go).
func (l *Lowerer) lowerExpr(e ast.Expr, scope *symbols.Scope) Value {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return l.b.ConstInt(l.irType(n.Type()), n.Value)
	case *ast.FloatLiteral:
		return l.b.ConstFloat(l.irType(n.Type()), n.Value)
	case *ast.BoolLiteral:
		v := int64(0)
		if n.Value {
			v = 1
		}
		return l.b.ConstInt(l.b.IntType(1), v)
	case *ast.StringLiteral:
		return l.b.DeclareGlobalString(".str", n.Value)

	case *ast.Identifier:
		entry, ok := scope.Lookup(n.Name)
		if !ok {
			return l.b.ConstNull(l.valueType(n.Type()))
		}
		addr, _ := entry.IRValue.(Value)
		return l.b.CreateLoad(l.valueType(n.Type()), addr, n.Name)

	case *ast.BinaryExpr:
		return l.lowerBinary(n, scope)
	case *ast.UnaryExpr:
		return l.lowerUnary(n, scope)
	case *ast.IncDec:
		return l.lowerIncDec(n, scope)

	case *ast.MemberExpr:
		return l.lowerMember(n, scope)
	case *ast.IndexExpr:
		addr := l.indexAddr(n, scope)
		if isComposite(n.Type()) {
			return addr
		}
		return l.b.CreateLoad(l.irType(n.Type()), addr, "")

	case *ast.NewArrayExpr:
		return l.lowerNewArray(n, scope)
	case *ast.ObjectLiteral:
		return l.lowerObjectLiteral(n, scope)
	case *ast.EnumConstructExpr:
		return l.lowerEnumConstruct(n, scope)
	case *ast.IsExpr:
		return l.lowerIsDiscriminant(n, scope)

	case *ast.CallExpr:
		return l.lowerCall(n, scope)
	}
	return nil
}

// lowerMember loads a struct field (or returns its address, for a
// composite-typed field). A ref target dereferences by lowering it to the
// pointer it already holds rather than taking its address again.
func (l *Lowerer) lowerMember(m *ast.MemberExpr, scope *symbols.Scope) Value {
	addr := l.fieldAddr(m, scope)
	if isComposite(m.Type()) {
		return addr
	}
	return l.b.CreateLoad(l.irType(m.Type()), addr, m.Name)
}

// lowerBinary dispatches `&&`/`||` as a short-circuit basic-block diamond
// and every other operator through the trait table, widening operands to
// the Promote-selected self type first (spec §4.C).
func (l *Lowerer) lowerBinary(n *ast.BinaryExpr, scope *symbols.Scope) Value {
	if traits.IsShortCircuit(n.Op) {
		return l.lowerShortCircuit(n, scope)
	}

	left := l.lowerExpr(n.Left, scope)
	right := l.lowerExpr(n.Right, scope)

	trait, method, _ := traits.BinaryOperatorTrait(n.Op)
	self := traits.Promote(n.Left.Type(), n.Right.Type())
	left = l.promoteOperand(left, n.Left.Type(), self)
	right = l.promoteOperand(right, n.Right.Type(), self)

	impl, ok := l.traits.FindImpl(trait, self, nil)
	if !ok {
		return nil
	}
	m, ok := impl.Methods[method]
	if !ok || m.Codegen == nil {
		return nil
	}
	out := m.Codegen([]interface{}{left, right}, l)
	v, _ := out.(Value)
	return v
}

// lowerShortCircuit implements `&&`/`||` without ever evaluating the right
// operand unless needed (spec §4.H).
func (l *Lowerer) lowerShortCircuit(n *ast.BinaryExpr, scope *symbols.Scope) Value {
	left := l.lowerExpr(n.Left, scope)
	rhsBlock := l.b.AppendBlock(l.currentFn, "sc.rhs")
	mergeBlock := l.b.AppendBlock(l.currentFn, "sc.merge")

	if n.Op == "&&" {
		l.b.CreateCondBr(left, rhsBlock, mergeBlock)
	} else {
		l.b.CreateCondBr(left, mergeBlock, rhsBlock)
	}
	lhsBlock := l.b.InsertBlock()

	l.b.SetInsertPoint(rhsBlock)
	right := l.lowerExpr(n.Right, scope)
	l.b.CreateBr(mergeBlock)
	rhsEnd := l.b.InsertBlock()

	l.b.SetInsertPoint(mergeBlock)
	phi := l.b.CreatePHI(l.b.IntType(1), "")
	l.b.AddIncoming(phi, []Value{left, right}, []BasicBlock{lhsBlock, rhsEnd})
	return phi
}

func (l *Lowerer) lowerUnary(n *ast.UnaryExpr, scope *symbols.Scope) Value {
	v := l.lowerExpr(n.Operand, scope)
	trait, method, _ := traits.UnaryOperatorTrait(n.Op)
	self := n.Operand.Type()
	impl, ok := l.traits.FindImpl(trait, self, nil)
	if !ok {
		return nil
	}
	m, ok := impl.Methods[method]
	if !ok || m.Codegen == nil {
		return nil
	}
	out := m.Codegen([]interface{}{v}, l)
	rv, _ := out.(Value)
	return rv
}

// lowerIncDec implements prefix/postfix ++/-- (spec §4.H: "prefix returns
// the new value, postfix returns the old one").
func (l *Lowerer) lowerIncDec(n *ast.IncDec, scope *symbols.Scope) Value {
	addr := l.lowerAddr(n.Target, scope)
	t := n.Target.Type()
	irT := l.irType(t)
	old := l.b.CreateLoad(irT, addr, "")

	one := l.constOne(irT, t)
	var updated Value
	if t != nil && t.IsDouble() {
		if n.Op == "++" {
			updated = l.b.CreateFAdd(old, one, "")
		} else {
			updated = l.b.CreateFSub(old, one, "")
		}
	} else {
		if n.Op == "++" {
			updated = l.b.CreateAdd(old, one, "")
		} else {
			updated = l.b.CreateSub(old, one, "")
		}
	}
	l.b.CreateStore(updated, addr)

	if n.Postfix {
		return old
	}
	return updated
}

func (l *Lowerer) constOne(irT IRType, t *types.TypeInfo) Value {
	if t != nil && t.IsDouble() {
		return l.b.ConstFloat(irT, 1)
	}
	return l.b.ConstInt(irT, 1)
}

// promoteOperand widens an operand from its declared type to self, the
// type Promote selected for the enclosing binary operator (spec §4.C).
func (l *Lowerer) promoteOperand(v Value, from, self *types.TypeInfo) Value {
	if from == self || from == nil || self == nil {
		return v
	}
	selfT := l.irType(self)
	if self.IsDouble() && !from.IsDouble() {
		if from.IsSigned() {
			return l.b.CreateSIToFP(v, selfT, "")
		}
		return l.b.CreateUIToFP(v, selfT, "")
	}
	if from.IsInteger() && self.IsInteger() && self.IntWidth() > from.IntWidth() {
		if from.IsSigned() {
			return l.b.CreateSExt(v, selfT, "")
		}
		return l.b.CreateZExt(v, selfT, "")
	}
	return v
}

// lowerNewArray heap-allocates n.Size elements of the array's element type
// via the runtime allocator (spec §6 "new T[n]").
func (l *Lowerer) lowerNewArray(n *ast.NewArrayExpr, scope *symbols.Scope) Value {
	elemType := n.Type().ArrayOf()
	elemIR := l.irType(elemType)
	size := l.lowerExpr(n.Size, scope)

	ptrT := l.b.PointerType(l.b.IntType(8))
	elemSize := l.b.ConstInt(l.b.IntType(64), l.sizeOfBytes(elemType))
	raw := l.runtimeCall(runtime.SymCalloc, []IRType{l.b.IntType(64), l.b.IntType(64)}, ptrT, []Value{size, elemSize}, "")
	return l.b.CreateBitCast(raw, l.b.PointerType(elemIR), "")
}

// sizeOfBytes is a best-effort static size used only to size a heap array
// allocation. Array elements embed Object/Enum/Str inline exactly like
// struct fields do (see declareStructs), so a composite element needs its
// real aggregate size, not a pointer's.
func (l *Lowerer) sizeOfBytes(t *types.TypeInfo) int64 {
	if t == nil {
		return 8
	}
	switch {
	case t.IsBool():
		return 1
	case t.IsInteger():
		return int64(t.IntWidth() / 8)
	case t.IsDouble():
		return 8
	case t.IsString():
		return 16 // {data *u8, length u64}, see declareStrStruct.
	case t.IsObject() || t.IsEnum():
		return l.structByteSize(t)
	default:
		return 8 // Ref/Array/Function values are themselves pointers.
	}
}

// lowerObjectLiteral allocates storage for the struct and stores each
// field in turn. Fields already arrive in declaration order (reordered by
// inference's reorderObjectFields), so the Nth field initializer binds the
// Nth field index directly.
func (l *Lowerer) lowerObjectLiteral(n *ast.ObjectLiteral, scope *symbols.Scope) Value {
	st := n.Type()
	structT := l.structTypes[st.TypeName]
	addr := l.entryAlloca(structT, st.TypeName)

	i32 := l.b.IntType(32)
	for i, f := range n.Fields {
		v := l.lowerExpr(f.Value, scope)
		idx := []Value{l.b.ConstInt(i32, 0), l.b.ConstInt(i32, int64(i))}
		fieldAddr := l.b.CreateGEP(structT, addr, idx, "")
		l.storeValue(fieldAddr, v, st.FieldTypes[i])
	}
	return addr
}

// lowerEnumConstruct allocates the tagged-union storage, writes the
// variant's discriminant tag, then writes each field into its i64-wide
// payload slot via a bitcast pointer (spec §4.H enum-as-union design).
func (l *Lowerer) lowerEnumConstruct(n *ast.EnumConstructExpr, scope *symbols.Scope) Value {
	et := n.Type()
	enumT := l.structTypes[et.TypeName]
	addr := l.entryAlloca(enumT, et.TypeName)

	i32 := l.b.IntType(32)
	tagAddr := l.b.CreateGEP(enumT, addr, []Value{l.b.ConstInt(i32, 0), l.b.ConstInt(i32, 0)}, "")
	variantIdx := et.VariantIndex(n.Variant)
	l.b.CreateStore(l.b.ConstInt(i32, int64(variantIdx)), tagAddr)

	slots := enumPayloadSlots(et)
	payloadT := l.b.ArrayType(l.b.IntType(64), slots)
	payloadAddr := l.b.CreateGEP(enumT, addr, []Value{l.b.ConstInt(i32, 0), l.b.ConstInt(i32, 1)}, "")

	// Unlike a struct field, a payload slot is one pointer-sized i64 word
	// regardless of the variant field's own kind, so a composite field is
	// boxed here rather than embedded: it stores the same valueType pointer
	// lowerExpr already produced for it, just like a parameter or local
	// variable's slot would.
	fieldTypes := et.VariantFieldTypes[variantIdx]
	for i, f := range n.Fields {
		v := l.lowerExpr(f.Value, scope)
		slotAddr := l.b.CreateGEP(payloadT, payloadAddr, []Value{l.b.ConstInt(i32, 0), l.b.ConstInt(i32, int64(i))}, "")
		ft := fieldTypes[i]
		slotAsField := l.b.CreateBitCast(slotAddr, l.b.PointerType(l.valueType(ft)), "")
		l.b.CreateStore(v, slotAsField)
	}
	return addr
}

// storeValue stores v at addr, memcpy-ing a composite value's backing
// bytes rather than storing the pointer itself when the destination slot
// is the by-value storage of a struct/enum field (spec §4.H struct
// assignment is by value).
func (l *Lowerer) storeValue(addr, v Value, t *types.TypeInfo) {
	if t != nil && (t.IsObject() || t.IsEnum()) {
		l.b.CreateMemcpy(addr, v, l.structByteSize(t))
		return
	}
	l.b.CreateStore(v, addr)
}

// structByteSize is a conservative estimate used only to size intra-struct
// value-copy memcpys: 8 bytes per declared field covers every
// representation this package produces (pointer-sized composites/Str/Ref,
// or an at-most-8-byte scalar).
func (l *Lowerer) structByteSize(t *types.TypeInfo) int64 {
	if t == nil {
		return 8
	}
	if t.IsEnum() {
		return int64(4 + 8*enumPayloadSlots(t))
	}
	return int64(8 * len(t.FieldTypes))
}

// lowerIsDiscriminant computes the Bool result of `target is Enum.Variant`
// by comparing the stored tag; binding materialization (for the `then`
// branch) is handled separately by stmt.go's If lowering, which has access
// to the then-scope inference already built.
func (l *Lowerer) lowerIsDiscriminant(n *ast.IsExpr, scope *symbols.Scope) Value {
	et, ok := l.ctx.FindEnum(n.EnumName)
	if !ok {
		return l.b.ConstInt(l.b.IntType(1), 0)
	}
	addr := l.isExprTargetAddr(n, scope)
	enumT := l.structTypes[et.TypeName]
	i32 := l.b.IntType(32)
	tagAddr := l.b.CreateGEP(enumT, addr, []Value{l.b.ConstInt(i32, 0), l.b.ConstInt(i32, 0)}, "")
	tag := l.b.CreateLoad(i32, tagAddr, "")
	variantIdx := et.VariantIndex(n.Variant)
	return l.b.CreateICmp(IntEQ, tag, l.b.ConstInt(i32, int64(variantIdx)), "")
}

// isExprTargetAddr resolves the pointer to the enum value an `is`
// expression matches against. lowerExpr already resolves ref and
// non-ref targets alike down to that single pointer (see fieldAddr).
func (l *Lowerer) isExprTargetAddr(n *ast.IsExpr, scope *symbols.Scope) Value {
	return l.lowerExpr(n.Target, scope)
}

// lowerCall resolves an `@io` builtin call separately (it never has a
// Specialization at all, spec §4.E/§6) from an ordinary/namespaced/static/
// instance call, which always resolves through funcValues by
// CallExpr.ResolvedName.
func (l *Lowerer) lowerCall(n *ast.CallExpr, scope *symbols.Scope) Value {
	if ioName, ok := l.ioCallName(n, scope); ok {
		return l.lowerIOCall(ioName, n, scope)
	}

	fn, ok := l.funcValues[n.ResolvedName]
	if !ok {
		l.sink.Addf(diag.SeverityError, diag.E901, "lower", "call to unresolved function "+n.ResolvedName)
		return nil
	}

	args := l.lowerCallArgs(n, scope)
	name := ""
	if n.Type() != nil && !n.Type().IsVoid() && !n.Type().IsUnknown() {
		name = "call"
	}
	return l.b.CreateCall(fn, args, name)
}

func (l *Lowerer) lowerCallArgs(n *ast.CallExpr, scope *symbols.Scope) []Value {
	var args []Value
	if m, ok := n.Callee.(*ast.MemberExpr); ok {
		if recv, ok := l.instanceReceiver(m, scope); ok {
			args = append(args, recv)
		}
	}
	for _, a := range n.Args {
		args = append(args, l.lowerExpr(a, scope))
	}
	return args
}

// instanceReceiver returns the receiver argument an instance method call
// passes as its implicit first parameter (spec §4.F inferInstanceCall:
// "argTypes := append([recvType], ...)"), or ok=false when m.Target isn't
// an instance receiver (namespace or static-type access).
func (l *Lowerer) instanceReceiver(m *ast.MemberExpr, scope *symbols.Scope) (Value, bool) {
	if id, ok := m.Target.(*ast.Identifier); ok {
		if entry, found := scope.Lookup(id.Name); found && entry.IsNamespace() {
			return nil, false
		}
		if _, ok := l.ctx.FindStruct(id.Name); ok {
			return nil, false
		}
		if _, ok := l.ctx.FindEnum(id.Name); ok {
			return nil, false
		}
	}
	recvType := m.Target.Type()
	if recvType == nil {
		return nil, false
	}
	return l.lowerExpr(m.Target, scope), true
}

// ioCallName reports whether n is a call into the built-in `@io` module
// (spec §4.E "builtin @io calls resolve via FindFunction directly,
// ResolvedName is the bare builtin name, no Specialization is ever
// created"), mirroring infer's inferNamespaceCall detection exactly.
func (l *Lowerer) ioCallName(n *ast.CallExpr, scope *symbols.Scope) (string, bool) {
	m, ok := n.Callee.(*ast.MemberExpr)
	if !ok {
		return "", false
	}
	id, ok := m.Target.(*ast.Identifier)
	if !ok {
		return "", false
	}
	entry, found := scope.Lookup(id.Name)
	if !found || !entry.IsNamespace() {
		return "", false
	}
	imp, ok := entry.DeclNode.(*ast.ImportDecl)
	if !ok {
		return "", false
	}
	mod, ok := imp.ImportedModule.(*loader.Module)
	if !ok || !mod.IsBuiltin() {
		return "", false
	}
	return m.Name, true
}
