package lower

import (
	"testing"

	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/loader"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/traits"
	"github.com/jsa-lang/jsac/internal/types"
)

// ---- fake Builder -----------------------------------------------------
//
// A minimal in-memory Builder so this package's invariants (spec §4.H) can
// be tested without linking real LLVM — llvmbuilder.go's adapter is
// exercised by construction, not by unit test, same as builder.go's own
// doc comment describes the split.

type fakeType struct {
	kind   string // "int","float","void","ptr","array","struct"
	bits   int
	elem   *fakeType
	n      int
	name   string
	fields []*fakeType
}

type fakeBlock struct {
	name       string
	instrs     []string
	terminated bool
}

type fakeFn struct {
	name     string
	params   []*fakeType
	ret      *fakeType
	variadic bool
	blocks   []*fakeBlock
}

type fakeVal struct {
	op         string
	typ        *fakeType
	name       string
	intConst   int64
	floatConst float64
	strConst   string
	incoming   []Value
}

type fakeBuilder struct {
	funcs       map[string]*fakeFn
	structs     map[string]*fakeType
	globals     map[string]*fakeVal
	curBlock    *fakeBlock
	curFn       *fakeFn
	blockSeq    int
	calls       []string // names of every CreateCall target, in order
	memcpyCalls int
}

func newFakeBuilder() *fakeBuilder {
	return &fakeBuilder{
		funcs:   make(map[string]*fakeFn),
		structs: make(map[string]*fakeType),
		globals: make(map[string]*fakeVal),
	}
}

func (b *fakeBuilder) DeclareFunction(name string, params []IRType, ret IRType, variadic bool) Value {
	pts := make([]*fakeType, len(params))
	for i, p := range params {
		pts[i] = p.(*fakeType)
	}
	var retT *fakeType
	if ret != nil {
		retT = ret.(*fakeType)
	}
	fn := &fakeFn{name: name, params: pts, ret: retT, variadic: variadic}
	b.funcs[name] = fn
	return fn
}

func (b *fakeBuilder) LookupFunction(name string) (Value, bool) {
	fn, ok := b.funcs[name]
	if !ok {
		return nil, false
	}
	return fn, true
}

func (b *fakeBuilder) DeclareOpaqueStruct(name string) IRType {
	t := &fakeType{kind: "struct", name: name}
	b.structs[name] = t
	return t
}

func (b *fakeBuilder) SetStructBody(t IRType, fields []IRType) {
	ft := t.(*fakeType)
	ft.fields = make([]*fakeType, len(fields))
	for i, f := range fields {
		ft.fields[i] = f.(*fakeType)
	}
}

func (b *fakeBuilder) LookupStruct(name string) (IRType, bool) {
	t, ok := b.structs[name]
	if !ok {
		return nil, false
	}
	return t, ok
}

func (b *fakeBuilder) DeclareGlobalString(name, value string) Value {
	v := &fakeVal{op: "globalstr", strConst: value, typ: &fakeType{kind: "ptr"}}
	b.globals[name] = v
	return v
}

func (b *fakeBuilder) IntType(bits int) IRType  { return &fakeType{kind: "int", bits: bits} }
func (b *fakeBuilder) FloatType() IRType        { return &fakeType{kind: "float"} }
func (b *fakeBuilder) VoidType() IRType         { return &fakeType{kind: "void"} }
func (b *fakeBuilder) PointerType(e IRType) IRType {
	return &fakeType{kind: "ptr", elem: e.(*fakeType)}
}
func (b *fakeBuilder) ArrayType(e IRType, n int) IRType {
	return &fakeType{kind: "array", elem: e.(*fakeType), n: n}
}

func (b *fakeBuilder) AppendBlock(fn Value, name string) BasicBlock {
	f := fn.(*fakeFn)
	b.blockSeq++
	blk := &fakeBlock{name: name}
	f.blocks = append(f.blocks, blk)
	b.curFn = f
	return blk
}
func (b *fakeBuilder) SetInsertPoint(bl BasicBlock) { b.curBlock = bl.(*fakeBlock) }
func (b *fakeBuilder) InsertBlock() BasicBlock      { return b.curBlock }
func (b *fakeBuilder) HasTerminator(bl BasicBlock) bool {
	return bl.(*fakeBlock).terminated
}

func (b *fakeBuilder) Param(fn Value, i int) Value {
	f := fn.(*fakeFn)
	return &fakeVal{op: "param", typ: f.params[i], name: "param"}
}

func (b *fakeBuilder) CreateAlloca(t IRType, name string) Value {
	b.curBlock.instrs = append(b.curBlock.instrs, "alloca:"+name)
	return &fakeVal{op: "alloca", typ: &fakeType{kind: "ptr", elem: t.(*fakeType)}, name: name}
}
func (b *fakeBuilder) CreateStore(v, ptr Value) {
	b.curBlock.instrs = append(b.curBlock.instrs, "store")
}
func (b *fakeBuilder) CreateLoad(t IRType, ptr Value, name string) Value {
	b.curBlock.instrs = append(b.curBlock.instrs, "load:"+name)
	return &fakeVal{op: "load", typ: t.(*fakeType), name: name}
}
func (b *fakeBuilder) CreateGEP(t IRType, ptr Value, indices []Value, name string) Value {
	b.curBlock.instrs = append(b.curBlock.instrs, "gep")
	return &fakeVal{op: "gep", typ: &fakeType{kind: "ptr"}, name: name}
}
func (b *fakeBuilder) CreateCall(fn Value, args []Value, name string) Value {
	f := fn.(*fakeFn)
	b.calls = append(b.calls, f.name)
	b.curBlock.instrs = append(b.curBlock.instrs, "call:"+f.name)
	return &fakeVal{op: "call", typ: f.ret, name: name}
}
func (b *fakeBuilder) CreateBr(target BasicBlock) {
	b.curBlock.terminated = true
	b.curBlock.instrs = append(b.curBlock.instrs, "br:"+target.(*fakeBlock).name)
}
func (b *fakeBuilder) CreateCondBr(cond Value, thenB, elseB BasicBlock) {
	b.curBlock.terminated = true
	b.curBlock.instrs = append(b.curBlock.instrs, "condbr")
}
func (b *fakeBuilder) CreateRet(v Value) {
	b.curBlock.terminated = true
	b.curBlock.instrs = append(b.curBlock.instrs, "ret")
}
func (b *fakeBuilder) CreateRetVoid() {
	b.curBlock.terminated = true
	b.curBlock.instrs = append(b.curBlock.instrs, "retvoid")
}
func (b *fakeBuilder) CreatePHI(t IRType, name string) Value {
	return &fakeVal{op: "phi", typ: t.(*fakeType), name: name}
}
func (b *fakeBuilder) AddIncoming(phi Value, vals []Value, blocks []BasicBlock) {
	p := phi.(*fakeVal)
	p.incoming = append(p.incoming, vals...)
}
func (b *fakeBuilder) CreateSwitch(v Value, defaultB BasicBlock, numCases int) Value {
	b.curBlock.terminated = true
	return &fakeVal{op: "switch"}
}
func (b *fakeBuilder) AddCase(sw Value, onVal Value, dest BasicBlock) {}
func (b *fakeBuilder) CreateMemcpy(dst, src Value, sizeBytes int64) {
	b.memcpyCalls++
	b.curBlock.instrs = append(b.curBlock.instrs, "memcpy")
}
func (b *fakeBuilder) CreateBitCast(v Value, t IRType, name string) Value {
	return &fakeVal{op: "bitcast", typ: t.(*fakeType), name: name}
}

func (b *fakeBuilder) CreateZExt(v Value, t IRType, name string) Value {
	return &fakeVal{op: "zext", typ: t.(*fakeType)}
}
func (b *fakeBuilder) CreateSExt(v Value, t IRType, name string) Value {
	return &fakeVal{op: "sext", typ: t.(*fakeType)}
}
func (b *fakeBuilder) CreateTrunc(v Value, t IRType, name string) Value {
	return &fakeVal{op: "trunc", typ: t.(*fakeType)}
}
func (b *fakeBuilder) CreateSIToFP(v Value, t IRType, name string) Value {
	return &fakeVal{op: "sitofp", typ: t.(*fakeType)}
}
func (b *fakeBuilder) CreateUIToFP(v Value, t IRType, name string) Value {
	return &fakeVal{op: "uitofp", typ: t.(*fakeType)}
}
func (b *fakeBuilder) CreateFPToSI(v Value, t IRType, name string) Value {
	return &fakeVal{op: "fptosi", typ: t.(*fakeType)}
}
func (b *fakeBuilder) CreateFPToUI(v Value, t IRType, name string) Value {
	return &fakeVal{op: "fptoui", typ: t.(*fakeType)}
}

func binOp(op string) func(l, r Value, name string) Value {
	return func(l, r Value, name string) Value { return &fakeVal{op: op} }
}

func (b *fakeBuilder) CreateAdd(l, r Value, name string) Value  { return binOp("add")(l, r, name) }
func (b *fakeBuilder) CreateFAdd(l, r Value, name string) Value { return binOp("fadd")(l, r, name) }
func (b *fakeBuilder) CreateSub(l, r Value, name string) Value  { return binOp("sub")(l, r, name) }
func (b *fakeBuilder) CreateFSub(l, r Value, name string) Value { return binOp("fsub")(l, r, name) }
func (b *fakeBuilder) CreateMul(l, r Value, name string) Value  { return binOp("mul")(l, r, name) }
func (b *fakeBuilder) CreateFMul(l, r Value, name string) Value { return binOp("fmul")(l, r, name) }
func (b *fakeBuilder) CreateUDiv(l, r Value, name string) Value { return binOp("udiv")(l, r, name) }
func (b *fakeBuilder) CreateSDiv(l, r Value, name string) Value { return binOp("sdiv")(l, r, name) }
func (b *fakeBuilder) CreateFDiv(l, r Value, name string) Value { return binOp("fdiv")(l, r, name) }
func (b *fakeBuilder) CreateURem(l, r Value, name string) Value { return binOp("urem")(l, r, name) }
func (b *fakeBuilder) CreateSRem(l, r Value, name string) Value { return binOp("srem")(l, r, name) }
func (b *fakeBuilder) CreateFRem(l, r Value, name string) Value { return binOp("frem")(l, r, name) }
func (b *fakeBuilder) CreateAnd(l, r Value, name string) Value  { return binOp("and")(l, r, name) }
func (b *fakeBuilder) CreateOr(l, r Value, name string) Value   { return binOp("or")(l, r, name) }
func (b *fakeBuilder) CreateXor(l, r Value, name string) Value  { return binOp("xor")(l, r, name) }
func (b *fakeBuilder) CreateShl(l, r Value, name string) Value  { return binOp("shl")(l, r, name) }
func (b *fakeBuilder) CreateLShr(l, r Value, name string) Value { return binOp("lshr")(l, r, name) }
func (b *fakeBuilder) CreateAShr(l, r Value, name string) Value { return binOp("ashr")(l, r, name) }
func (b *fakeBuilder) CreateNeg(v Value, name string) Value     { return &fakeVal{op: "neg"} }
func (b *fakeBuilder) CreateFNeg(v Value, name string) Value    { return &fakeVal{op: "fneg"} }
func (b *fakeBuilder) CreateICmp(pred IntPredicate, l, r Value, name string) Value {
	return &fakeVal{op: "icmp", typ: &fakeType{kind: "int", bits: 1}}
}
func (b *fakeBuilder) CreateFCmp(pred FloatPredicate, l, r Value, name string) Value {
	return &fakeVal{op: "fcmp", typ: &fakeType{kind: "int", bits: 1}}
}

func (b *fakeBuilder) ConstInt(t IRType, v int64) Value {
	return &fakeVal{op: "constint", typ: t.(*fakeType), intConst: v}
}
func (b *fakeBuilder) ConstFloat(t IRType, v float64) Value {
	return &fakeVal{op: "constfloat", typ: t.(*fakeType), floatConst: v}
}
func (b *fakeBuilder) ConstNull(t IRType) Value {
	return &fakeVal{op: "constnull", typ: t.(*fakeType)}
}

var _ Builder = (*fakeBuilder)(nil)

// ---- test fixtures -----------------------------------------------------

func newTestLowerer(b *fakeBuilder) (*Lowerer, *traits.Registry) {
	reg := traits.NewRegistry()
	WireIntrinsics(reg, b)
	l := New(b, diag.NewSink(), reg)
	l.structTypes = make(map[string]IRType)
	l.funcValues = make(map[string]Value)
	l.ctx = types.NewContext("test")
	l.scopeOf = make(map[ast.Node]*symbols.Scope)
	l.strType = l.declareStrStruct()
	return l, reg
}

// startFunction gives the Lowerer a current function/entry block to emit
// into, mirroring lowerSpecialization's EnterEntry step (spec §4.H).
func startFunction(l *Lowerer, b *fakeBuilder, name string) {
	fn := b.DeclareFunction(name, nil, b.VoidType(), false)
	l.currentFn = fn
	entry := b.AppendBlock(fn, "entry")
	l.entryBlock = entry
	b.SetInsertPoint(entry)
}

func ident(name string, t *types.TypeInfo) *ast.Identifier {
	id := &ast.Identifier{Name: name}
	id.SetType(t)
	return id
}

// ---- tests --------------------------------------------------------------

// TestValueTypeIrTypeSplit verifies structs.go's central convention (spec
// §4.H, see DESIGN.md "valueType/irType split"): a struct's irType is its
// bare aggregate layout, valueType is exactly one pointer layer over it.
func TestValueTypeIrTypeSplit(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)

	point, _ := l.ctx.CreateObject("Point", []string{"x", "y"}, []*types.TypeInfo{types.I32, types.I32}, nil)
	l.declareStructs()

	irT := l.irType(point)
	st, ok := irT.(*fakeType)
	if !ok || st.kind != "struct" {
		t.Fatalf("irType(Point) = %#v, want the declared struct type", irT)
	}

	valT := l.valueType(point)
	pt, ok := valT.(*fakeType)
	if !ok || pt.kind != "ptr" || pt.elem != st {
		t.Fatalf("valueType(Point) = %#v, want a pointer wrapping irType(Point)", valT)
	}

	// Scalars and Refs are a pass-through: valueType has the same shape as
	// irType, not an extra pointer layer (each call allocates its own
	// fakeType, so compare structurally rather than by identity).
	scalarIR := l.irType(types.I32).(*fakeType)
	scalarVal := l.valueType(types.I32).(*fakeType)
	if scalarVal.kind != scalarIR.kind || scalarVal.bits != scalarIR.bits {
		t.Errorf("valueType(I32) = %#v, want the same shape as irType(I32) = %#v (pass-through)", scalarVal, scalarIR)
	}
}

// TestEntryAllocaHoisting verifies spec §4.H "all stack allocations hoist
// to the function entry block" — a later entryAlloca call made while the
// insertion point is somewhere else must still land in entry, and the
// caller's insertion point must be restored afterward.
func TestEntryAllocaHoisting(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)
	startFunction(l, b, "f")

	other := b.AppendBlock(l.currentFn, "other")
	b.SetInsertPoint(other)

	l.entryAlloca(l.irType(types.I32), "x")

	entryBlk := l.entryBlock.(*fakeBlock)
	if len(entryBlk.instrs) != 1 || entryBlk.instrs[0] != "alloca:x" {
		t.Fatalf("entry block instrs = %v, want exactly one alloca", entryBlk.instrs)
	}
	if b.InsertBlock().(*fakeBlock) != other {
		t.Fatalf("insertion point not restored to caller's block after entryAlloca")
	}
}

// TestDeclareStructsOrdering verifies spec §4.H invariant 1: a struct whose
// field embeds another struct is only given its body once the dependency's
// body is ready, and declareStructs itself reaches a fixed point rather
// than stalling or panicking on the ordering.
func TestDeclareStructsOrdering(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)

	point, _ := l.ctx.CreateObject("Point", []string{"x", "y"}, []*types.TypeInfo{types.I32, types.I32}, nil)
	l.ctx.CreateObject("Line", []string{"a", "b"}, []*types.TypeInfo{point, point}, nil)

	l.declareStructs()

	lineT := l.structTypes["Line"].(*fakeType)
	if len(lineT.fields) != 2 {
		t.Fatalf("Line struct body not set: %#v", lineT)
	}
	if lineT.fields[0].kind != "struct" || lineT.fields[0].name != "Point" {
		t.Fatalf("Line.a field = %#v, want the embedded Point struct type (spec: fields embed composites inline)", lineT.fields[0])
	}
}

// TestLowerLocalDeclBoxesScalarAndComposite verifies every local binding's
// IRValue is a slot address (spec §4.H: locals are boxed exactly like
// parameters), for both a scalar and a struct-typed declaration.
func TestLowerLocalDeclBoxesScalarAndComposite(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)
	startFunction(l, b, "f")

	point, _ := l.ctx.CreateObject("Point", []string{"x", "y"}, []*types.TypeInfo{types.I32, types.I32}, nil)
	l.declareStructs()

	scope := symbols.NewScope()
	scope.InsertVarDecl("n", types.I32, nil, 0)
	scope.InsertVarDecl("p", point, nil, 0)

	n := &ast.IntLiteral{Value: 3}
	n.SetType(types.I32)
	l.lowerLocalDecl("n", n, 0, scope)
	l.lowerLocalDecl("p", nil, 0, scope)

	nEntry, _ := scope.LookupLocal("n")
	pEntry, _ := scope.LookupLocal("p")
	if nEntry.IRValue == nil {
		t.Fatalf("scalar local got no slot address")
	}
	if pEntry.IRValue == nil {
		t.Fatalf("composite local got no slot address")
	}
	slot := pEntry.IRValue.(*fakeVal)
	if slot.typ.kind != "ptr" || slot.typ.elem.kind != "ptr" {
		t.Fatalf("composite local's slot type = %#v, want ptr-to-(ptr-to-struct) (boxed valueType)", slot.typ)
	}
}

// TestLowerAssignIdentifierIsAlwaysBoxedStore verifies the bug fixed this
// session (see DESIGN.md): an Identifier assignment target is always a
// plain store, even when its type is composite, because an Identifier's
// slot holds a pointer rather than embedded bytes.
func TestLowerAssignIdentifierIsAlwaysBoxedStore(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)
	startFunction(l, b, "f")

	point, _ := l.ctx.CreateObject("Point", []string{"x", "y"}, []*types.TypeInfo{types.I32, types.I32}, nil)
	l.declareStructs()

	scope := symbols.NewScope()
	entry := scope.InsertVarDecl("p", point, nil, 0)
	entry.IRValue = l.entryAlloca(l.valueType(point), "p")

	target := ident("p", point)
	value := ident("q", point)
	q := scope.InsertVarDecl("q", point, nil, 0)
	q.IRValue = l.entryAlloca(l.valueType(point), "q")

	before := b.memcpyCalls
	l.lowerAssign(&ast.Assign{Target: target, Op: "=", Value: value}, scope)
	if b.memcpyCalls != before {
		t.Fatalf("assigning to an Identifier target memcpy'd (%d calls); want a plain pointer store", b.memcpyCalls-before)
	}
}

// TestLowerAssignFieldTargetMemcpys verifies the complementary half: a
// MemberExpr (embedded storage) target of composite type must memcpy, not
// store a pointer, matching storeValue's by-value struct-assignment rule
// (spec §4.H).
func TestLowerAssignFieldTargetMemcpys(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)
	startFunction(l, b, "f")

	point, _ := l.ctx.CreateObject("Point", []string{"x", "y"}, []*types.TypeInfo{types.I32, types.I32}, nil)
	holder, _ := l.ctx.CreateObject("Holder", []string{"p"}, []*types.TypeInfo{point}, nil)
	l.declareStructs()

	scope := symbols.NewScope()
	hEntry := scope.InsertVarDecl("h", holder, nil, 0)
	hEntry.IRValue = l.entryAlloca(l.valueType(holder), "h")
	qEntry := scope.InsertVarDecl("q", point, nil, 0)
	qEntry.IRValue = l.entryAlloca(l.valueType(point), "q")

	target := &ast.MemberExpr{Target: ident("h", holder), Name: "p", FieldIndex: 0}
	target.SetType(point)
	value := ident("q", point)

	before := b.memcpyCalls
	l.lowerAssign(&ast.Assign{Target: target, Op: "=", Value: value}, scope)
	if b.memcpyCalls != before+1 {
		t.Fatalf("assigning to a struct field did not memcpy (memcpyCalls %d -> %d)", before, b.memcpyCalls)
	}
}

// TestBindIsPatternWholeVariantBind verifies spec glossary "whole-variant
// bind": the single binding's IRValue becomes the matched enum's own
// storage pointer directly, not a fresh local slot.
func TestBindIsPatternWholeVariantBind(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)
	startFunction(l, b, "f")

	msg, _ := l.ctx.CreateEnum("Msg",
		[]string{"Pong"},
		[][]string{{"n", "tag"}},
		[][]*types.TypeInfo{{types.I32, types.I32}},
		nil)
	l.declareStructs()

	scope := symbols.NewScope()
	mEntry := scope.InsertVarDecl("m", msg, nil, 0)
	mEntry.IRValue = l.entryAlloca(l.valueType(msg), "m")

	thenScope := symbols.NewScope()
	thenScope.InsertParam("s", msg, -1)

	isExpr := &ast.IsExpr{
		Target:           ident("m", msg),
		EnumName:         "Msg",
		Variant:          "Pong",
		WholeVariantBind: true,
		Bindings:         []*ast.PatternBinding{{Name: "s", ResolvedType: msg}},
	}
	then := &ast.Block{}
	l.scopeOf[then] = thenScope

	l.bindIsPattern(isExpr, then, scope)

	sEntry, _ := thenScope.LookupLocal("s")
	bound, ok := sEntry.IRValue.(*fakeVal)
	if !ok || bound.op != "load" || bound.name != "m" {
		t.Fatalf("whole-variant binding IRValue = %#v, want the one load of m's own storage pointer (see isExprTargetAddr)", sEntry.IRValue)
	}
}

// TestBindIsPatternFieldBinding verifies the per-field destructuring path:
// each non-wildcard binding gets its own fresh boxed local, distinct from
// the enum's storage.
func TestBindIsPatternFieldBinding(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)
	startFunction(l, b, "f")

	msg, _ := l.ctx.CreateEnum("Msg",
		[]string{"Ping", "Pong"},
		[][]string{{}, {"n"}},
		[][]*types.TypeInfo{{}, {types.I32}},
		nil)
	l.declareStructs()

	scope := symbols.NewScope()
	mEntry := scope.InsertVarDecl("m", msg, nil, 0)
	mEntry.IRValue = l.entryAlloca(l.valueType(msg), "m")

	thenScope := symbols.NewScope()
	thenScope.InsertParam("x", types.I32, -1)

	isExpr := &ast.IsExpr{
		Target:   ident("m", msg),
		EnumName: "Msg",
		Variant:  "Pong",
		Bindings: []*ast.PatternBinding{{Name: "x", ResolvedType: types.I32}},
	}
	then := &ast.Block{}
	l.scopeOf[then] = thenScope

	l.bindIsPattern(isExpr, then, scope)

	xEntry, _ := thenScope.LookupLocal("x")
	if xEntry.IRValue == nil {
		t.Fatalf("field binding got no storage")
	}
	if xEntry.IRValue == mEntry.IRValue {
		t.Fatalf("field binding must not alias the enum's own storage pointer")
	}
}

// TestLoopBlockPairs verifies that lowerWhile and lowerFor each pop the
// loop block pair they push (spec §4.H), so no enclosing loop remains once
// they return.
func TestLoopBlockPairs(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)
	startFunction(l, b, "f")

	scope := symbols.NewScope()
	cond := &ast.BoolLiteral{Value: true}
	cond.SetType(types.Bool)

	l.lowerWhile(&ast.While{Cond: cond, Body: &ast.Block{}}, scope)
	if len(l.loopStack) != 0 {
		t.Fatalf("loop stack not popped after lowerWhile returns")
	}

	l.lowerFor(&ast.For{Body: &ast.Block{}}, scope)
	if len(l.loopStack) != 0 {
		t.Fatalf("loop stack not popped after lowerFor returns")
	}

	if _, ok := l.currentLoop(); ok {
		t.Fatalf("currentLoop reported a loop outside any enclosing loop")
	}
}

// TestShortCircuitDiamond verifies spec §4.H: `&&`/`||` lower to a
// basic-block diamond with a two-incoming phi on the merge block, not a
// trait dispatch.
func TestShortCircuitDiamond(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)
	startFunction(l, b, "f")

	scope := symbols.NewScope()
	left := &ast.BoolLiteral{Value: true}
	left.SetType(types.Bool)
	right := &ast.BoolLiteral{Value: false}
	right.SetType(types.Bool)

	n := &ast.BinaryExpr{Op: "&&", Left: left, Right: right}
	n.SetType(types.Bool)

	result := l.lowerBinary(n, scope)
	phi, ok := result.(*fakeVal)
	if !ok || phi.op != "phi" {
		t.Fatalf("lowerBinary(&&) = %#v, want a phi value", result)
	}
	if len(phi.incoming) != 2 {
		t.Fatalf("short-circuit phi has %d incoming values, want 2", len(phi.incoming))
	}
}

// TestPromoteOperandWidensIntToDouble and the width-extension case verify
// spec §4.C's C#-style promotion: int+double promotes to double via a
// signed/unsigned-aware cast, and a narrower integer sign/zero-extends to
// the wider width.
func TestPromoteOperandWidensIntToDouble(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)

	v := &fakeVal{op: "constint"}
	out := l.promoteOperand(v, types.I32, types.Double)
	fv, ok := out.(*fakeVal)
	if !ok || fv.op != "sitofp" {
		t.Fatalf("promoteOperand(I32 -> Double) = %#v, want sitofp (I32 is signed)", out)
	}

	out2 := l.promoteOperand(&fakeVal{op: "constint"}, types.U32, types.Double)
	fv2, ok := out2.(*fakeVal)
	if !ok || fv2.op != "uitofp" {
		t.Fatalf("promoteOperand(U32 -> Double) = %#v, want uitofp", out2)
	}
}

func TestPromoteOperandWidensIntWidth(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)

	out := l.promoteOperand(&fakeVal{op: "constint"}, types.I32, types.I64)
	fv, ok := out.(*fakeVal)
	if !ok || fv.op != "sext" {
		t.Fatalf("promoteOperand(I32 -> I64) = %#v, want sext", out)
	}

	out2 := l.promoteOperand(&fakeVal{op: "constint"}, types.U32, types.U64)
	fv2, ok := out2.(*fakeVal)
	if !ok || fv2.op != "zext" {
		t.Fatalf("promoteOperand(U32 -> U64) = %#v, want zext", out2)
	}
}

// TestIOPrintlnDisplaysEachArg verifies io.go's println lowering: the
// literal segments and interpolated arguments are each routed through the
// matching display_* extern against stdout, with a trailing newline.
func TestIOPrintlnDisplaysEachArg(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)
	startFunction(l, b, "f")

	scope := symbols.NewScope()
	arg := &ast.IntLiteral{Value: 7}
	arg.SetType(types.I32)

	n := &ast.CallExpr{Args: []ast.Expr{&ast.StringLiteral{Value: "x={}"}, arg}}
	l.lowerIOCall("println", n, scope)

	wantSeq := []string{"get_stdout", "display_string", "display_i32", "display_string"}
	if len(b.calls) != len(wantSeq) {
		t.Fatalf("calls = %v, want %v", b.calls, wantSeq)
	}
	for i, w := range wantSeq {
		if b.calls[i] != w {
			t.Errorf("calls[%d] = %q, want %q", i, b.calls[i], w)
		}
	}
}

// TestIOEprintlnUsesStderr verifies io.go's stream routing: eprint/eprintln
// resolve against get_stderr, not get_stdout, since wireDisplay's own
// Display-trait codegen is hardcoded to stdout (see DESIGN.md).
func TestIOEprintlnUsesStderr(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)
	startFunction(l, b, "f")

	scope := symbols.NewScope()
	n := &ast.CallExpr{Args: []ast.Expr{&ast.StringLiteral{Value: "oops"}}}
	l.lowerIOCall("eprintln", n, scope)

	if len(b.calls) == 0 || b.calls[0] != "get_stderr" {
		t.Fatalf("calls = %v, want first call to be get_stderr", b.calls)
	}
}

// TestIOFormatReturnsStrWithoutPrinting verifies format builds its Str
// result via sprintf/strConcat rather than ever calling a display_* extern
// (spec §6 "format ... returns Str").
func TestIOFormatReturnsStrWithoutPrinting(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)
	startFunction(l, b, "f")

	scope := symbols.NewScope()
	arg := &ast.IntLiteral{Value: 42}
	arg.SetType(types.I32)

	n := &ast.CallExpr{Args: []ast.Expr{&ast.StringLiteral{Value: "n={}"}, arg}}
	result := l.lowerIOCall("format", n, scope)
	if result == nil {
		t.Fatalf("format returned nil, want a Str value")
	}
	for _, c := range b.calls {
		if c == "display_i32" || c == "display_string" {
			t.Fatalf("format called %q, a display extern — it must build a Str, not print", c)
		}
	}
	foundSprintf := false
	for _, c := range b.calls {
		if c == "sprintf" {
			foundSprintf = true
		}
	}
	if !foundSprintf {
		t.Fatalf("format never called sprintf for its non-Str argument; calls = %v", b.calls)
	}
}

// TestFormatSpecForWidthAndSignedness verifies the printf-conversion
// selection table (io.go's formatSpecFor) used by scalarToStr.
func TestFormatSpecForWidthAndSignedness(t *testing.T) {
	cases := []struct {
		t    *types.TypeInfo
		want string
	}{
		{types.I32, "%d"},
		{types.U32, "%u"},
		{types.I64, "%lld"},
		{types.U64, "%llu"},
		{types.Double, "%f"},
		{types.Bool, "%d"},
		{nil, "%s"},
	}
	for _, c := range cases {
		if got := formatSpecFor(c.t); got != c.want {
			t.Errorf("formatSpecFor(%v) = %q, want %q", c.t, got, c.want)
		}
	}
}

// TestDeclarePrototypesDualKeying verifies functions.go's documented
// invariant: a specialization is registered under both its bare mangled
// name (same-module calls) and its module-prefixed name (cross-module
// namespace calls).
func TestDeclarePrototypesDualKeying(t *testing.T) {
	b := newFakeBuilder()
	l, _ := newTestLowerer(b)

	ft := l.ctx.CreateFunction("add", []*types.TypeInfo{types.I32, types.I32}, types.I32, nil, false)
	types.AddSpecialization(ft, []*types.TypeInfo{types.I32, types.I32}, "add$i32_i32")

	l.mod = &loader.Module{Prefix: "math_lib"}
	l.declarePrototypes()

	bare, okBare := l.funcValues["add$i32_i32"]
	qualified, okQualified := l.funcValues["math_lib__add$i32_i32"]
	if !okBare || !okQualified || bare != qualified {
		t.Fatalf("specialization not registered under both bare and qualified keys")
	}
}
