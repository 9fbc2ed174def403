package lower

import "github.com/axw/gollvm/llvm"

// LLVMBuilder is the production Builder adapter, wiring every abstract
// method this package calls against github.com/axw/gollvm/llvm the way
// other_examples/houcy-llgo/decl.go drives it: one llvm.Module, one
// llvm.Builder cursor, AddFunction/AddBasicBlock/SetInsertPointAtEnd for
// structure, and the ordinary Create* builder calls for everything else.
// DeclareOpaqueStruct records each named struct in a by-name map;
// LookupFunction asks the module for the function by name on every call.
type LLVMBuilder struct {
	mod     llvm.Module
	b       llvm.Builder
	structs map[string]llvm.Type
	memcpy  llvm.Value
}

// NewLLVMBuilder creates an adapter targeting a fresh module named
// moduleName (spec §4.H: one compiler invocation emits one LLVM module per
// program, named after the entry file).
func NewLLVMBuilder(moduleName string) *LLVMBuilder {
	return &LLVMBuilder{
		mod:     llvm.NewModule(moduleName),
		b:       llvm.NewBuilder(),
		structs: make(map[string]llvm.Type),
	}
}

// Module returns the underlying llvm.Module, for callers that go on to
// verify or emit it (spec §4.H leaves the IR builder's own output format a
// non-goal of this package).
func (lb *LLVMBuilder) Module() llvm.Module { return lb.mod }

func toT(t IRType) llvm.Type   { return t.(llvm.Type) }
func toV(v Value) llvm.Value   { return v.(llvm.Value) }
func toB(b BasicBlock) llvm.BasicBlock { return b.(llvm.BasicBlock) }

func vals(vs []Value) []llvm.Value {
	out := make([]llvm.Value, len(vs))
	for i, v := range vs {
		out[i] = toV(v)
	}
	return out
}

func typeList(ts []IRType) []llvm.Type {
	out := make([]llvm.Type, len(ts))
	for i, t := range ts {
		out[i] = toT(t)
	}
	return out
}

func (lb *LLVMBuilder) DeclareFunction(name string, params []IRType, ret IRType, variadic bool) Value {
	ft := llvm.FunctionType(toT(ret), typeList(params), variadic)
	return llvm.AddFunction(lb.mod, name, ft)
}

func (lb *LLVMBuilder) LookupFunction(name string) (Value, bool) {
	fn := lb.mod.NamedFunction(name)
	if fn.IsNil() {
		return nil, false
	}
	return fn, true
}

func (lb *LLVMBuilder) DeclareOpaqueStruct(name string) IRType {
	t := llvm.GlobalContext().StructCreateNamed(name)
	lb.structs[name] = t
	return t
}

func (lb *LLVMBuilder) SetStructBody(t IRType, fields []IRType) {
	toT(t).StructSetBody(typeList(fields), false)
}

func (lb *LLVMBuilder) LookupStruct(name string) (IRType, bool) {
	t, ok := lb.structs[name]
	return t, ok
}

// DeclareGlobalString materializes value as a private character-array
// global, then wraps a {data, length} Str global around a constant GEP to
// its first byte, returning a pointer to that Str global — matching the
// "Str values are always a pointer to their struct" convention the rest of
// this package assumes (builder.go, strings.go).
func (lb *LLVMBuilder) DeclareGlobalString(name, value string) Value {
	charsT := llvm.ArrayType(llvm.Int8Type(), len(value))
	chars := llvm.AddGlobal(lb.mod, charsT, name+".bytes")
	chars.SetInitializer(llvm.ConstString(value, false))
	chars.SetLinkage(llvm.PrivateLinkage)
	chars.SetGlobalConstant(true)

	zero := llvm.ConstInt(llvm.Int32Type(), 0, false)
	dataPtr := llvm.ConstGEP(chars, []llvm.Value{zero, zero})

	strT, ok := lb.structs[strStructName]
	if !ok {
		strT = llvm.GlobalContext().StructCreateNamed(strStructName)
		strT.StructSetBody([]llvm.Type{llvm.PointerType(llvm.Int8Type(), 0), llvm.Int64Type()}, false)
		lb.structs[strStructName] = strT
	}
	length := llvm.ConstInt(llvm.Int64Type(), uint64(len(value)), false)
	init := llvm.ConstNamedStruct(strT, []llvm.Value{dataPtr, length})

	g := llvm.AddGlobal(lb.mod, strT, name)
	g.SetInitializer(init)
	g.SetLinkage(llvm.PrivateLinkage)
	g.SetGlobalConstant(true)
	return g
}

func (lb *LLVMBuilder) IntType(bits int) IRType   { return llvm.IntType(bits) }
func (lb *LLVMBuilder) FloatType() IRType         { return llvm.DoubleType() }
func (lb *LLVMBuilder) VoidType() IRType          { return llvm.VoidType() }
func (lb *LLVMBuilder) PointerType(elem IRType) IRType { return llvm.PointerType(toT(elem), 0) }
func (lb *LLVMBuilder) ArrayType(elem IRType, n int) IRType { return llvm.ArrayType(toT(elem), n) }

func (lb *LLVMBuilder) AppendBlock(fn Value, name string) BasicBlock {
	return llvm.AddBasicBlock(toV(fn), name)
}
func (lb *LLVMBuilder) SetInsertPoint(b BasicBlock) { lb.b.SetInsertPointAtEnd(toB(b)) }
func (lb *LLVMBuilder) InsertBlock() BasicBlock     { return lb.b.GetInsertBlock() }
func (lb *LLVMBuilder) HasTerminator(b BasicBlock) bool {
	last := toB(b).LastInstruction()
	return !last.IsNil() && !last.IsATerminatorInst().IsNil()
}

func (lb *LLVMBuilder) Param(fn Value, i int) Value { return toV(fn).Param(i) }

func (lb *LLVMBuilder) CreateAlloca(t IRType, name string) Value {
	return lb.b.CreateAlloca(toT(t), name)
}
func (lb *LLVMBuilder) CreateStore(v, ptr Value) { lb.b.CreateStore(toV(v), toV(ptr)) }
func (lb *LLVMBuilder) CreateLoad(t IRType, ptr Value, name string) Value {
	return lb.b.CreateLoad(toV(ptr), name)
}
func (lb *LLVMBuilder) CreateGEP(t IRType, ptr Value, indices []Value, name string) Value {
	return lb.b.CreateGEP(toV(ptr), vals(indices), name)
}
func (lb *LLVMBuilder) CreateCall(fn Value, args []Value, name string) Value {
	return lb.b.CreateCall(toV(fn), vals(args), name)
}
func (lb *LLVMBuilder) CreateBr(target BasicBlock) { lb.b.CreateBr(toB(target)) }
func (lb *LLVMBuilder) CreateCondBr(cond Value, thenB, elseB BasicBlock) {
	lb.b.CreateCondBr(toV(cond), toB(thenB), toB(elseB))
}
func (lb *LLVMBuilder) CreateRet(v Value) { lb.b.CreateRet(toV(v)) }
func (lb *LLVMBuilder) CreateRetVoid()     { lb.b.CreateRetVoid() }
func (lb *LLVMBuilder) CreatePHI(t IRType, name string) Value {
	return lb.b.CreatePHI(toT(t), name)
}
func (lb *LLVMBuilder) AddIncoming(phi Value, vs []Value, bs []BasicBlock) {
	blocks := make([]llvm.BasicBlock, len(bs))
	for i, b := range bs {
		blocks[i] = toB(b)
	}
	toV(phi).AddIncoming(vals(vs), blocks)
}
func (lb *LLVMBuilder) CreateSwitch(v Value, defaultB BasicBlock, numCases int) Value {
	return lb.b.CreateSwitch(toV(v), toB(defaultB), numCases)
}
func (lb *LLVMBuilder) AddCase(sw Value, onVal Value, dest BasicBlock) {
	toV(sw).AddCase(toV(onVal), toB(dest))
}

// CreateMemcpy lazily declares the llvm.memcpy.p0.p0.i64 intrinsic and
// calls it with a constant-false isvolatile flag — this package's only
// byte-copy need (storeValue's struct-by-value assignment), so no other
// intrinsic is wired.
func (lb *LLVMBuilder) CreateMemcpy(dst, src Value, sizeBytes int64) {
	if lb.memcpy.IsNil() {
		ptrT := llvm.PointerType(llvm.Int8Type(), 0)
		ft := llvm.FunctionType(llvm.VoidType(), []llvm.Type{ptrT, ptrT, llvm.Int64Type(), llvm.Int1Type()}, false)
		lb.memcpy = llvm.AddFunction(lb.mod, "llvm.memcpy.p0.p0.i64", ft)
	}
	size := llvm.ConstInt(llvm.Int64Type(), uint64(sizeBytes), false)
	volatile := llvm.ConstInt(llvm.Int1Type(), 0, false)
	lb.b.CreateCall(lb.memcpy, []llvm.Value{toV(dst), toV(src), size, volatile}, "")
}

func (lb *LLVMBuilder) CreateBitCast(v Value, t IRType, name string) Value {
	return lb.b.CreateBitCast(toV(v), toT(t), name)
}

func (lb *LLVMBuilder) CreateZExt(v Value, t IRType, name string) Value {
	return lb.b.CreateZExt(toV(v), toT(t), name)
}
func (lb *LLVMBuilder) CreateSExt(v Value, t IRType, name string) Value {
	return lb.b.CreateSExt(toV(v), toT(t), name)
}
func (lb *LLVMBuilder) CreateTrunc(v Value, t IRType, name string) Value {
	return lb.b.CreateTrunc(toV(v), toT(t), name)
}
func (lb *LLVMBuilder) CreateSIToFP(v Value, t IRType, name string) Value {
	return lb.b.CreateSIToFP(toV(v), toT(t), name)
}
func (lb *LLVMBuilder) CreateUIToFP(v Value, t IRType, name string) Value {
	return lb.b.CreateUIToFP(toV(v), toT(t), name)
}
func (lb *LLVMBuilder) CreateFPToSI(v Value, t IRType, name string) Value {
	return lb.b.CreateFPToSI(toV(v), toT(t), name)
}
func (lb *LLVMBuilder) CreateFPToUI(v Value, t IRType, name string) Value {
	return lb.b.CreateFPToUI(toV(v), toT(t), name)
}

func (lb *LLVMBuilder) CreateAdd(l, r Value, name string) Value  { return lb.b.CreateAdd(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateFAdd(l, r Value, name string) Value { return lb.b.CreateFAdd(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateSub(l, r Value, name string) Value  { return lb.b.CreateSub(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateFSub(l, r Value, name string) Value { return lb.b.CreateFSub(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateMul(l, r Value, name string) Value  { return lb.b.CreateMul(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateFMul(l, r Value, name string) Value { return lb.b.CreateFMul(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateUDiv(l, r Value, name string) Value { return lb.b.CreateUDiv(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateSDiv(l, r Value, name string) Value { return lb.b.CreateSDiv(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateFDiv(l, r Value, name string) Value { return lb.b.CreateFDiv(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateURem(l, r Value, name string) Value { return lb.b.CreateURem(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateSRem(l, r Value, name string) Value { return lb.b.CreateSRem(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateFRem(l, r Value, name string) Value { return lb.b.CreateFRem(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateAnd(l, r Value, name string) Value  { return lb.b.CreateAnd(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateOr(l, r Value, name string) Value   { return lb.b.CreateOr(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateXor(l, r Value, name string) Value  { return lb.b.CreateXor(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateShl(l, r Value, name string) Value  { return lb.b.CreateShl(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateLShr(l, r Value, name string) Value { return lb.b.CreateLShr(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateAShr(l, r Value, name string) Value { return lb.b.CreateAShr(toV(l), toV(r), name) }
func (lb *LLVMBuilder) CreateNeg(v Value, name string) Value     { return lb.b.CreateNeg(toV(v), name) }
func (lb *LLVMBuilder) CreateFNeg(v Value, name string) Value    { return lb.b.CreateFNeg(toV(v), name) }

var intPredicates = map[IntPredicate]llvm.IntPredicate{
	IntEQ:  llvm.IntEQ,
	IntNE:  llvm.IntNE,
	IntSLT: llvm.IntSLT,
	IntSLE: llvm.IntSLE,
	IntSGT: llvm.IntSGT,
	IntSGE: llvm.IntSGE,
	IntULT: llvm.IntULT,
	IntULE: llvm.IntULE,
	IntUGT: llvm.IntUGT,
	IntUGE: llvm.IntUGE,
}

var floatPredicates = map[FloatPredicate]llvm.FloatPredicate{
	FloatOEQ: llvm.FloatOEQ,
	FloatONE: llvm.FloatONE,
	FloatOLT: llvm.FloatOLT,
	FloatOLE: llvm.FloatOLE,
	FloatOGT: llvm.FloatOGT,
	FloatOGE: llvm.FloatOGE,
}

func (lb *LLVMBuilder) CreateICmp(pred IntPredicate, l, r Value, name string) Value {
	return lb.b.CreateICmp(intPredicates[pred], toV(l), toV(r), name)
}
func (lb *LLVMBuilder) CreateFCmp(pred FloatPredicate, l, r Value, name string) Value {
	return lb.b.CreateFCmp(floatPredicates[pred], toV(l), toV(r), name)
}

func (lb *LLVMBuilder) ConstInt(t IRType, v int64) Value {
	return llvm.ConstInt(toT(t), uint64(v), true)
}
func (lb *LLVMBuilder) ConstFloat(t IRType, v float64) Value { return llvm.ConstFloat(toT(t), v) }
func (lb *LLVMBuilder) ConstNull(t IRType) Value             { return llvm.ConstNull(toT(t)) }
