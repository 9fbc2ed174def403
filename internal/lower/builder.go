// Package lower implements IR lowering (component H): it walks a fully
// typed AST plus the specialization store built by package infer and emits
// SSA IR through an abstract Builder. Spec §4.H deliberately leaves the
// target IR builder unprescribed ("any target language can wire this to
// its local SSA library") — Builder is the thin interface this package
// lowers against, grounded on the exact call shapes
// `other_examples/houcy-llgo/decl.go` uses against github.com/axw/gollvm/
// llvm (CreateAlloca, CreateGEP, CreateCall, CreateBr/CreateCondBr,
// CreatePHI, CreateSwitch, entry-block insertion-point save/restore). A
// concrete adapter over gollvm lives in llvmbuilder.go; everything else in
// this package only ever talks to the interface, so it is testable without
// linking a real LLVM build.
package lower

// Value is an opaque SSA value handle.
type Value interface{}

// BasicBlock is an opaque basic-block handle.
type BasicBlock interface{}

// IRType is an opaque IR type handle — distinct from *types.TypeInfo,
// which is the compiler's own type representation and the thing IRType is
// lowered from (see irType in structs.go).
type IRType interface{}

// IntPredicate selects an integer comparison (spec §4.C Ord/Eq traits).
type IntPredicate int

const (
	IntEQ IntPredicate = iota
	IntNE
	IntSLT
	IntSLE
	IntSGT
	IntSGE
	IntULT
	IntULE
	IntUGT
	IntUGE
)

// FloatPredicate selects a floating-point comparison.
type FloatPredicate int

const (
	FloatOEQ FloatPredicate = iota
	FloatONE
	FloatOLT
	FloatOLE
	FloatOGT
	FloatOGE
)

// Builder is the minimal SSA-construction surface lowering needs.
type Builder interface {
	// Module level.
	DeclareFunction(name string, params []IRType, ret IRType, variadic bool) Value
	LookupFunction(name string) (Value, bool)
	DeclareOpaqueStruct(name string) IRType
	SetStructBody(t IRType, fields []IRType)
	LookupStruct(name string) (IRType, bool)
	// DeclareGlobalString materializes a Str literal as a global and
	// returns a pointer to its {data, length} struct, matching every other
	// composite-typed value in this package (see strField in strings.go).
	DeclareGlobalString(name, value string) Value

	// Types.
	IntType(bits int) IRType
	FloatType() IRType
	VoidType() IRType
	PointerType(elem IRType) IRType
	ArrayType(elem IRType, n int) IRType

	// Blocks / insertion point. SaveInsertPoint/RestoreInsertPoint
	// implement the entry-block-alloca save/restore spec §4.H requires.
	AppendBlock(fn Value, name string) BasicBlock
	SetInsertPoint(b BasicBlock)
	InsertBlock() BasicBlock
	HasTerminator(b BasicBlock) bool

	Param(fn Value, i int) Value

	CreateAlloca(t IRType, name string) Value
	CreateStore(v, ptr Value)
	CreateLoad(t IRType, ptr Value, name string) Value
	CreateGEP(t IRType, ptr Value, indices []Value, name string) Value
	CreateCall(fn Value, args []Value, name string) Value
	CreateBr(target BasicBlock)
	CreateCondBr(cond Value, thenB, elseB BasicBlock)
	CreateRet(v Value)
	CreateRetVoid()
	CreatePHI(t IRType, name string) Value
	AddIncoming(phi Value, vals []Value, blocks []BasicBlock)
	CreateSwitch(v Value, defaultB BasicBlock, numCases int) Value
	AddCase(sw Value, onVal Value, dest BasicBlock)
	CreateMemcpy(dst, src Value, sizeBytes int64)
	CreateBitCast(v Value, t IRType, name string) Value

	// Numeric conversions, needed for integer-promotion (spec §4.C Promote)
	// ahead of a binary trait call and for explicit int<->double casts.
	CreateZExt(v Value, t IRType, name string) Value
	CreateSExt(v Value, t IRType, name string) Value
	CreateTrunc(v Value, t IRType, name string) Value
	CreateSIToFP(v Value, t IRType, name string) Value
	CreateUIToFP(v Value, t IRType, name string) Value
	CreateFPToSI(v Value, t IRType, name string) Value
	CreateFPToUI(v Value, t IRType, name string) Value

	CreateAdd(l, r Value, name string) Value
	CreateFAdd(l, r Value, name string) Value
	CreateSub(l, r Value, name string) Value
	CreateFSub(l, r Value, name string) Value
	CreateMul(l, r Value, name string) Value
	CreateFMul(l, r Value, name string) Value
	CreateUDiv(l, r Value, name string) Value
	CreateSDiv(l, r Value, name string) Value
	CreateFDiv(l, r Value, name string) Value
	CreateURem(l, r Value, name string) Value
	CreateSRem(l, r Value, name string) Value
	CreateFRem(l, r Value, name string) Value
	CreateAnd(l, r Value, name string) Value
	CreateOr(l, r Value, name string) Value
	CreateXor(l, r Value, name string) Value
	CreateShl(l, r Value, name string) Value
	CreateLShr(l, r Value, name string) Value
	CreateAShr(l, r Value, name string) Value
	CreateNeg(v Value, name string) Value
	CreateFNeg(v Value, name string) Value
	CreateICmp(pred IntPredicate, l, r Value, name string) Value
	CreateFCmp(pred FloatPredicate, l, r Value, name string) Value

	ConstInt(t IRType, v int64) Value
	ConstFloat(t IRType, v float64) Value
	ConstNull(t IRType) Value
}
