package lower

import "github.com/jsa-lang/jsac/internal/runtime"

// strField GEPs into a Str value's data (index 0) or length (index 1) field
// (spec §6 layout, runtime.DefaultStrLayout).
func (l *Lowerer) strField(v Value, fieldIndex int) Value {
	i32 := l.b.IntType(32)
	idx := []Value{l.b.ConstInt(i32, 0), l.b.ConstInt(i32, int64(fieldIndex))}
	ptr := l.b.CreateGEP(l.strType, v, idx, "")
	fieldT := l.b.PointerType(l.b.IntType(8))
	if fieldIndex == runtime.DefaultStrLayout.LengthFieldIndex {
		fieldT = l.b.IntType(64)
	}
	return l.b.CreateLoad(fieldT, ptr, "")
}

// strEqual implements Eq for Str (spec §6: "equality compares length then
// memcmp"), short-circuiting on a length mismatch without ever calling
// memcmp.
func strEqual(l *Lowerer, left, right Value) Value {
	lenL := l.strField(left, runtime.DefaultStrLayout.LengthFieldIndex)
	lenR := l.strField(right, runtime.DefaultStrLayout.LengthFieldIndex)
	lenEq := l.b.CreateICmp(IntEQ, lenL, lenR, "")

	memcmpBlock := l.b.AppendBlock(l.currentFn, "streq.cmp")
	mergeBlock := l.b.AppendBlock(l.currentFn, "streq.merge")
	falseBlock := l.b.InsertBlock()
	l.b.CreateCondBr(lenEq, memcmpBlock, mergeBlock)

	l.b.SetInsertPoint(memcmpBlock)
	dataL := l.strField(left, runtime.DefaultStrLayout.DataFieldIndex)
	dataR := l.strField(right, runtime.DefaultStrLayout.DataFieldIndex)
	ptrT := l.b.PointerType(l.b.IntType(8))
	cmp := l.runtimeCall(runtime.SymMemcmp, []IRType{ptrT, ptrT, l.b.IntType(64)}, l.b.IntType(32), []Value{dataL, dataR, lenL}, "")
	memcmpEq := l.b.CreateICmp(IntEQ, cmp, l.b.ConstInt(l.b.IntType(32), 0), "")
	l.b.CreateBr(mergeBlock)
	memcmpEnd := l.b.InsertBlock()

	l.b.SetInsertPoint(mergeBlock)
	phi := l.b.CreatePHI(l.b.IntType(1), "")
	l.b.AddIncoming(phi, []Value{l.b.ConstInt(l.b.IntType(1), 0), memcmpEq}, []BasicBlock{falseBlock, memcmpEnd})
	return phi
}

// strConcat implements Add for Str: allocate total-length bytes via
// alloc_string, then memcpy each operand's data into the result in turn
// (spec §4.H "string concatenation is special-cased").
func strConcat(l *Lowerer, left, right Value) Value {
	lenL := l.strField(left, runtime.DefaultStrLayout.LengthFieldIndex)
	lenR := l.strField(right, runtime.DefaultStrLayout.LengthFieldIndex)
	total := l.b.CreateAdd(lenL, lenR, "")

	strPtrT := l.b.PointerType(l.strType)
	result := l.runtimeCall(runtime.SymAllocString, []IRType{l.b.IntType(64)}, strPtrT, []Value{total}, "")

	dataL := l.strField(left, runtime.DefaultStrLayout.DataFieldIndex)
	dataR := l.strField(right, runtime.DefaultStrLayout.DataFieldIndex)
	resultData := l.strField(result, runtime.DefaultStrLayout.DataFieldIndex)

	ptrT := l.b.PointerType(l.b.IntType(8))
	l.runtimeCall(runtime.SymMemcpy, []IRType{ptrT, ptrT, l.b.IntType(64)}, ptrT, []Value{resultData, dataL, lenL}, "")

	tailOff := []Value{lenL}
	tail := l.b.CreateGEP(l.b.IntType(8), resultData, tailOff, "")
	l.runtimeCall(runtime.SymMemcpy, []IRType{ptrT, ptrT, l.b.IntType(64)}, ptrT, []Value{tail, dataR, lenR}, "")

	return result
}
