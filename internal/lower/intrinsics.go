package lower

import (
	"github.com/jsa-lang/jsac/internal/runtime"
	"github.com/jsa-lang/jsac/internal/traits"
	"github.com/jsa-lang/jsac/internal/types"
)

// WireIntrinsics mutates the Codegen field of every built-in trait.Method
// registered by traits.NewRegistry in place, so operator dispatch (spec
// §4.C) bottoms out in real IR instructions. registerBuiltins deliberately
// leaves Codegen nil — traits stays free of any dependency on this
// package's Value representation — so lowering is what closes the loop,
// once per compilation (the same Registry is shared by every module).
func WireIntrinsics(reg *traits.Registry, b Builder) {
	numeric := []*types.TypeInfo{
		types.I8, types.I16, types.I32, types.I64,
		types.U8, types.U16, types.U32, types.U64, types.Usize, types.Double,
	}
	for _, self := range numeric {
		wireArithmetic(reg, b, self)
		wireOrd(reg, b, self)
		wireEq(reg, b, self)
		wireNeg(reg, b, self)
		wireDisplay(reg, b, self)
	}
	wireBoolOps(reg, b)
	wireStrOps(reg, b)
}

func setCodegen(reg *traits.Registry, trait traits.Name, self *types.TypeInfo, method string, fn func(operands []interface{}, ctx interface{}) interface{}) {
	impl, ok := reg.FindImpl(trait, self, nil)
	if !ok {
		return
	}
	m, ok := impl.Methods[method]
	if !ok {
		return
	}
	m.Codegen = fn
}

func operands(ops []interface{}) (Value, Value) {
	if len(ops) < 2 {
		var zero Value
		return zero, zero
	}
	return ops[0].(Value), ops[1].(Value)
}

func wireArithmetic(reg *traits.Registry, b Builder, self *types.TypeInfo) {
	isFloat := self.IsDouble()
	isSigned := self.IsSigned()

	bin := func(intOp, floatOp func(l, r Value, name string) Value) func([]interface{}, interface{}) interface{} {
		return func(ops []interface{}, ctx interface{}) interface{} {
			l, r := operands(ops)
			if isFloat {
				return floatOp(l, r, "")
			}
			return intOp(l, r, "")
		}
	}

	setCodegen(reg, traits.Add, self, "add", bin(b.CreateAdd, b.CreateFAdd))
	setCodegen(reg, traits.AddAssign, self, "add_assign", bin(b.CreateAdd, b.CreateFAdd))
	setCodegen(reg, traits.Sub, self, "sub", bin(b.CreateSub, b.CreateFSub))
	setCodegen(reg, traits.SubAssign, self, "sub_assign", bin(b.CreateSub, b.CreateFSub))
	setCodegen(reg, traits.Mul, self, "mul", bin(b.CreateMul, b.CreateFMul))
	setCodegen(reg, traits.MulAssign, self, "mul_assign", bin(b.CreateMul, b.CreateFMul))

	div := func(ops []interface{}, ctx interface{}) interface{} {
		l, r := operands(ops)
		switch {
		case isFloat:
			return b.CreateFDiv(l, r, "")
		case isSigned:
			return b.CreateSDiv(l, r, "")
		default:
			return b.CreateUDiv(l, r, "")
		}
	}
	setCodegen(reg, traits.Div, self, "div", div)
	setCodegen(reg, traits.DivAssign, self, "div_assign", div)

	if !isFloat {
		rem := func(ops []interface{}, ctx interface{}) interface{} {
			l, r := operands(ops)
			if isSigned {
				return b.CreateSRem(l, r, "")
			}
			return b.CreateURem(l, r, "")
		}
		setCodegen(reg, traits.Rem, self, "rem", rem)

		setCodegen(reg, traits.BitAnd, self, "and", bin(b.CreateAnd, b.CreateAnd))
		setCodegen(reg, traits.BitOr, self, "or", bin(b.CreateOr, b.CreateOr))
		setCodegen(reg, traits.BitXor, self, "xor", bin(b.CreateXor, b.CreateXor))
		setCodegen(reg, traits.Shl, self, "shl", bin(b.CreateShl, b.CreateShl))

		shr := func(ops []interface{}, ctx interface{}) interface{} {
			l, r := operands(ops)
			if isSigned {
				return b.CreateAShr(l, r, "")
			}
			return b.CreateLShr(l, r, "")
		}
		setCodegen(reg, traits.Shr, self, "shr", shr)
	}
}

func wireOrd(reg *traits.Registry, b Builder, self *types.TypeInfo) {
	isFloat := self.IsDouble()
	isSigned := self.IsSigned()

	cmp := func(intPred IntPredicate, floatPred FloatPredicate) func([]interface{}, interface{}) interface{} {
		return func(ops []interface{}, ctx interface{}) interface{} {
			l, r := operands(ops)
			if isFloat {
				return b.CreateFCmp(floatPred, l, r, "")
			}
			return b.CreateICmp(intPred, l, r, "")
		}
	}

	slt, sle, sgt, sge := IntSLT, IntSLE, IntSGT, IntSGE
	ult, ule, ugt, uge := IntULT, IntULE, IntUGT, IntUGE
	pickLT, pickLE, pickGT, pickGE := slt, sle, sgt, sge
	if !isSigned {
		pickLT, pickLE, pickGT, pickGE = ult, ule, ugt, uge
	}

	setCodegen(reg, traits.Ord, self, "lt", cmp(pickLT, FloatOLT))
	setCodegen(reg, traits.Ord, self, "le", cmp(pickLE, FloatOLE))
	setCodegen(reg, traits.Ord, self, "gt", cmp(pickGT, FloatOGT))
	setCodegen(reg, traits.Ord, self, "ge", cmp(pickGE, FloatOGE))
}

func wireEq(reg *traits.Registry, b Builder, self *types.TypeInfo) {
	isFloat := self.IsDouble()
	eqFn := func(ops []interface{}, ctx interface{}) interface{} {
		l, r := operands(ops)
		if isFloat {
			return b.CreateFCmp(FloatOEQ, l, r, "")
		}
		return b.CreateICmp(IntEQ, l, r, "")
	}
	neFn := func(ops []interface{}, ctx interface{}) interface{} {
		l, r := operands(ops)
		if isFloat {
			return b.CreateFCmp(FloatONE, l, r, "")
		}
		return b.CreateICmp(IntNE, l, r, "")
	}
	setCodegen(reg, traits.Eq, self, "eq", eqFn)
	setCodegen(reg, traits.Eq, self, "ne", neFn)
}

func wireNeg(reg *traits.Registry, b Builder, self *types.TypeInfo) {
	isFloat := self.IsDouble()
	setCodegen(reg, traits.Neg, self, "neg", func(ops []interface{}, ctx interface{}) interface{} {
		v := ops[0].(Value)
		if isFloat {
			return b.CreateFNeg(v, "")
		}
		return b.CreateNeg(v, "")
	})
}

func wireBoolOps(reg *traits.Registry, b Builder) {
	setCodegen(reg, traits.Eq, types.Bool, "eq", func(ops []interface{}, ctx interface{}) interface{} {
		l, r := operands(ops)
		return b.CreateICmp(IntEQ, l, r, "")
	})
	setCodegen(reg, traits.Eq, types.Bool, "ne", func(ops []interface{}, ctx interface{}) interface{} {
		l, r := operands(ops)
		return b.CreateICmp(IntNE, l, r, "")
	})
	setCodegen(reg, traits.Not, types.Bool, "not", func(ops []interface{}, ctx interface{}) interface{} {
		v := ops[0].(Value)
		return b.CreateXor(v, b.ConstInt(b.IntType(1), 1), "")
	})
	wireDisplay(reg, b, types.Bool)
}

func wireStrOps(reg *traits.Registry, b Builder) {
	setCodegen(reg, traits.Eq, types.Str, "eq", func(ops []interface{}, ctx interface{}) interface{} {
		l, r := operands(ops)
		return strEqual(ctx.(*Lowerer), l, r)
	})
	setCodegen(reg, traits.Add, types.Str, "add", func(ops []interface{}, ctx interface{}) interface{} {
		l, r := operands(ops)
		return strConcat(ctx.(*Lowerer), l, r)
	})
	wireDisplay(reg, b, types.Str)
}

// wireDisplay routes `Display` through the matching runtime display_*
// extern (spec §6), fetching the process stdout handle via get_stdout.
func wireDisplay(reg *traits.Registry, b Builder, self *types.TypeInfo) {
	sym, ok := runtime.DisplaySymbol(self)
	if !ok {
		return
	}
	setCodegen(reg, traits.Display, self, "display", func(ops []interface{}, ctx interface{}) interface{} {
		l := ctx.(*Lowerer)
		v := ops[0].(Value)
		ptrT := l.b.PointerType(l.b.IntType(8))
		stdout := l.runtimeCall(runtime.SymGetStdout, nil, ptrT, nil, "")
		fn := l.runtimeExtern(sym, []IRType{ptrT, l.valueType(self)}, l.b.VoidType())
		return l.b.CreateCall(fn, []Value{stdout, v}, "")
	})
}
