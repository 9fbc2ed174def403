package lower

import (
	"strings"

	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/runtime"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/types"
)

// lowerIOCall lowers a call into the builtin `@io` module (spec: "a
// synthetic @io module supplies println, print, eprintln, eprint, format
// as variadic functions ... the validator checks that the first argument
// is a string literal and that the number of {} placeholders equals the
// number of following arguments" — already enforced before lowering ever
// runs, so this only has to split and emit). name is the bare method name
// ioCallName already resolved (expr.go).
func (l *Lowerer) lowerIOCall(name string, n *ast.CallExpr, scope *symbols.Scope) Value {
	lit, ok := n.Args[0].(*ast.StringLiteral)
	if !ok {
		return nil
	}
	segments := strings.Split(lit.Value, "{}")
	args := n.Args[1:]

	if name == "format" {
		return l.lowerFormat(segments, args, scope)
	}

	ptrT := l.b.PointerType(l.b.IntType(8))
	streamSym := runtime.SymGetStdout
	if name == "eprintln" || name == "eprint" {
		streamSym = runtime.SymGetStderr
	}
	stream := l.runtimeCall(streamSym, nil, ptrT, nil, "")

	for i, seg := range segments {
		if seg != "" {
			l.displayLiteral(stream, seg)
		}
		if i < len(args) {
			l.displayArg(stream, args[i], scope)
		}
	}
	if name == "println" || name == "eprintln" {
		l.displayLiteral(stream, "\n")
	}
	return nil
}

// displayLiteral writes a fixed source-text segment of a println/print/
// eprintln/eprint call through display_string, the same runtime entry
// point Display<Str> uses (intrinsics.go's wireDisplay), just against an
// explicit stream rather than the Display trait's hardcoded stdout — the
// only way eprint/eprintln can reach stderr.
func (l *Lowerer) displayLiteral(stream Value, text string) {
	str := l.b.DeclareGlobalString(".iostr", text)
	l.displayCall(stream, str, types.Str)
}

// displayArg writes one interpolated argument through its own Display
// extern (runtime.DisplaySymbol), mirroring wireDisplay's dispatch exactly
// but against the stream this call resolved rather than stdout.
func (l *Lowerer) displayArg(stream Value, arg ast.Expr, scope *symbols.Scope) {
	v := l.lowerExpr(arg, scope)
	l.displayCall(stream, v, arg.Type())
}

func (l *Lowerer) displayCall(stream, v Value, t *types.TypeInfo) {
	sym, ok := runtime.DisplaySymbol(t)
	if !ok {
		return
	}
	ptrT := l.b.PointerType(l.b.IntType(8))
	fn := l.runtimeExtern(sym, []IRType{ptrT, l.valueType(t)}, l.b.VoidType())
	l.b.CreateCall(fn, []Value{stream, v}, "")
}

// lowerFormat builds `format`'s Str result by folding strConcat over the
// literal segments and each argument's own string rendering (scalarToStr),
// left to right (spec: "format ... returns Str").
func (l *Lowerer) lowerFormat(segments []string, args []ast.Expr, scope *symbols.Scope) Value {
	var out Value
	emit := func(v Value) {
		if out == nil {
			out = v
			return
		}
		out = strConcat(l, out, v)
	}

	for i, seg := range segments {
		if seg != "" {
			emit(l.b.DeclareGlobalString(".fmtstr", seg))
		}
		if i < len(args) {
			emit(l.scalarToStr(args[i], scope))
		}
	}
	if out == nil {
		return l.b.DeclareGlobalString(".fmtstr", "")
	}
	return out
}

// scalarToStr renders one `format` argument as a Str. A Str argument
// passes through untouched; everything else is printed into a heap buffer
// via sprintf (spec §6 lists sprintf among the allowed runtime externs)
// and wrapped as a fresh Str pointing directly at that buffer — sprintf's
// NUL terminator is never counted by strlen, so the wrapped length is
// exactly the printed text.
func (l *Lowerer) scalarToStr(arg ast.Expr, scope *symbols.Scope) Value {
	v := l.lowerExpr(arg, scope)
	t := arg.Type()
	if t != nil && t.IsString() {
		return v
	}

	ptrT := l.b.PointerType(l.b.IntType(8))
	i64 := l.b.IntType(64)
	buf := l.runtimeCall(runtime.SymMalloc, []IRType{i64}, ptrT, []Value{l.b.ConstInt(i64, 32)}, "")

	fmtSpec := formatSpecFor(t)
	fmtStr := l.b.DeclareGlobalString(".fmtspec", fmtSpec+"\x00")
	fmtPtr := l.strField(fmtStr, 0)

	sprintf := l.variadicExtern(runtime.SymSprintf, []IRType{ptrT, ptrT}, l.b.IntType(32))
	l.b.CreateCall(sprintf, []Value{buf, fmtPtr, v}, "")

	length := l.runtimeCall(runtime.SymStrlen, []IRType{ptrT}, i64, []Value{buf}, "")

	strPtrT := l.b.PointerType(l.strType)
	raw := l.runtimeCall(runtime.SymCalloc, []IRType{i64, i64}, ptrT, []Value{l.b.ConstInt(i64, 1), l.b.ConstInt(i64, 16)}, "")
	str := l.b.CreateBitCast(raw, strPtrT, "")

	i32 := l.b.IntType(32)
	dataAddr := l.b.CreateGEP(l.strType, str, []Value{l.b.ConstInt(i32, 0), l.b.ConstInt(i32, 0)}, "")
	l.b.CreateStore(buf, dataAddr)
	lenAddr := l.b.CreateGEP(l.strType, str, []Value{l.b.ConstInt(i32, 0), l.b.ConstInt(i32, 1)}, "")
	l.b.CreateStore(length, lenAddr)
	return str
}

// formatSpecFor picks the printf-family conversion matching t's native
// width and signedness (spec §6's externs are plain C library functions,
// so their vararg promotion rules apply: anything narrower than int/double
// already arrives widened by promoteOperand's sibling call sites, but
// format's own scalarToStr passes the raw value, so the spec must match
// the value's own width exactly rather than assume promotion).
func formatSpecFor(t *types.TypeInfo) string {
	switch {
	case t == nil:
		return "%s"
	case t.IsBool():
		return "%d"
	case t.IsDouble():
		return "%f"
	case t.IsInteger():
		switch {
		case t.IntWidth() > 32 && t.IsSigned():
			return "%lld"
		case t.IntWidth() > 32:
			return "%llu"
		case t.IsSigned():
			return "%d"
		default:
			return "%u"
		}
	default:
		return "%s"
	}
}

// variadicExtern declares (or reuses) a variadic C extern — sprintf is the
// only one this package calls with a trailing `...` argument, so it gets
// its own declaration path rather than widening runtimeExtern's signature
// for every other (fixed-arity) caller.
func (l *Lowerer) variadicExtern(sym runtime.Symbol, params []IRType, ret IRType) Value {
	name := string(sym)
	if fn, ok := l.b.LookupFunction(name); ok {
		return fn
	}
	return l.b.DeclareFunction(name, params, ret, true)
}
