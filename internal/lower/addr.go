package lower

import (
	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/types"
)

// isComposite reports whether t is embedded by value wherever it is
// directly addressable storage — a struct field or an array element (see
// declareStructs, stackArrayType) — rather than boxed behind a slot the way
// a local variable or parameter holds it. A MemberExpr/IndexExpr's field
// or element address for such a type already equals its valueType
// representation (a GEP to embedded storage is itself a pointer), so
// expr.go skips the extra load that a local/parameter reference needs.
func isComposite(t *types.TypeInfo) bool {
	return t != nil && (t.IsObject() || t.IsEnum() || t.IsString())
}

// lowerAddr resolves e to the address an assignment writes through: the
// entry-block alloca slot for a local or parameter (holding that variable's
// valueType, one load away from lowerExpr's result), a field GEP for a
// member access, or an element GEP for an index access. Assign/IncDec/
// `delete` use this for their target.
func (l *Lowerer) lowerAddr(e ast.Expr, scope *symbols.Scope) Value {
	switch n := e.(type) {
	case *ast.Identifier:
		entry, ok := scope.Lookup(n.Name)
		if !ok {
			return nil
		}
		v, _ := entry.IRValue.(Value)
		return v
	case *ast.MemberExpr:
		return l.fieldAddr(n, scope)
	case *ast.IndexExpr:
		return l.indexAddr(n, scope)
	default:
		return nil
	}
}

// fieldAddr GEPs into the struct backing m.Target. The base is always
// m.Target's own rvalue (lowerExpr, not lowerAddr): lowerExpr already
// resolves a local/parameter down to the single pointer it denotes
// (loading through its slot exactly once), and for a nested field or array
// element it returns the embedded value's address directly — either way
// the result is the bare struct's address, with no extra indirection to
// strip, ref or not.
func (l *Lowerer) fieldAddr(m *ast.MemberExpr, scope *symbols.Scope) Value {
	base := l.lowerExpr(m.Target, scope)
	targetType := m.Target.Type()
	if targetType != nil && targetType.IsRef() {
		targetType = targetType.RefTargetOf()
	}
	if targetType == nil {
		return base
	}
	structT, ok := l.structTypes[targetType.TypeName]
	if !ok {
		return base
	}
	i32 := l.b.IntType(32)
	idx := []Value{l.b.ConstInt(i32, 0), l.b.ConstInt(i32, int64(m.FieldIndex))}
	return l.b.CreateGEP(structT, base, idx, "")
}

// indexAddr implements the stack-vs-heap array GEP distinction from spec
// §4.H: a plain identifier bound through InsertVarDecl with a known,
// positive ArraySize lowers through a two-index `[0, i]` GEP against its
// sized ArrayType alloca; anything else (a parameter, a `new T[n]` result, a
// field of array type) is a bare element pointer and needs only `[i]`.
func (l *Lowerer) indexAddr(x *ast.IndexExpr, scope *symbols.Scope) Value {
	elemType := x.Type()
	key := l.lowerExpr(x.Index, scope)
	if x.ConvertIndexTo != nil {
		key = l.convertInt(key, x.Index.Type(), x.ConvertIndexTo)
	}

	if id, ok := x.Target.(*ast.Identifier); ok {
		if entry, found := scope.Lookup(id.Name); found && entry.ArraySize > 0 {
			arrT := l.stackArrayType(elemType, entry.ArraySize)
			base, _ := entry.IRValue.(Value)
			i32 := l.b.IntType(32)
			idx := []Value{l.b.ConstInt(i32, 0), key}
			return l.b.CreateGEP(arrT, base, idx, "")
		}
	}

	base := l.lowerExpr(x.Target, scope)
	return l.b.CreateGEP(l.irType(elemType), base, []Value{key}, "")
}

// convertInt widens/narrows an index key through a From<K> substitution
// (spec §4.C auto-impl rule: `arr[i]` with `i: I32` against an
// auto-implemented `Index<Usize>`).
func (l *Lowerer) convertInt(v Value, from, to *types.TypeInfo) Value {
	if from == nil || to == nil || from == to {
		return v
	}
	toT := l.irType(to)
	fw, tw := from.IntWidth(), to.IntWidth()
	switch {
	case fw == tw:
		return v
	case fw < tw && from.IsSigned():
		return l.b.CreateSExt(v, toT, "")
	case fw < tw:
		return l.b.CreateZExt(v, toT, "")
	default:
		return l.b.CreateTrunc(v, toT, "")
	}
}
