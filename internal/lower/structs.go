package lower

import "github.com/jsa-lang/jsac/internal/types"

// strStructName is the IR name backing every Str value (spec §6: `Str` is
// `{data: *u8, length: usize}`).
const strStructName = "jsac.Str"

// enumPayloadSlots returns the number of pointer-sized words the largest
// variant of et needs. Each field, whatever its native width, is stored in
// one 64-bit slot and bit-cast on load/store; the union itself has no named
// field layout, since the real IR builder is free to choose the physical
// representation (spec §9 treats the IR builder's own implementation as a
// non-goal) — this package only needs a layout that round-trips through
// CreateBitCast.
func enumPayloadSlots(et *types.TypeInfo) int {
	max := 0
	for _, fields := range et.VariantFieldTypes {
		if len(fields) > max {
			max = len(fields)
		}
	}
	return max
}

// declareStructs implements spec §4.H invariant 1: every struct type is
// pre-declared, in dependency order, before any function body is emitted;
// the loop runs to a fixed point so mutually-independent structs (and
// structs only reachable through a Ref, which never blocks on a body) never
// stall it. Enums get the same two-phase treatment: a named IR struct
// holding {i32 tag, payload} where payload is an enumPayloadSlots(et)-long
// array of i64 slots.
func (l *Lowerer) declareStructs() {
	l.strType = l.declareStrStruct()

	structs := l.ctx.AllStructs()
	enums := l.ctx.AllEnums()

	for _, s := range structs {
		l.structTypes[s.TypeName] = l.b.DeclareOpaqueStruct(s.TypeName)
	}
	for _, e := range enums {
		l.structTypes[e.TypeName] = l.b.DeclareOpaqueStruct(e.TypeName)
	}

	ready := make(map[string]bool)
	ready[strStructName] = true

	for _, e := range enums {
		slots := enumPayloadSlots(e)
		payload := l.b.ArrayType(l.b.IntType(64), slots)
		l.b.SetStructBody(l.structTypes[e.TypeName], []IRType{l.b.IntType(32), payload})
		ready[e.TypeName] = true
	}

	remaining := make([]*types.TypeInfo, len(structs))
	copy(remaining, structs)

	for len(remaining) > 0 {
		progressed := false
		next := remaining[:0]
		for _, s := range remaining {
			if !l.structFieldsReady(s, ready) {
				next = append(next, s)
				continue
			}
			fieldTypes := make([]IRType, len(s.FieldTypes))
			for i, ft := range s.FieldTypes {
				fieldTypes[i] = l.irType(ft)
			}
			l.b.SetStructBody(l.structTypes[s.TypeName], fieldTypes)
			ready[s.TypeName] = true
			progressed = true
		}
		remaining = next
		if !progressed {
			break
		}
	}

	// Any struct left over only has itself (or a cycle of itself) to thank:
	// a value-typed field cycle is not a representable finite-size type, so
	// if inference let one through, emit it with whatever fields resolve
	// and leave the rest as opaque pointers rather than looping forever.
	for _, s := range remaining {
		fieldTypes := make([]IRType, len(s.FieldTypes))
		for i, ft := range s.FieldTypes {
			if ft.IsObject() && !ready[ft.TypeName] {
				fieldTypes[i] = l.b.PointerType(l.b.IntType(8))
				continue
			}
			fieldTypes[i] = l.irType(ft)
		}
		l.b.SetStructBody(l.structTypes[s.TypeName], fieldTypes)
		ready[s.TypeName] = true
	}
}

// structFieldsReady reports whether every field of s can already be given a
// concrete (sized) IR type. Ref and Array-via-heap fields are always ready
// since they lower to pointers regardless of what they point to; only a
// directly-embedded Object field has to wait on its target's body.
func (l *Lowerer) structFieldsReady(s *types.TypeInfo, ready map[string]bool) bool {
	for _, ft := range s.FieldTypes {
		if !l.typeReady(ft, ready) {
			return false
		}
	}
	return true
}

func (l *Lowerer) typeReady(t *types.TypeInfo, ready map[string]bool) bool {
	switch {
	case t == nil:
		return true
	case t.IsObject():
		return ready[t.TypeName]
	case t.IsArray():
		// Heap arrays carry no static size at the type level; any
		// struct field typed as an array is a pointer, not an inline
		// blob, so it never blocks on the element type.
		return true
	default:
		return true
	}
}

func (l *Lowerer) declareStrStruct() IRType {
	t := l.b.DeclareOpaqueStruct(strStructName)
	l.b.SetStructBody(t, []IRType{
		l.b.PointerType(l.b.IntType(8)),
		l.b.IntType(64),
	})
	return t
}

// irType lowers the compiler's own type representation to an IRType. Struct
// and enum types must already have been declared by declareStructs before
// this is ever called for them (spec §4.H invariant 1 is exactly what
// guarantees that ordering).
func (l *Lowerer) irType(t *types.TypeInfo) IRType {
	if t == nil {
		return l.b.VoidType()
	}
	switch t.Kind {
	case types.KindUnknown, types.KindVoid:
		return l.b.VoidType()
	case types.KindBool:
		return l.b.IntType(1)
	case types.KindI8, types.KindU8:
		return l.b.IntType(8)
	case types.KindI16, types.KindU16:
		return l.b.IntType(16)
	case types.KindI32, types.KindU32:
		return l.b.IntType(32)
	case types.KindI64, types.KindU64, types.KindUsize:
		return l.b.IntType(64)
	case types.KindDouble:
		return l.b.FloatType()
	case types.KindStr, types.KindCStr:
		return l.strType
	case types.KindRef:
		return l.b.PointerType(l.irType(t.RefTarget))
	case types.KindArray:
		// A bare Array TypeInfo carries no static extent (that lives on
		// the declaring ast.VarDecl/FieldDecl's ArraySizeExp/ResolvedSize
		// instead); everywhere an Array is used as a value's own type
		// rather than a stack declaration with a known size, it is a
		// heap-backed pointer to its element type.
		return l.b.PointerType(l.irType(t.ElemType))
	case types.KindObject, types.KindEnum:
		if it, ok := l.structTypes[t.TypeName]; ok {
			return it
		}
		return l.b.PointerType(l.b.IntType(8))
	case types.KindFunction:
		return l.b.PointerType(l.b.IntType(8))
	}
	return l.b.VoidType()
}

// valueType is the IR type of a value of type t as it travels through a
// parameter, a local variable's slot, or a return value. For Object/Enum/Str
// this is one pointer layer over irType(t) (the bare aggregate layout used
// for struct fields and array elements, which embed composites inline
// rather than box them — see declareStructs/stackArrayType); every other
// kind already lowers to its own value representation in irType, so
// valueType is a pass-through.
func (l *Lowerer) valueType(t *types.TypeInfo) IRType {
	if t != nil && (t.IsObject() || t.IsEnum() || t.IsString()) {
		return l.b.PointerType(l.irType(t))
	}
	return l.irType(t)
}

// stackArrayType builds the sized stack-array IRType used for a local
// array declaration with a known, positive resolved size (spec §4.H: stack
// arrays use a two-index GEP, unlike the single-index GEP a heap array
// needs).
func (l *Lowerer) stackArrayType(elem *types.TypeInfo, n int) IRType {
	return l.b.ArrayType(l.irType(elem), n)
}
