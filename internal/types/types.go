// Package types implements the canonical, interned type representation
// (component A of the compiler: TypeInfo registry) described in spec §3 and
// §4.A. Primitive types are process-wide singletons compared by pointer
// identity; every other variant (Ref, Array, Object, Enum, Function) is
// owned and deduplicated by a per-module Context.
package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the TypeInfo variants.
type Kind int

const (
	KindUnknown Kind = iota
	KindVoid
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindU8
	KindU16
	KindU32
	KindU64
	KindUsize
	KindDouble
	KindStr
	KindCStr
	KindRef
	KindArray
	KindObject
	KindEnum
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "Unknown"
	case KindVoid:
		return "Void"
	case KindBool:
		return "Bool"
	case KindI8:
		return "I8"
	case KindI16:
		return "I16"
	case KindI32:
		return "I32"
	case KindI64:
		return "I64"
	case KindU8:
		return "U8"
	case KindU16:
		return "U16"
	case KindU32:
		return "U32"
	case KindU64:
		return "U64"
	case KindUsize:
		return "Usize"
	case KindDouble:
		return "Double"
	case KindStr:
		return "Str"
	case KindCStr:
		return "CStr"
	case KindRef:
		return "Ref"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindEnum:
		return "Enum"
	case KindFunction:
		return "Function"
	}
	return "?"
}

// TypeInfo is the interned, canonical type representation. For primitives,
// identity (pointer equality) IS equality (spec §3 invariant i); for the
// composite variants, equality must compare structurally (see Equals).
type TypeInfo struct {
	Kind Kind

	// Ref
	RefTarget  *TypeInfo
	RefMutable bool

	// Array
	ElemType *TypeInfo

	// Object (struct)
	TypeName      string
	FieldNames    []string
	FieldTypes    []*TypeInfo
	StructDeclRef interface{} // back-reference to the owning ast.StructDecl

	// Enum
	VariantNames      []string
	VariantFieldNames [][]string
	VariantFieldTypes [][]*TypeInfo
	EnumDeclRef       interface{} // back-reference to the owning ast.EnumDecl

	// Function
	FuncName        string
	Params          []*TypeInfo
	Return          *TypeInfo
	FuncBodyRef      interface{} // back-reference to the owning ast.FuncDecl
	IsVariadic      bool
	IsFullyTyped    bool
	Specializations *Specialization // linked list head, spec §4.G
}

func (t *TypeInfo) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindRef:
		if t.RefMutable {
			return "ref mut " + t.RefTarget.String()
		}
		return "ref " + t.RefTarget.String()
	case KindArray:
		return t.ElemType.String() + "[]"
	case KindObject:
		return t.TypeName
	case KindEnum:
		return t.TypeName
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("function %s(%s): %s", t.FuncName, strings.Join(parts, ", "), t.Return)
	default:
		return t.Kind.String()
	}
}

// Equals performs structural equality: pointer identity for primitives
// (trivially true, since they are singletons) and field-wise comparison
// for composites.
func (t *TypeInfo) Equals(o *TypeInfo) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindRef:
		return t.RefMutable == o.RefMutable && t.RefTarget.Equals(o.RefTarget)
	case KindArray:
		return t.ElemType.Equals(o.ElemType)
	case KindObject, KindEnum:
		return t.TypeName == o.TypeName
	case KindFunction:
		if t.FuncName != o.FuncName || len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equals(o.Params[i]) {
				return false
			}
		}
		return t.Return.Equals(o.Return)
	default:
		// Non-singleton-but-primitive-kind comparison (defensive: should
		// not occur given interning, but keep Equals total).
		return true
	}
}

// ---- Primitive singletons (process-wide, pointer-compared) ----

var (
	Unknown = &TypeInfo{Kind: KindUnknown}
	Void    = &TypeInfo{Kind: KindVoid}
	Bool    = &TypeInfo{Kind: KindBool}
	I8      = &TypeInfo{Kind: KindI8}
	I16     = &TypeInfo{Kind: KindI16}
	I32     = &TypeInfo{Kind: KindI32}
	I64     = &TypeInfo{Kind: KindI64}
	U8      = &TypeInfo{Kind: KindU8}
	U16     = &TypeInfo{Kind: KindU16}
	U32     = &TypeInfo{Kind: KindU32}
	U64     = &TypeInfo{Kind: KindU64}
	Usize   = &TypeInfo{Kind: KindUsize}
	Double  = &TypeInfo{Kind: KindDouble}
	Str     = &TypeInfo{Kind: KindStr}
	CStr    = &TypeInfo{Kind: KindCStr}
)

var primitivesByName = map[string]*TypeInfo{
	"unknown": Unknown,
	"void":    Void,
	"bool":    Bool,
	"i8":      I8,
	"i16":     I16,
	"i32":     I32,
	"i64":     I64,
	"u8":      U8,
	"u16":     U16,
	"u32":     U32,
	"u64":     U64,
	"usize":   Usize,
	"double":  Double,
	"str":     Str,
	"cstr":    CStr,
}

// InternPrimitive returns the singleton TypeInfo for a primitive type name,
// or (nil, false) if name does not name a primitive.
func InternPrimitive(name string) (*TypeInfo, bool) {
	t, ok := primitivesByName[strings.ToLower(name)]
	return t, ok
}

// ---- Queries ----

func (t *TypeInfo) IsInteger() bool {
	switch t.Kind {
	case KindI8, KindI16, KindI32, KindI64, KindU8, KindU16, KindU32, KindU64, KindUsize:
		return true
	}
	return false
}

// IntWidth returns the bit width of an integer type, or 0 if not an integer.
func (t *TypeInfo) IntWidth() int {
	switch t.Kind {
	case KindI8, KindU8:
		return 8
	case KindI16, KindU16:
		return 16
	case KindI32, KindU32:
		return 32
	case KindI64, KindU64, KindUsize:
		return 64
	}
	return 0
}

func (t *TypeInfo) IsSigned() bool {
	switch t.Kind {
	case KindI8, KindI16, KindI32, KindI64:
		return true
	}
	return false
}

func (t *TypeInfo) IsDouble() bool { return t.Kind == KindDouble }
func (t *TypeInfo) IsBool() bool   { return t.Kind == KindBool }
func (t *TypeInfo) IsString() bool { return t.Kind == KindStr || t.Kind == KindCStr }
func (t *TypeInfo) IsRef() bool    { return t.Kind == KindRef }
func (t *TypeInfo) IsArray() bool  { return t.Kind == KindArray }
func (t *TypeInfo) IsObject() bool { return t.Kind == KindObject }
func (t *TypeInfo) IsEnum() bool   { return t.Kind == KindEnum }
func (t *TypeInfo) IsFunction() bool { return t.Kind == KindFunction }
func (t *TypeInfo) IsVoid() bool   { return t.Kind == KindVoid }
func (t *TypeInfo) IsUnknown() bool { return t == nil || t.Kind == KindUnknown }

// RefTargetOf returns the target of a Ref type, or nil.
func (t *TypeInfo) RefTargetOf() *TypeInfo {
	if t.Kind != KindRef {
		return nil
	}
	return t.RefTarget
}

// ArrayOf returns the element type of an Array type, or nil.
func (t *TypeInfo) ArrayOf() *TypeInfo {
	if t.Kind != KindArray {
		return nil
	}
	return t.ElemType
}

// FindProperty returns the field index of name on an Object/Enum-variant
// field list, or -1 if absent (spec §4.A).
func (t *TypeInfo) FindProperty(name string) int {
	for i, n := range t.FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

// Clone returns a shallow value copy of the TypeInfo header (spec §4.A
// `clone`); composite slices are shared, matching the "share by reference"
// guidance in spec §9 (TypeInfo is never deep-copied across modules).
func (t *TypeInfo) Clone() *TypeInfo {
	c := *t
	return &c
}
