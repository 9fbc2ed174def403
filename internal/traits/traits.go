// Package traits implements the polymorphic operator/protocol dispatch
// table (component C): trait definitions, per-type implementations,
// integer-promotion rules, and auto-implementation of Index/RefIndex/Length
// for built-in indexable/measurable types (spec §4.C).
package traits

import (
	"fmt"

	"github.com/jsa-lang/jsac/internal/types"
)

// Name identifies one of the fixed, built-in traits (spec §4.C). There are
// no user-defined traits (spec §1 Non-goals).
type Name string

const (
	Add       Name = "Add"
	Sub       Name = "Sub"
	Mul       Name = "Mul"
	Div       Name = "Div"
	Rem       Name = "Rem"
	BitAnd    Name = "BitAnd"
	BitOr     Name = "BitOr"
	BitXor    Name = "BitXor"
	Shl       Name = "Shl"
	Shr       Name = "Shr"
	Eq        Name = "Eq"
	Ord       Name = "Ord"
	Neg       Name = "Neg"
	Not       Name = "Not"
	AddAssign Name = "AddAssign"
	SubAssign Name = "SubAssign"
	MulAssign Name = "MulAssign"
	DivAssign Name = "DivAssign"
	Index     Name = "Index"
	RefIndex  Name = "RefIndex"
	Length    Name = "Length"
	Display   Name = "Display"
	From      Name = "From"
	CStrTrait Name = "CStr"
)

// MethodKind discriminates the three ways a trait method can be realized
// (spec §3 TraitImpl).
type MethodKind int

const (
	Intrinsic MethodKind = iota
	UserFunction
	External
)

// Method is one implementation of a trait method.
type Method struct {
	Kind MethodKind

	// Intrinsic: Codegen receives the operand IR values plus an opaque
	// lowering context and returns the result IR value. Both are
	// deliberately untyped (interface{}) so this package has no
	// dependency on the lowering package's IR value representation.
	Codegen func(operands []interface{}, ctx interface{}) interface{}

	// UserFunction
	Signature *types.TypeInfo
	Body      interface{} // *ast.Block

	// External
	Linkage string
}

// Impl is one trait implementation for a concrete self type (spec §3
// TraitImpl).
type Impl struct {
	Trait             Name
	SelfType          *types.TypeInfo
	TypeParamBindings []*types.TypeInfo
	AssocTypes        map[string]*types.TypeInfo // e.g. "Output" -> T
	Methods           map[string]*Method
}

// Registry holds every registered trait implementation plus the auto-impl
// bookkeeping for Index/RefIndex/Length (spec §4.C).
type Registry struct {
	impls []*Impl

	// autoIndexed/autoLengthed remember which self types already got a
	// synthetic implementation so repeated requests are idempotent.
	autoIndexed   map[*types.TypeInfo]bool
	autoRefIndexed map[*types.TypeInfo]bool
	autoLengthed  map[*types.TypeInfo]bool
}

// NewRegistry creates an empty registry and pre-registers the built-in
// numeric/bool/string operator implementations (spec §4.C).
func NewRegistry() *Registry {
	r := &Registry{
		autoIndexed:    make(map[*types.TypeInfo]bool),
		autoRefIndexed: make(map[*types.TypeInfo]bool),
		autoLengthed:   make(map[*types.TypeInfo]bool),
	}
	r.registerBuiltins()
	r.registerBuiltinFromConversions()
	return r
}

// Register adds a trait implementation, rejecting an exact (trait, self,
// bindings) overlap.
func (r *Registry) Register(impl *Impl) error {
	if existing, ok := r.findExact(impl.Trait, impl.SelfType, impl.TypeParamBindings); ok {
		_ = existing
		return fmt.Errorf("overlapping implementation: %s for %s", impl.Trait, impl.SelfType)
	}
	r.impls = append(r.impls, impl)
	return nil
}

func sameBindings(a, b []*types.TypeInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (r *Registry) findExact(trait Name, self *types.TypeInfo, bindings []*types.TypeInfo) (*Impl, bool) {
	for _, impl := range r.impls {
		if impl.Trait == trait && impl.SelfType == self && sameBindings(impl.TypeParamBindings, bindings) {
			return impl, true
		}
	}
	return nil, false
}

// FindImpl matches on pointer equality of self and each type-param binding
// (spec §4.C `find_impl`).
func (r *Registry) FindImpl(trait Name, self *types.TypeInfo, bindings []*types.TypeInfo) (*Impl, bool) {
	return r.findExact(trait, self, bindings)
}

// ---- Operator -> (trait, method) table (spec §4.C) ----

// BinaryOperatorTrait returns the trait and method name an infix operator
// dispatches through, or ("", "", false) for `&&`/`||`, which are NOT
// traits (short-circuit lowering only, spec §4.C).
func BinaryOperatorTrait(op string) (Name, string, bool) {
	switch op {
	case "+":
		return Add, "add", true
	case "-":
		return Sub, "sub", true
	case "*":
		return Mul, "mul", true
	case "/":
		return Div, "div", true
	case "%":
		return Rem, "rem", true
	case "&":
		return BitAnd, "and", true
	case "|":
		return BitOr, "or", true
	case "^":
		return BitXor, "xor", true
	case "<<":
		return Shl, "shl", true
	case ">>":
		return Shr, "shr", true
	case "==":
		return Eq, "eq", true
	case "!=":
		return Eq, "ne", true
	case "<":
		return Ord, "lt", true
	case "<=":
		return Ord, "le", true
	case ">":
		return Ord, "gt", true
	case ">=":
		return Ord, "ge", true
	default:
		return "", "", false
	}
}

// CompoundAssignTrait maps `+=`,`-=`,`*=`,`/=` to their *Assign trait.
func CompoundAssignTrait(op string) (Name, string, bool) {
	switch op {
	case "+=":
		return AddAssign, "add_assign", true
	case "-=":
		return SubAssign, "sub_assign", true
	case "*=":
		return MulAssign, "mul_assign", true
	case "/=":
		return DivAssign, "div_assign", true
	default:
		return "", "", false
	}
}

// UnaryOperatorTrait maps prefix `-`/`!` to Neg/Not.
func UnaryOperatorTrait(op string) (Name, string, bool) {
	switch op {
	case "-":
		return Neg, "neg", true
	case "!":
		return Not, "not", true
	default:
		return "", "", false
	}
}

// IsShortCircuit reports whether op is `&&`/`||`, which never go through
// the trait table (spec §4.C, §4.H).
func IsShortCircuit(op string) bool { return op == "&&" || op == "||" }
