package ast

import (
	"fmt"
	"strings"

	"github.com/jsa-lang/jsac/internal/types"
)

// Identifier is a bare name reference: a local, a function, or (when the
// name resolves to a namespace symbol) the left side of a `ns.Symbol`
// access, which MemberExpr / CallExpr recognize by inspecting the
// resolved symbol kind at inference time.
type Identifier struct {
	exprBase
	Name string
	Pos  Pos
}

func (i *Identifier) Position() Pos  { return i.Pos }
func (i *Identifier) String() string { return i.Name }
func (i *Identifier) exprNode()      {}

// IntLiteral is an integer literal; its concrete width/signedness is
// resolved contextually during inference (defaults to I32 if unconstrained).
type IntLiteral struct {
	exprBase
	Value int64
	Pos   Pos
}

func (n *IntLiteral) Position() Pos  { return n.Pos }
func (n *IntLiteral) String() string { return fmt.Sprintf("%d", n.Value) }
func (n *IntLiteral) exprNode()      {}

// FloatLiteral is a `Double` literal.
type FloatLiteral struct {
	exprBase
	Value float64
	Pos   Pos
}

func (n *FloatLiteral) Position() Pos  { return n.Pos }
func (n *FloatLiteral) String() string { return fmt.Sprintf("%g", n.Value) }
func (n *FloatLiteral) exprNode()      {}

// StringLiteral is a `Str` literal.
type StringLiteral struct {
	exprBase
	Value string
	Pos   Pos
}

func (n *StringLiteral) Position() Pos  { return n.Pos }
func (n *StringLiteral) String() string { return fmt.Sprintf("%q", n.Value) }
func (n *StringLiteral) exprNode()      {}

// BoolLiteral is `true`/`false`.
type BoolLiteral struct {
	exprBase
	Value bool
	Pos   Pos
}

func (n *BoolLiteral) Position() Pos  { return n.Pos }
func (n *BoolLiteral) String() string { return fmt.Sprintf("%t", n.Value) }
func (n *BoolLiteral) exprNode()      {}

// BinaryExpr is `left OP right`; OP dispatches through the trait registry
// (spec §4.C) except for `&&`/`||` which are short-circuit-lowered.
type BinaryExpr struct {
	exprBase
	Op    string
	Left  Expr
	Right Expr
	Pos   Pos
}

func (b *BinaryExpr) Position() Pos { return b.Pos }
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}
func (b *BinaryExpr) exprNode() {}

// UnaryExpr is `-x`, `!x`.
type UnaryExpr struct {
	exprBase
	Op      string
	Operand Expr
	Pos     Pos
}

func (u *UnaryExpr) Position() Pos  { return u.Pos }
func (u *UnaryExpr) String() string { return u.Op + u.Operand.String() }
func (u *UnaryExpr) exprNode()      {}

// CallExpr is `callee(args...)`. Callee is usually an Identifier (plain
// call), a MemberExpr (namespace or method call), or — for static struct
// calls — a MemberExpr whose target resolves to a type name.
type CallExpr struct {
	exprBase
	Callee Expr
	Args   []Expr
	Pos    Pos

	// ResolvedName is the mangled/specialized function name this call
	// binds to, filled in by analyze_call_sites (spec §4.F pass 2).
	ResolvedName string
}

func (c *CallExpr) Position() Pos { return c.Pos }
func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee, strings.Join(args, ", "))
}
func (c *CallExpr) exprNode() {}

// MemberExpr is `target.name` — a namespace access, a struct field access,
// or (when target is a bare type identifier) a static method reference.
type MemberExpr struct {
	exprBase
	Target Expr
	Name   string
	Pos    Pos

	// FieldIndex is resolved to the struct field index (>=0) once the
	// target's object type is known; -1 until then.
	FieldIndex int
}

func (m *MemberExpr) Position() Pos  { return m.Pos }
func (m *MemberExpr) String() string { return m.Target.String() + "." + m.Name }
func (m *MemberExpr) exprNode()      {}

// IndexExpr is `target[index]`.
type IndexExpr struct {
	exprBase
	Target Expr
	Index  Expr
	Pos    Pos

	// ConvertIndexTo records a From<K>-mediated index-key conversion
	// discovered during trait resolution (spec §4.C auto-impl rule); nil
	// when the index key already matches the Index/RefIndex binding
	// directly.
	ConvertIndexTo *types.TypeInfo

	// IsAssignTarget is set by Assign-statement typing so lowering knows
	// to select the RefIndex (rather than Index) implementation.
	IsAssignTarget bool
}

func (x *IndexExpr) Position() Pos  { return x.Pos }
func (x *IndexExpr) String() string { return fmt.Sprintf("%s[%s]", x.Target, x.Index) }
func (x *IndexExpr) exprNode()      {}

// NewArrayExpr is `new T[n]` — heap array allocation.
type NewArrayExpr struct {
	exprBase
	ElemHint TypeHint
	Size     Expr
	Pos      Pos
}

func (n *NewArrayExpr) Position() Pos  { return n.Pos }
func (n *NewArrayExpr) String() string { return fmt.Sprintf("new %s[%s]", n.ElemHint, n.Size) }
func (n *NewArrayExpr) exprNode()      {}

// ObjectFieldInit is one `name: expr` pair in a struct literal.
type ObjectFieldInit struct {
	Name  string
	Value Expr
	Pos   Pos
}

// ObjectLiteral is `{ field: value, ... }`, optionally contextually typed
// against a declared struct (spec §4.F pass 2-4, reordering rule).
type ObjectLiteral struct {
	exprBase
	StructHint string // name of the struct this literal is typed against, if known
	Fields     []*ObjectFieldInit
	Pos        Pos
}

func (o *ObjectLiteral) Position() Pos { return o.Pos }
func (o *ObjectLiteral) String() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Value)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
func (o *ObjectLiteral) exprNode() {}

// EnumConstructExpr is `EnumName.Variant(field: value, ...)`.
type EnumConstructExpr struct {
	exprBase
	EnumName string
	Variant  string
	Fields   []*ObjectFieldInit
	Pos      Pos
}

func (e *EnumConstructExpr) Position() Pos { return e.Pos }
func (e *EnumConstructExpr) String() string {
	return fmt.Sprintf("%s.%s(...)", e.EnumName, e.Variant)
}
func (e *EnumConstructExpr) exprNode() {}

// PatternBinding is one `let name` or `_` inside an `is` pattern.
type PatternBinding struct {
	Name       string // empty for wildcard "_"
	IsWildcard bool
	Pos        Pos

	// ResolvedType is the type this binding carries once typechecked.
	ResolvedType *types.TypeInfo
}

// IsExpr is `expr is EnumName.Variant(bindings...)`; result type is always
// Bool (spec §4.F pattern match contract).
type IsExpr struct {
	exprBase
	Target   Expr
	EnumName string
	Variant  string
	Bindings []*PatternBinding
	Pos      Pos

	// WholeVariantBind is set when there is exactly one non-wildcard
	// binding and the variant has more than one field (spec glossary).
	WholeVariantBind bool
}

func (p *IsExpr) Position() Pos { return p.Pos }
func (p *IsExpr) String() string {
	return fmt.Sprintf("%s is %s.%s(...)", p.Target, p.EnumName, p.Variant)
}
func (p *IsExpr) exprNode() {}
