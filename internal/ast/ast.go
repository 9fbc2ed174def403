// Package ast defines the abstract syntax tree produced by the (external)
// lexer/parser for a JSA source program. Nodes carry source positions and,
// once type inference has run, a resolved types.TypeInfo on every
// expression node.
package ast

import (
	"fmt"
	"strings"

	"github.com/jsa-lang/jsac/internal/types"
)

// Pos is a single point in source text.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Node is the base interface every AST node satisfies.
type Node interface {
	Position() Pos
	String() string
}

// Expr is any node that produces a value. Type() is nil until inference
// assigns it; after a clean (error-free) inference pass every Expr must
// have a non-nil, non-Unknown type (spec invariant 1).
type Expr interface {
	Node
	exprNode()
	Type() *types.TypeInfo
	SetType(*types.TypeInfo)
}

// Stmt is any node that is a statement.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is any top-level declaration.
type Decl interface {
	Node
	declNode()
}

// TypeHint is a parsed (not yet resolved) type annotation, e.g. `i32[]`,
// `ref termios.termios_t`.
type TypeHint interface {
	Node
	typeHintNode()
}

// exprBase is embedded by every Expr implementation to carry the resolved
// type without each node repeating the boilerplate.
type exprBase struct {
	resolved *types.TypeInfo
}

func (e *exprBase) Type() *types.TypeInfo     { return e.resolved }
func (e *exprBase) SetType(t *types.TypeInfo) { e.resolved = t }

// Program is the root node of a single module's AST.
type Program struct {
	Path       string
	ModuleName string
	Imports    []*ImportDecl
	Decls      []Decl
	Pos        Pos
}

func (p *Program) Position() Pos { return p.Pos }
func (p *Program) String() string {
	var b strings.Builder
	for _, d := range p.Decls {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// ImportDecl is `import name from "path"`.
type ImportDecl struct {
	Alias string
	Path  string
	Pos   Pos

	// ImportedModule is filled in by the module loader once the target
	// module has been resolved. Typed as interface{} to avoid an
	// ast -> loader import cycle; the loader package defines the
	// concrete *loader.Module type stored here.
	ImportedModule interface{}
}

func (i *ImportDecl) Position() Pos { return i.Pos }
func (i *ImportDecl) String() string {
	return fmt.Sprintf("import %s from %q", i.Alias, i.Path)
}
func (i *ImportDecl) declNode() {}

// ---- Type hints ----

// NamedTypeHint references a primitive or locally declared type by name,
// e.g. `i32`, `Point`.
type NamedTypeHint struct {
	Name string
	Pos  Pos
}

func (n *NamedTypeHint) Position() Pos { return n.Pos }
func (n *NamedTypeHint) String() string { return n.Name }
func (n *NamedTypeHint) typeHintNode()  {}

// NamespacedTypeHint references `namespace.Type` — only a single level is
// supported (spec §4.E).
type NamespacedTypeHint struct {
	Namespace string
	Name      string
	Pos       Pos
}

func (n *NamespacedTypeHint) Position() Pos { return n.Pos }
func (n *NamespacedTypeHint) String() string {
	return n.Namespace + "." + n.Name
}
func (n *NamespacedTypeHint) typeHintNode() {}

// RefTypeHint is `ref T`.
type RefTypeHint struct {
	Target    TypeHint
	IsMutable bool
	Pos       Pos
}

func (r *RefTypeHint) Position() Pos  { return r.Pos }
func (r *RefTypeHint) String() string { return "ref " + r.Target.String() }
func (r *RefTypeHint) typeHintNode()  {}

// ArrayTypeHint is `T[]`.
type ArrayTypeHint struct {
	Element TypeHint
	Pos     Pos
}

func (a *ArrayTypeHint) Position() Pos  { return a.Pos }
func (a *ArrayTypeHint) String() string { return a.Element.String() + "[]" }
func (a *ArrayTypeHint) typeHintNode()  {}

// ---- Declarations ----

// Param is a single function parameter; TypeHint may be nil (untyped —
// inference discovers it from call sites, see spec §4.F pass 1/2).
type Param struct {
	Name     string
	TypeHint TypeHint
	Pos      Pos
}

// FuncDecl is `function name(params): ret { body }`, optionally `export`ed
// and, for struct methods, owned by `Receiver` (`S.m`).
type FuncDecl struct {
	Name       string
	Receiver   string // non-empty for struct methods ("S" in "S.m")
	Params     []*Param
	ReturnHint TypeHint // nil if return type is to be inferred
	Body       *Block
	IsExport   bool
	IsVariadic bool
	IsExtern   bool // body == nil, linked externally
	Pos        Pos

	// ResolvedType is filled in during pass 1 of inference.
	ResolvedType *types.TypeInfo
}

func (f *FuncDecl) Position() Pos { return f.Pos }
func (f *FuncDecl) String() string {
	name := f.Name
	if f.Receiver != "" {
		name = f.Receiver + "." + f.Name
	}
	return fmt.Sprintf("function %s(...)", name)
}
func (f *FuncDecl) declNode() {}

// FieldDecl is one field of a struct or one field of an enum variant.
type FieldDecl struct {
	Name         string
	TypeHint     TypeHint
	Default      Expr // optional default value expression
	ArraySizeExp Expr // optional, for array-typed fields: `f: i32[N]`
	Pos          Pos
}

// StructDecl is `struct S { fields... }`.
type StructDecl struct {
	Name   string
	Fields []*FieldDecl
	Pos    Pos

	ResolvedType *types.TypeInfo
}

func (s *StructDecl) Position() Pos  { return s.Pos }
func (s *StructDecl) String() string { return "struct " + s.Name }
func (s *StructDecl) declNode()      {}

// EnumVariant is one variant of an enum, e.g. `Pong(n: i32)`.
type EnumVariant struct {
	Name   string
	Fields []*FieldDecl
	Pos    Pos
}

// EnumDecl is `enum E { variants... }`.
type EnumDecl struct {
	Name     string
	Variants []*EnumVariant
	Pos      Pos

	ResolvedType *types.TypeInfo
}

func (e *EnumDecl) Position() Pos  { return e.Pos }
func (e *EnumDecl) String() string { return "enum " + e.Name }
func (e *EnumDecl) declNode()      {}

// ConstDecl is `const NAME = expr;` or `const NAME: T[expr] = {...}`.
type ConstDecl struct {
	Name         string
	TypeHint     TypeHint
	ArraySizeExp Expr // optional
	Value        Expr
	Pos          Pos

	// ResolvedSize is filled in by the const evaluator (pass 0) when
	// ArraySizeExp is present.
	ResolvedSize int
}

func (c *ConstDecl) Position() Pos  { return c.Pos }
func (c *ConstDecl) String() string { return "const " + c.Name }
func (c *ConstDecl) declNode()      {}
func (c *ConstDecl) stmtNode()      {}

// VarDecl is `var name: T = expr;`, legal at top level and inside blocks.
type VarDecl struct {
	Name         string
	TypeHint     TypeHint
	ArraySizeExp Expr
	Value        Expr
	Pos          Pos

	ResolvedSize int
}

func (v *VarDecl) Position() Pos  { return v.Pos }
func (v *VarDecl) String() string { return "var " + v.Name }
func (v *VarDecl) declNode()      {}
func (v *VarDecl) stmtNode()      {}

// ---- Statements ----

// Block is `{ stmts... }`. Scope attachment (spec §3/§9) is tracked in a
// side-table owned by the inference engine (infer.Result.ScopeOf), not as
// a field here, to avoid an ast -> symbols import cycle; lowering re-enters
// the same table by node identity (this Block pointer) per spec §4.H.
type Block struct {
	Stmts []Stmt
	Pos   Pos
}

func (b *Block) Position() Pos  { return b.Pos }
func (b *Block) String() string { return "{ ... }" }
func (b *Block) stmtNode()      {}

// ExprStmt wraps a bare expression used as a statement (e.g. a call).
type ExprStmt struct {
	X   Expr
	Pos Pos
}

func (e *ExprStmt) Position() Pos  { return e.Pos }
func (e *ExprStmt) String() string { return e.X.String() + ";" }
func (e *ExprStmt) stmtNode()      {}

// Assign is `lhs = rhs` or a compound `lhs op= rhs`.
type Assign struct {
	Target Expr
	Op     string // "=", "+=", "-=", "*=", "/="
	Value  Expr
	Pos    Pos
}

func (a *Assign) Position() Pos  { return a.Pos }
func (a *Assign) String() string { return fmt.Sprintf("%s %s %s", a.Target, a.Op, a.Value) }
func (a *Assign) stmtNode()      {}

// IncDec is `++x`/`x++`/`--x`/`x--`. It is an expression (prefix returns the
// new value, postfix returns the old one, per spec §4.H) that may also
// stand alone as a statement via ExprStmt.
type IncDec struct {
	exprBase
	Target  Expr
	Op      string // "++" or "--"
	Postfix bool
	Pos     Pos
}

func (i *IncDec) Position() Pos  { return i.Pos }
func (i *IncDec) String() string { return i.Target.String() + i.Op }
func (i *IncDec) exprNode()      {}

// If is `if (cond) then else else`.
type If struct {
	Cond Expr
	Then *Block
	Else Stmt // *Block or *If (else-if chain) or nil
	Pos  Pos
}

func (f *If) Position() Pos  { return f.Pos }
func (f *If) String() string { return "if (" + f.Cond.String() + ") ..." }
func (f *If) stmtNode()      {}

// While is `while (cond) body`.
type While struct {
	Cond Expr
	Body *Block
	Pos  Pos
}

func (w *While) Position() Pos  { return w.Pos }
func (w *While) String() string { return "while (" + w.Cond.String() + ") ..." }
func (w *While) stmtNode()      {}

// For is `for (init; cond; update) body`.
type For struct {
	Init   Stmt // *VarDecl or *ExprStmt or nil
	Cond   Expr // nil means "true"
	Update Stmt // *ExprStmt wrapping *Assign/*IncDec, or nil
	Body   *Block
	Pos    Pos
}

func (f *For) Position() Pos  { return f.Pos }
func (f *For) String() string { return "for (...) ..." }
func (f *For) stmtNode()      {}

// Break/Continue/Return/DeleteStmt.

type Break struct{ Pos Pos }

func (b *Break) Position() Pos  { return b.Pos }
func (b *Break) String() string { return "break;" }
func (b *Break) stmtNode()      {}

type Continue struct{ Pos Pos }

func (c *Continue) Position() Pos  { return c.Pos }
func (c *Continue) String() string { return "continue;" }
func (c *Continue) stmtNode()      {}

type Return struct {
	Value Expr // nil for `return;`
	Pos   Pos
}

func (r *Return) Position() Pos  { return r.Pos }
func (r *Return) String() string { return "return;" }
func (r *Return) stmtNode()      {}

type DeleteStmt struct {
	Target Expr
	Pos    Pos
}

func (d *DeleteStmt) Position() Pos  { return d.Pos }
func (d *DeleteStmt) String() string { return "delete " + d.Target.String() + ";" }
func (d *DeleteStmt) stmtNode()      {}
