// Package symbols implements lexically-scoped name resolution (component B
// of the compiler). Scopes chain to a parent; lookup walks the chain with a
// bounded recursion guard (spec §4.B).
package symbols

import (
	"fmt"

	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/types"
)

// maxLookupDepth guards against accidental scope cycles (spec §4.B).
const maxLookupDepth = 100

// Entry is one binding in a scope.
type Entry struct {
	Name    string
	Type    *types.TypeInfo
	IsConst bool

	// IRValue is opaque to this package; lowering stashes its SSA value
	// here once the binding has a concrete storage location.
	IRValue interface{}
	IRType  interface{}

	// DeclNode is the declaring AST node (VarDecl, FuncDecl, ImportDecl...),
	// or nil for synthetic/parameter bindings that don't need one.
	DeclNode ast.Node

	// ArraySize is set for array var-declarations (0 otherwise).
	ArraySize int

	// ParamIndex is >=0 for function-parameter bindings, else -1.
	ParamIndex int

	next *Entry // intra-scope singly-linked chain (most recent shadowing first)
}

// IsNamespace reports whether this entry denotes an imported module: spec
// §4.B defines namespace detection as "entry.node != nil && entry.node is
// an ImportDecl" — the only case where a symbol's declaring node has that
// kind.
func (e *Entry) IsNamespace() bool {
	if e == nil || e.DeclNode == nil {
		return false
	}
	_, ok := e.DeclNode.(*ast.ImportDecl)
	return ok
}

// Scope is one lexical level: a block, a for-loop header, a function body,
// or the top-level program. Entries shadow by insertion at the head of
// head[name]'s chain (spec §4.B: "insertion is always at the head").
type Scope struct {
	parent *Scope
	head   map[string]*Entry
}

// NewScope creates a root scope with no parent (e.g. the program scope).
func NewScope() *Scope {
	return &Scope{head: make(map[string]*Entry)}
}

// NewChild creates a scope nested inside parent (e.g. entering a block).
func (s *Scope) NewChild() *Scope {
	return &Scope{parent: s, head: make(map[string]*Entry)}
}

func (s *Scope) insert(name string, e *Entry) {
	e.next = s.head[name]
	s.head[name] = e
}

// InsertPlain binds a name to a type/value/const flag with no declaration
// node (spec §4.B "plain" flavor).
func (s *Scope) InsertPlain(name string, t *types.TypeInfo, irValue interface{}, isConst bool) *Entry {
	e := &Entry{Name: name, Type: t, IRValue: irValue, IsConst: isConst, ParamIndex: -1}
	s.insert(name, e)
	return e
}

// InsertVarDecl binds a variable declaration, recording its node and array
// size (spec §4.B "var-declaration" flavor).
func (s *Scope) InsertVarDecl(name string, t *types.TypeInfo, node ast.Node, arraySize int) *Entry {
	e := &Entry{Name: name, Type: t, DeclNode: node, ArraySize: arraySize, ParamIndex: -1}
	s.insert(name, e)
	return e
}

// InsertFuncDecl binds a function declaration; its TypeInfo is filled in
// later once pass 1 constructs it (spec §4.B "function-declaration" flavor
// — "records node, no type yet").
func (s *Scope) InsertFuncDecl(name string, node *ast.FuncDecl) *Entry {
	e := &Entry{Name: name, DeclNode: node, ParamIndex: -1}
	s.insert(name, e)
	return e
}

// InsertNamespace binds an imported module under its local alias (spec
// §4.B "namespace" flavor — the only insert whose DeclNode is an
// ImportDecl).
func (s *Scope) InsertNamespace(alias string, imp *ast.ImportDecl) *Entry {
	e := &Entry{Name: alias, DeclNode: imp, ParamIndex: -1}
	s.insert(alias, e)
	return e
}

// InsertParam binds a function parameter at a known index.
func (s *Scope) InsertParam(name string, t *types.TypeInfo, index int) *Entry {
	e := &Entry{Name: name, Type: t, ParamIndex: index}
	s.insert(name, e)
	return e
}

// Lookup walks this scope and its ancestors, returning the most recently
// inserted (i.e. innermost-shadowing) binding for name.
func (s *Scope) Lookup(name string) (*Entry, bool) {
	cur := s
	for depth := 0; cur != nil; depth++ {
		if depth > maxLookupDepth {
			panic(fmt.Sprintf("symbols: scope lookup exceeded depth %d looking up %q (cyclic scope chain?)", maxLookupDepth, name))
		}
		if e, ok := cur.head[name]; ok {
			return e, true
		}
		cur = cur.parent
	}
	return nil, false
}

// LookupLocal looks up name only in this scope, without walking parents.
func (s *Scope) LookupLocal(name string) (*Entry, bool) {
	e, ok := s.head[name]
	return e, ok
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope { return s.parent }
