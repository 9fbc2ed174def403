// Package infer implements the multi-pass, fixed-point type inference and
// monomorphization engine (component F, spec §4.F) — the largest and most
// central component of the compiler. It consumes one module's AST plus its
// already-loaded dependencies and produces a fully typed AST (every
// expression's Type() is non-Unknown) together with the specializations
// recorded inside that module's types.Context.
package infer

import (
	"github.com/jsa-lang/jsac/internal/ast"
	"github.com/jsa-lang/jsac/internal/consteval"
	"github.com/jsa-lang/jsac/internal/diag"
	"github.com/jsa-lang/jsac/internal/loader"
	"github.com/jsa-lang/jsac/internal/symbols"
	"github.com/jsa-lang/jsac/internal/traits"
	"github.com/jsa-lang/jsac/internal/types"
)

// maxPassIterations bounds Pass 0 and Pass 2-4 (spec §4.F, §5, §9: safety
// nets, not contracts).
const maxPassIterations = 100

// Result is everything inference hands off to lowering, beyond the
// mutated AST and types.Context (spec §9 design note: scope attachment
// lives in a side-table keyed by AST node identity to avoid an
// ast<->symbols import cycle).
type Result struct {
	ScopeOf map[ast.Node]*symbols.Scope
}

// Engine runs the pipeline for exactly one module. A fresh Engine is
// created per module by the driver; cross-module lookups go through the
// already-inferred loader.Module.TypeCtx of the dependency.
type Engine struct {
	mod    *loader.Module
	ctx    *types.Context
	traits *traits.Registry
	sink   *diag.Sink
	consts *consteval.Evaluator

	root    *symbols.Scope
	scopeOf map[ast.Node]*symbols.Scope

	// driver is set by Driver.RunModule so cross-module call sites can
	// reach the owning Engine of an imported module (spec §4.F #2, §4.G:
	// a specialization is created in the *imported* module's context).
	driver *Driver
}

// New creates an inference Engine for mod, using shared trait registry tr
// and diagnostic sink sink. mod.TypeCtx must already be set by the caller
// (one per module, spec §3).
func New(mod *loader.Module, tr *traits.Registry, sink *diag.Sink) *Engine {
	return &Engine{
		mod:     mod,
		ctx:     mod.TypeCtx,
		traits:  tr,
		sink:    sink,
		consts:  consteval.New(),
		root:    symbols.NewScope(),
		scopeOf: make(map[ast.Node]*symbols.Scope),
	}
}

// Run executes passes 0 through 2-4 over mod's program, in order (spec
// §4.F). It never returns an error directly — failures are recorded on
// the shared sink; the caller checks sink.HasErrors() before lowering
// (spec §5, §7).
func (e *Engine) Run(program *ast.Program) *Result {
	e.bindImports(program)
	e.runPass0(program)
	e.runPass1(program)
	e.runPass2to4(program)
	return &Result{ScopeOf: e.scopeOf}
}

// bindImports registers each import's local alias as a namespace symbol
// in the module's root scope (spec §4.B: "namespace" insert flavor).
func (e *Engine) bindImports(program *ast.Program) {
	for _, imp := range program.Imports {
		e.root.InsertNamespace(imp.Alias, imp)
	}
}

// scopeFor returns (creating if necessary) the side-table scope attached
// to node, chained under parent.
func (e *Engine) scopeFor(node ast.Node, parent *symbols.Scope) *symbols.Scope {
	if s, ok := e.scopeOf[node]; ok {
		return s
	}
	s := parent.NewChild()
	e.scopeOf[node] = s
	return s
}
